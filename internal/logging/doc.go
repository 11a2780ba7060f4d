// Package logging builds the shared slog logger used by both pipeline loops.
//
// Output fans out to stdout and a persistent log file under the configured
// log directory. The console format mirrors the daemon's historical
// "time | LEVEL | message" layout; the json format is available for log
// shippers. Attr helpers keep field names consistent between the watcher and
// encoder so records can be correlated by job_id and pass_id.
package logging
