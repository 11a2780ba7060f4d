// Package matcher scores indexer candidates against a requested title and
// selects the one to download. Pure functions, no side effects; the watcher
// owns all I/O around it.
package matcher
