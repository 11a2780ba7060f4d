// Package overseerr implements the request-tracking service client. The
// watcher uses it to discover approved movie requests and resolve their
// release dates.
package overseerr
