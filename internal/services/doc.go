// Package services contains the clients and subprocess wrappers for the
// external collaborators, plus the shared error taxonomy both loops use to
// decide between skipping an item and aborting the invocation.
//
// Every failure a client returns is tagged with one of the sentinel markers
// in errors.go. Callers never match on concrete error types across layers;
// they ask IsFatal and act locally.
package services
