// Package pipeline provides the polling harness that drives the watcher and
// encoder loops: fixed-interval passes, interruptible waits so shutdown
// signals are observed between passes, and the fatal-versus-transient exit
// policy for the host process.
package pipeline
