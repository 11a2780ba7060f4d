// Command irilisd runs the acquisition pipeline daemon. It hosts the
// watcher loop, the encoder loop, or both, depending on the --role flag.
package main
