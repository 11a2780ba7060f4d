// Package juicefs wraps the network filesystem mount subprocess backing the
// long-term storage target.
package juicefs
