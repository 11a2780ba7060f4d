// Package config loads and validates the TOML configuration shared by the
// watcher and encoder loops.
//
// Load expands tilde paths, fills defaults, and rejects configurations that
// would let a loop start without credentials it needs. Encoder-only settings
// (mount target, transcoder preset) are validated separately so a watcher
// process can run from a config that omits them.
package config
