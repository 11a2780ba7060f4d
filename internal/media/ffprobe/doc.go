// Package ffprobe shells out to ffprobe to inspect media containers. The
// encoder uses it to detect files that already carry the target codec and
// skip the expensive re-encode.
package ffprobe
