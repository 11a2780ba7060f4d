// Package encoder implements the processing half of the pipeline: it polls
// the job store for transfers, waits for them to finish downloading, fetches
// the media file, transcodes when needed, and relocates the result into the
// mounted storage target.
//
// A job found in encoding status at startup is interrupted work; it is
// reprocessed from the scratch-directory reset, never skipped. Transcoder
// and relocation failures abort the loop invocation: they indicate broken
// host tooling a retry cannot fix.
package encoder
