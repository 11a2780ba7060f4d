// Package transmission implements the download client boundary: submitting
// links over Transmission RPC, polling transfer progress, and fetching
// completed files from the HTTP mirror in front of the download directory.
//
// Stale RPC sessions are re-established transparently: a 409 response hands
// back a fresh X-Transmission-Session-Id and the call is retried once.
package transmission
