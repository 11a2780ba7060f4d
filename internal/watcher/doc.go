// Package watcher implements the acquisition half of the pipeline: it polls
// the request tracker for approved titles, picks a download candidate, and
// records submitted transfers in the job store.
package watcher
