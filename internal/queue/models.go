package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a tracked acquisition job.
type Status string

const (
	StatusDownloading Status = "downloading"
	StatusEncoding    Status = "encoding"
	StatusDone        Status = "done"
)

var allStatuses = []Status{
	StatusDownloading,
	StatusEncoding,
	StatusDone,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// transitions holds the only legal status advances. A job never skips a
// state and never regresses; interrupted encodes are redone under the same
// encoding status rather than being rolled back.
var transitions = map[Status]Status{
	StatusEncoding: StatusDownloading,
	StatusDone:     StatusEncoding,
}

// Item represents a job record persisted in SQLite. JobID is assigned by the
// download client when the transfer is submitted; ExternalID is the
// requested title's identifier in the request tracker and is unique across
// all records.
type Item struct {
	JobID      int64
	ExternalID int64
	Title      string
	Year       int
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// HealthSummary describes aggregated job counts per lifecycle state.
type HealthSummary struct {
	Total       int
	Downloading int
	Encoding    int
	Done        int
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// CanTransition reports whether moving a record from one status to another
// follows the ordered lifecycle.
func CanTransition(from, to Status) bool {
	prev, ok := transitions[to]
	return ok && prev == from
}
