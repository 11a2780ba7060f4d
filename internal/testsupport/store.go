package testsupport

import (
	"context"
	"testing"

	"irilis/internal/config"
	"irilis/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// InsertJob creates a job record for tests using the provided store.
func InsertJob(t testing.TB, store *queue.Store, jobID, externalID int64, title string, year int, status queue.Status) *queue.Item {
	t.Helper()

	item := &queue.Item{
		JobID:      jobID,
		ExternalID: externalID,
		Title:      title,
		Year:       year,
		Status:     status,
	}
	if err := store.Insert(context.Background(), item); err != nil {
		t.Fatalf("store.Insert: %v", err)
	}
	return item
}
