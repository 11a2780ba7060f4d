package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"irilis/internal/config"
)

// Store manages job record persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the job database and verifies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.LogDir, "jobs.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the location of the database file.
func (s *Store) Path() string {
	return s.path
}

// Insert persists a new job record. The record's status defaults to
// downloading when unset. Returns ErrDuplicateExternalID when a record for
// the same external id already exists.
func (s *Store) Insert(ctx context.Context, item *Item) error {
	if item == nil {
		return errors.New("item is nil")
	}
	if item.Status == "" {
		item.Status = StatusDownloading
	}
	if _, ok := statusSet[item.Status]; !ok {
		return fmt.Errorf("unknown status %q", item.Status)
	}

	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	timestamp := now.Format(time.RFC3339Nano)

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO jobs (job_id, external_id, title, year, status, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.JobID,
		item.ExternalID,
		item.Title,
		item.Year,
		item.Status,
		timestamp,
		timestamp,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("external id %d: %w", item.ExternalID, ErrDuplicateExternalID)
		}
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

// GetByJobID fetches a job record by the download client's identifier.
func (s *Store) GetByJobID(ctx context.Context, jobID int64) (*Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM jobs WHERE job_id = ?`, jobID)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return item, nil
}

// FindByExternalID returns the record for a requested title, or nil.
func (s *Store) FindByExternalID(ctx context.Context, externalID int64) (*Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM jobs WHERE external_id = ?`, externalID)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by external id: %w", err)
	}
	return item, nil
}

// ItemsByStatus returns records matching a status ordered by creation time.
func (s *Store) ItemsByStatus(ctx context.Context, status Status) ([]*Item, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+itemColumns+` FROM jobs WHERE status = ? ORDER BY created_at`, status)
	if err != nil {
		return nil, fmt.Errorf("query by status: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// List returns all job records ordered by creation time.
func (s *Store) List(ctx context.Context) ([]*Item, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+itemColumns+` FROM jobs ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpdateStatus advances a record to the next lifecycle state. It is the only
// mutation entry point after insert. The update is conditional on the
// current status so a record can never skip or regress a state even under
// concurrent readers.
func (s *Store) UpdateStatus(ctx context.Context, jobID int64, next Status) error {
	prev, ok := transitions[next]
	if !ok {
		return fmt.Errorf("status %q: %w", next, ErrInvalidTransition)
	}

	res, err := s.db.ExecContext(
		ctx,
		`UPDATE jobs SET status = ?, updated_at = ? WHERE job_id = ? AND status = ?`,
		next,
		time.Now().UTC().Format(time.RFC3339Nano),
		jobID,
		prev,
	)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	current, err := s.GetByJobID(ctx, jobID)
	if err != nil {
		return err
	}
	if current == nil {
		return fmt.Errorf("job %d: %w", jobID, ErrNotFound)
	}
	return fmt.Errorf("job %d: %s -> %s: %w", jobID, current.Status, next, ErrInvalidTransition)
}

// Stats returns a count of records grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM jobs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("job stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// Health aggregates job counts for diagnostic output.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return HealthSummary{}, err
	}
	health := HealthSummary{}
	for status, count := range stats {
		health.Total += count
		switch status {
		case StatusDownloading:
			health.Downloading += count
		case StatusEncoding:
			health.Encoding += count
		case StatusDone:
			health.Done += count
		}
	}
	return health, nil
}

const itemColumns = "job_id, external_id, title, year, status, created_at, updated_at"

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		jobID      int64
		externalID int64
		title      string
		year       sql.NullInt64
		statusStr  string
		createdRaw string
		updatedRaw string
	)

	if err := scanner.Scan(&jobID, &externalID, &title, &year, &statusStr, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}

	item := &Item{
		JobID:      jobID,
		ExternalID: externalID,
		Title:      title,
		Year:       int(year.Int64),
		Status:     Status(statusStr),
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		item.UpdatedAt = updated
	}
	return item, nil
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
