// Package state persists build history. One row per completed build;
// the most recent row backs the "last built" queries used by the CLI
// and the preview server's status output.
package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// BuildRecord is one persisted build outcome.
type BuildRecord struct {
	BuildID   string
	StartedAt time.Time
	Duration  time.Duration
	Artifacts int
	Failed    int
}

// Store is a SQLite-backed build history store.
// Use ":memory:" for an in-memory database, or a file path for
// persistent storage.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// NewStore opens (or creates) the store at dbPath.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		build_id TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		artifacts INTEGER NOT NULL,
		failed INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_builds_started_at ON builds(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// RecordBuild appends one build outcome.
func (s *Store) RecordBuild(ctx context.Context, rec BuildRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO builds (build_id, started_at, duration_ms, artifacts, failed) VALUES (?, ?, ?, ?, ?)",
		rec.BuildID, rec.StartedAt.UnixMilli(), rec.Duration.Milliseconds(), rec.Artifacts, rec.Failed,
	)
	if err != nil {
		return fmt.Errorf("insert build record: %w", err)
	}
	return nil
}

// LastBuild returns the most recent build record, or nil when the store
// is empty.
func (s *Store) LastBuild(ctx context.Context) (*BuildRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT build_id, started_at, duration_ms, artifacts, failed FROM builds ORDER BY id DESC LIMIT 1")

	var rec BuildRecord
	var startedAt, durationMS int64
	err := row.Scan(&rec.BuildID, &startedAt, &durationMS, &rec.Artifacts, &rec.Failed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query last build: %w", err)
	}
	rec.StartedAt = time.UnixMilli(startedAt)
	rec.Duration = time.Duration(durationMS) * time.Millisecond
	return &rec, nil
}

// BuildCount returns the number of recorded builds.
func (s *Store) BuildCount(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM builds").Scan(&n); err != nil {
		return 0, fmt.Errorf("count builds: %w", err)
	}
	return n, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }
