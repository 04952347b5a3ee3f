package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/slscljs/internal/foundation/errors"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// OpenSQLite opens (and creates if needed) the ledger at dbPath.
// Use ":memory:" for an in-memory database.
func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, errors.HistoryError("create history directory").WithCause(err).
				WithContext("path", dbPath).Build()
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.HistoryError("open history database").WithCause(err).
			WithContext("path", dbPath).Build()
	}
	// A single connection keeps ":memory:" databases alive across calls.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, errors.HistoryError("initialize history schema").WithCause(err).
			WithContext("path", dbPath).Build()
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS invocations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		invocation_id TEXT NOT NULL,
		event TEXT NOT NULL,
		service TEXT NOT NULL,
		function TEXT NOT NULL DEFAULT '',
		artifact TEXT NOT NULL,
		revision TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		functions_built INTEGER NOT NULL DEFAULT 0,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_invocations_started ON invocations(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append records one invocation.
func (s *SQLiteStore) Append(ctx context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.StartedAt.IsZero() {
		e.StartedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO invocations (invocation_id, event, service, function, artifact, revision, status, error, functions_built, started_at, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.InvocationID, e.Event, e.Service, e.Function, e.Artifact, e.Revision, e.Status, e.Error,
		e.FunctionsBuilt, e.StartedAt.UnixMilli(), e.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert invocation: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, invocation_id, event, service, function, artifact, revision, status, error, functions_built, started_at, duration_ms
		 FROM invocations ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query invocations: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var startedMS, durationMS int64
		if err := rows.Scan(&e.ID, &e.InvocationID, &e.Event, &e.Service, &e.Function, &e.Artifact,
			&e.Revision, &e.Status, &e.Error, &e.FunctionsBuilt, &startedMS, &durationMS); err != nil {
			return nil, fmt.Errorf("scan invocation: %w", err)
		}
		e.StartedAt = time.UnixMilli(startedMS)
		e.Duration = time.Duration(durationMS) * time.Millisecond
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
