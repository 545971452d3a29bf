// Package history persists build runs and per-build events in SQLite. It is
// an operational audit trail: builds append to it, the daemon and CLI query
// it, and content resolution never reads from it.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	ferrors "github.com/docpress/docpress/internal/foundation/errors"
	"github.com/docpress/docpress/internal/manifest"
)

// ErrBuildNotFound indicates the requested build ID has no history record.
var ErrBuildNotFound = errors.New("build not found in history")

// Store is a SQLite-backed build history.
type Store struct {
	db *sql.DB
}

// Open opens (and initializes) the history database. Use ":memory:" for an
// in-memory store, or a file path for persistent history.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, ferrors.HistoryError("could not open history database").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	// Single connection: serializes writers and keeps :memory: databases
	// from fragmenting across pooled connections.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, ferrors.HistoryError("failed to initialize history schema").
			WithCause(err).
			Build()
	}
	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		finished_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		status TEXT NOT NULL,
		routes INTEGER NOT NULL,
		documents INTEGER NOT NULL,
		broken_links INTEGER NOT NULL,
		manifest BLOB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_builds_started ON builds(started_at);

	CREATE TABLE IF NOT EXISTS build_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		build_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		detail TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_build_events_build ON build_events(build_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// BuildRecord is one persisted build run.
type BuildRecord struct {
	ID          string
	StartedAt   time.Time
	FinishedAt  time.Time
	DurationMS  int64
	Status      manifest.Status
	Routes      int
	Documents   int
	BrokenLinks int
	Manifest    *manifest.BuildManifest
}

// Event is one persisted per-build event.
type Event struct {
	ID        int64
	BuildID   string
	Type      string
	Timestamp time.Time
	Detail    string
}

// RecordBuild persists a finished build run. Recording the same build ID
// again replaces the earlier row.
func (s *Store) RecordBuild(ctx context.Context, m *manifest.BuildManifest) error {
	raw, err := m.ToJSON()
	if err != nil {
		return ferrors.HistoryError("failed to serialize manifest").WithCause(err).Build()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO builds
		 (id, started_at, finished_at, duration_ms, status, routes, documents, broken_links, manifest)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.StartedAt.Unix(), m.FinishedAt.Unix(), m.Duration, string(m.Status),
		m.Counts.Routes, m.Counts.Documents, m.Counts.BrokenLinks, raw,
	)
	if err != nil {
		return ferrors.HistoryError("failed to record build").
			WithCause(err).
			WithContext("build_id", m.ID).
			Build()
	}
	return nil
}

// AppendEvent adds one event to a build's trail.
func (s *Store) AppendEvent(ctx context.Context, buildID, eventType, detail string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO build_events (build_id, event_type, timestamp, detail) VALUES (?, ?, ?, ?)",
		buildID, eventType, time.Now().Unix(), detail,
	)
	if err != nil {
		return ferrors.HistoryError("failed to append build event").
			WithCause(err).
			WithContext("build_id", buildID).
			Build()
	}
	return nil
}

// Build retrieves one build run by ID, including its full manifest.
func (s *Store) Build(ctx context.Context, buildID string) (*BuildRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, finished_at, duration_ms, status, routes, documents, broken_links, manifest
		 FROM builds WHERE id = ?`, buildID)

	rec, err := scanBuild(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrBuildNotFound, buildID)
	}
	if err != nil {
		return nil, ferrors.HistoryError("failed to load build").
			WithCause(err).
			WithContext("build_id", buildID).
			Build()
	}
	return rec, nil
}

// RecentBuilds returns the most recent build runs, newest first.
func (s *Store) RecentBuilds(ctx context.Context, limit int) ([]BuildRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, duration_ms, status, routes, documents, broken_links, manifest
		 FROM builds ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, ferrors.HistoryError("failed to query builds").WithCause(err).Build()
	}
	defer rows.Close()

	var records []BuildRecord
	for rows.Next() {
		rec, err := scanBuild(rows.Scan)
		if err != nil {
			return nil, ferrors.HistoryError("failed to scan build row").WithCause(err).Build()
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, ferrors.HistoryError("failed to iterate build rows").WithCause(err).Build()
	}
	return records, nil
}

// Events retrieves the event trail of one build in append order.
func (s *Store) Events(ctx context.Context, buildID string) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, build_id, event_type, timestamp, detail FROM build_events WHERE build_id = ? ORDER BY id",
		buildID)
	if err != nil {
		return nil, ferrors.HistoryError("failed to query build events").
			WithCause(err).
			WithContext("build_id", buildID).
			Build()
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var ts int64
		var detail sql.NullString
		if err := rows.Scan(&e.ID, &e.BuildID, &e.Type, &ts, &detail); err != nil {
			return nil, ferrors.HistoryError("failed to scan event row").WithCause(err).Build()
		}
		e.Timestamp = time.Unix(ts, 0).UTC()
		e.Detail = detail.String
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, ferrors.HistoryError("failed to iterate event rows").WithCause(err).Build()
	}
	return events, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func scanBuild(scan func(dest ...any) error) (*BuildRecord, error) {
	var rec BuildRecord
	var started, finished int64
	var status string
	var raw []byte

	err := scan(&rec.ID, &started, &finished, &rec.DurationMS, &status,
		&rec.Routes, &rec.Documents, &rec.BrokenLinks, &raw)
	if err != nil {
		return nil, err
	}

	rec.StartedAt = time.Unix(started, 0).UTC()
	rec.FinishedAt = time.Unix(finished, 0).UTC()
	rec.Status = manifest.Status(status)

	m, err := manifest.FromJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("decode stored manifest: %w", err)
	}
	rec.Manifest = m
	return &rec, nil
}
