package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store manages the SQLite run-history archive.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the archive at dbPath.
// It enables WAL mode for concurrency and durability.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("schema migration failed: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the runs table if it doesn't exist.
func (s *Store) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		ts TEXT NOT NULL,
		pfail REAL NOT NULL DEFAULT 0,
		mode TEXT NOT NULL DEFAULT '',
		passed INTEGER,
		reason TEXT NOT NULL DEFAULT '',
		summary TEXT NOT NULL DEFAULT '{}'
	);
	CREATE INDEX IF NOT EXISTS idx_runs_kind_ts ON runs(kind, ts);
	`
	_, err := s.db.Exec(query)
	return err
}

// RecordRun appends a run to the archive and returns its row id.
func (s *Store) RecordRun(rec RunRecord) (int64, error) {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	summary := rec.Summary
	if len(summary) == 0 {
		summary = []byte("{}")
	}

	var passed interface{}
	if rec.Passed != nil {
		if *rec.Passed {
			passed = 1
		} else {
			passed = 0
		}
	}

	res, err := s.db.Exec(
		`INSERT INTO runs (kind, ts, pfail, mode, passed, reason, summary) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(rec.Kind),
		rec.Timestamp.UTC().Format(time.RFC3339),
		rec.Pfail,
		rec.Mode,
		passed,
		rec.Reason,
		string(summary),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to record run: %w", err)
	}
	return res.LastInsertId()
}

// ListRuns returns the most recent runs of a kind, newest first.
// An empty kind lists every kind.
func (s *Store) ListRuns(kind RunKind, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, kind, ts, pfail, mode, passed, reason, summary FROM runs`
	args := []interface{}{}
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		var kindStr, ts, summary string
		var passed sql.NullInt64
		if err := rows.Scan(&rec.ID, &kindStr, &ts, &rec.Pfail, &rec.Mode, &passed, &rec.Reason, &summary); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		rec.Kind = RunKind(kindStr)
		rec.Timestamp, err = time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil, fmt.Errorf("failed to parse run timestamp %q: %w", ts, err)
		}
		if passed.Valid {
			v := passed.Int64 == 1
			rec.Passed = &v
		}
		rec.Summary = []byte(summary)
		records = append(records, rec)
	}
	return records, rows.Err()
}
