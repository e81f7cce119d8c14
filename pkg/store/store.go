package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"webscan/pkg/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS scans (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at  DATETIME NOT NULL,
	finished_at DATETIME NOT NULL,
	probes      INTEGER NOT NULL,
	found       INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS results (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	scan_id     INTEGER NOT NULL REFERENCES scans(id) ON DELETE CASCADE,
	position    INTEGER NOT NULL,
	host        TEXT NOT NULL,
	port        INTEGER NOT NULL,
	status_code INTEGER NOT NULL,
	title       TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_results_scan ON results(scan_id);
CREATE INDEX IF NOT EXISTS idx_results_target ON results(host, port);
`

// Scan is one recorded run
type Scan struct {
	ID         int64
	StartedAt  time.Time
	FinishedAt time.Time
	Probes     int
	Found      int
}

// Store keeps a history of scans in SQLite
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveScan records a finished scan together with its results, keeping their
// order. It returns the id of the new scan.
func (s *Store) SaveScan(ctx context.Context, started, finished time.Time, probes int, results []models.ProbeResult) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO scans (started_at, finished_at, probes, found) VALUES (?, ?, ?, ?)",
		started.UTC(), finished.UTC(), probes, len(results))
	if err != nil {
		return 0, fmt.Errorf("failed to insert scan: %w", err)
	}
	scanID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get scan id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO results (scan_id, position, host, port, status_code, title) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range results {
		if _, err := stmt.ExecContext(ctx, scanID, i, r.Host, r.Port, r.StatusCode, r.Title); err != nil {
			return 0, fmt.Errorf("failed to insert result %s:%d: %w", r.Host, r.Port, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit scan: %w", err)
	}
	return scanID, nil
}

// Scans lists recorded scans, newest first
func (s *Store) Scans(ctx context.Context, limit int) ([]Scan, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, started_at, finished_at, probes, found FROM scans ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scans: %w", err)
	}
	defer rows.Close()

	var scans []Scan
	for rows.Next() {
		var sc Scan
		if err := rows.Scan(&sc.ID, &sc.StartedAt, &sc.FinishedAt, &sc.Probes, &sc.Found); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		scans = append(scans, sc)
	}
	return scans, rows.Err()
}

// Results returns the results of one scan in their recorded order
func (s *Store) Results(ctx context.Context, scanID int64) ([]models.ProbeResult, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT host, port, status_code, title FROM results WHERE scan_id = ? ORDER BY position", scanID)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	results := make([]models.ProbeResult, 0)
	for rows.Next() {
		var r models.ProbeResult
		if err := rows.Scan(&r.Host, &r.Port, &r.StatusCode, &r.Title); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
