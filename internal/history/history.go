// Package history persists run outcomes to a SQLite database so status can
// report what the last run did. Every write is best effort: callers log a
// warning on error and carry on.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Run is one orchestrator run.
type Run struct {
	ID        string
	StartedAt time.Time
	Duration  time.Duration
	DryRun    bool
	Succeeded int
	Failed    int
	Skipped   int
	Results   []Result
}

// Result is one adapter outcome within a run.
type Result struct {
	PackageManager string
	Operation      string
	Status         string
	ExitCode       int
	Duration       time.Duration
	Error          string
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	started_at TIMESTAMP NOT NULL,
	duration_ms INTEGER NOT NULL,
	dry_run    INTEGER NOT NULL,
	succeeded  INTEGER NOT NULL,
	failed     INTEGER NOT NULL,
	skipped    INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS results (
	run_id      TEXT NOT NULL REFERENCES runs(id),
	manager     TEXT NOT NULL,
	operation   TEXT NOT NULL,
	status      TEXT NOT NULL,
	exit_code   INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	error       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS results_run_id ON results(run_id);
`

// Store wraps the history database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database in dataDir.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	path := filepath.Join(dataDir, "history.db")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// RecordRun writes one run and its per-manager results in a transaction.
func (s *Store) RecordRun(run Run) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin history transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (id, started_at, duration_ms, dry_run, succeeded, failed, skipped)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UTC(), run.Duration.Milliseconds(),
		boolToInt(run.DryRun), run.Succeeded, run.Failed, run.Skipped,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, res := range run.Results {
		_, err = tx.Exec(
			`INSERT INTO results (run_id, manager, operation, status, exit_code, duration_ms, error)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.ID, res.PackageManager, res.Operation, res.Status,
			res.ExitCode, res.Duration.Milliseconds(), res.Error,
		)
		if err != nil {
			return fmt.Errorf("failed to insert result for %s: %w", res.PackageManager, err)
		}
	}
	return tx.Commit()
}

// LastRun returns the most recent run with its results, or nil when the
// database holds no runs yet.
func (s *Store) LastRun() (*Run, error) {
	row := s.db.QueryRow(
		`SELECT id, started_at, duration_ms, dry_run, succeeded, failed, skipped
		 FROM runs ORDER BY started_at DESC LIMIT 1`)

	var run Run
	var durationMS int64
	var dryRun int
	err := row.Scan(&run.ID, &run.StartedAt, &durationMS, &dryRun, &run.Succeeded, &run.Failed, &run.Skipped)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read last run: %w", err)
	}
	run.Duration = time.Duration(durationMS) * time.Millisecond
	run.DryRun = dryRun != 0

	rows, err := s.db.Query(
		`SELECT manager, operation, status, exit_code, duration_ms, error
		 FROM results WHERE run_id = ?`, run.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read run results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var res Result
		var resDurationMS int64
		if err := rows.Scan(&res.PackageManager, &res.Operation, &res.Status, &res.ExitCode, &resDurationMS, &res.Error); err != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", err)
		}
		res.Duration = time.Duration(resDurationMS) * time.Millisecond
		run.Results = append(run.Results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate result rows: %w", err)
	}
	return &run, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
