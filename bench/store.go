package bench

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// ErrRunNotFound indicates no recorded run matches the query.
var ErrRunNotFound = errors.New("bench: run not found")

// Store keeps benchmark run history in SQLite so regressions show up
// across invocations.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// OpenStore opens (creating if needed) the history database.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("bench: opening history database: %w", err)
	}

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("bench: setting busy timeout: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at INTEGER NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("bench: creating runs table: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS results (
		run_id     INTEGER NOT NULL REFERENCES runs(id),
		scenario   TEXT    NOT NULL,
		iterations INTEGER NOT NULL,
		total_ns   INTEGER NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("bench: creating results table: %w", err)
	}

	return &Store{db: db}, nil
}

// RecordRun stores one run's results and returns the run ID.
func (s *Store) RecordRun(createdAt time.Time, results []Result) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("bench: begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec("INSERT INTO runs (created_at) VALUES (?)", createdAt.Unix())
	if err != nil {
		return 0, fmt.Errorf("bench: insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("bench: run id: %w", err)
	}

	for _, r := range results {
		if _, err := tx.Exec(
			"INSERT INTO results (run_id, scenario, iterations, total_ns) VALUES (?, ?, ?, ?)",
			runID, r.Scenario, r.Iterations, r.Elapsed.Nanoseconds(),
		); err != nil {
			return 0, fmt.Errorf("bench: insert result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("bench: commit run: %w", err)
	}
	return runID, nil
}

// LastResult returns the most recently recorded result for a scenario.
func (s *Store) LastResult(scenario string) (Result, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRow(`
		SELECT r.iterations, r.total_ns, runs.created_at
		FROM results r JOIN runs ON runs.id = r.run_id
		WHERE r.scenario = ?
		ORDER BY runs.created_at DESC, r.run_id DESC
		LIMIT 1`, scenario)

	var iterations int
	var totalNs, createdAt int64
	if err := row.Scan(&iterations, &totalNs, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Result{}, time.Time{}, fmt.Errorf("%w: %s", ErrRunNotFound, scenario)
		}
		return Result{}, time.Time{}, fmt.Errorf("bench: query last result: %w", err)
	}

	return Result{
		Scenario:   scenario,
		Iterations: iterations,
		Elapsed:    time.Duration(totalNs),
	}, time.Unix(createdAt, 0), nil
}

// RunCount returns the number of recorded runs.
func (s *Store) RunCount() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&n); err != nil {
		return 0, fmt.Errorf("bench: count runs: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
