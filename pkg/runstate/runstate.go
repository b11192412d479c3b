// Package runstate tracks which tasks a run has already completed so an
// aborted batch can resume without regenerating answers.
package runstate

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store records completed task IDs in a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the run state database at dbPath.
// The dbPath can be a file path or ":memory:" for an in-memory database.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

// migrate creates the necessary tables if they don't exist.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS completed (
		task_id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		completed_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// MarkDone records a completed task. Marking the same task twice is a no-op.
func (s *Store) MarkDone(ctx context.Context, taskID, runID string) error {
	if taskID == "" {
		return fmt.Errorf("cannot mark empty task id")
	}

	query := `INSERT OR IGNORE INTO completed (task_id, run_id) VALUES (?, ?)`

	if _, err := s.db.ExecContext(ctx, query, taskID, runID); err != nil {
		return fmt.Errorf("failed to record completion: %w", err)
	}

	return nil
}

// IsDone reports whether a task has already been completed.
func (s *Store) IsDone(ctx context.Context, taskID string) (bool, error) {
	query := `SELECT COUNT(1) FROM completed WHERE task_id = ?`

	var count int
	if err := s.db.QueryRowContext(ctx, query, taskID).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to query completion: %w", err)
	}

	return count > 0, nil
}

// CompletedIDs returns the set of completed task IDs.
func (s *Store) CompletedIDs(ctx context.Context) (map[string]bool, error) {
	query := `SELECT task_id FROM completed`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list completions: %w", err)
	}
	defer rows.Close()

	completed := make(map[string]bool)

	for rows.Next() {
		var taskID string
		if err := rows.Scan(&taskID); err != nil {
			return nil, fmt.Errorf("failed to scan completion: %w", err)
		}

		completed[taskID] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate completions: %w", err)
	}

	return completed, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
