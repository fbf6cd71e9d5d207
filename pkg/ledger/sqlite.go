package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/covenantcc/crucible/pkg/api"
)

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	correlation_id TEXT PRIMARY KEY,
	status         TEXT NOT NULL,
	updated_at     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS attempts (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	correlation_id TEXT NOT NULL,
	attempt_number INTEGER NOT NULL,
	record_json    TEXT NOT NULL,
	created_at     TEXT NOT NULL,
	UNIQUE (correlation_id, attempt_number)
);
`

// Store persists task status and attempt records in SQLite.
// All methods are safe for concurrent use across tasks.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the ledger database and runs migrations.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open ledger db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordAttempt appends one attempt record for the given task. Attempt
// numbers are unique per task; replaying an already-recorded attempt is
// an error, which catches controller sequencing bugs early.
func (s *Store) RecordAttempt(ctx context.Context, correlationID string, rec api.AttemptRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal attempt record: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO attempts (correlation_id, attempt_number, record_json, created_at)
		 VALUES (?, ?, ?, ?)`,
		correlationID, rec.AttemptNumber, string(data), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

// SetStatus upserts the current loop status for the given task.
func (s *Store) SetStatus(ctx context.Context, correlationID string, status api.TaskStatus) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (correlation_id, status, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(correlation_id) DO UPDATE SET status = excluded.status, updated_at = excluded.updated_at`,
		correlationID, string(status), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert task status: %w", err)
	}
	return nil
}

// Attempts returns the full attempt history for a task, ordered by
// attempt number. A task with no recorded attempts yields an empty slice.
func (s *Store) Attempts(ctx context.Context, correlationID string) ([]api.AttemptRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT record_json FROM attempts WHERE correlation_id = ? ORDER BY attempt_number`,
		correlationID,
	)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var records []api.AttemptRecord
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		var rec api.AttemptRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("unmarshal attempt: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}
	return records, nil
}

// Status returns the recorded loop status for a task, or the empty status
// when the task is unknown.
func (s *Store) Status(ctx context.Context, correlationID string) (api.TaskStatus, error) {
	var status string
	err := s.db.QueryRowContext(ctx,
		`SELECT status FROM tasks WHERE correlation_id = ?`, correlationID,
	).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query task status: %w", err)
	}
	return api.TaskStatus(status), nil
}
