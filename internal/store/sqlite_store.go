package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface backed by a single SQLite
// database file. Checkpoints are stored as JSON payloads keyed by job ID,
// with the listing columns duplicated for queries that must not decode
// every payload.
//
// Thread-safety: database/sql serializes access through its connection
// pool; no additional locking is needed.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and ensures the
// schema exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS checkpoints (
			job_id TEXT PRIMARY KEY,
			best_cost REAL NOT NULL,
			generation INTEGER NOT NULL,
			created_at TEXT NOT NULL,
			function TEXT NOT NULL,
			optimizer TEXT NOT NULL,
			dimensions INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveCheckpoint upserts the checkpoint for the given job.
func (s *SQLiteStore) SaveCheckpoint(jobID string, checkpoint *Checkpoint) error {
	if jobID == "" {
		return fmt.Errorf("jobID cannot be empty")
	}
	if checkpoint == nil {
		return fmt.Errorf("checkpoint cannot be nil")
	}
	if err := checkpoint.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid checkpoint: %w", err)
	}

	payload, err := json.Marshal(checkpoint)
	if err != nil {
		return fmt.Errorf("failed to serialize checkpoint: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO checkpoints (job_id, best_cost, generation, created_at, function, optimizer, dimensions, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(job_id) DO UPDATE SET
			best_cost = excluded.best_cost,
			generation = excluded.generation,
			created_at = excluded.created_at,
			function = excluded.function,
			optimizer = excluded.optimizer,
			dimensions = excluded.dimensions,
			payload = excluded.payload
	`, jobID, checkpoint.BestCost, checkpoint.Generation,
		checkpoint.Timestamp.Format(time.RFC3339Nano),
		checkpoint.Config.Function, checkpoint.Config.Optimizer, checkpoint.Config.Dimensions,
		payload)
	if err != nil {
		return fmt.Errorf("failed to upsert checkpoint: %w", err)
	}

	slog.Debug("Checkpoint saved", "jobID", jobID, "backend", "sqlite", "generation", checkpoint.Generation)
	return nil
}

// LoadCheckpoint retrieves the checkpoint for the given job.
func (s *SQLiteStore) LoadCheckpoint(jobID string) (*Checkpoint, error) {
	if jobID == "" {
		return nil, fmt.Errorf("jobID cannot be empty")
	}

	var payload []byte
	err := s.db.QueryRow(`SELECT payload FROM checkpoints WHERE job_id = ?`, jobID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{JobID: jobID}
	} else if err != nil {
		return nil, fmt.Errorf("failed to query checkpoint: %w", err)
	}

	var checkpoint Checkpoint
	if err := json.Unmarshal(payload, &checkpoint); err != nil {
		return nil, fmt.Errorf("failed to deserialize checkpoint: %w", err)
	}
	return &checkpoint, nil
}

// ListCheckpoints returns metadata for all stored checkpoints without
// decoding payloads.
func (s *SQLiteStore) ListCheckpoints() ([]CheckpointInfo, error) {
	rows, err := s.db.Query(`
		SELECT job_id, best_cost, generation, created_at, function, optimizer, dimensions
		FROM checkpoints
		ORDER BY job_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query checkpoints: %w", err)
	}
	defer rows.Close()

	infos := []CheckpointInfo{}
	for rows.Next() {
		var info CheckpointInfo
		var createdAt string
		if err := rows.Scan(&info.JobID, &info.BestCost, &info.Generation, &createdAt,
			&info.Function, &info.Optimizer, &info.Dimensions); err != nil {
			return nil, fmt.Errorf("failed to scan checkpoint row: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			slog.Warn("Malformed checkpoint timestamp", "jobID", info.JobID, "value", createdAt)
		} else {
			info.Timestamp = ts
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate checkpoint rows: %w", err)
	}
	return infos, nil
}

// DeleteCheckpoint removes the checkpoint for the given job.
func (s *SQLiteStore) DeleteCheckpoint(jobID string) error {
	if jobID == "" {
		return fmt.Errorf("jobID cannot be empty")
	}

	res, err := s.db.Exec(`DELETE FROM checkpoints WHERE job_id = ?`, jobID)
	if err != nil {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return &NotFoundError{JobID: jobID}
	}

	slog.Debug("Checkpoint deleted", "jobID", jobID, "backend", "sqlite")
	return nil
}
