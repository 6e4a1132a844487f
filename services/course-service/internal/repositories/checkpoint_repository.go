package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type checkpointRepository struct {
	db *sql.DB
}

// NewCheckpointRepository creates a repository of completed job steps
func NewCheckpointRepository(db *sql.DB) *checkpointRepository {
	return &checkpointRepository{db: db}
}

// Get returns the stored output of a completed step
func (r *checkpointRepository) Get(ctx context.Context, eventID, step string) ([]byte, bool, error) {
	query := `SELECT output FROM job_step_checkpoints WHERE event_id = ? AND step_name = ? LIMIT 1`

	var output []byte
	err := r.db.QueryRowContext(ctx, query, eventID, step).Scan(&output)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get checkpoint: %w", err)
	}

	return output, true, nil
}

// Save records the output of a completed step. Saving the same step twice keeps the latest output.
func (r *checkpointRepository) Save(ctx context.Context, eventID, step string, output []byte) error {
	query := `
		INSERT INTO job_step_checkpoints (event_id, step_name, output)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE output = VALUES(output)
	`

	if _, err := r.db.ExecContext(ctx, query, eventID, step, output); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	return nil
}

// DeleteOlderThan removes checkpoints created before the given time
func (r *checkpointRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	query := `DELETE FROM job_step_checkpoints WHERE created_at < ?`

	result, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete checkpoints: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return affected, nil
}
