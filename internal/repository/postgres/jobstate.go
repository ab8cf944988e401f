package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/vroo/hr-tracker/internal/repository"
)

type jobStateRepository struct {
	db *sqlx.DB
}

func NewJobStateRepository(db *sqlx.DB) repository.JobStateRepository {
	return &jobStateRepository{db: db}
}

// GetLastRun returns the last-fired local-day key for the job, or "" when
// the job never fired.
func (r *jobStateRepository) GetLastRun(ctx context.Context, jobName string) (string, error) {
	var key string
	err := r.db.GetContext(ctx, &key,
		`SELECT last_day_key FROM job_state WHERE job_name = $1`, jobName)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get job state: %w", err)
	}
	return key, nil
}

func (r *jobStateRepository) SetLastRun(ctx context.Context, jobName, dayKey string) error {
	query := `
		INSERT INTO job_state (job_name, last_day_key, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (job_name) DO UPDATE
		SET last_day_key = EXCLUDED.last_day_key, updated_at = EXCLUDED.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, jobName, dayKey, time.Now()); err != nil {
		return fmt.Errorf("failed to set job state: %w", err)
	}
	return nil
}
