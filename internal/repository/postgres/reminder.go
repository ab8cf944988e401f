package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/vroo/hr-tracker/internal/model"
	"github.com/vroo/hr-tracker/internal/repository"
)

type reminderRepository struct {
	db *sqlx.DB
}

func NewReminderRepository(db *sqlx.DB) repository.ReminderRepository {
	return &reminderRepository{db: db}
}

// Claim inserts the dedup row. The unique index on
// (scope, candidate_id, scheduled_at, kind) makes the insert the atomic
// claim: zero rows affected means another claimer already holds the key.
func (r *reminderRepository) Claim(ctx context.Context, rec *model.ReminderRecord) (bool, error) {
	rec.CreatedAt = time.Now()

	query := `
		INSERT INTO reminders (scope, candidate_id, scheduled_at, kind, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (scope, candidate_id, scheduled_at, kind) DO NOTHING
	`
	result, err := r.db.ExecContext(ctx, query,
		rec.Scope, rec.CandidateID, rec.ScheduledAt, rec.Kind, rec.CreatedAt, rec.ExpiresAt)
	if err != nil {
		return false, fmt.Errorf("failed to claim reminder: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *reminderRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reminders WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to purge reminders: %w", err)
	}
	return result.RowsAffected()
}
