package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/vroo/hr-tracker/internal/model"
	"github.com/vroo/hr-tracker/internal/repository"
)

type subscriberRepository struct {
	db *sqlx.DB
}

func NewSubscriberRepository(db *sqlx.DB) repository.SubscriberRepository {
	return &subscriberRepository{db: db}
}

func (r *subscriberRepository) Upsert(ctx context.Context, sub *model.Subscriber) error {
	now := time.Now()
	query := `
		INSERT INTO subscribers (chat_id, username, first_name, last_name, enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (chat_id) DO UPDATE
		SET username = EXCLUDED.username,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			enabled = EXCLUDED.enabled,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		sub.ChatID, sub.Username, sub.FirstName, sub.LastName, sub.Enabled, now)
	if err != nil {
		return fmt.Errorf("failed to upsert subscriber: %w", err)
	}
	return nil
}

func (r *subscriberRepository) SetEnabled(ctx context.Context, chatID int64, enabled bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE subscribers SET enabled = $1, updated_at = $2 WHERE chat_id = $3`,
		enabled, time.Now(), chatID)
	if err != nil {
		return fmt.Errorf("failed to toggle subscriber: %w", err)
	}
	return nil
}

func (r *subscriberRepository) ListEnabled(ctx context.Context) ([]*model.Subscriber, error) {
	query := `
		SELECT chat_id, username, first_name, last_name, enabled, created_at, updated_at
		FROM subscribers
		WHERE enabled = TRUE
		ORDER BY created_at DESC
	`
	var subs []*model.Subscriber
	if err := r.db.SelectContext(ctx, &subs, query); err != nil {
		return nil, fmt.Errorf("failed to list subscribers: %w", err)
	}
	return subs, nil
}
