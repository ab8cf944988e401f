package postgres

import (
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/vroo/hr-tracker/internal/config"
	apperrors "github.com/vroo/hr-tracker/pkg/errors"
)

// NewDB opens a postgres connection pool.
func NewDB(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

const uniqueViolation = "23505"

// conflictOn maps a unique-constraint violation to a ConflictError and
// leaves everything else untouched.
func conflictOn(err error, message string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return apperrors.Conflict(message, err)
	}
	return err
}
