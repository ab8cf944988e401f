package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/vroo/hr-tracker/internal/model"
	"github.com/vroo/hr-tracker/internal/repository"
	apperrors "github.com/vroo/hr-tracker/pkg/errors"
)

type candidateRepository struct {
	db *sqlx.DB
}

func NewCandidateRepository(db *sqlx.DB) repository.CandidateRepository {
	return &candidateRepository{db: db}
}

const candidateColumns = `
	id, full_name, email, phone, notes, status, meet_link, department, position,
	polygraph_at, accepted_at, declined_at, canceled_at, polygraph_address,
	created_at, updated_at
`

func (r *candidateRepository) Create(ctx context.Context, candidate *model.Candidate) error {
	candidate.ID = uuid.New()
	candidate.CreatedAt = time.Now()
	candidate.UpdatedAt = time.Now()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO candidates (` + candidateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err = tx.ExecContext(ctx, query,
		candidate.ID,
		candidate.FullName,
		candidate.Email,
		candidate.Phone,
		candidate.Notes,
		candidate.Status,
		candidate.MeetLink,
		candidate.Department,
		candidate.Position,
		candidate.PolygraphAt,
		candidate.AcceptedAt,
		candidate.DeclinedAt,
		candidate.CanceledAt,
		candidate.PolygraphAddress,
		candidate.CreatedAt,
		candidate.UpdatedAt,
	)
	if err != nil {
		if conflict := conflictOn(err, "email already exists"); conflict != err {
			return conflict
		}
		return fmt.Errorf("failed to create candidate: %w", err)
	}

	if len(candidate.Interviews) > 0 {
		if err := replaceInterviews(ctx, tx, candidate.ID, candidate.Interviews); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *candidateRepository) Get(ctx context.Context, id uuid.UUID) (*model.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE id = $1`

	var candidate model.Candidate
	err := r.db.GetContext(ctx, &candidate, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("candidate", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}

	if err := r.loadInterviews(ctx, &candidate); err != nil {
		return nil, err
	}
	return &candidate, nil
}

func (r *candidateRepository) GetByEmail(ctx context.Context, email string) (*model.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE email = $1`

	var candidate model.Candidate
	err := r.db.GetContext(ctx, &candidate, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("candidate", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get candidate by email: %w", err)
	}

	if err := r.loadInterviews(ctx, &candidate); err != nil {
		return nil, err
	}
	return &candidate, nil
}

func (r *candidateRepository) Update(ctx context.Context, candidate *model.Candidate) error {
	return updateCandidate(ctx, r.db, candidate)
}

// UpdateWithInterviews commits the candidate row and its interview list in
// one transaction, so a failed update cannot leave a fresh interview list
// against the old row.
func (r *candidateRepository) UpdateWithInterviews(ctx context.Context, candidate *model.Candidate, interviews []model.Interview) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := updateCandidate(ctx, tx, candidate); err != nil {
		return err
	}
	if err := replaceInterviews(ctx, tx, candidate.ID, interviews); err != nil {
		return err
	}
	return tx.Commit()
}

func updateCandidate(ctx context.Context, ext sqlx.ExtContext, candidate *model.Candidate) error {
	candidate.UpdatedAt = time.Now()

	query := `
		UPDATE candidates
		SET full_name = $1, email = $2, phone = $3, notes = $4, status = $5,
			meet_link = $6, department = $7, position = $8,
			polygraph_at = $9, accepted_at = $10, declined_at = $11, canceled_at = $12,
			polygraph_address = $13, updated_at = $14
		WHERE id = $15
	`
	result, err := ext.ExecContext(ctx, query,
		candidate.FullName,
		candidate.Email,
		candidate.Phone,
		candidate.Notes,
		candidate.Status,
		candidate.MeetLink,
		candidate.Department,
		candidate.Position,
		candidate.PolygraphAt,
		candidate.AcceptedAt,
		candidate.DeclinedAt,
		candidate.CanceledAt,
		candidate.PolygraphAddress,
		candidate.UpdatedAt,
		candidate.ID,
	)
	if err != nil {
		if conflict := conflictOn(err, "email already exists"); conflict != err {
			return conflict
		}
		return fmt.Errorf("failed to update candidate: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("candidate", nil)
	}
	return nil
}

func (r *candidateRepository) ReplaceInterviews(ctx context.Context, candidateID uuid.UUID, interviews []model.Interview) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := replaceInterviews(ctx, tx, candidateID, interviews); err != nil {
		return err
	}
	return tx.Commit()
}

func replaceInterviews(ctx context.Context, ext sqlx.ExtContext, candidateID uuid.UUID, interviews []model.Interview) error {
	if _, err := ext.ExecContext(ctx, `DELETE FROM interviews WHERE candidate_id = $1`, candidateID); err != nil {
		return fmt.Errorf("failed to clear interviews: %w", err)
	}

	query := `
		INSERT INTO interviews (
			id, candidate_id, position, scheduled_at, duration_minutes,
			participants, meet_link, status, source, calendar_event_id,
			jira_issue_id, notes, reminded
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	for i := range interviews {
		itw := &interviews[i]
		if itw.ID == uuid.Nil {
			itw.ID = uuid.New()
		}
		itw.CandidateID = candidateID
		itw.Position = i

		_, err := ext.ExecContext(ctx, query,
			itw.ID,
			itw.CandidateID,
			itw.Position,
			itw.ScheduledAt,
			itw.DurationMinutes,
			itw.Participants,
			itw.MeetLink,
			itw.Status,
			itw.Source,
			itw.CalendarEventID,
			itw.JiraIssueID,
			itw.Notes,
			itw.Reminded,
		)
		if err != nil {
			return fmt.Errorf("failed to insert interview: %w", err)
		}
	}
	return nil
}

func (r *candidateRepository) List(ctx context.Context, p model.Pagination) ([]*model.Candidate, int64, error) {
	p.Clamp()

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM candidates`); err != nil {
		return nil, 0, fmt.Errorf("failed to count candidates: %w", err)
	}

	query := `
		SELECT ` + candidateColumns + `
		FROM candidates
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	var candidates []*model.Candidate
	if err := r.db.SelectContext(ctx, &candidates, query, p.PageSize, (p.Page-1)*p.PageSize); err != nil {
		return nil, 0, fmt.Errorf("failed to list candidates: %w", err)
	}

	for _, c := range candidates {
		if err := r.loadInterviews(ctx, c); err != nil {
			return nil, 0, err
		}
	}
	return candidates, total, nil
}

func (r *candidateRepository) FindWithImminentHeadInterview(ctx context.Context, from, to time.Time) ([]*model.Candidate, error) {
	query := `
		SELECT ` + candidateColumns + `
		FROM candidates c
		WHERE c.status IN ($1, $2)
		AND EXISTS (
			SELECT 1 FROM interviews i
			WHERE i.candidate_id = c.id
			AND i.position = 0
			AND i.scheduled_at BETWEEN $3 AND $4
		)
	`
	var candidates []*model.Candidate
	err := r.db.SelectContext(ctx, &candidates, query,
		model.StatusNotHeld, model.StatusReserve, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to find imminent interviews: %w", err)
	}

	for _, c := range candidates {
		if err := r.loadInterviews(ctx, c); err != nil {
			return nil, err
		}
	}
	return candidates, nil
}

func (r *candidateRepository) loadInterviews(ctx context.Context, candidate *model.Candidate) error {
	query := `
		SELECT id, candidate_id, position, scheduled_at, duration_minutes,
			   participants, meet_link, status, source, calendar_event_id,
			   jira_issue_id, notes, reminded
		FROM interviews
		WHERE candidate_id = $1
		ORDER BY position ASC
	`
	if err := r.db.SelectContext(ctx, &candidate.Interviews, query, candidate.ID); err != nil {
		return fmt.Errorf("failed to load interviews: %w", err)
	}
	return nil
}
