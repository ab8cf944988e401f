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

type employeeRepository struct {
	db *sqlx.DB
}

func NewEmployeeRepository(db *sqlx.DB) repository.EmployeeRepository {
	return &employeeRepository{db: db}
}

const employeeColumns = `
	id, candidate_id, full_name, email, phone, birthday_at, department,
	position, notes, hired_at, terminated_at, created_at, updated_at
`

func (r *employeeRepository) Get(ctx context.Context, id uuid.UUID) (*model.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`

	var employee model.Employee
	err := r.db.GetContext(ctx, &employee, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("employee", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return &employee, nil
}

func (r *employeeRepository) Update(ctx context.Context, employee *model.Employee) error {
	employee.UpdatedAt = time.Now()

	query := `
		UPDATE employees
		SET full_name = $1, email = $2, phone = $3, birthday_at = $4,
			department = $5, position = $6, notes = $7, hired_at = $8,
			terminated_at = $9, updated_at = $10
		WHERE id = $11
	`
	result, err := r.db.ExecContext(ctx, query,
		employee.FullName,
		employee.Email,
		employee.Phone,
		employee.BirthdayAt,
		employee.Department,
		employee.Position,
		employee.Notes,
		employee.HiredAt,
		employee.TerminatedAt,
		employee.UpdatedAt,
		employee.ID,
	)
	if err != nil {
		if conflict := conflictOn(err, "email already exists"); conflict != err {
			return conflict
		}
		return fmt.Errorf("failed to update employee: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("employee", nil)
	}
	return nil
}

func (r *employeeRepository) List(ctx context.Context, p model.Pagination) ([]*model.Employee, int64, error) {
	p.Clamp()

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM employees`); err != nil {
		return nil, 0, fmt.Errorf("failed to count employees: %w", err)
	}

	query := `
		SELECT ` + employeeColumns + `
		FROM employees
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	var employees []*model.Employee
	if err := r.db.SelectContext(ctx, &employees, query, p.PageSize, (p.Page-1)*p.PageSize); err != nil {
		return nil, 0, fmt.Errorf("failed to list employees: %w", err)
	}
	return employees, total, nil
}

// UpsertForCandidate matches by candidate back-reference first, then by
// email. An update that collides with another employee's unique email is
// surfaced as a conflict.
func (r *employeeRepository) UpsertForCandidate(ctx context.Context, employee *model.Employee) error {
	// The back-reference match must win over an email-only match.
	var existingID uuid.UUID
	err := r.db.GetContext(ctx, &existingID,
		`SELECT id FROM employees WHERE candidate_id = $1 OR email = $2 ORDER BY (candidate_id = $1) DESC NULLS LAST LIMIT 1`,
		employee.CandidateID, employee.Email)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		employee.ID = uuid.New()
		employee.CreatedAt = time.Now()
		employee.UpdatedAt = time.Now()

		query := `
			INSERT INTO employees (` + employeeColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		`
		_, err = r.db.ExecContext(ctx, query,
			employee.ID,
			employee.CandidateID,
			employee.FullName,
			employee.Email,
			employee.Phone,
			employee.BirthdayAt,
			employee.Department,
			employee.Position,
			employee.Notes,
			employee.HiredAt,
			employee.TerminatedAt,
			employee.CreatedAt,
			employee.UpdatedAt,
		)
		if err != nil {
			if conflict := conflictOn(err, "employee email already exists"); conflict != err {
				return conflict
			}
			return fmt.Errorf("failed to insert employee: %w", err)
		}
		return nil

	case err != nil:
		return fmt.Errorf("failed to match employee: %w", err)
	}

	employee.ID = existingID
	employee.UpdatedAt = time.Now()

	query := `
		UPDATE employees
		SET candidate_id = $1, full_name = $2, email = $3, phone = $4,
			department = $5, position = $6, notes = $7, hired_at = $8,
			updated_at = $9
		WHERE id = $10
	`
	_, err = r.db.ExecContext(ctx, query,
		employee.CandidateID,
		employee.FullName,
		employee.Email,
		employee.Phone,
		employee.Department,
		employee.Position,
		employee.Notes,
		employee.HiredAt,
		employee.UpdatedAt,
		employee.ID,
	)
	if err != nil {
		if conflict := conflictOn(err, "employee email already exists"); conflict != err {
			return conflict
		}
		return fmt.Errorf("failed to update employee: %w", err)
	}
	return nil
}

func (r *employeeRepository) DeleteByCandidate(ctx context.Context, candidateID uuid.UUID) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM employees WHERE candidate_id = $1`, candidateID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete employee by candidate: %w", err)
	}
	return result.RowsAffected()
}

func (r *employeeRepository) DeleteByEmail(ctx context.Context, email string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM employees WHERE email = $1`, email)
	if err != nil {
		return 0, fmt.Errorf("failed to delete employee by email: %w", err)
	}
	return result.RowsAffected()
}

func (r *employeeRepository) ListWithBirthdays(ctx context.Context) ([]*model.Employee, error) {
	query := `
		SELECT ` + employeeColumns + `
		FROM employees
		WHERE birthday_at IS NOT NULL AND terminated_at IS NULL
	`
	var employees []*model.Employee
	if err := r.db.SelectContext(ctx, &employees, query); err != nil {
		return nil, fmt.Errorf("failed to list employees with birthdays: %w", err)
	}
	return employees, nil
}
