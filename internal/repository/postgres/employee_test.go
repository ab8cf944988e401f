package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vroo/hr-tracker/internal/model"
	apperrors "github.com/vroo/hr-tracker/pkg/errors"
)

func TestEmployeeUpsert_EmailUniqueViolationMapsToConflict(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEmployeeRepository(db)

	mock.ExpectQuery("SELECT id FROM employees").
		WillReturnRows(sqlmock.NewRows([]string{"id"})) // no match, insert path

	mock.ExpectExec("INSERT INTO employees").
		WillReturnError(&pq.Error{Code: "23505"})

	candID := uuid.New()
	err := repo.UpsertForCandidate(context.Background(), &model.Employee{
		CandidateID: &candID,
		FullName:    "Jane Roe",
		Email:       "jane@example.com",
		HiredAt:     time.Now(),
	})

	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

// When one row matches by back-reference and another by email, the match
// query must rank the back-reference row first, not order by UUID bytes.
func TestEmployeeUpsert_BackReferenceMatchRankedFirst(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEmployeeRepository(db)

	existingID := uuid.New()
	mock.ExpectQuery(`SELECT id FROM employees WHERE candidate_id = \$1 OR email = \$2 ORDER BY \(candidate_id = \$1\) DESC NULLS LAST LIMIT 1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(existingID.String()))

	mock.ExpectExec("UPDATE employees").
		WillReturnResult(sqlmock.NewResult(0, 1))

	candID := uuid.New()
	emp := &model.Employee{
		CandidateID: &candID,
		FullName:    "Jane Roe",
		Email:       "jane@example.com",
		HiredAt:     time.Now(),
	}
	require.NoError(t, repo.UpsertForCandidate(context.Background(), emp))
	assert.Equal(t, existingID, emp.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
