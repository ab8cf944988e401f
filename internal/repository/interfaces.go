package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vroo/hr-tracker/internal/model"
)

// All repository interfaces in one file
type (
	// CandidateRepository handles candidate and interview storage.
	CandidateRepository interface {
		Create(ctx context.Context, candidate *model.Candidate) error
		Get(ctx context.Context, id uuid.UUID) (*model.Candidate, error)
		GetByEmail(ctx context.Context, email string) (*model.Candidate, error)
		Update(ctx context.Context, candidate *model.Candidate) error
		// UpdateWithInterviews commits the candidate row and its interview
		// list in one transaction; a failed update leaves both untouched.
		UpdateWithInterviews(ctx context.Context, candidate *model.Candidate, interviews []model.Interview) error
		ReplaceInterviews(ctx context.Context, candidateID uuid.UUID, interviews []model.Interview) error
		List(ctx context.Context, p model.Pagination) ([]*model.Candidate, int64, error)
		// FindWithImminentHeadInterview returns candidates in status
		// not_held/reserve whose head interview is scheduled within
		// [from, to], with the head interview loaded.
		FindWithImminentHeadInterview(ctx context.Context, from, to time.Time) ([]*model.Candidate, error)
	}

	EmployeeRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Employee, error)
		Update(ctx context.Context, employee *model.Employee) error
		List(ctx context.Context, p model.Pagination) ([]*model.Employee, int64, error)
		// UpsertForCandidate inserts or updates the employee matched by
		// candidate back-reference or by email, whichever exists first.
		UpsertForCandidate(ctx context.Context, employee *model.Employee) error
		DeleteByCandidate(ctx context.Context, candidateID uuid.UUID) (int64, error)
		DeleteByEmail(ctx context.Context, email string) (int64, error)
		ListWithBirthdays(ctx context.Context) ([]*model.Employee, error)
	}

	SubscriberRepository interface {
		Upsert(ctx context.Context, sub *model.Subscriber) error
		SetEnabled(ctx context.Context, chatID int64, enabled bool) error
		ListEnabled(ctx context.Context) ([]*model.Subscriber, error)
	}

	// ReminderRepository is the dedup store. Claim creates the uniquely
	// keyed record; false means another claimer won the race.
	ReminderRepository interface {
		Claim(ctx context.Context, rec *model.ReminderRecord) (bool, error)
		PurgeExpired(ctx context.Context, now time.Time) (int64, error)
	}

	// JobStateRepository persists the last-fired local-day key per daily job.
	JobStateRepository interface {
		GetLastRun(ctx context.Context, jobName string) (string, error)
		SetLastRun(ctx context.Context, jobName, dayKey string) error
	}
)
