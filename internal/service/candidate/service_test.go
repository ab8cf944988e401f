package candidate

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vroo/hr-tracker/internal/model"
	apperrors "github.com/vroo/hr-tracker/pkg/errors"
	"github.com/vroo/hr-tracker/pkg/logger"
)

type fakeCandidateRepo struct {
	candidates map[uuid.UUID]*model.Candidate
	updateErr  error
}

func newFakeCandidateRepo() *fakeCandidateRepo {
	return &fakeCandidateRepo{candidates: make(map[uuid.UUID]*model.Candidate)}
}

func (f *fakeCandidateRepo) Create(_ context.Context, c *model.Candidate) error {
	c.ID = uuid.New()
	cp := *c
	f.candidates[c.ID] = &cp
	return nil
}

func (f *fakeCandidateRepo) Get(_ context.Context, id uuid.UUID) (*model.Candidate, error) {
	c, ok := f.candidates[id]
	if !ok {
		return nil, apperrors.NotFound("candidate", nil)
	}
	cp := *c
	cp.Interviews = append([]model.Interview(nil), c.Interviews...)
	return &cp, nil
}

func (f *fakeCandidateRepo) GetByEmail(_ context.Context, email string) (*model.Candidate, error) {
	for _, c := range f.candidates {
		if c.Email == email {
			cp := *c
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound("candidate", nil)
}

func (f *fakeCandidateRepo) Update(_ context.Context, c *model.Candidate) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	stored, ok := f.candidates[c.ID]
	if !ok {
		return apperrors.NotFound("candidate", nil)
	}
	interviews := stored.Interviews
	cp := *c
	cp.Interviews = interviews
	f.candidates[c.ID] = &cp
	return nil
}

func (f *fakeCandidateRepo) UpdateWithInterviews(_ context.Context, c *model.Candidate, interviews []model.Interview) error {
	// All-or-nothing, like the transactional implementation.
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.candidates[c.ID]; !ok {
		return apperrors.NotFound("candidate", nil)
	}
	cp := *c
	cp.Interviews = append([]model.Interview(nil), interviews...)
	f.candidates[c.ID] = &cp
	return nil
}

func (f *fakeCandidateRepo) ReplaceInterviews(_ context.Context, id uuid.UUID, interviews []model.Interview) error {
	c, ok := f.candidates[id]
	if !ok {
		return apperrors.NotFound("candidate", nil)
	}
	c.Interviews = append([]model.Interview(nil), interviews...)
	return nil
}

func (f *fakeCandidateRepo) List(_ context.Context, _ model.Pagination) ([]*model.Candidate, int64, error) {
	out := make([]*model.Candidate, 0, len(f.candidates))
	for _, c := range f.candidates {
		out = append(out, c)
	}
	return out, int64(len(out)), nil
}

func (f *fakeCandidateRepo) FindWithImminentHeadInterview(_ context.Context, _, _ time.Time) ([]*model.Candidate, error) {
	return nil, nil
}

type fakeEmployeeRepo struct {
	employees map[uuid.UUID]*model.Employee
	upsertErr error
}

func newFakeEmployeeRepo() *fakeEmployeeRepo {
	return &fakeEmployeeRepo{employees: make(map[uuid.UUID]*model.Employee)}
}

func (f *fakeEmployeeRepo) Get(_ context.Context, id uuid.UUID) (*model.Employee, error) {
	e, ok := f.employees[id]
	if !ok {
		return nil, apperrors.NotFound("employee", nil)
	}
	return e, nil
}

func (f *fakeEmployeeRepo) Update(_ context.Context, e *model.Employee) error {
	f.employees[e.ID] = e
	return nil
}

func (f *fakeEmployeeRepo) List(_ context.Context, _ model.Pagination) ([]*model.Employee, int64, error) {
	return nil, 0, nil
}

func (f *fakeEmployeeRepo) UpsertForCandidate(_ context.Context, e *model.Employee) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	for id, existing := range f.employees {
		sameCandidate := existing.CandidateID != nil && e.CandidateID != nil && *existing.CandidateID == *e.CandidateID
		if sameCandidate || existing.Email == e.Email {
			e.ID = id
			f.employees[id] = e
			return nil
		}
	}
	e.ID = uuid.New()
	f.employees[e.ID] = e
	return nil
}

func (f *fakeEmployeeRepo) DeleteByCandidate(_ context.Context, candidateID uuid.UUID) (int64, error) {
	for id, e := range f.employees {
		if e.CandidateID != nil && *e.CandidateID == candidateID {
			delete(f.employees, id)
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeEmployeeRepo) DeleteByEmail(_ context.Context, email string) (int64, error) {
	for id, e := range f.employees {
		if e.Email == email {
			delete(f.employees, id)
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeEmployeeRepo) ListWithBirthdays(_ context.Context) ([]*model.Employee, error) {
	return nil, nil
}

func strPtr(s string) *string { return &s }

func newTestService(t *testing.T) (*Service, *fakeCandidateRepo, *fakeEmployeeRepo) {
	t.Helper()
	candRepo := newFakeCandidateRepo()
	empRepo := newFakeEmployeeRepo()
	svc := NewService(candRepo, empRepo, logger.Nop())
	return svc, candRepo, empRepo
}

func seedCandidate(t *testing.T, repo *fakeCandidateRepo, status model.Status) *model.Candidate {
	t.Helper()
	cand := &model.Candidate{
		FullName:   "Ivan Petrov",
		Email:      "ivan@example.com",
		Status:     status,
		Department: "Tech",
	}
	require.NoError(t, repo.Create(context.Background(), cand))
	return cand
}

func TestTransitionToSuccess_SetsAcceptedAtOnly(t *testing.T) {
	svc, repo, _ := newTestService(t)
	at := time.Date(2025, 6, 1, 15, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return at }

	cand := seedCandidate(t, repo, model.StatusNotHeld)
	declined := time.Now()
	cand.DeclinedAt = &declined
	require.NoError(t, repo.Update(context.Background(), cand))

	res, err := svc.ApplyStatusTransition(context.Background(), cand.ID, "success")
	require.NoError(t, err)
	require.NoError(t, res.SyncErr)

	got := res.Candidate
	require.NotNil(t, got.AcceptedAt)
	assert.Equal(t, at, *got.AcceptedAt)
	assert.Nil(t, got.DeclinedAt)
	assert.Nil(t, got.CanceledAt)
}

func TestTransitionToSuccess_ExplicitTimestampWins(t *testing.T) {
	svc, repo, _ := newTestService(t)
	cand := seedCandidate(t, repo, model.StatusNotHeld)

	explicit := time.Date(2025, 4, 10, 9, 0, 0, 0, time.UTC)
	explicitPtr := &explicit
	status := "success"
	res, err := svc.UpdateCandidate(context.Background(), cand.ID, &model.UpdateCandidateRequest{
		Status:     &status,
		AcceptedAt: &explicitPtr,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Candidate.AcceptedAt)
	assert.Equal(t, explicit, *res.Candidate.AcceptedAt)
}

func TestTransitionToNotHeld_ClearsAllEventTimestamps(t *testing.T) {
	svc, repo, _ := newTestService(t)
	cand := seedCandidate(t, repo, model.StatusReserve)

	now := time.Now()
	cand.PolygraphAt = &now
	cand.AcceptedAt = &now
	cand.DeclinedAt = &now
	cand.CanceledAt = &now
	require.NoError(t, repo.Update(context.Background(), cand))

	res, err := svc.ApplyStatusTransition(context.Background(), cand.ID, "not_held")
	require.NoError(t, err)

	got := res.Candidate
	assert.Nil(t, got.PolygraphAt)
	assert.Nil(t, got.AcceptedAt)
	assert.Nil(t, got.DeclinedAt)
	assert.Nil(t, got.CanceledAt)
}

func TestLegacyStatusAliasNormalized(t *testing.T) {
	svc, repo, _ := newTestService(t)
	cand := seedCandidate(t, repo, model.StatusNotHeld)

	res, err := svc.ApplyStatusTransition(context.Background(), cand.ID, "rejected")
	require.NoError(t, err)
	assert.Equal(t, model.StatusDeclined, res.Candidate.Status)
	assert.NotNil(t, res.Candidate.DeclinedAt)
}

func TestUnknownStatusRejectedBeforeMutation(t *testing.T) {
	svc, repo, _ := newTestService(t)
	cand := seedCandidate(t, repo, model.StatusNotHeld)

	_, err := svc.ApplyStatusTransition(context.Background(), cand.ID, "hired")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	stored, err := repo.Get(context.Background(), cand.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusNotHeld, stored.Status)
}

func TestHireCreatesEmployeeWithNoonHireDate(t *testing.T) {
	svc, repo, empRepo := newTestService(t)
	at := time.Date(2025, 6, 1, 15, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return at }

	cand := seedCandidate(t, repo, model.StatusNotHeld)

	res, err := svc.ApplyStatusTransition(context.Background(), cand.ID, "success")
	require.NoError(t, err)
	require.NoError(t, res.SyncErr)

	require.Len(t, empRepo.employees, 1)
	for _, emp := range empRepo.employees {
		require.NotNil(t, emp.CandidateID)
		assert.Equal(t, cand.ID, *emp.CandidateID)
		assert.Equal(t, strings.ToLower(cand.Email), emp.Email)
		assert.Equal(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), emp.HiredAt)
	}
}

func TestUnhireRemovesEmployee_SecondTransitionIsNoop(t *testing.T) {
	svc, repo, empRepo := newTestService(t)
	cand := seedCandidate(t, repo, model.StatusNotHeld)

	_, err := svc.ApplyStatusTransition(context.Background(), cand.ID, "success")
	require.NoError(t, err)
	require.Len(t, empRepo.employees, 1)

	res, err := svc.ApplyStatusTransition(context.Background(), cand.ID, "declined")
	require.NoError(t, err)
	require.NoError(t, res.SyncErr)
	assert.Len(t, empRepo.employees, 0)

	// declined -> declined must not touch employee state again
	res, err = svc.ApplyStatusTransition(context.Background(), cand.ID, "declined")
	require.NoError(t, err)
	require.NoError(t, res.SyncErr)
	assert.Len(t, empRepo.employees, 0)
}

func TestUnhireFallsBackToEmailMatch(t *testing.T) {
	svc, repo, empRepo := newTestService(t)
	cand := seedCandidate(t, repo, model.StatusSuccess)

	// Employee exists only by email, without a back-reference.
	empRepo.employees[uuid.New()] = &model.Employee{
		FullName: cand.FullName,
		Email:    cand.Email,
		HiredAt:  time.Now(),
	}

	res, err := svc.ApplyStatusTransition(context.Background(), cand.ID, "canceled")
	require.NoError(t, err)
	require.NoError(t, res.SyncErr)
	assert.Len(t, empRepo.employees, 0)
}

func TestEmployeeConflictDoesNotRollBackCandidate(t *testing.T) {
	svc, repo, empRepo := newTestService(t)
	empRepo.upsertErr = apperrors.Conflict("employee email already exists", nil)

	cand := seedCandidate(t, repo, model.StatusNotHeld)

	res, err := svc.ApplyStatusTransition(context.Background(), cand.ID, "success")
	require.NoError(t, err)
	require.Error(t, res.SyncErr)
	assert.True(t, apperrors.IsConflict(res.SyncErr))

	stored, err := repo.Get(context.Background(), cand.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusSuccess, stored.Status)
}

func TestFailedUpdateLeavesInterviewListUntouched(t *testing.T) {
	svc, repo, _ := newTestService(t)
	cand := seedCandidate(t, repo, model.StatusNotHeld)

	original := time.Now().Add(24 * time.Hour)
	require.NoError(t, repo.ReplaceInterviews(context.Background(), cand.ID, []model.Interview{
		{ScheduledAt: original, Status: model.StatusNotHeld},
	}))

	// The candidate row update is rejected (email collision); the new
	// interview list must not survive it.
	repo.updateErr = apperrors.Conflict("email already exists", nil)

	email := "taken@example.com"
	_, err := svc.UpdateCandidate(context.Background(), cand.ID, &model.UpdateCandidateRequest{
		Email: &email,
		Interviews: []model.CreateInterviewRequest{
			{ScheduledAt: time.Now().Add(72 * time.Hour)},
		},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))

	repo.updateErr = nil
	stored, err := repo.Get(context.Background(), cand.ID)
	require.NoError(t, err)
	require.Len(t, stored.Interviews, 1)
	assert.WithinDuration(t, original, stored.Interviews[0].ScheduledAt, time.Second)
}

func TestMeetLinkOnlyPatchMirrorsToHeadInterview(t *testing.T) {
	svc, repo, _ := newTestService(t)
	cand := seedCandidate(t, repo, model.StatusNotHeld)
	require.NoError(t, repo.ReplaceInterviews(context.Background(), cand.ID, []model.Interview{
		{ScheduledAt: time.Now().Add(24 * time.Hour), Status: model.StatusNotHeld},
	}))

	link := "https://meet.example.com/abc"
	res, err := svc.UpdateCandidate(context.Background(), cand.ID, &model.UpdateCandidateRequest{
		MeetLink: strPtr(link),
	})
	require.NoError(t, err)
	require.NotNil(t, res.Candidate.MeetLink)
	assert.Equal(t, link, *res.Candidate.MeetLink)

	stored, err := repo.Get(context.Background(), cand.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.HeadInterview())
	require.NotNil(t, stored.HeadInterview().MeetLink)
	assert.Equal(t, link, *stored.HeadInterview().MeetLink)
}

func TestRemoveHeadInterviewPromotesNext(t *testing.T) {
	svc, repo, _ := newTestService(t)
	cand := seedCandidate(t, repo, model.StatusNotHeld)

	first := time.Now().Add(24 * time.Hour)
	second := time.Now().Add(48 * time.Hour)
	require.NoError(t, repo.ReplaceInterviews(context.Background(), cand.ID, []model.Interview{
		{ScheduledAt: first, Status: model.StatusNotHeld},
		{ScheduledAt: second, Status: model.StatusNotHeld},
	}))

	require.NoError(t, svc.RemoveHeadInterview(context.Background(), cand.ID))

	stored, err := repo.Get(context.Background(), cand.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.MeetLink)
	require.Len(t, stored.Interviews, 1)
	assert.WithinDuration(t, second, stored.Interviews[0].ScheduledAt, time.Second)
}

func TestCreateNotHeldWithoutInterviewGetsHeadPinnedToNow(t *testing.T) {
	svc, _, _ := newTestService(t)
	at := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return at }

	cand, err := svc.CreateCandidate(context.Background(), &model.CreateCandidateRequest{
		FullName: "New Person",
		Email:    "new@example.com",
	})
	require.NoError(t, err)
	require.Len(t, cand.Interviews, 1)
	assert.Equal(t, at, cand.Interviews[0].ScheduledAt)
	assert.Equal(t, model.InterviewSourceCRM, cand.Interviews[0].Source)
}

func TestJiraUpsertMatchesByIssueID(t *testing.T) {
	svc, repo, _ := newTestService(t)
	cand := seedCandidate(t, repo, model.StatusNotHeld)
	issue := "PO2-123"
	require.NoError(t, repo.ReplaceInterviews(context.Background(), cand.ID, []model.Interview{
		{ScheduledAt: time.Now().Add(24 * time.Hour), Status: model.StatusNotHeld, JiraIssueID: &issue},
	}))

	newTime := time.Now().Add(72 * time.Hour)
	_, err := svc.UpsertInterviewFromJira(context.Background(), cand.Email, cand.FullName, issue, model.Interview{
		ScheduledAt: newTime,
		Source:      model.InterviewSourceJira,
	})
	require.NoError(t, err)

	stored, err := repo.Get(context.Background(), cand.ID)
	require.NoError(t, err)
	require.Len(t, stored.Interviews, 1)
	assert.WithinDuration(t, newTime, stored.Interviews[0].ScheduledAt, time.Second)
}

func TestJiraUpsertCreatesCandidateFromEmail(t *testing.T) {
	svc, repo, _ := newTestService(t)

	cand, err := svc.UpsertInterviewFromJira(context.Background(), "Someone@Example.com", "", "PO2-9", model.Interview{
		ScheduledAt: time.Now().Add(24 * time.Hour),
		Source:      model.InterviewSourceJira,
	})
	require.NoError(t, err)
	assert.Equal(t, "someone@example.com", cand.Email)
	assert.Equal(t, "someone", cand.FullName)

	stored, err := repo.Get(context.Background(), cand.ID)
	require.NoError(t, err)
	require.Len(t, stored.Interviews, 1)
}
