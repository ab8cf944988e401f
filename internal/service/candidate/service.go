// Package candidate implements the candidate lifecycle engine: status
// transitions, their timestamp side effects, and the employee-record sync
// that follows a hire or an un-hire.
package candidate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vroo/hr-tracker/internal/model"
	"github.com/vroo/hr-tracker/internal/repository"
	apperrors "github.com/vroo/hr-tracker/pkg/errors"
	"github.com/vroo/hr-tracker/pkg/logger"
	"github.com/vroo/hr-tracker/pkg/timeutil"
)

const defaultDepartment = "Gambling"

type Service struct {
	repo         repository.CandidateRepository
	employeeRepo repository.EmployeeRepository
	logger       *logger.Logger

	now func() time.Time
}

func NewService(repo repository.CandidateRepository, employeeRepo repository.EmployeeRepository, log *logger.Logger) *Service {
	return &Service{
		repo:         repo,
		employeeRepo: employeeRepo,
		logger:       log,
		now:          time.Now,
	}
}

// UpdateResult reports a committed candidate update together with the outcome
// of the employee sync step. The two are deliberately not atomic: the
// candidate change is never rolled back when the sync fails, the failure is
// carried in SyncErr instead.
type UpdateResult struct {
	Candidate *model.Candidate
	SyncErr   error
}

func (s *Service) CreateCandidate(ctx context.Context, req *model.CreateCandidateRequest) (*model.Candidate, error) {
	status := model.StatusNotHeld
	if req.Status != nil {
		parsed, err := model.ParseStatus(*req.Status)
		if err != nil {
			return nil, apperrors.Validation("invalid status", err)
		}
		status = parsed
	}

	cand := &model.Candidate{
		FullName:    req.FullName,
		Email:       strings.ToLower(req.Email),
		Status:      status,
		Department:  defaultDepartment,
		Position:    req.Position,
		PolygraphAt: req.PolygraphAt,
		AcceptedAt:  req.AcceptedAt,
		DeclinedAt:  req.DeclinedAt,
		CanceledAt:  req.CanceledAt,
		Notes:       req.Notes,
	}
	if req.Phone != nil {
		cand.Phone = *req.Phone
	}
	if req.Department != nil {
		cand.Department = *req.Department
	}
	if req.PolygraphAddress != nil {
		cand.PolygraphAddress = *req.PolygraphAddress
	}

	if req.Interview != nil {
		itw, err := buildInterview(*req.Interview)
		if err != nil {
			return nil, err
		}
		cand.Interviews = []model.Interview{itw}
	}

	// A fresh in-progress candidate with no interview yet gets one pinned to
	// now so the pipeline view always has a head entry.
	if cand.Status == model.StatusNotHeld && len(cand.Interviews) == 0 {
		cand.Interviews = []model.Interview{{
			ScheduledAt:     s.now(),
			DurationMinutes: 60,
			Status:          model.StatusNotHeld,
			Source:          model.InterviewSourceCRM,
		}}
	}

	s.applyStatusSideEffects(cand, explicitTimes{
		accepted: req.AcceptedAt != nil,
		declined: req.DeclinedAt != nil,
		canceled: req.CanceledAt != nil,
	})

	if err := s.repo.Create(ctx, cand); err != nil {
		return nil, err
	}

	if cand.Status == model.StatusSuccess {
		if err := s.syncEmployeeOnHire(ctx, cand); err != nil {
			s.logger.ZL.Error().Err(err).Str("candidate_id", cand.ID.String()).Msg("employee sync failed")
		}
	}
	return cand, nil
}

// UpdateCandidate applies a partial update. When the patch carries a status,
// the transition side effects run and the employee record is brought in line
// with the new status.
func (s *Service) UpdateCandidate(ctx context.Context, id uuid.UUID, req *model.UpdateCandidateRequest) (*UpdateResult, error) {
	if req.IsEmpty() {
		return nil, apperrors.BadRequest("empty body", nil)
	}

	// Validate the status before any persistence.
	var newStatus *model.Status
	if req.Status != nil {
		parsed, err := model.ParseStatus(*req.Status)
		if err != nil {
			return nil, apperrors.Validation("invalid status", err)
		}
		newStatus = &parsed
	}

	cand, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	prevStatus := cand.Status

	// Fast path: a meet-link-only patch mirrors the link onto the head
	// interview and skips the transition machinery entirely.
	if req.IsMeetLinkOnly() {
		cand.MeetLink = req.MeetLink
		if head := cand.HeadInterview(); head != nil {
			head.MeetLink = req.MeetLink
			if err := s.repo.UpdateWithInterviews(ctx, cand, cand.Interviews); err != nil {
				return nil, err
			}
		} else if err := s.repo.Update(ctx, cand); err != nil {
			return nil, err
		}
		return &UpdateResult{Candidate: cand}, nil
	}

	if err := s.applyPatch(cand, req, newStatus); err != nil {
		return nil, err
	}
	if newStatus != nil {
		s.applyStatusSideEffects(cand, explicitTimes{
			accepted: req.AcceptedAt != nil && *req.AcceptedAt != nil,
			declined: req.DeclinedAt != nil && *req.DeclinedAt != nil,
			canceled: req.CanceledAt != nil && *req.CanceledAt != nil,
		})
	}

	// The row and the interview list commit together: a rejected update
	// (say, an email collision) must not leave a fresh interview list
	// against the old candidate.
	if req.Interviews != nil {
		if err := s.repo.UpdateWithInterviews(ctx, cand, cand.Interviews); err != nil {
			return nil, err
		}
	} else if err := s.repo.Update(ctx, cand); err != nil {
		return nil, err
	}

	result := &UpdateResult{Candidate: cand}
	result.SyncErr = s.syncEmployee(ctx, cand, prevStatus)
	return result, nil
}

// ApplyStatusTransition is the status-only entry point used by callers that
// do not patch any other field.
func (s *Service) ApplyStatusTransition(ctx context.Context, id uuid.UUID, status string) (*UpdateResult, error) {
	return s.UpdateCandidate(ctx, id, &model.UpdateCandidateRequest{Status: &status})
}

// RemoveHeadInterview clears the root meet link and drops the current
// interview, promoting the rest of the sequence.
func (s *Service) RemoveHeadInterview(ctx context.Context, id uuid.UUID) error {
	cand, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	cand.MeetLink = nil
	if len(cand.Interviews) > 0 {
		cand.Interviews = cand.Interviews[1:]
		return s.repo.UpdateWithInterviews(ctx, cand, cand.Interviews)
	}
	return s.repo.Update(ctx, cand)
}

func (s *Service) GetCandidate(ctx context.Context, id uuid.UUID) (*model.Candidate, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListCandidates(ctx context.Context, p model.Pagination) ([]*model.Candidate, int64, error) {
	return s.repo.List(ctx, p)
}

// UpsertInterviewFromJira finds or creates the candidate by email and then
// updates the interview carrying the issue id, or appends a new one.
func (s *Service) UpsertInterviewFromJira(ctx context.Context, email, fullName, issueID string, itw model.Interview) (*model.Candidate, error) {
	email = strings.ToLower(email)

	cand, err := s.repo.GetByEmail(ctx, email)
	if apperrors.IsNotFound(err) {
		if fullName == "" {
			fullName = strings.SplitN(email, "@", 2)[0]
		}
		cand = &model.Candidate{
			FullName:   fullName,
			Email:      email,
			Status:     model.StatusNotHeld,
			Department: defaultDepartment,
		}
		if err := s.repo.Create(ctx, cand); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	updated := false
	for i := range cand.Interviews {
		existing := &cand.Interviews[i]
		if existing.JiraIssueID != nil && *existing.JiraIssueID == issueID {
			existing.ScheduledAt = itw.ScheduledAt
			existing.Participants = itw.Participants
			existing.MeetLink = itw.MeetLink
			existing.CalendarEventID = itw.CalendarEventID
			existing.Notes = itw.Notes
			updated = true
			break
		}
	}
	if !updated {
		itw.JiraIssueID = &issueID
		cand.Interviews = append(cand.Interviews, itw)
	}

	if err := s.repo.ReplaceInterviews(ctx, cand.ID, cand.Interviews); err != nil {
		return nil, err
	}
	return cand, nil
}

func (s *Service) applyPatch(cand *model.Candidate, req *model.UpdateCandidateRequest, newStatus *model.Status) error {
	if req.FullName != nil {
		cand.FullName = *req.FullName
	}
	if req.Email != nil {
		cand.Email = strings.ToLower(*req.Email)
	}
	if req.Phone != nil {
		cand.Phone = *req.Phone
	}
	if req.Notes != nil {
		cand.Notes = req.Notes
	}
	if req.Department != nil {
		cand.Department = *req.Department
	}
	if req.Position != nil {
		if *req.Position == "" {
			cand.Position = nil
		} else {
			cand.Position = req.Position
		}
	}
	if req.PolygraphAddress != nil {
		cand.PolygraphAddress = *req.PolygraphAddress
	}
	if req.PolygraphAt != nil {
		cand.PolygraphAt = *req.PolygraphAt
	}
	if req.AcceptedAt != nil {
		cand.AcceptedAt = *req.AcceptedAt
	}
	if req.DeclinedAt != nil {
		cand.DeclinedAt = *req.DeclinedAt
	}
	if req.CanceledAt != nil {
		cand.CanceledAt = *req.CanceledAt
	}
	if newStatus != nil {
		cand.Status = *newStatus
	}

	if req.Interviews != nil {
		interviews := make([]model.Interview, 0, len(req.Interviews))
		for _, in := range req.Interviews {
			itw, err := buildInterview(in)
			if err != nil {
				return err
			}
			interviews = append(interviews, itw)
		}
		cand.Interviews = interviews
	}

	if req.MeetLink != nil {
		cand.MeetLink = req.MeetLink
		if head := cand.HeadInterview(); head != nil {
			head.MeetLink = req.MeetLink
		}
	} else if head := cand.HeadInterview(); req.Interviews != nil && head != nil && head.MeetLink != nil {
		// Mirror the head interview link to the top-level field so the UI
		// always sees it there.
		cand.MeetLink = head.MeetLink
	}
	return nil
}

// explicitTimes records which event timestamps the caller supplied together
// with the status. A supplied value wins over "now"; an absent one is
// re-stamped on every transition into the matching status.
type explicitTimes struct {
	accepted, declined, canceled bool
}

// applyStatusSideEffects derives the event timestamps from the new status,
// overriding conflicting prior values.
func (s *Service) applyStatusSideEffects(cand *model.Candidate, explicit explicitTimes) {
	now := s.now()

	switch cand.Status {
	case model.StatusSuccess:
		if !explicit.accepted || cand.AcceptedAt == nil {
			cand.AcceptedAt = &now
		}
		cand.DeclinedAt = nil
		cand.CanceledAt = nil
	case model.StatusDeclined:
		if !explicit.declined || cand.DeclinedAt == nil {
			cand.DeclinedAt = &now
		}
		cand.AcceptedAt = nil
		cand.CanceledAt = nil
	case model.StatusCanceled:
		if !explicit.canceled || cand.CanceledAt == nil {
			cand.CanceledAt = &now
		}
		cand.AcceptedAt = nil
		cand.DeclinedAt = nil
	case model.StatusReserve:
		// no automatic timestamp changes
	case model.StatusNotHeld:
		cand.PolygraphAt = nil
		cand.AcceptedAt = nil
		cand.DeclinedAt = nil
		cand.CanceledAt = nil
	}
}

// syncEmployee reconciles the employee record after a committed candidate
// update. Entering success creates/refreshes the employee; leaving success
// removes it. Everything else is a no-op.
func (s *Service) syncEmployee(ctx context.Context, cand *model.Candidate, prevStatus model.Status) error {
	wasSuccess := prevStatus == model.StatusSuccess
	isSuccess := cand.Status == model.StatusSuccess

	switch {
	case isSuccess:
		return s.syncEmployeeOnHire(ctx, cand)
	case wasSuccess && !isSuccess:
		deleted, err := s.employeeRepo.DeleteByCandidate(ctx, cand.ID)
		if err != nil {
			return fmt.Errorf("failed to remove employee: %w", err)
		}
		if deleted == 0 && cand.Email != "" {
			if _, err := s.employeeRepo.DeleteByEmail(ctx, strings.ToLower(cand.Email)); err != nil {
				return fmt.Errorf("failed to remove employee by email: %w", err)
			}
		}
	}
	return nil
}

func (s *Service) syncEmployeeOnHire(ctx context.Context, cand *model.Candidate) error {
	hiredAt := s.now()
	if cand.AcceptedAt != nil {
		hiredAt = *cand.AcceptedAt
	}

	notes := ""
	if cand.Notes != nil {
		notes = *cand.Notes
	}
	department := cand.Department
	if department == "" {
		department = defaultDepartment
	}

	candidateID := cand.ID
	emp := &model.Employee{
		CandidateID: &candidateID,
		FullName:    cand.FullName,
		Email:       strings.ToLower(cand.Email),
		Phone:       cand.Phone,
		Department:  department,
		Position:    cand.Position,
		Notes:       notes,
		// Normalized to mid-day so the hire date renders the same in every
		// office timezone.
		HiredAt: timeutil.NoonUTC(hiredAt),
	}
	return s.employeeRepo.UpsertForCandidate(ctx, emp)
}

func buildInterview(req model.CreateInterviewRequest) (model.Interview, error) {
	itw := model.Interview{
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: 60,
		Participants:    req.Participants,
		MeetLink:        req.MeetLink,
		Status:          model.StatusNotHeld,
		Source:          model.InterviewSourceCRM,
		Notes:           req.Notes,
		CalendarEventID: req.CalendarEventID,
		JiraIssueID:     req.JiraIssueID,
	}
	if req.DurationMinutes > 0 {
		itw.DurationMinutes = req.DurationMinutes
	}
	if req.Status != nil {
		parsed, err := model.ParseStatus(*req.Status)
		if err != nil {
			return model.Interview{}, apperrors.Validation("invalid interview status", err)
		}
		itw.Status = parsed
	}
	if req.Source != nil {
		itw.Source = model.InterviewSource(*req.Source)
	}
	return itw, nil
}
