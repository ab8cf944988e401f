package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vroo/hr-tracker/internal/model"
	candidatesvc "github.com/vroo/hr-tracker/internal/service/candidate"
	apperrors "github.com/vroo/hr-tracker/pkg/errors"
	"github.com/vroo/hr-tracker/pkg/httputil"
	"github.com/vroo/hr-tracker/pkg/logger"
)

// jiraWebhookRequest is the payload posted by the Jira automation rule when
// an interview issue is created or rescheduled.
type jiraWebhookRequest struct {
	IssueID         string    `json:"issue_id" binding:"required"`
	CandidateEmail  string    `json:"candidate_email" binding:"required,email"`
	CandidateName   string    `json:"candidate_name"`
	ScheduledAt     time.Time `json:"scheduled_at" binding:"required"`
	DurationMinutes int       `json:"duration_minutes"`
	Participants    []string  `json:"participants"`
	MeetLink        *string   `json:"meet_link" binding:"omitempty,url"`
	CalendarEventID *string   `json:"calendar_event_id"`
	Notes           *string   `json:"notes"`
}

type JiraHandler struct {
	svc    *candidatesvc.Service
	logger *logger.Logger
}

func NewJiraHandler(svc *candidatesvc.Service, log *logger.Logger) *JiraHandler {
	return &JiraHandler{svc: svc, logger: log}
}

func (h *JiraHandler) Webhook(c *gin.Context) {
	var req jiraWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	itw := model.Interview{
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: 60,
		Participants:    req.Participants,
		MeetLink:        req.MeetLink,
		Status:          model.StatusNotHeld,
		Source:          model.InterviewSourceJira,
		CalendarEventID: req.CalendarEventID,
		Notes:           req.Notes,
	}
	if req.DurationMinutes > 0 {
		itw.DurationMinutes = req.DurationMinutes
	}

	cand, err := h.svc.UpsertInterviewFromJira(c.Request.Context(),
		req.CandidateEmail, req.CandidateName, req.IssueID, itw)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	h.logger.ZL.Info().
		Str("issue_id", req.IssueID).
		Str("candidate_id", cand.ID.String()).
		Msg("jira interview upserted")
	httputil.RespondWithSuccess(c, cand)
}
