package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Status is the candidate pipeline status. The same closed set applies to
// candidates and to individual interviews.
type Status string

const (
	StatusNotHeld  Status = "not_held"
	StatusReserve  Status = "reserve"
	StatusSuccess  Status = "success"
	StatusDeclined Status = "declined"
	StatusCanceled Status = "canceled"
)

// Legacy values still present in imported data. Normalized on parse, never
// stored back.
const (
	legacyReject   = "reject"
	legacyRejected = "rejected"
)

// ParseStatus normalizes legacy aliases and rejects unknown values.
func ParseStatus(s string) (Status, error) {
	switch s {
	case string(StatusNotHeld), string(StatusReserve), string(StatusSuccess),
		string(StatusDeclined), string(StatusCanceled):
		return Status(s), nil
	case legacyReject, legacyRejected:
		return StatusDeclined, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

type InterviewSource string

const (
	InterviewSourceJira InterviewSource = "jira"
	InterviewSourceCRM  InterviewSource = "crm"
)

// Interview is one scheduled interview of a candidate. Position 0 is the
// head interview, treated as the current/next one.
type Interview struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	CandidateID     uuid.UUID       `db:"candidate_id" json:"candidate_id"`
	Position        int             `db:"position" json:"position"`
	ScheduledAt     time.Time       `db:"scheduled_at" json:"scheduled_at"`
	DurationMinutes int             `db:"duration_minutes" json:"duration_minutes"`
	Participants    pq.StringArray  `db:"participants" json:"participants"`
	MeetLink        *string         `db:"meet_link" json:"meet_link,omitempty"`
	Status          Status          `db:"status" json:"status"`
	Source          InterviewSource `db:"source" json:"source"`
	CalendarEventID *string         `db:"calendar_event_id" json:"calendar_event_id,omitempty"`
	JiraIssueID     *string         `db:"jira_issue_id" json:"jira_issue_id,omitempty"`
	Notes           *string         `db:"notes" json:"notes,omitempty"`
	Reminded        bool            `db:"reminded" json:"reminded"`
}

type Candidate struct {
	Base
	FullName         string     `db:"full_name" json:"full_name"`
	Email            string     `db:"email" json:"email"`
	Phone            string     `db:"phone" json:"phone"`
	Notes            *string    `db:"notes" json:"notes,omitempty"`
	Status           Status     `db:"status" json:"status"`
	MeetLink         *string    `db:"meet_link" json:"meet_link,omitempty"`
	Department       string     `db:"department" json:"department"`
	Position         *string    `db:"position" json:"position,omitempty"`
	PolygraphAt      *time.Time `db:"polygraph_at" json:"polygraph_at"`
	AcceptedAt       *time.Time `db:"accepted_at" json:"accepted_at"`
	DeclinedAt       *time.Time `db:"declined_at" json:"declined_at"`
	CanceledAt       *time.Time `db:"canceled_at" json:"canceled_at"`
	PolygraphAddress string     `db:"polygraph_address" json:"polygraph_address"`

	Interviews []Interview `db:"-" json:"interviews"`
}

// HeadInterview returns the current interview, or nil when none is scheduled.
func (c *Candidate) HeadInterview() *Interview {
	if len(c.Interviews) == 0 {
		return nil
	}
	return &c.Interviews[0]
}

type CreateInterviewRequest struct {
	ScheduledAt     time.Time `json:"scheduled_at" binding:"required"`
	DurationMinutes int       `json:"duration_minutes" binding:"omitempty,min=1,max=600"`
	Participants    []string  `json:"participants" binding:"omitempty,dive,email"`
	MeetLink        *string   `json:"meet_link" binding:"omitempty,url"`
	Status          *string   `json:"status" binding:"omitempty,pipeline_status"`
	Source          *string   `json:"source" binding:"omitempty,oneof=jira crm"`
	Notes           *string   `json:"notes"`
	CalendarEventID *string   `json:"calendar_event_id"`
	JiraIssueID     *string   `json:"jira_issue_id"`
}

type CreateCandidateRequest struct {
	FullName         string                  `json:"full_name" binding:"required"`
	Email            string                  `json:"email" binding:"required,email"`
	Phone            *string                 `json:"phone"`
	Notes            *string                 `json:"notes"`
	Department       *string                 `json:"department"`
	Position         *string                 `json:"position"`
	Status           *string                 `json:"status" binding:"omitempty,pipeline_status"`
	Interview        *CreateInterviewRequest `json:"interview"`
	PolygraphAt      *time.Time              `json:"polygraph_at"`
	AcceptedAt       *time.Time              `json:"accepted_at"`
	DeclinedAt       *time.Time              `json:"declined_at"`
	CanceledAt       *time.Time              `json:"canceled_at"`
	PolygraphAddress *string                 `json:"polygraph_address"`
}

// UpdateCandidateRequest carries a partial candidate update. Pointer fields
// distinguish "absent" from "set to null": the double pointer on the event
// timestamps allows an explicit null to clear a previously set instant.
type UpdateCandidateRequest struct {
	FullName         *string                  `json:"full_name" binding:"omitempty,min=1"`
	Email            *string                  `json:"email" binding:"omitempty,email"`
	Phone            *string                  `json:"phone"`
	Notes            *string                  `json:"notes"`
	Department       *string                  `json:"department"`
	Position         *string                  `json:"position"`
	Status           *string                  `json:"status" binding:"omitempty,pipeline_status"`
	MeetLink         *string                  `json:"meet_link" binding:"omitempty,url"`
	Interviews       []CreateInterviewRequest `json:"interviews"`
	PolygraphAt      **time.Time              `json:"polygraph_at"`
	AcceptedAt       **time.Time              `json:"accepted_at"`
	DeclinedAt       **time.Time              `json:"declined_at"`
	CanceledAt       **time.Time              `json:"canceled_at"`
	PolygraphAddress *string                  `json:"polygraph_address"`
}

// IsEmpty reports whether the patch carries no fields at all.
func (r *UpdateCandidateRequest) IsEmpty() bool {
	return r.FullName == nil && r.Email == nil && r.Phone == nil &&
		r.Notes == nil && r.Department == nil && r.Position == nil &&
		r.Status == nil && r.MeetLink == nil && r.Interviews == nil &&
		r.PolygraphAt == nil && r.AcceptedAt == nil && r.DeclinedAt == nil &&
		r.CanceledAt == nil && r.PolygraphAddress == nil
}

// IsMeetLinkOnly reports whether the patch touches nothing but the meet link,
// which takes a fast path that mirrors the link onto the head interview.
func (r *UpdateCandidateRequest) IsMeetLinkOnly() bool {
	return r.MeetLink != nil && r.FullName == nil && r.Email == nil &&
		r.Phone == nil && r.Notes == nil && r.Department == nil &&
		r.Position == nil && r.Status == nil && len(r.Interviews) == 0 &&
		r.PolygraphAt == nil && r.AcceptedAt == nil && r.DeclinedAt == nil &&
		r.CanceledAt == nil && r.PolygraphAddress == nil
}
