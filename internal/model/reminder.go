package model

import (
	"time"

	"github.com/google/uuid"
)

// ReminderKind identifies a notification round.
type ReminderKind string

const (
	// ReminderKindMeet1h is the "interview starts in one hour" round.
	ReminderKindMeet1h ReminderKind = "meet_1h"
)

// ReminderRecord is the dedup row behind at-most-once reminder delivery.
// (Scope, CandidateID, ScheduledAt, Kind) carries a uniqueness constraint;
// inserting the row is the claim that authorizes exactly one send.
type ReminderRecord struct {
	Scope       string       `db:"scope" json:"scope"`
	CandidateID uuid.UUID    `db:"candidate_id" json:"candidate_id"`
	ScheduledAt time.Time    `db:"scheduled_at" json:"scheduled_at"`
	Kind        ReminderKind `db:"kind" json:"kind"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	ExpiresAt   time.Time    `db:"expires_at" json:"expires_at"`
}

// DefaultReminderScope tags rows created by this service.
const DefaultReminderScope = "crm"

// JobState remembers the last local calendar day a named daily job fired,
// so the gate survives process restarts.
type JobState struct {
	JobName    string    `db:"job_name" json:"job_name"`
	LastDayKey string    `db:"last_day_key" json:"last_day_key"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// TickStats summarizes one reminder scheduler pass.
type TickStats struct {
	Checked   int `json:"checked"`
	Matched   int `json:"matched"`
	Delivered int `json:"delivered"`
}
