package model

import (
	"time"

	"github.com/google/uuid"
)

// Employee is an independent top-level entity. CandidateID is a back-reference
// to the candidate the hire originated from; it is unique when present but an
// employee may exist without one.
type Employee struct {
	Base
	CandidateID  *uuid.UUID `db:"candidate_id" json:"candidate_id,omitempty"`
	FullName     string     `db:"full_name" json:"full_name"`
	Email        string     `db:"email" json:"email"`
	Phone        string     `db:"phone" json:"phone"`
	BirthdayAt   *time.Time `db:"birthday_at" json:"birthday_at"`
	Department   string     `db:"department" json:"department"`
	Position     *string    `db:"position" json:"position,omitempty"`
	Notes        string     `db:"notes" json:"notes"`
	HiredAt      time.Time  `db:"hired_at" json:"hired_at"`
	TerminatedAt *time.Time `db:"terminated_at" json:"terminated_at"`
}

type UpdateEmployeeRequest struct {
	FullName   *string     `json:"full_name" binding:"omitempty,min=1"`
	Email      *string     `json:"email" binding:"omitempty,email"`
	Phone      *string     `json:"phone"`
	Department *string     `json:"department"`
	Position   *string     `json:"position"`
	Notes      *string     `json:"notes"`
	HiredAt    *time.Time  `json:"hired_at"`
	BirthdayAt **time.Time `json:"birthday_at"`
}

// IsEmpty reports whether the patch carries no fields at all.
func (r *UpdateEmployeeRequest) IsEmpty() bool {
	return r.FullName == nil && r.Email == nil && r.Phone == nil &&
		r.Department == nil && r.Position == nil && r.Notes == nil &&
		r.HiredAt == nil && r.BirthdayAt == nil
}
