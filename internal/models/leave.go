package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/brigadehq/roster/internal/dates"
)

type LeaveStatus string

const (
	LeaveStatusPending   LeaveStatus = "pending"
	LeaveStatusApproved  LeaveStatus = "approved"
	LeaveStatusDenied    LeaveStatus = "denied"
	LeaveStatusCancelled LeaveStatus = "cancelled"
)

// LeaveRequest covers a single training date for one member. A member
// holds at most one non-denied request per training date; the repository
// enforces this before creation and the schema backs it with a partial
// unique index.
type LeaveRequest struct {
	ID           uuid.UUID     `json:"id" db:"id"`
	MemberID     uuid.UUID     `json:"member_id" db:"member_id"`
	TrainingDate dates.Date    `json:"training_date" db:"training_date"`
	Reason       string        `json:"reason,omitempty" db:"reason"`
	Status       LeaveStatus   `json:"status" db:"status"`
	DecidedBy    uuid.NullUUID `json:"decided_by,omitempty" db:"decided_by"`
	DecidedAt    *time.Time    `json:"decided_at,omitempty" db:"decided_at"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt    *time.Time    `json:"updated_at,omitempty" db:"updated_at"`
}

// ExtendedLeaveRequest covers a date range. TrainingsAffected is a
// snapshot computed when the request is created and is not recomputed
// afterwards.
type ExtendedLeaveRequest struct {
	ID                uuid.UUID     `json:"id" db:"id"`
	MemberID          uuid.UUID     `json:"member_id" db:"member_id"`
	StartDate         dates.Date    `json:"start_date" db:"start_date"`
	EndDate           dates.Date    `json:"end_date" db:"end_date"`
	TrainingsAffected int           `json:"trainings_affected" db:"trainings_affected"`
	Reason            string        `json:"reason,omitempty" db:"reason"`
	Status            LeaveStatus   `json:"status" db:"status"`
	DecidedBy         uuid.NullUUID `json:"decided_by,omitempty" db:"decided_by"`
	DecidedAt         *time.Time    `json:"decided_at,omitempty" db:"decided_at"`
	CreatedAt         time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt         *time.Time    `json:"updated_at,omitempty" db:"updated_at"`
}

type CreateLeaveRequest struct {
	TrainingDate dates.Date `json:"training_date" binding:"required"`
	Reason       string     `json:"reason"`
}

type CreateExtendedLeaveRequest struct {
	StartDate dates.Date `json:"start_date" binding:"required"`
	EndDate   dates.Date `json:"end_date" binding:"required"`
	Reason    string     `json:"reason"`
}
