package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/brigadehq/roster/internal/dates"
	"github.com/brigadehq/roster/internal/recurrence"
)

// EventException overrides one nominal occurrence of a recurring event:
// either cancelled outright or moved to ReplacementDate. At most one
// exception exists per (event, exception date) pair.
type EventException struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	EventID         uuid.UUID  `json:"event_id" db:"event_id"`
	ExceptionDate   dates.Date `json:"exception_date" db:"exception_date"`
	IsCancelled     bool       `json:"is_cancelled" db:"is_cancelled"`
	ReplacementDate dates.Date `json:"replacement_date,omitempty" db:"replacement_date"`
	Notes           string     `json:"notes,omitempty" db:"notes"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
}

// Override converts the row into the engine's tagged variant.
func (e *EventException) Override() recurrence.Override {
	if e.IsCancelled {
		return recurrence.Override{Kind: recurrence.OverrideCancel, Note: e.Notes}
	}
	return recurrence.Override{
		Kind:        recurrence.OverrideMove,
		Replacement: e.ReplacementDate,
		Note:        e.Notes,
	}
}

// BuildExceptionSet indexes exception rows by their nominal dates.
func BuildExceptionSet(rows []EventException) recurrence.ExceptionSet {
	set := make(recurrence.ExceptionSet, len(rows))
	for i := range rows {
		set[rows[i].ExceptionDate] = rows[i].Override()
	}
	return set
}

type CreateExceptionRequest struct {
	ExceptionDate   dates.Date `json:"exception_date" binding:"required"`
	IsCancelled     bool       `json:"is_cancelled"`
	ReplacementDate dates.Date `json:"replacement_date"`
	Notes           string     `json:"notes"`
}
