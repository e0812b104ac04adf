package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/brigadehq/roster/internal/dates"
	"github.com/brigadehq/roster/internal/recurrence"
)

type EventStatus string

const (
	EventStatusActive    EventStatus = "active"
	EventStatusCancelled EventStatus = "cancelled"
)

// Event is a calendar entry. Rows come in two shapes: recurring
// definitions entered by an admin (RecurrenceRule set), and the concrete
// single-date rows the training scheduler materializes from them
// (RecurrenceRule empty, IsTraining true). Date always carries the civil
// date of StartTime so the training uniqueness check has a stable key.
type Event struct {
	ID              uuid.UUID      `json:"id" db:"id"`
	BrigadeID       uuid.UUID      `json:"brigade_id" db:"brigade_id"`
	Title           string         `json:"title" db:"title"`
	Description     string         `json:"description" db:"description"`
	Location        string         `json:"location" db:"location"`
	StartTime       time.Time      `json:"start_time" db:"start_time"`
	DurationMinutes int            `json:"duration_minutes" db:"duration_minutes"` // 0 = open ended
	RecurrenceRule  string         `json:"recurrence_rule,omitempty" db:"recurrence_rule"`
	IsTraining      bool           `json:"is_training" db:"is_training"`
	Date            dates.Date     `json:"date" db:"date"`
	Details         datatypes.JSON `json:"details,omitempty" db:"details"`
	Status          EventStatus    `json:"status" db:"status"`
	CreatedBy       uuid.UUID      `json:"created_by" db:"created_by"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt       *time.Time     `json:"updated_at,omitempty" db:"updated_at"`
}

// Definition converts the row into the expansion engine's view of it.
func (e *Event) Definition() recurrence.Definition {
	def := recurrence.Definition{Start: e.StartTime}
	if e.DurationMinutes > 0 {
		def.Duration = time.Duration(e.DurationMinutes) * time.Minute
	}
	def.Rule = recurrence.ParseRuleLenient(e.RecurrenceRule)
	return def
}

type CreateEventRequest struct {
	BrigadeID       uuid.UUID      `json:"brigade_id" binding:"required"`
	Title           string         `json:"title" binding:"required"`
	Description     string         `json:"description"`
	Location        string         `json:"location"`
	StartTime       time.Time      `json:"start_time" binding:"required"`
	DurationMinutes int            `json:"duration_minutes"`
	RecurrenceRule  string         `json:"recurrence_rule"`
	Details         datatypes.JSON `json:"details"`
}

type UpdateEventRequest struct {
	Title           *string        `json:"title,omitempty"`
	Description     *string        `json:"description,omitempty"`
	Location        *string        `json:"location,omitempty"`
	StartTime       *time.Time     `json:"start_time,omitempty"`
	DurationMinutes *int           `json:"duration_minutes,omitempty"`
	RecurrenceRule  *string        `json:"recurrence_rule,omitempty"`
	Details         datatypes.JSON `json:"details,omitempty"`
	Status          *string        `json:"status,omitempty"`
}
