package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Brigade is one volunteer brigade with its canonical weekly training
// slot. The slot defaults to Monday 19:00 and is configurable per
// brigade.
type Brigade struct {
	ID                    uuid.UUID `json:"id" db:"id"`
	Name                  string    `json:"name" db:"name"`
	Region                string    `json:"region" db:"region"`
	TrainingWeekday       int       `json:"training_weekday" db:"training_weekday"` // 0 = Sunday
	TrainingTime          string    `json:"training_time" db:"training_time"`       // HH:MM
	TrainingDurationHours int       `json:"training_duration_hours" db:"training_duration_hours"`
	TrainingEventID       uuid.UUID `json:"training_event_id" db:"training_event_id"`
	CreatedAt             time.Time `json:"created_at" db:"created_at"`
}

// Weekday returns the training weekday as a time.Weekday.
func (b *Brigade) Weekday() time.Weekday {
	return time.Weekday(b.TrainingWeekday)
}

// TrainingClock parses the HH:MM training time.
func (b *Brigade) TrainingClock() (hour, minute int, err error) {
	if _, err := fmt.Sscanf(b.TrainingTime, "%d:%d", &hour, &minute); err != nil {
		return 0, 0, fmt.Errorf("invalid training time %q: %w", b.TrainingTime, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("training time out of range: %s", b.TrainingTime)
	}
	return hour, minute, nil
}
