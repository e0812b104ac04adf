package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/brigadehq/roster/internal/dates"
)

// PublicHoliday is one regional public holiday. Rows are refreshed
// out-of-band (admin upload or import job); the scheduling engine only
// ever reads them through the holiday oracle.
type PublicHoliday struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Region    string     `json:"region" db:"region"`
	Date      dates.Date `json:"date" db:"date"`
	Name      string     `json:"name" db:"name"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

type CreateHolidayRequest struct {
	Region string     `json:"region" binding:"required"`
	Date   dates.Date `json:"date" binding:"required"`
	Name   string     `json:"name" binding:"required"`
}
