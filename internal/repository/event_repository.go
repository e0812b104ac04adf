package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/brigadehq/roster/internal/dates"
	"github.com/brigadehq/roster/internal/models"
)

const eventColumns = `id, brigade_id, title, description, location, start_time, duration_minutes, recurrence_rule, is_training, date, details, status, created_by, created_at, updated_at`

type EventRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewEventRepository(db *sqlx.DB, logger *zap.Logger) *EventRepository {
	return &EventRepository{db: db, logger: logger}
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	if event.Status == "" {
		event.Status = models.EventStatusActive
	}
	if event.Date.IsZero() {
		event.Date = dates.FromTime(event.StartTime)
	}

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.BrigadeID,
		event.Title,
		event.Description,
		event.Location,
		event.StartTime,
		event.DurationMinutes,
		event.RecurrenceRule,
		event.IsTraining,
		event.Date,
		event.Details,
		event.Status,
		event.CreatedBy,
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("error creating event: %w", err)
	}
	return nil
}

func (r *EventRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	var event models.Event
	err := r.db.GetContext(ctx, &event, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting event: %w", err)
	}
	return &event, nil
}

func (r *EventRepository) ListByBrigade(ctx context.Context, brigadeID uuid.UUID) ([]models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE brigade_id = $1 ORDER BY start_time`

	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query, brigadeID); err != nil {
		return nil, fmt.Errorf("error listing events: %w", err)
	}
	return events, nil
}

func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	query := `
		UPDATE events
		SET title = $1, description = $2, location = $3, start_time = $4, duration_minutes = $5,
		    recurrence_rule = $6, date = $7, details = $8, status = $9, updated_at = $10
		WHERE id = $11`

	event.UpdatedAt = timePtr(time.Now())
	event.Date = dates.FromTime(event.StartTime)

	result, err := r.db.ExecContext(ctx, query,
		event.Title,
		event.Description,
		event.Location,
		event.StartTime,
		event.DurationMinutes,
		event.RecurrenceRule,
		event.Date,
		event.Details,
		event.Status,
		event.UpdatedAt,
		event.ID,
	)
	if err != nil {
		return fmt.Errorf("error updating event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrEventNotFound
	}
	return nil
}

func (r *EventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM event_exceptions WHERE event_id = $1`, id); err != nil {
		return fmt.Errorf("error deleting event exceptions: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id); err != nil {
		return fmt.Errorf("error deleting event: %w", err)
	}
	return nil
}

// TrainingExists reports whether a materialized training row already
// covers the date; the idempotence key of MaterializeHorizon.
func (r *EventRepository) TrainingExists(ctx context.Context, brigadeID uuid.UUID, d dates.Date) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM events WHERE brigade_id = $1 AND is_training AND date = $2)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, brigadeID, d); err != nil {
		return false, fmt.Errorf("error checking training existence: %w", err)
	}
	return exists, nil
}

func (r *EventRepository) ListTrainingsBetween(ctx context.Context, brigadeID uuid.UUID, from, to dates.Date) ([]models.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE brigade_id = $1 AND is_training AND date BETWEEN $2 AND $3 AND status = $4
		ORDER BY date`

	var events []models.Event
	err := r.db.SelectContext(ctx, &events, query, brigadeID, from, to, models.EventStatusActive)
	if err != nil {
		return nil, fmt.Errorf("error listing trainings: %w", err)
	}
	return events, nil
}
