package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/brigadehq/roster/internal/models"
	"github.com/brigadehq/roster/internal/recurrence"
)

type ExceptionRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewExceptionRepository(db *sqlx.DB, logger *zap.Logger) *ExceptionRepository {
	return &ExceptionRepository{db: db, logger: logger}
}

func (r *ExceptionRepository) Create(ctx context.Context, exception *models.EventException) error {
	query := `
		INSERT INTO event_exceptions (id, event_id, exception_date, is_cancelled, replacement_date, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	if exception.ID == uuid.Nil {
		exception.ID = uuid.New()
	}
	if exception.CreatedAt.IsZero() {
		exception.CreatedAt = time.Now()
	}

	var replacement interface{}
	if !exception.ReplacementDate.IsZero() {
		replacement = exception.ReplacementDate
	}

	_, err := r.db.ExecContext(ctx, query,
		exception.ID,
		exception.EventID,
		exception.ExceptionDate,
		exception.IsCancelled,
		replacement,
		exception.Notes,
		exception.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return models.ErrExceptionExists
		}
		return fmt.Errorf("error creating exception: %w", err)
	}
	return nil
}

func (r *ExceptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM event_exceptions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting exception: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrExceptionNotFound
	}
	return nil
}

func (r *ExceptionRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.EventException, error) {
	query := `
		SELECT id, event_id, exception_date, is_cancelled, replacement_date, notes, created_at
		FROM event_exceptions
		WHERE event_id = $1
		ORDER BY exception_date`

	var exceptions []models.EventException
	if err := r.db.SelectContext(ctx, &exceptions, query, eventID); err != nil {
		return nil, fmt.Errorf("error listing exceptions: %w", err)
	}
	return exceptions, nil
}

// ExceptionSet loads the event's exceptions in the form the expansion
// engine consumes.
func (r *ExceptionRepository) ExceptionSet(ctx context.Context, eventID uuid.UUID) (recurrence.ExceptionSet, error) {
	rows, err := r.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return models.BuildExceptionSet(rows), nil
}
