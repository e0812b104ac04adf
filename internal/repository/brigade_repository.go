package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/brigadehq/roster/internal/models"
)

type BrigadeRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewBrigadeRepository(db *sqlx.DB, logger *zap.Logger) *BrigadeRepository {
	return &BrigadeRepository{db: db, logger: logger}
}

func (r *BrigadeRepository) Create(ctx context.Context, brigade *models.Brigade) error {
	query := `
		INSERT INTO brigades (id, name, region, training_weekday, training_time, training_duration_hours, training_event_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	if brigade.ID == uuid.Nil {
		brigade.ID = uuid.New()
	}
	if brigade.CreatedAt.IsZero() {
		brigade.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query,
		brigade.ID,
		brigade.Name,
		brigade.Region,
		brigade.TrainingWeekday,
		brigade.TrainingTime,
		brigade.TrainingDurationHours,
		uuid.NullUUID{UUID: brigade.TrainingEventID, Valid: brigade.TrainingEventID != uuid.Nil},
		brigade.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error creating brigade: %w", err)
	}
	return nil
}

// SetTrainingEvent points the brigade at its recurring training series.
func (r *BrigadeRepository) SetTrainingEvent(ctx context.Context, brigadeID, eventID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE brigades SET training_event_id = $2 WHERE id = $1`, brigadeID, eventID)
	if err != nil {
		return fmt.Errorf("error setting training event: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking update result: %w", err)
	}
	if rows == 0 {
		return models.ErrBrigadeNotFound
	}
	return nil
}

func (r *BrigadeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Brigade, error) {
	query := `
		SELECT id, name, region, training_weekday, training_time, training_duration_hours, COALESCE(training_event_id, '00000000-0000-0000-0000-000000000000') AS training_event_id, created_at
		FROM brigades
		WHERE id = $1`

	var brigade models.Brigade
	err := r.db.GetContext(ctx, &brigade, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting brigade: %w", err)
	}
	return &brigade, nil
}

func (r *BrigadeRepository) List(ctx context.Context) ([]models.Brigade, error) {
	query := `
		SELECT id, name, region, training_weekday, training_time, training_duration_hours, COALESCE(training_event_id, '00000000-0000-0000-0000-000000000000') AS training_event_id, created_at
		FROM brigades
		ORDER BY name`

	var brigades []models.Brigade
	if err := r.db.SelectContext(ctx, &brigades, query); err != nil {
		return nil, fmt.Errorf("error listing brigades: %w", err)
	}
	return brigades, nil
}
