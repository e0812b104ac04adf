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

type HolidayRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewHolidayRepository(db *sqlx.DB, logger *zap.Logger) *HolidayRepository {
	return &HolidayRepository{db: db, logger: logger}
}

// HolidayName implements the holiday oracle's source.
func (r *HolidayRepository) HolidayName(ctx context.Context, region string, d dates.Date) (string, bool, error) {
	query := `SELECT name FROM public_holidays WHERE region = $1 AND date = $2`

	var name string
	err := r.db.GetContext(ctx, &name, query, region, d)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("error looking up holiday: %w", err)
	}
	return name, true, nil
}

// Upsert replaces the holiday name for (region, date); the out-of-band
// refresh path.
func (r *HolidayRepository) Upsert(ctx context.Context, holiday *models.PublicHoliday) error {
	query := `
		INSERT INTO public_holidays (id, region, date, name, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (region, date) DO UPDATE SET name = EXCLUDED.name`

	if holiday.ID == uuid.Nil {
		holiday.ID = uuid.New()
	}
	if holiday.CreatedAt.IsZero() {
		holiday.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query,
		holiday.ID,
		holiday.Region,
		holiday.Date,
		holiday.Name,
		holiday.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error upserting holiday: %w", err)
	}
	return nil
}

func (r *HolidayRepository) ListRange(ctx context.Context, region string, from, to dates.Date) ([]models.PublicHoliday, error) {
	query := `
		SELECT id, region, date, name, created_at
		FROM public_holidays
		WHERE region = $1 AND date BETWEEN $2 AND $3
		ORDER BY date`

	var holidays []models.PublicHoliday
	if err := r.db.SelectContext(ctx, &holidays, query, region, from, to); err != nil {
		return nil, fmt.Errorf("error listing holidays: %w", err)
	}
	return holidays, nil
}

func (r *HolidayRepository) Delete(ctx context.Context, region string, d dates.Date) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM public_holidays WHERE region = $1 AND date = $2`, region, d)
	if err != nil {
		return fmt.Errorf("error deleting holiday: %w", err)
	}
	return nil
}
