package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/brigadehq/roster/internal/models"
	"github.com/brigadehq/roster/internal/testutils"
)

// seedBrigade inserts a brigade with its weekly training series and one
// member, the minimum fixture most repository tests need.
func seedBrigade(t *testing.T, db *sqlx.DB) (*models.Brigade, *models.Member, *models.Event) {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	brigadeRepo := NewBrigadeRepository(db, logger)
	eventRepo := NewEventRepository(db, logger)
	memberRepo := NewMemberRepository(db, logger)

	brigade := &models.Brigade{
		Name:                  "Test Brigade",
		Region:                "auckland",
		TrainingWeekday:       1,
		TrainingTime:          "19:00",
		TrainingDurationHours: 2,
	}
	require.NoError(t, brigadeRepo.Create(ctx, brigade))

	series := &models.Event{
		BrigadeID:      brigade.ID,
		Title:          "Weekly Training",
		StartTime:      time.Date(2025, 1, 6, 19, 0, 0, 0, time.UTC),
		RecurrenceRule: "FREQ=WEEKLY;BYDAY=MO",
	}
	require.NoError(t, eventRepo.Create(ctx, series))
	require.NoError(t, brigadeRepo.SetTrainingEvent(ctx, brigade.ID, series.ID))
	brigade.TrainingEventID = series.ID

	member := &models.Member{
		ID:        testutils.RandomUUID(),
		BrigadeID: brigade.ID,
		Name:      "Test Member",
		Email:     testutils.RandomUUID().String() + "@example.com",
		Role:      models.RoleMember,
	}
	require.NoError(t, memberRepo.Create(ctx, member))

	return brigade, member, series
}
