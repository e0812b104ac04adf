package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/brigadehq/roster/internal/dates"
	"github.com/brigadehq/roster/internal/models"
	"github.com/brigadehq/roster/internal/testutils"
)

func TestLeaveRepositoryLifecycle(t *testing.T) {
	db := testutils.TestDB(t)
	brigade, member, _ := seedBrigade(t, db)
	repo := NewLeaveRepository(db, zap.NewNop())
	ctx := context.Background()

	leave := &models.LeaveRequest{
		MemberID:     member.ID,
		TrainingDate: dates.MustParse("2025-07-07"),
		Reason:       "overseas",
	}
	require.NoError(t, repo.Create(ctx, leave))
	assert.Equal(t, models.LeaveStatusPending, leave.Status)

	held, err := repo.HasActiveForDate(ctx, member.ID, leave.TrainingDate)
	require.NoError(t, err)
	assert.True(t, held)

	pending, err := repo.ListPendingByBrigade(ctx, brigade.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, leave.ID, pending[0].ID)

	admin := testutils.RandomUUID()
	require.NoError(t, repo.Transition(ctx, leave.ID, models.LeaveStatusApproved, admin))

	got, err := repo.GetByID(ctx, leave.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LeaveStatusApproved, got.Status)
	assert.Equal(t, admin, got.DecidedBy.UUID)
	assert.NotNil(t, got.DecidedAt)

	// Approved dates still count as held
	dates2, err := repo.ActiveLeaveDates(ctx, member.ID)
	require.NoError(t, err)
	assert.True(t, dates2[leave.TrainingDate])
}

func TestLeaveTransitionAtMostOnce(t *testing.T) {
	db := testutils.TestDB(t)
	_, member, _ := seedBrigade(t, db)
	repo := NewLeaveRepository(db, zap.NewNop())
	ctx := context.Background()

	leave := &models.LeaveRequest{
		MemberID:     member.ID,
		TrainingDate: dates.MustParse("2025-08-04"),
	}
	require.NoError(t, repo.Create(ctx, leave))

	require.NoError(t, repo.Transition(ctx, leave.ID, models.LeaveStatusDenied, testutils.RandomUUID()))

	// A second decision loses the race
	err := repo.Transition(ctx, leave.ID, models.LeaveStatusApproved, testutils.RandomUUID())
	assert.ErrorIs(t, err, models.ErrLeaveNotPending)

	got, err := repo.GetByID(ctx, leave.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LeaveStatusDenied, got.Status)
}

func TestCountOpen(t *testing.T) {
	db := testutils.TestDB(t)
	_, member, _ := seedBrigade(t, db)
	repo := NewLeaveRepository(db, zap.NewNop())
	ctx := context.Background()

	for _, day := range []string{"2025-09-01", "2025-09-08", "2025-09-15"} {
		require.NoError(t, repo.Create(ctx, &models.LeaveRequest{
			MemberID:     member.ID,
			TrainingDate: dates.MustParse(day),
		}))
	}
	// A past-dated request does not count against the quota
	require.NoError(t, repo.Create(ctx, &models.LeaveRequest{
		MemberID:     member.ID,
		TrainingDate: dates.MustParse("2025-01-06"),
	}))

	open, err := repo.CountOpen(ctx, member.ID, dates.MustParse("2025-08-29"))
	require.NoError(t, err)
	assert.Equal(t, 3, open)
}

func TestExtendedLeave(t *testing.T) {
	db := testutils.TestDB(t)
	_, member, _ := seedBrigade(t, db)
	repo := NewLeaveRepository(db, zap.NewNop())
	ctx := context.Background()

	leave := &models.ExtendedLeaveRequest{
		MemberID:          member.ID,
		StartDate:         dates.MustParse("2025-10-01"),
		EndDate:           dates.MustParse("2025-11-30"),
		TrainingsAffected: 9,
		Reason:            "parental leave",
	}
	require.NoError(t, repo.CreateExtended(ctx, leave))

	overlapping, err := repo.HasOverlappingExtended(ctx, member.ID,
		dates.MustParse("2025-11-15"), dates.MustParse("2025-12-15"))
	require.NoError(t, err)
	assert.True(t, overlapping)

	overlapping, err = repo.HasOverlappingExtended(ctx, member.ID,
		dates.MustParse("2025-12-01"), dates.MustParse("2025-12-15"))
	require.NoError(t, err)
	assert.False(t, overlapping)

	require.NoError(t, repo.TransitionExtended(ctx, leave.ID, models.LeaveStatusApproved, testutils.RandomUUID()))
	err = repo.TransitionExtended(ctx, leave.ID, models.LeaveStatusDenied, testutils.RandomUUID())
	assert.ErrorIs(t, err, models.ErrLeaveNotPending)

	got, err := repo.GetExtendedByID(ctx, leave.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, got.TrainingsAffected)
	assert.Equal(t, models.LeaveStatusApproved, got.Status)
}
