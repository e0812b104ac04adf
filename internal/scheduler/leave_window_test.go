package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/brigadehq/roster/internal/dates"
	"github.com/brigadehq/roster/internal/holiday"
	"github.com/brigadehq/roster/internal/models"
	"github.com/brigadehq/roster/internal/recurrence"
)

type fakeLeaveSource struct {
	held map[dates.Date]bool
}

func (f *fakeLeaveSource) ActiveLeaveDates(_ context.Context, _ uuid.UUID) (map[dates.Date]bool, error) {
	return f.held, nil
}

func newTestCalculator(brigade *models.Brigade, exc recurrence.ExceptionSet, held map[dates.Date]bool, oracle holiday.Oracle, now time.Time) *LeaveWindowCalculator {
	source := &fakeExceptionSource{sets: map[uuid.UUID]recurrence.ExceptionSet{}}
	if exc != nil {
		source.sets[brigade.TrainingEventID] = exc
	}
	if oracle == nil {
		oracle = holiday.Static{}
	}
	return NewLeaveWindowCalculator(source, &fakeLeaveSource{held: held}, oracle, FixedClock{Time: now}, zap.NewNop())
}

func TestUpcomingBasicWalk(t *testing.T) {
	ctx := context.Background()
	brigade := testBrigade()
	// Wednesday 2025-01-01; first Monday is Jan 6.
	c := newTestCalculator(brigade, nil, nil, nil, time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))

	got, err := c.Upcoming(ctx, brigade, uuid.New(), 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, dates.MustParse("2025-01-06"), got[0].Date)
	assert.Equal(t, dates.MustParse("2025-01-13"), got[1].Date)
	assert.Equal(t, dates.MustParse("2025-01-20"), got[2].Date)
	for _, u := range got {
		assert.False(t, u.IsRescheduled)
		assert.Equal(t, 19, u.Start.Hour())
	}
}

func TestUpcomingSkipsTonightOnceStarted(t *testing.T) {
	ctx := context.Background()
	brigade := testBrigade()

	// Monday 18:00, an hour before training: tonight still counts.
	c := newTestCalculator(brigade, nil, nil, nil, time.Date(2025, 1, 6, 18, 0, 0, 0, time.UTC))
	got, err := c.Upcoming(ctx, brigade, uuid.New(), 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, dates.MustParse("2025-01-06"), got[0].Date)

	// Monday 19:00 sharp: tonight has started, next week leads.
	c = newTestCalculator(brigade, nil, nil, nil, time.Date(2025, 1, 6, 19, 0, 0, 0, time.UTC))
	got, err = c.Upcoming(ctx, brigade, uuid.New(), 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, dates.MustParse("2025-01-13"), got[0].Date)
}

func TestUpcomingSkipsHeldDates(t *testing.T) {
	ctx := context.Background()
	brigade := testBrigade()
	held := map[dates.Date]bool{dates.MustParse("2025-01-13"): true}
	c := newTestCalculator(brigade, nil, held, nil, time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))

	got, err := c.Upcoming(ctx, brigade, uuid.New(), 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for _, u := range got {
		assert.NotEqual(t, dates.MustParse("2025-01-13"), u.Date)
	}
	assert.Equal(t, dates.MustParse("2025-01-27"), got[2].Date)
}

func TestUpcomingResolvesExceptions(t *testing.T) {
	ctx := context.Background()
	brigade := testBrigade()
	exceptions := recurrence.ExceptionSet{
		dates.MustParse("2025-01-06"): {Kind: recurrence.OverrideCancel},
		dates.MustParse("2025-01-13"): {
			Kind:        recurrence.OverrideMove,
			Replacement: dates.MustParse("2025-01-15"),
			Note:        "hall unavailable",
		},
	}
	c := newTestCalculator(brigade, exceptions, nil, nil, time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))

	got, err := c.Upcoming(ctx, brigade, uuid.New(), 2)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, dates.MustParse("2025-01-15"), got[0].Date)
	assert.True(t, got[0].IsRescheduled)
	assert.Contains(t, got[0].MoveReason, "hall unavailable")

	assert.Equal(t, dates.MustParse("2025-01-20"), got[1].Date)
}

func TestUpcomingHolidayShift(t *testing.T) {
	ctx := context.Background()
	brigade := testBrigade()
	oracle := holiday.Static{dates.MustParse("2025-01-27"): "Auckland Anniversary"}
	c := newTestCalculator(brigade, nil, nil, oracle, time.Date(2025, 1, 21, 12, 0, 0, 0, time.UTC))

	got, err := c.Upcoming(ctx, brigade, uuid.New(), 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, dates.MustParse("2025-01-28"), got[0].Date)
	assert.True(t, got[0].IsRescheduled)
	assert.Contains(t, got[0].MoveReason, "Auckland Anniversary")
}

func TestUpcomingNeverReturnsPastDates(t *testing.T) {
	ctx := context.Background()
	brigade := testBrigade()
	// Jan 13's training was pulled back to Jan 10, already behind the
	// clock on Jan 11.
	exceptions := recurrence.ExceptionSet{
		dates.MustParse("2025-01-13"): {
			Kind:        recurrence.OverrideMove,
			Replacement: dates.MustParse("2025-01-10"),
		},
	}
	c := newTestCalculator(brigade, exceptions, nil, nil, time.Date(2025, 1, 11, 12, 0, 0, 0, time.UTC))

	got, err := c.Upcoming(ctx, brigade, uuid.New(), 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, dates.MustParse("2025-01-20"), got[0].Date)
	assert.Equal(t, dates.MustParse("2025-01-27"), got[1].Date)
}

func TestUpcomingExhaustsAtCap(t *testing.T) {
	ctx := context.Background()
	brigade := testBrigade()

	// Cancel every nominal Monday the walk can reach.
	exceptions := make(recurrence.ExceptionSet)
	for d := dates.MustParse("2025-01-06"); d.Before(dates.MustParse("2025-12-31")); d = d.AddDays(7) {
		exceptions[d] = recurrence.Override{Kind: recurrence.OverrideCancel}
	}
	c := newTestCalculator(brigade, exceptions, nil, nil, time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))

	got, err := c.Upcoming(ctx, brigade, uuid.New(), 3)
	require.NoError(t, err, "an exhausted walk returns fewer results, not an error")
	assert.Empty(t, got)
}

func TestRangeCountPlain(t *testing.T) {
	ctx := context.Background()
	brigade := testBrigade()
	c := newTestCalculator(brigade, nil, nil, nil, time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))

	result, err := c.RangeCount(ctx, brigade, dates.MustParse("2025-01-01"), dates.MustParse("2025-01-31"))
	require.NoError(t, err)
	assert.Equal(t, 4, result.Count)
	assert.Equal(t, []dates.Date{
		dates.MustParse("2025-01-06"),
		dates.MustParse("2025-01-13"),
		dates.MustParse("2025-01-20"),
		dates.MustParse("2025-01-27"),
	}, result.Dates)
}

func TestRangeCountExcludesCancelled(t *testing.T) {
	ctx := context.Background()
	brigade := testBrigade()
	exceptions := recurrence.ExceptionSet{
		dates.MustParse("2025-01-13"): {Kind: recurrence.OverrideCancel},
	}
	c := newTestCalculator(brigade, exceptions, nil, nil, time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))

	result, err := c.RangeCount(ctx, brigade, dates.MustParse("2025-01-01"), dates.MustParse("2025-01-31"))
	require.NoError(t, err)
	assert.Equal(t, 3, result.Count)
	assert.NotContains(t, result.Dates, dates.MustParse("2025-01-13"))
}

func TestRangeCountIncludesMovedIn(t *testing.T) {
	ctx := context.Background()
	brigade := testBrigade()
	// Nominal Feb 3 sits outside the window but its replacement Jan 30
	// falls inside; it must still be counted.
	exceptions := recurrence.ExceptionSet{
		dates.MustParse("2025-02-03"): {
			Kind:        recurrence.OverrideMove,
			Replacement: dates.MustParse("2025-01-30"),
		},
	}
	c := newTestCalculator(brigade, exceptions, nil, nil, time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))

	result, err := c.RangeCount(ctx, brigade, dates.MustParse("2025-01-01"), dates.MustParse("2025-01-31"))
	require.NoError(t, err)
	assert.Equal(t, 5, result.Count)
	assert.Contains(t, result.Dates, dates.MustParse("2025-01-30"))
}

func TestRangeCountExcludesMovedOut(t *testing.T) {
	ctx := context.Background()
	brigade := testBrigade()
	exceptions := recurrence.ExceptionSet{
		dates.MustParse("2025-01-27"): {
			Kind:        recurrence.OverrideMove,
			Replacement: dates.MustParse("2025-02-05"),
		},
	}
	c := newTestCalculator(brigade, exceptions, nil, nil, time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))

	result, err := c.RangeCount(ctx, brigade, dates.MustParse("2025-01-01"), dates.MustParse("2025-01-31"))
	require.NoError(t, err)
	assert.Equal(t, 3, result.Count)
}

func TestRangeCountHolidayShiftAcrossStartBoundary(t *testing.T) {
	ctx := context.Background()
	brigade := testBrigade()
	// Nominal Monday Jan 27 shifts to Tuesday Jan 28. A range opening on
	// the 28th still owns that training even though its nominal date
	// falls before the range.
	oracle := holiday.Static{dates.MustParse("2025-01-27"): "Auckland Anniversary"}
	c := newTestCalculator(brigade, nil, nil, oracle, time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))

	result, err := c.RangeCount(ctx, brigade, dates.MustParse("2025-01-28"), dates.MustParse("2025-02-09"))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Count)
	assert.Contains(t, result.Dates, dates.MustParse("2025-01-28"))
	assert.Contains(t, result.Dates, dates.MustParse("2025-02-03"))
}

func TestRangeCountMonotonicAsRangeWidens(t *testing.T) {
	ctx := context.Background()
	brigade := testBrigade()
	exceptions := recurrence.ExceptionSet{
		dates.MustParse("2025-01-13"): {Kind: recurrence.OverrideCancel},
		dates.MustParse("2025-02-03"): {
			Kind:        recurrence.OverrideMove,
			Replacement: dates.MustParse("2025-02-06"),
		},
	}
	c := newTestCalculator(brigade, exceptions, nil, nil, time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))

	start := dates.MustParse("2025-01-01")
	prev := 0
	for end := start; end.Before(dates.MustParse("2025-03-15")); end = end.AddDays(3) {
		result, err := c.RangeCount(ctx, brigade, start, end)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, result.Count, prev, "count must not shrink as the range widens to %s", end)
		prev = result.Count
	}
}

func TestRangeCountInvertedRange(t *testing.T) {
	ctx := context.Background()
	brigade := testBrigade()
	c := newTestCalculator(brigade, nil, nil, nil, time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))

	result, err := c.RangeCount(ctx, brigade, dates.MustParse("2025-02-01"), dates.MustParse("2025-01-01"))
	require.NoError(t, err)
	assert.Zero(t, result.Count)
	assert.Empty(t, result.Dates)
}
