package scheduler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brigadehq/roster/internal/dates"
	"github.com/brigadehq/roster/internal/holiday"
	"github.com/brigadehq/roster/internal/models"
	"github.com/brigadehq/roster/internal/recurrence"
)

// MaxUpcomingWeeks bounds the forward walk of Upcoming. If the cap is
// reached before limit dates are found, fewer results come back.
const MaxUpcomingWeeks = 20

// maxRangeSteps bounds RangeCount against absurd admin-entered ranges.
const maxRangeSteps = recurrence.MaxExpansionSteps

// LeaveSource reports the training dates a member already holds a
// pending or approved leave request against.
type LeaveSource interface {
	ActiveLeaveDates(ctx context.Context, memberID uuid.UUID) (map[dates.Date]bool, error)
}

// UpcomingTraining is one candidate date a member may request leave
// against, annotated for display.
type UpcomingTraining struct {
	Date          dates.Date `json:"date"`
	Start         time.Time  `json:"start"`
	IsRescheduled bool       `json:"is_rescheduled"`
	MoveReason    string     `json:"move_reason,omitempty"`
}

// RangeResult is the outcome of a range walk: the effective training
// dates inside the range, ordered, plus their count.
type RangeResult struct {
	Count int          `json:"count"`
	Dates []dates.Date `json:"dates"`
}

// LeaveWindowCalculator derives leave-request candidate dates from the
// same nominal-weekly / exception / holiday-shift logic the training
// scheduler materializes from, without touching event rows.
type LeaveWindowCalculator struct {
	exceptions ExceptionSource
	leaves     LeaveSource
	oracle     holiday.Oracle
	clock      Clock
	logger     *zap.Logger
}

func NewLeaveWindowCalculator(exceptions ExceptionSource, leaves LeaveSource, oracle holiday.Oracle, clock Clock, logger *zap.Logger) *LeaveWindowCalculator {
	return &LeaveWindowCalculator{
		exceptions: exceptions,
		leaves:     leaves,
		oracle:     oracle,
		clock:      clock,
		logger:     logger,
	}
}

// Upcoming returns up to limit future training dates the member can
// still request leave against. Dates the member already holds a pending
// or approved request for are skipped, as are dates already in the past;
// the walk gives up after MaxUpcomingWeeks nominal weeks.
func (c *LeaveWindowCalculator) Upcoming(ctx context.Context, brigade *models.Brigade, memberID uuid.UUID, limit int) ([]UpcomingTraining, error) {
	if limit <= 0 {
		return nil, nil
	}

	hour, minute, err := brigade.TrainingClock()
	if err != nil {
		c.logger.Warn("brigade has malformed training time",
			zap.String("brigade_id", brigade.ID.String()), zap.Error(err))
		return nil, nil
	}

	exceptions, err := c.trainingExceptions(ctx, brigade)
	if err != nil {
		return nil, err
	}

	held, err := c.leaves.ActiveLeaveDates(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("loading member leave dates: %w", err)
	}

	now := c.clock.Now()
	today := dates.FromTime(now)

	nominal := NextOccurrenceFrom(brigade, today)
	// Tonight's training is no longer requestable once it has started.
	if nominal == today && !now.Before(today.At(hour, minute)) {
		nominal = nominal.AddDays(7)
	}

	var out []UpcomingTraining
	for week := 0; week < MaxUpcomingWeeks && len(out) < limit; week++ {
		occ, ok := resolveNominal(ctx, c.oracle, nominal, exceptions, hour, minute)
		nominal = nominal.AddDays(7)
		if !ok {
			continue
		}
		// A replacement can point backwards; passed dates are not
		// candidates.
		if occ.Start.Before(now) {
			continue
		}
		if held[occ.Date] {
			continue
		}
		out = append(out, UpcomingTraining{
			Date:          occ.Date,
			Start:         occ.Start,
			IsRescheduled: occ.Moved || occ.HolidayShifted,
			MoveReason:    moveReason(occ),
		})
	}

	return out, nil
}

// RangeCount walks every training occurrence whose effective date falls
// inside [start, end] inclusive. Cancelled occurrences are excluded; an
// occurrence moved into the range from a nominal date outside it is
// included.
func (c *LeaveWindowCalculator) RangeCount(ctx context.Context, brigade *models.Brigade, start, end dates.Date) (RangeResult, error) {
	if end.Before(start) {
		return RangeResult{}, nil
	}

	hour, minute, err := brigade.TrainingClock()
	if err != nil {
		c.logger.Warn("brigade has malformed training time",
			zap.String("brigade_id", brigade.ID.String()), zap.Error(err))
		return RangeResult{}, nil
	}

	exceptions, err := c.trainingExceptions(ctx, brigade)
	if err != nil {
		return RangeResult{}, err
	}

	inRange := func(d dates.Date) bool {
		return !d.Before(start) && !d.After(end)
	}

	included := make(map[dates.Date]bool)

	// The walk begins one nominal week before the range so a training
	// holiday-shifted forward across the start boundary is still seen;
	// the effective-date filter discards anything out of range.
	steps := 0
	for nominal := NextOccurrenceFrom(brigade, start.AddDays(-7)); !nominal.After(end) && steps < maxRangeSteps; nominal = nominal.AddDays(7) {
		steps++
		occ, ok := resolveNominal(ctx, c.oracle, nominal, exceptions, hour, minute)
		if !ok {
			continue
		}
		if inRange(occ.Date) {
			included[occ.Date] = true
		}
	}

	// Trainings moved into the range from a nominal date outside it are
	// not seen by the nominal walk above.
	for replacement, origin := range exceptions.Replacements() {
		if inRange(replacement) && !inRange(origin) {
			included[replacement] = true
		}
	}

	result := RangeResult{Count: len(included), Dates: make([]dates.Date, 0, len(included))}
	for d := range included {
		result.Dates = append(result.Dates, d)
	}
	sort.Slice(result.Dates, func(i, j int) bool { return result.Dates[i].Before(result.Dates[j]) })

	return result, nil
}

func (c *LeaveWindowCalculator) trainingExceptions(ctx context.Context, brigade *models.Brigade) (recurrence.ExceptionSet, error) {
	if brigade.TrainingEventID == uuid.Nil {
		return nil, nil
	}
	set, err := c.exceptions.ExceptionSet(ctx, brigade.TrainingEventID)
	if err != nil {
		return nil, fmt.Errorf("loading training exceptions: %w", err)
	}
	return set, nil
}

func moveReason(occ TrainingOccurrence) string {
	switch {
	case occ.HolidayShifted:
		return fmt.Sprintf("moved from %s (%s)", occ.Nominal, occ.HolidayName)
	case occ.Moved && occ.MoveReason != "":
		return fmt.Sprintf("rescheduled from %s: %s", occ.Nominal, occ.MoveReason)
	case occ.Moved:
		return fmt.Sprintf("rescheduled from %s", occ.Nominal)
	default:
		return ""
	}
}
