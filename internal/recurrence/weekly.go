package recurrence

import (
	"sort"
	"time"

	"github.com/brigadehq/roster/internal/dates"
)

// nextWeekly advances cur to the next date selected by a weekly rule.
//
// With an empty weekday set the rule means "same weekday every
// intervalWeeks weeks". Otherwise the next date is the earliest weekday
// in the set strictly after cur within cur's week (weeks run
// Sunday..Saturday); when the current week is exhausted the cursor jumps
// to the earliest weekday in the set, intervalWeeks weeks ahead. This
// keeps multi-day rules like "Tuesday and Thursday" from skipping or
// doubling a week.
func nextWeekly(cur dates.Date, weekdaySet []time.Weekday, intervalWeeks int) dates.Date {
	if intervalWeeks < 1 {
		intervalWeeks = 1
	}
	if len(weekdaySet) == 0 {
		return cur.AddDays(7 * intervalWeeks)
	}

	days := make([]time.Weekday, len(weekdaySet))
	copy(days, weekdaySet)
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })

	for _, day := range days {
		if day > cur.Weekday() {
			return cur.AddDays(int(day - cur.Weekday()))
		}
	}

	// Current week exhausted: first selected weekday of the week
	// intervalWeeks ahead.
	weekStart := cur.AddDays(-int(cur.Weekday()))
	return weekStart.AddDays(7*intervalWeeks + int(days[0]))
}

// NextWeekdayOnOrAfter returns d itself when it falls on the given
// weekday, otherwise the next such date after d.
func NextWeekdayOnOrAfter(d dates.Date, weekday time.Weekday) dates.Date {
	offset := (int(weekday) - int(d.Weekday()) + 7) % 7
	return d.AddDays(offset)
}
