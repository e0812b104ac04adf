package recurrence

import (
	"sort"
	"time"

	"github.com/brigadehq/roster/internal/dates"
)

// MaxExpansionSteps bounds the expansion cursor so a rule that never
// reaches its window cannot spin forever. Hitting the ceiling ends the
// expansion silently.
const MaxExpansionSteps = 1000

// Definition is the engine-facing view of a recurring event: first
// occurrence instant, optional duration, optional rule. A nil Rule means
// a single occurrence.
type Definition struct {
	Start    time.Time
	Duration time.Duration
	Rule     *Rule
}

// Occurrence is one concrete calendar instance derived from a
// definition. Occurrences are produced fresh on every expansion and are
// never persisted by this package.
type Occurrence struct {
	Start          time.Time   `json:"start"`
	End            *time.Time  `json:"end,omitempty"`
	Nominal        dates.Date  `json:"nominal_date"`
	Moved          bool        `json:"moved"`
	OriginalDate   *dates.Date `json:"original_date,omitempty"`
	HolidayShifted bool        `json:"holiday_shifted"`
	HolidayName    string      `json:"holiday_name,omitempty"`
}

// Expand produces the definition's occurrences whose nominal dates fall
// inside [from, to], with exceptions applied, ordered by effective start
// time. It is a pure function of its inputs: malformed rules yield zero
// occurrences, never an error.
func Expand(def Definition, exceptions ExceptionSet, from, to dates.Date) []Occurrence {
	var out []Occurrence

	if def.Rule == nil {
		d := dates.FromTime(def.Start)
		if !d.Before(from) && !d.After(to) {
			out = appendResolved(out, def, exceptions, d)
		}
		return sortOccurrences(out)
	}

	rule := def.Rule
	if rule.Interval < 1 {
		return nil
	}
	switch rule.Freq {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
	default:
		return nil
	}

	cursor := dates.FromTime(def.Start)
	nominalCount := 0

	for steps := 0; steps < MaxExpansionSteps; steps++ {
		if cursor.After(to) {
			break
		}
		if rule.Until != nil && cursor.After(*rule.Until) {
			break
		}
		if rule.Count != nil && nominalCount >= *rule.Count {
			break
		}
		nominalCount++

		if !cursor.Before(from) {
			out = appendResolved(out, def, exceptions, cursor)
		}

		cursor = advance(cursor, rule)
	}

	return sortOccurrences(out)
}

// advance moves the cursor one step according to the rule.
func advance(cursor dates.Date, rule *Rule) dates.Date {
	switch rule.Freq {
	case FrequencyDaily:
		return cursor.AddDays(rule.Interval)
	case FrequencyWeekly:
		return nextWeekly(cursor, rule.ByDay, rule.Interval)
	case FrequencyMonthly:
		// Anchor on the first of the month so a day-31 start cannot
		// drift through short months, then clamp the target day.
		first := dates.Date{Year: cursor.Year, Month: cursor.Month, Day: 1}.AddMonths(rule.Interval)
		day := cursor.Day
		if rule.ByMonthDay != nil {
			day = *rule.ByMonthDay
		}
		if max := first.DaysIn(); day > max {
			day = max
		}
		return dates.Date{Year: first.Year, Month: first.Month, Day: day}
	case FrequencyYearly:
		return cursor.AddYears(rule.Interval)
	default:
		return cursor.AddDays(rule.Interval)
	}
}

// appendResolved applies the exception for the nominal date, if any, and
// appends the resulting occurrence. Cancelled dates emit nothing; moved
// dates emit at the replacement with the nominal time-of-day preserved.
func appendResolved(out []Occurrence, def Definition, exceptions ExceptionSet, nominal dates.Date) []Occurrence {
	hour, minute := def.Start.Hour(), def.Start.Minute()

	ov, ok := exceptions[nominal]
	if !ok {
		occ := Occurrence{Start: nominal.At(hour, minute), Nominal: nominal}
		if def.Duration > 0 {
			end := occ.Start.Add(def.Duration)
			occ.End = &end
		}
		return append(out, occ)
	}

	switch ov.Kind {
	case OverrideCancel:
		return out
	case OverrideMove:
		original := nominal
		occ := Occurrence{
			Start:        ov.Replacement.At(hour, minute),
			Nominal:      ov.Replacement,
			Moved:        true,
			OriginalDate: &original,
		}
		if def.Duration > 0 {
			end := occ.Start.Add(def.Duration)
			occ.End = &end
		}
		return append(out, occ)
	default:
		return out
	}
}

func sortOccurrences(out []Occurrence) []Occurrence {
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}
