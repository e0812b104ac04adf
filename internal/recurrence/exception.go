package recurrence

import "github.com/brigadehq/roster/internal/dates"

// OverrideKind distinguishes the two exception shapes: an occurrence is
// either suppressed outright or moved to a replacement date.
type OverrideKind int

const (
	OverrideCancel OverrideKind = iota
	OverrideMove
)

// Override is one ad-hoc exception applied to a nominal occurrence date.
type Override struct {
	Kind        OverrideKind
	Replacement dates.Date
	Note        string
}

// ExceptionSet indexes overrides by the nominal occurrence date they
// replace. At most one override exists per date.
type ExceptionSet map[dates.Date]Override

// Replacements returns the moved-to dates with their nominal origins,
// used by range walkers to pick up occurrences moved into a window from
// outside it.
func (s ExceptionSet) Replacements() map[dates.Date]dates.Date {
	out := make(map[dates.Date]dates.Date)
	for nominal, ov := range s {
		if ov.Kind == OverrideMove {
			out[ov.Replacement] = nominal
		}
	}
	return out
}
