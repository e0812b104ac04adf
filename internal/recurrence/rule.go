package recurrence

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/brigadehq/roster/internal/dates"
)

// Frequency represents the recurrence frequency
type Frequency string

const (
	FrequencyDaily   Frequency = "DAILY"
	FrequencyWeekly  Frequency = "WEEKLY"
	FrequencyMonthly Frequency = "MONTHLY"
	FrequencyYearly  Frequency = "YEARLY"
)

var weekdayCodes = map[string]time.Weekday{
	"SU": time.Sunday,
	"MO": time.Monday,
	"TU": time.Tuesday,
	"WE": time.Wednesday,
	"TH": time.Thursday,
	"FR": time.Friday,
	"SA": time.Saturday,
}

// Rule is a parsed recurrence rule. The grammar is a restricted
// KEY=VALUE;KEY=VALUE subset: FREQ, INTERVAL, BYDAY, BYMONTHDAY, COUNT,
// UNTIL. Unknown keys are ignored.
type Rule struct {
	Freq       Frequency
	Interval   int
	ByDay      []time.Weekday
	ByMonthDay *int
	Count      *int
	Until      *dates.Date
}

// ParseRule parses a rule string. Callers that must fail safe (the
// expander) use ParseRuleLenient instead; this strict form reports the
// first problem so the request layer can surface a field error.
func ParseRule(s string) (*Rule, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("empty recurrence rule")
	}

	rule := &Rule{Interval: 1}
	seenFreq := false

	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, found := strings.Cut(part, "=")
		if !found {
			return nil, fmt.Errorf("malformed rule segment %q", part)
		}
		key = strings.ToUpper(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "FREQ":
			freq := Frequency(strings.ToUpper(value))
			switch freq {
			case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
				rule.Freq = freq
				seenFreq = true
			default:
				return nil, fmt.Errorf("unsupported frequency: %s", value)
			}
		case "INTERVAL":
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("invalid interval %q: %w", value, err)
			}
			if n < 1 {
				return nil, fmt.Errorf("interval must be at least 1, got %d", n)
			}
			rule.Interval = n
		case "BYDAY":
			for _, code := range strings.Split(value, ",") {
				code = strings.ToUpper(strings.TrimSpace(code))
				day, ok := weekdayCodes[code]
				if !ok {
					return nil, fmt.Errorf("invalid weekday code: %s", code)
				}
				rule.ByDay = append(rule.ByDay, day)
			}
		case "BYMONTHDAY":
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("invalid month day %q: %w", value, err)
			}
			if n < 1 || n > 31 {
				return nil, fmt.Errorf("month day out of range: %d", n)
			}
			rule.ByMonthDay = &n
		case "COUNT":
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("invalid count %q: %w", value, err)
			}
			if n < 1 {
				return nil, fmt.Errorf("count must be positive, got %d", n)
			}
			rule.Count = &n
		case "UNTIL":
			d, err := dates.Parse(value)
			if err != nil {
				return nil, fmt.Errorf("invalid until date %q: %w", value, err)
			}
			rule.Until = &d
		default:
			// Unknown keys are ignored so rules written against a richer
			// grammar still expand on the parts we support.
		}
	}

	if !seenFreq {
		return nil, fmt.Errorf("recurrence rule has no FREQ")
	}

	return rule, nil
}

// ParseRuleLenient parses a rule string, degrading any problem to a rule
// that expands to zero occurrences. A malformed admin-entered rule
// empties the calendar rather than breaking it. Only an empty string
// returns nil, which marks the definition as non-recurring.
func ParseRuleLenient(s string) *Rule {
	if s == "" {
		return nil
	}
	rule, err := ParseRule(s)
	if err != nil {
		return &Rule{}
	}
	return rule
}

// String renders the rule back into the KEY=VALUE grammar.
func (r *Rule) String() string {
	parts := []string{"FREQ=" + string(r.Freq)}
	if r.Interval > 1 {
		parts = append(parts, "INTERVAL="+strconv.Itoa(r.Interval))
	}
	if len(r.ByDay) > 0 {
		codes := make([]string, len(r.ByDay))
		for i, day := range r.ByDay {
			codes[i] = strings.ToUpper(day.String()[:2])
		}
		parts = append(parts, "BYDAY="+strings.Join(codes, ","))
	}
	if r.ByMonthDay != nil {
		parts = append(parts, "BYMONTHDAY="+strconv.Itoa(*r.ByMonthDay))
	}
	if r.Count != nil {
		parts = append(parts, "COUNT="+strconv.Itoa(*r.Count))
	}
	if r.Until != nil {
		parts = append(parts, "UNTIL="+r.Until.String())
	}
	return strings.Join(parts, ";")
}
