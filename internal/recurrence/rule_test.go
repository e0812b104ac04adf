package recurrence

import (
	"testing"
	"time"

	"github.com/brigadehq/roster/internal/dates"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRule(t *testing.T) {
	rule, err := ParseRule("FREQ=WEEKLY;INTERVAL=2;BYDAY=MO,TH")
	require.NoError(t, err)
	assert.Equal(t, FrequencyWeekly, rule.Freq)
	assert.Equal(t, 2, rule.Interval)
	assert.Equal(t, []time.Weekday{time.Monday, time.Thursday}, rule.ByDay)
	assert.Nil(t, rule.Count)
	assert.Nil(t, rule.Until)
}

func TestParseRuleDefaults(t *testing.T) {
	rule, err := ParseRule("FREQ=DAILY")
	require.NoError(t, err)
	assert.Equal(t, FrequencyDaily, rule.Freq)
	assert.Equal(t, 1, rule.Interval)
}

func TestParseRuleCountAndUntil(t *testing.T) {
	rule, err := ParseRule("FREQ=MONTHLY;BYMONTHDAY=31;COUNT=6")
	require.NoError(t, err)
	require.NotNil(t, rule.ByMonthDay)
	assert.Equal(t, 31, *rule.ByMonthDay)
	require.NotNil(t, rule.Count)
	assert.Equal(t, 6, *rule.Count)

	rule, err = ParseRule("FREQ=YEARLY;UNTIL=2030-01-01")
	require.NoError(t, err)
	require.NotNil(t, rule.Until)
	assert.Equal(t, dates.MustParse("2030-01-01"), *rule.Until)
}

func TestParseRuleIgnoresUnknownKeys(t *testing.T) {
	rule, err := ParseRule("FREQ=WEEKLY;WKST=MO;BYSETPOS=1")
	require.NoError(t, err)
	assert.Equal(t, FrequencyWeekly, rule.Freq)
}

func TestParseRuleErrors(t *testing.T) {
	cases := map[string]string{
		"empty":           "",
		"missing freq":    "INTERVAL=2;BYDAY=MO",
		"bad freq":        "FREQ=FORTNIGHTLY",
		"zero interval":   "FREQ=WEEKLY;INTERVAL=0",
		"bad interval":    "FREQ=WEEKLY;INTERVAL=two",
		"bad weekday":     "FREQ=WEEKLY;BYDAY=MONDAY",
		"bad month day":   "FREQ=MONTHLY;BYMONTHDAY=32",
		"zero count":      "FREQ=DAILY;COUNT=0",
		"bad until":       "FREQ=DAILY;UNTIL=someday",
		"no equals":       "FREQ=WEEKLY;NONSENSE",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseRule(input)
			assert.Error(t, err)
		})
	}
}

func TestParseRuleLenient(t *testing.T) {
	assert.Nil(t, ParseRuleLenient(""))

	good := ParseRuleLenient("FREQ=WEEKLY;BYDAY=MO")
	require.NotNil(t, good)
	assert.Equal(t, FrequencyWeekly, good.Freq)

	// A garbage rule must not collapse to nil: nil means a single
	// occurrence, while a bad rule has to expand to nothing.
	bad := ParseRuleLenient("FREQ=FORTNIGHTLY")
	require.NotNil(t, bad)
	start := time.Date(2025, 1, 6, 19, 0, 0, 0, time.UTC)
	assert.Empty(t, Expand(Definition{Start: start, Rule: bad},
		nil, dates.MustParse("2025-01-01"), dates.MustParse("2025-12-31")))
}

func TestRuleString(t *testing.T) {
	for _, s := range []string{
		"FREQ=WEEKLY;BYDAY=MO,TH",
		"FREQ=WEEKLY;INTERVAL=2;BYDAY=TU",
		"FREQ=MONTHLY;BYMONTHDAY=15;COUNT=12",
		"FREQ=YEARLY;UNTIL=2030-06-01",
	} {
		rule, err := ParseRule(s)
		require.NoError(t, err)
		assert.Equal(t, s, rule.String())
	}
}
