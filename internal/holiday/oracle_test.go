package holiday

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/brigadehq/roster/internal/dates"
)

type fakeSource struct {
	holidays map[dates.Date]string
	err      error
	calls    int
}

func (f *fakeSource) HolidayName(_ context.Context, _ string, d dates.Date) (string, bool, error) {
	f.calls++
	if f.err != nil {
		return "", false, f.err
	}
	name, ok := f.holidays[d]
	return name, ok, nil
}

func TestServiceLookup(t *testing.T) {
	ctx := context.Background()
	anniversary := dates.MustParse("2025-01-27")
	source := &fakeSource{holidays: map[dates.Date]string{anniversary: "Auckland Anniversary"}}
	svc := NewService(source, nil, "auckland", 0, zap.NewNop())

	assert.True(t, svc.IsPublicHoliday(ctx, anniversary))
	assert.Equal(t, "Auckland Anniversary", svc.HolidayName(ctx, anniversary).MustGet())

	ordinary := dates.MustParse("2025-02-03")
	assert.False(t, svc.IsPublicHoliday(ctx, ordinary))
	assert.True(t, svc.HolidayName(ctx, ordinary).IsAbsent())
}

func TestServiceFailsOpen(t *testing.T) {
	ctx := context.Background()
	source := &fakeSource{err: errors.New("connection refused")}
	svc := NewService(source, nil, "auckland", 0, zap.NewNop())

	// An unavailable source must answer "not a holiday", not error.
	assert.False(t, svc.IsPublicHoliday(ctx, dates.MustParse("2025-01-27")))
	assert.True(t, svc.HolidayName(ctx, dates.MustParse("2025-01-27")).IsAbsent())
}

func TestStaticOracle(t *testing.T) {
	ctx := context.Background()
	oracle := Static{dates.MustParse("2025-12-25"): "Christmas Day"}

	assert.True(t, oracle.IsPublicHoliday(ctx, dates.MustParse("2025-12-25")))
	assert.Equal(t, "Christmas Day", oracle.HolidayName(ctx, dates.MustParse("2025-12-25")).MustGet())
	assert.False(t, oracle.IsPublicHoliday(ctx, dates.MustParse("2025-12-26")))
}
