package holiday

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/mo"
	"go.uber.org/zap"

	"github.com/brigadehq/roster/internal/dates"
)

// Oracle answers whether a date is a public holiday in the configured
// region. Lookups are deliberately fail-open: an unavailable backing
// store answers "not a holiday" so scheduling and leave flows keep
// working through an outage.
type Oracle interface {
	IsPublicHoliday(ctx context.Context, d dates.Date) bool
	HolidayName(ctx context.Context, d dates.Date) mo.Option[string]
}

// Source is the persistent holiday lookup the oracle reads through.
type Source interface {
	HolidayName(ctx context.Context, region string, d dates.Date) (string, bool, error)
}

const (
	cachePrefix = "holiday:"
	// Cached as the name for holidays; this sentinel marks a cached miss.
	cacheMiss = "\x00none"
)

// Service is the production oracle: a Postgres-backed source with a
// redis read-through cache in front of it.
type Service struct {
	source   Source
	redis    *redis.Client
	region   string
	cacheTTL time.Duration
	logger   *zap.Logger
}

func NewService(source Source, rdb *redis.Client, region string, cacheTTL time.Duration, logger *zap.Logger) *Service {
	if cacheTTL <= 0 {
		cacheTTL = 12 * time.Hour
	}
	return &Service{
		source:   source,
		redis:    rdb,
		region:   region,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

func (s *Service) IsPublicHoliday(ctx context.Context, d dates.Date) bool {
	return s.HolidayName(ctx, d).IsPresent()
}

func (s *Service) HolidayName(ctx context.Context, d dates.Date) mo.Option[string] {
	key := cachePrefix + s.region + ":" + d.String()

	if s.redis != nil {
		cached, err := s.redis.Get(ctx, key).Result()
		if err == nil {
			if cached == cacheMiss {
				return mo.None[string]()
			}
			return mo.Some(cached)
		}
		if err != redis.Nil {
			s.logger.Warn("holiday cache read failed", zap.String("date", d.String()), zap.Error(err))
		}
	}

	name, found, err := s.source.HolidayName(ctx, s.region, d)
	if err != nil {
		// Fail open: a broken lookup must not block scheduling.
		s.logger.Warn("holiday lookup failed, treating date as non-holiday",
			zap.String("region", s.region),
			zap.String("date", d.String()),
			zap.Error(err))
		return mo.None[string]()
	}

	if s.redis != nil {
		value := name
		if !found {
			value = cacheMiss
		}
		if err := s.redis.Set(ctx, key, value, s.cacheTTL).Err(); err != nil {
			s.logger.Warn("holiday cache write failed", zap.String("date", d.String()), zap.Error(err))
		}
	}

	if !found {
		return mo.None[string]()
	}
	return mo.Some(name)
}

// Static is a fixed in-memory oracle, used in tests and as a seed for
// regions with no imported data.
type Static map[dates.Date]string

func (s Static) IsPublicHoliday(_ context.Context, d dates.Date) bool {
	_, ok := s[d]
	return ok
}

func (s Static) HolidayName(_ context.Context, d dates.Date) mo.Option[string] {
	name, ok := s[d]
	if !ok {
		return mo.None[string]()
	}
	return mo.Some(name)
}
