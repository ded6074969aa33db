package donation

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/yaguita/iglesia-backend/app/models"
	"github.com/yaguita/iglesia-backend/internal/pkg/apperror"
	"github.com/yaguita/iglesia-backend/internal/pkg/cache"
)

const (
	StatsCacheKey = "donation:stats"
	StatsCacheTTL = 5 * time.Minute

	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// StatsCache holds the last computed aggregate. Implementations must treat
// failures as misses.
type StatsCache interface {
	Get(ctx context.Context) (*models.DonationStats, bool)
	Set(ctx context.Context, stats *models.DonationStats)
	Invalidate(ctx context.Context)
}

type NoopStatsCache struct{}

func (NoopStatsCache) Get(context.Context) (*models.DonationStats, bool) { return nil, false }
func (NoopStatsCache) Set(context.Context, *models.DonationStats)        {}
func (NoopStatsCache) Invalidate(context.Context)                        {}

// RedisStatsCache keeps the aggregate in Redis under StatsCacheKey.
type RedisStatsCache struct {
	store *cache.Store
	ttl   time.Duration
}

func NewRedisStatsCache(store *cache.Store, ttl time.Duration) *RedisStatsCache {
	if ttl <= 0 {
		ttl = StatsCacheTTL
	}
	return &RedisStatsCache{store: store, ttl: ttl}
}

func (c *RedisStatsCache) Get(ctx context.Context) (*models.DonationStats, bool) {
	var stats models.DonationStats
	if err := c.store.GetJSON(ctx, StatsCacheKey, &stats); err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			log.Warnf("[Donation] stats cache read failed: %v", err)
		}
		return nil, false
	}
	return &stats, true
}

func (c *RedisStatsCache) Set(ctx context.Context, stats *models.DonationStats) {
	if err := c.store.SetJSON(ctx, StatsCacheKey, stats, c.ttl); err != nil {
		log.Warnf("[Donation] stats cache write failed: %v", err)
	}
}

func (c *RedisStatsCache) Invalidate(ctx context.Context) {
	if err := c.store.Delete(ctx, StatsCacheKey); err != nil {
		log.Warnf("[Donation] stats cache invalidation failed: %v", err)
	}
}

// Stats returns totals over completed donations, all-time and for the current
// calendar month. It never fails: store errors yield zeros.
func (s *Service) Stats(ctx context.Context) models.DonationStats {
	if cached, ok := s.stats.Get(ctx); ok {
		return *cached
	}

	var stats models.DonationStats

	total, err := s.donations.SumCompleted(ctx, nil)
	if err != nil {
		log.Errorf("[Donation] failed to aggregate donations: %v", err)
		return stats
	}
	monthStart := StartOfMonth(s.now())
	monthly, err := s.donations.SumCompleted(ctx, &monthStart)
	if err != nil {
		log.Errorf("[Donation] failed to aggregate monthly donations: %v", err)
		return stats
	}

	stats = models.DonationStats{
		TotalAmount:   total.Total,
		TotalCount:    total.Count,
		MonthlyAmount: monthly.Total,
		MonthlyCount:  monthly.Count,
	}
	s.stats.Set(ctx, &stats)
	return stats
}

// StartOfMonth returns the first instant of t's calendar month in UTC.
func StartOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// History lists a user's donations, newest first.
func (s *Service) History(ctx context.Context, userID string, limit int) ([]models.Donation, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	donations, err := s.donations.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, apperror.Persistence("Error loading donations", err)
	}
	if donations == nil {
		donations = []models.Donation{}
	}
	return donations, nil
}
