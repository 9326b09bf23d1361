package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/leadfuel/internal/config"
	"github.com/smallbiznis/leadfuel/internal/observability/metrics"
	"github.com/smallbiznis/leadfuel/internal/usagestats/domain"
	"github.com/smallbiznis/leadfuel/internal/usagestats/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const keyUsageStats = "leadfuel:usage_stats:%s:%s"

type Params struct {
	fx.In

	Config     config.Config
	Log        *zap.Logger
	Aggregator *service.Aggregator
	Redis      *redis.Client    `optional:"true"`
	Metrics    *metrics.Metrics `optional:"true"`
}

// CachedService serves recently computed statistics for up to the cache TTL
// before recomputing. Cache errors degrade to a direct computation.
type CachedService struct {
	next    domain.Service
	backend Backend
	log     *zap.Logger
	metrics *metrics.Metrics
}

// New wraps the aggregator according to the stats cache config. A disabled
// cache returns the aggregator itself.
func New(p Params) domain.Service {
	cfg := p.Config.StatsCache
	log := p.Log.Named("usagestats.cache")
	if !cfg.Enabled || cfg.TTL <= 0 {
		log.Info("usage stats cache disabled")
		return p.Aggregator
	}

	var backend Backend
	switch {
	case cfg.Backend == config.CacheBackendRedis && p.Redis != nil:
		backend = NewRedisBackend(p.Redis, cfg.TTL)
	default:
		if cfg.Backend == config.CacheBackendRedis {
			log.Warn("redis cache requested without redis client, using memory")
		}
		backend = NewMemoryBackend(cfg.Size, cfg.TTL)
	}

	log.Info("usage stats cache enabled",
		zap.String("backend", backend.Name()),
		zap.Duration("ttl", cfg.TTL),
	)
	return NewCachedService(p.Aggregator, backend, log, p.Metrics)
}

func NewCachedService(next domain.Service, backend Backend, log *zap.Logger, m *metrics.Metrics) *CachedService {
	return &CachedService{next: next, backend: backend, log: log, metrics: m}
}

func (s *CachedService) Aggregate(ctx context.Context, userID string, now time.Time) (domain.UsageStatistics, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return s.next.Aggregate(ctx, userID, now)
	}

	key := cacheKey(userID, now)
	stats, ok, err := s.backend.Get(ctx, key)
	switch {
	case err != nil:
		s.log.Warn("usage stats cache read failed", zap.String("backend", s.backend.Name()), zap.Error(err))
	case ok:
		s.metrics.RecordStatsCache(ctx, s.backend.Name(), "hit")
		return stats, nil
	}
	s.metrics.RecordStatsCache(ctx, s.backend.Name(), "miss")

	stats, err = s.next.Aggregate(ctx, userID, now)
	if err != nil {
		return domain.UsageStatistics{}, err
	}
	if err := s.backend.Set(ctx, key, stats); err != nil {
		s.log.Warn("usage stats cache write failed", zap.String("backend", s.backend.Name()), zap.Error(err))
	}
	return stats, nil
}

// Entries are scoped to the caller's calendar day so week buckets never
// straddle midnight.
func cacheKey(userID string, now time.Time) string {
	return fmt.Sprintf(keyUsageStats, userID, now.Format(time.DateOnly))
}
