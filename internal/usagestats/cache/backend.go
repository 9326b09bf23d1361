package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/leadfuel/internal/usagestats/domain"
)

// Backend stores computed statistics by key.
type Backend interface {
	Name() string
	Get(ctx context.Context, key string) (domain.UsageStatistics, bool, error)
	Set(ctx context.Context, key string, stats domain.UsageStatistics) error
}

type memoryBackend struct {
	lru *expirable.LRU[string, domain.UsageStatistics]
}

// NewMemoryBackend keeps up to size entries in process, each for ttl.
func NewMemoryBackend(size int, ttl time.Duration) Backend {
	if size <= 0 {
		size = 1024
	}
	return &memoryBackend{lru: expirable.NewLRU[string, domain.UsageStatistics](size, nil, ttl)}
}

func (b *memoryBackend) Name() string { return "memory" }

func (b *memoryBackend) Get(_ context.Context, key string) (domain.UsageStatistics, bool, error) {
	stats, ok := b.lru.Get(key)
	if !ok {
		return domain.UsageStatistics{}, false, nil
	}
	return clone(stats), true, nil
}

func (b *memoryBackend) Set(_ context.Context, key string, stats domain.UsageStatistics) error {
	b.lru.Add(key, clone(stats))
	return nil
}

type redisBackend struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisBackend stores statistics as JSON with a per-key expiry.
func NewRedisBackend(client *redis.Client, ttl time.Duration) Backend {
	return &redisBackend{client: client, ttl: ttl}
}

func (b *redisBackend) Name() string { return "redis" }

func (b *redisBackend) Get(ctx context.Context, key string) (domain.UsageStatistics, bool, error) {
	raw, err := b.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.UsageStatistics{}, false, nil
		}
		return domain.UsageStatistics{}, false, err
	}
	var stats domain.UsageStatistics
	if err := json.Unmarshal(raw, &stats); err != nil {
		return domain.UsageStatistics{}, false, err
	}
	return stats, true, nil
}

func (b *redisBackend) Set(ctx context.Context, key string, stats domain.UsageStatistics) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return b.client.Set(ctx, key, raw, b.ttl).Err()
}

func clone(stats domain.UsageStatistics) domain.UsageStatistics {
	out := stats
	out.WeeklyUsage = append([]domain.DayUsage(nil), stats.WeeklyUsage...)
	out.CreditTypes = append([]domain.CreditTypeUsage(nil), stats.CreditTypes...)
	if out.WeeklyUsage == nil {
		out.WeeklyUsage = []domain.DayUsage{}
	}
	if out.CreditTypes == nil {
		out.CreditTypes = []domain.CreditTypeUsage{}
	}
	return out
}
