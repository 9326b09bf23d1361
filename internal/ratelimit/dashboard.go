package ratelimit

import (
	"context"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/leadfuel/internal/config"
	"go.uber.org/zap"
)

const keyDashboardUser = "leadfuel:ratelimit:user:%s"

// Bucket is the token bucket the dashboard limiter draws from.
type Bucket interface {
	Allow(ctx context.Context, key string, rate float64, burst int) (*RateLimitResult, error)
}

// DashboardLimiter throttles dashboard API calls per user. A nil or disabled
// limiter allows everything.
type DashboardLimiter struct {
	bucket Bucket
	rate   float64
	burst  int
	log    *zap.Logger
}

func NewDashboardLimiter(cfg config.Config, client *redis.Client, log *zap.Logger) *DashboardLimiter {
	limitCfg := cfg.RateLimit
	log = log.Named("ratelimit")
	if !limitCfg.Enabled {
		return nil
	}
	if client == nil {
		log.Warn("rate limit enabled without redis, disabling")
		return nil
	}
	if limitCfg.UserRate <= 0 || limitCfg.UserBurst <= 0 {
		log.Warn("rate limit rate and burst must be positive, disabling",
			zap.Float64("rate", limitCfg.UserRate),
			zap.Int("burst", limitCfg.UserBurst),
		)
		return nil
	}
	return NewDashboardLimiterWithBucket(NewTokenBucket(client), limitCfg.UserRate, limitCfg.UserBurst, log)
}

func NewDashboardLimiterWithBucket(bucket Bucket, rate float64, burst int, log *zap.Logger) *DashboardLimiter {
	return &DashboardLimiter{bucket: bucket, rate: rate, burst: burst, log: log}
}

func (l *DashboardLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

// AllowUser consumes one token for userID. Limiter failures fail open so a
// Redis outage never takes the dashboard down.
func (l *DashboardLimiter) AllowUser(ctx context.Context, userID string) (*RateLimitResult, error) {
	if !l.Enabled() {
		return &RateLimitResult{Allowed: true}, nil
	}
	res, err := l.bucket.Allow(ctx, fmt.Sprintf(keyDashboardUser, strings.TrimSpace(userID)), l.rate, l.burst)
	if err != nil {
		l.log.Warn("rate limit check failed", zap.Error(err))
		return &RateLimitResult{Allowed: true, Limit: l.burst}, err
	}
	return res, nil
}
