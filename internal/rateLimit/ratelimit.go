package rateLimit

import (
	"context"
	"time"

	redisadapter "github.com/Ashik-Muhammed/Travelita-sub002/internal/adapters/redis"
	"github.com/Ashik-Muhammed/Travelita-sub002/internal/observability"
)

// RateLimiter is a Redis fixed-window counter shared by both front doors,
// so a client cannot double its allowance by switching entry points.
type RateLimiter struct {
	redis *redisadapter.Cache
}

func NewRateLimiter(redis *redisadapter.Cache) *RateLimiter {
	return &RateLimiter{redis: redis}
}

func (rl *RateLimiter) Allow(ctx context.Context, key string, rate int, period time.Duration) bool {
	fullKey := "rl:" + key

	pipe := rl.redis.Client().Pipeline()
	incr := pipe.Incr(ctx, fullKey)
	pipe.Expire(ctx, fullKey, period)

	if _, err := pipe.Exec(ctx); err != nil {
		// fail open when redis is unreachable
		return true
	}

	allowed := incr.Val() <= int64(rate)
	if !allowed {
		observability.RateLimitExceeded.Inc()
	}
	return allowed
}
