package idempotency

import (
	"context"
	"time"

	redisadapter "github.com/Ashik-Muhammed/Travelita-sub002/internal/adapters/redis"
)

// Idempotency is the booking ingestion path's dedup window. A key claims a
// booking id before the insert happens, so a duplicate submission (same key
// through either front door) resolves to the already-claimed id instead of
// a second record.
type Idempotency struct {
	redis *redisadapter.Idempotency
	ttl   time.Duration
}

func NewIdempotency(redis *redisadapter.Idempotency, ttl time.Duration) *Idempotency {
	return &Idempotency{redis: redis, ttl: ttl}
}

// Claim returns (true, "") when key is freshly claimed for bookingID, and
// (false, existing) when another call got there first.
func (i *Idempotency) Claim(ctx context.Context, key, bookingID string) (bool, string, error) {
	return i.redis.Claim(ctx, key, bookingID, i.ttl)
}

// Release undoes a claim whose booking was never persisted, so a retry with
// the same key can claim again instead of replaying a booking that does not
// exist.
func (i *Idempotency) Release(ctx context.Context, key, bookingID string) error {
	return i.redis.Release(ctx, key, bookingID)
}
