package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Idempotency stores booking-id claims keyed by caller-supplied
// idempotency keys. The SetNX claim is what makes two front doors writing
// the same key produce one booking.
type Idempotency struct {
	client *redis.Client
}

func NewIdempotency(client *redis.Client) *Idempotency {
	return &Idempotency{client: client}
}

// Claim binds value to key if the key is unclaimed. Returns (true, "") on a
// fresh claim, or (false, existing) when the key was already claimed.
func (i *Idempotency) Claim(ctx context.Context, key, value string, ttl time.Duration) (bool, string, error) {
	ok, err := i.client.SetNX(ctx, "idemp:"+key, value, ttl).Result()
	if err != nil {
		return false, "", err
	}
	if ok {
		return true, "", nil
	}
	existing, err := i.client.Get(ctx, "idemp:"+key).Result()
	if err == redis.Nil {
		// claim expired between SetNX and Get; treat as contended
		return false, "", nil
	}
	if err != nil {
		return false, "", err
	}
	return false, existing, nil
}

// Release drops the claim on key, but only while it still holds value. A
// claim another call has since re-taken stays in place.
func (i *Idempotency) Release(ctx context.Context, key, value string) error {
	existing, err := i.client.Get(ctx, "idemp:"+key).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}
	if existing != value {
		return nil
	}
	return i.client.Del(ctx, "idemp:"+key).Err()
}
