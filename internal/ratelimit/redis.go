package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Limiter shared by every instance using the same Redis.
// Each attempt bumps the counter and pushes its expiry a full window out,
// so the key disappears only after an idle window.
type Redis struct {
	client redis.Cmdable
	prefix string
	max    int
	window time.Duration
}

// NewRedis creates a Redis-backed limiter. Keys are stored under prefix.
func NewRedis(client redis.Cmdable, prefix string, max int, window time.Duration) *Redis {
	if max <= 0 {
		max = DefaultMax
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Redis{client: client, prefix: prefix, max: max, window: window}
}

// Allow implements Limiter.
func (r *Redis) Allow(ctx context.Context, key string) (Decision, error) {
	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, r.prefix+key)
		pipe.PExpire(ctx, r.prefix+key, r.window)
		return nil
	})
	if err != nil {
		return Decision{}, fmt.Errorf("failed to record attempt for %s: %w", key, err)
	}

	count := int(incr.Val())
	d := Decision{Allowed: count <= r.max, Count: count}
	if !d.Allowed {
		d.RetryAfter = r.window
	}
	return d, nil
}
