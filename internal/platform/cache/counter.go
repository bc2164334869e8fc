package cache

import (
	"context"
	"time"
)

// Hit increments key in a fixed window that starts at the first hit and
// reports the count and the time left in the window. Replicas sharing one
// Redis share the window.
func (r *Redis) Hit(ctx context.Context, key string, window time.Duration) (int, time.Duration, error) {
	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	ttl := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, err
	}
	left := ttl.Val()
	if left <= 0 {
		if err := r.client.PExpire(ctx, key, window).Err(); err != nil {
			return 0, 0, err
		}
		left = window
	}
	return int(incr.Val()), left, nil
}
