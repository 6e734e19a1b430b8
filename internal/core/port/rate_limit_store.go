package port

import (
	"context"
	"time"
)

// RateLimitStore is the shared counter backing the fixed-window limiter.
type RateLimitStore interface {
	// Increment atomically increments the counter at windowKey and returns
	// the post-increment value. The first increment of a key arms its
	// expiry so abandoned windows clean themselves up.
	Increment(ctx context.Context, windowKey string, ttl time.Duration) (int64, error)
}
