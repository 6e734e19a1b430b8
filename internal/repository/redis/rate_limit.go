package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/arklim/orderflow-catalog/internal/core/port"
)

// FixedWindowConfig defines configuration for the fixed-window counter store.
type FixedWindowConfig struct {
	KeyPrefix string
}

// RateLimitRepository persists fixed-window request counters in Redis.
type RateLimitRepository struct {
	client *redis.Client
	cfg    FixedWindowConfig
}

// NewRateLimitRepository constructs a repository using the provided Redis client and config.
func NewRateLimitRepository(client *redis.Client, cfg FixedWindowConfig) *RateLimitRepository {
	return &RateLimitRepository{client: client, cfg: cfg}
}

// incrExpireScript increments the window counter and arms the key's expiry on
// the first increment, in one server-side round trip. Doing both in a script
// closes the gap where a crash between INCR and EXPIRE would leave a counter
// that never expires.
var incrExpireScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// Increment atomically increments the counter at windowKey and returns the
// post-increment value. The key self-destructs ttl after its first increment.
func (r *RateLimitRepository) Increment(ctx context.Context, windowKey string, ttl time.Duration) (int64, error) {
	if ttl <= 0 {
		return 0, errors.New("ttl must be positive")
	}

	key := r.key(windowKey)
	count, err := incrExpireScript.Run(ctx, r.client, []string{key}, ttl.Milliseconds()).Int64()
	if err != nil {
		return 0, fmt.Errorf("redis incr window: %w", err)
	}

	return count, nil
}

func (r *RateLimitRepository) key(windowKey string) string {
	if r.cfg.KeyPrefix == "" {
		return windowKey
	}
	return fmt.Sprintf("%s:%s", r.cfg.KeyPrefix, windowKey)
}

var _ port.RateLimitStore = (*RateLimitRepository)(nil)
