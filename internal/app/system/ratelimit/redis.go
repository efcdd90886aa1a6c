package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisLimiter is a fixed-window Counter shared through Redis, so every
// instance behind the load balancer sees the same counts.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	limit  int64
	window time.Duration
}

// NewRedisLimiter creates a Counter allowing limit hits per key per window.
func NewRedisLimiter(client *redis.Client, prefix string, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		prefix: prefix,
		limit:  int64(limit),
		window: window,
	}
}

// hitScript increments the window counter and gives it a TTL in one atomic
// step. A key found without a TTL gets one, so a counter can never outlive
// its window.
var hitScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if redis.call("PTTL", KEYS[1]) < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

// Allow implements Counter.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	count, err := hitScript.Run(ctx, l.client, []string{l.prefix + key}, l.window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("ratelimit hit: %w", err)
	}
	return count <= l.limit, nil
}

// Reset implements Counter.
func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, l.prefix+key).Err(); err != nil {
		return fmt.Errorf("ratelimit reset: %w", err)
	}
	return nil
}

// NewRedisLoginLimiter builds a LoginLimiter whose counters live in Redis.
func NewRedisLoginLimiter(client *redis.Client, maxAttempts int, window time.Duration, logger *zap.Logger) *LoginLimiter {
	return NewLoginLimiter(
		NewRedisLimiter(client, "akadox:login:", 10, time.Minute),
		NewRedisLimiter(client, "akadox:login:", maxAttempts, window),
		logger,
	)
}
