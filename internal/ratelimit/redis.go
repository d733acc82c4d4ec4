package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var windowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {current, ttl}
`)

// RedisLimiter is a fixed-window counter shared by every instance. When Redis
// is unreachable it degrades to the in-memory limiter.
type RedisLimiter struct {
	client   redis.UniversalClient
	window   time.Duration
	prefix   string
	fallback *InMemoryLimiter
	log      *zap.Logger
}

func NewRedis(client redis.UniversalClient, window time.Duration, log *zap.Logger) *RedisLimiter {
	if window <= 0 {
		window = time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisLimiter{client: client, window: window, prefix: "agence:rl:", fallback: NewInMemory(window), log: log}
}

// NewRedisFromURL parses a redis:// URL.
func NewRedisFromURL(url string, window time.Duration, log *zap.Logger) (*RedisLimiter, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return NewRedis(redis.NewClient(opts), window, log), nil
}

func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int) Decision {
	if limit <= 0 {
		limit = 1
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	vals, err := windowScript.Run(ctx, l.client, []string{l.prefix + key}, l.window.Milliseconds()).Int64Slice()
	if err != nil || len(vals) < 2 {
		l.log.Warn("redis rate limiter unavailable, using in-memory fallback", zap.Error(err))
		return l.fallback.Allow(ctx, key, limit)
	}
	count, ttlMs := int(vals[0]), vals[1]
	if ttlMs < 0 {
		ttlMs = l.window.Milliseconds()
	}
	d := Decision{Allowed: count <= limit, Limit: limit, Remaining: max(limit-count, 0)}
	if !d.Allowed {
		d.RetryAfter = time.Duration(ttlMs) * time.Millisecond
	}
	return d
}

// Close releases the Redis connection pool.
func (l *RedisLimiter) Close() error { return l.client.Close() }
