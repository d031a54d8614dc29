package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	redisadapter "stockscore/internal/adapters/redis"
	"stockscore/internal/metrics"
	"stockscore/pkg/errors"
)

var _ Limiter = (*RedisLimiter)(nil)

// Lua script for the fixed window (atomic operation)
// KEYS[1] = window key
// ARGV[1] = max requests
// ARGV[2] = window in milliseconds
// ARGV[3] = current timestamp in milliseconds
// Returns: {allowed, count, reset_at}
const luaFixedWindowScript = `
local key = KEYS[1]
local max = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local data = redis.call('HMGET', key, 'count', 'reset_at')
local count = tonumber(data[1])
local reset_at = tonumber(data[2])

-- Start a new window
if not count or now >= reset_at then
    reset_at = now + window
    redis.call('HSET', key, 'count', 1, 'reset_at', reset_at)
    redis.call('PEXPIRE', key, window)
    return {1, 1, reset_at}
end

if count >= max then
    return {0, count, reset_at}
end

count = redis.call('HINCRBY', key, 'count', 1)
return {1, count, reset_at}
`

var fixedWindowScript = redis.NewScript(luaFixedWindowScript)

// DefaultKeyPrefix scopes limiter keys in a shared Redis
const DefaultKeyPrefix = "stockscore:rate_limit:"

// RedisLimiter shares fixed windows across processes
type RedisLimiter struct {
	client    *redisadapter.Client
	policy    Policy
	keyPrefix string
	now       func() time.Time
}

// NewRedisLimiter creates a Redis-backed fixed-window limiter
func NewRedisLimiter(client *redisadapter.Client, policy Policy, now func() time.Time) *RedisLimiter {
	if now == nil {
		now = time.Now
	}
	return &RedisLimiter{
		client:    client,
		policy:    policy,
		keyPrefix: DefaultKeyPrefix,
		now:       now,
	}
}

func (l *RedisLimiter) Check(ctx context.Context, identifier string) (Result, error) {
	vals, err := l.client.RunScript(ctx, fixedWindowScript,
		[]string{l.keyPrefix + identifier},
		l.policy.MaxRequests,
		l.policy.Window.Milliseconds(),
		l.now().UnixMilli(),
	).Int64Slice()
	if err != nil {
		return Result{}, errors.Wrap(err, "failed to execute fixed window script")
	}
	if len(vals) != 3 {
		return Result{}, errors.Newf("fixed window script returned %d values", len(vals))
	}

	allowed := vals[0] == 1
	metrics.RecordRateLimit("redis", allowed)

	res := Result{Success: allowed, ResetAt: time.UnixMilli(vals[2])}
	if allowed {
		res.Remaining = l.policy.remaining(int(vals[1]))
	}
	return res, nil
}

func (l *RedisLimiter) Reset(ctx context.Context, identifier string) error {
	return l.client.Delete(ctx, l.keyPrefix+identifier)
}
