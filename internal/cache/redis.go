package cache

import (
	"context"
	"time"

	redisadapter "stockscore/internal/adapters/redis"
	"stockscore/pkg/errors"
)

var _ Store = (*RedisStore)(nil)

// DefaultRedisPrefix scopes every cache key in a shared Redis
const DefaultRedisPrefix = "stockscore:cache:"

// RedisStore keeps entries in Redis so several processes share them
type RedisStore struct {
	client *redisadapter.Client
	prefix string
}

// NewRedisStore creates a Redis-backed store. An empty prefix uses DefaultRedisPrefix.
func NewRedisStore(client *redisadapter.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.GetBytes(ctx, s.prefix+key)
	if errors.Is(err, redisadapter.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "redis get")
	}
	return data, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.SetBytes(ctx, s.prefix+key, value, ttl); err != nil {
		return errors.Wrap(err, "redis set")
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Delete(ctx, s.prefix+key); err != nil {
		return errors.Wrap(err, "redis delete")
	}
	return nil
}

// Flush removes only keys under the store prefix
func (s *RedisStore) Flush(ctx context.Context) error {
	if _, err := s.client.DeletePrefix(ctx, s.prefix); err != nil {
		return errors.Wrap(err, "redis flush")
	}
	return nil
}
