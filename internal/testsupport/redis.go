package testsupport

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient creates a redis client for integration tests and ensures database cleanup.
// The test is skipped in short mode or when REDIS_HOST is not set.
func NewRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping redis test in short mode")
	}
	cfg := LoadRedisConfigFromEnv(t)

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}

	if err := client.FlushDB(context.Background()).Err(); err != nil {
		t.Fatalf("failed to flush redis before test: %v", err)
	}

	t.Cleanup(func() {
		_ = client.FlushDB(context.Background()).Err()
		_ = client.Close()
	})

	return client
}
