package testsupport

import (
	"fmt"
	"os"
	"testing"

	"stockscore/internal/adapters/config"
)

// LoadRedisConfigFromEnv reads redis settings for integration tests.
// Tests are skipped when REDIS_HOST is missing. DB defaults to 1 so a
// developer's working database is never flushed.
func LoadRedisConfigFromEnv(t *testing.T) config.RedisConfig {
	t.Helper()

	host := os.Getenv("REDIS_HOST")
	if host == "" {
		t.Skip("integration environment missing, set REDIS_HOST to run")
	}

	return config.RedisConfig{
		Host:     host,
		Port:     intValue("REDIS_PORT", 6379),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       intValue("REDIS_TEST_DB", 1),
	}
}

func intValue(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var parsed int
		_, err := fmt.Sscanf(val, "%d", &parsed)
		if err == nil {
			return parsed
		}
	}

	return fallback
}
