package cache

import (
	"context"
	"time"
)

// Store holds encoded values under string keys with a per-entry TTL.
// Get reports a miss with ok == false and a nil error.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Flush(ctx context.Context) error
}
