package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisadapter "stockscore/internal/adapters/redis"
	"stockscore/internal/testsupport"
)

func TestRedisStoreGetOrSet(t *testing.T) {
	rdb := testsupport.NewRedisClient(t)
	store := NewRedisStore(redisadapter.Wrap(rdb), "test:cache:")
	c := New(store)
	ctx := context.Background()

	calls := 0
	fetch := func(context.Context) (quote, error) {
		calls++
		return quote{Ticker: "INFY", Price: 1500}, nil
	}

	first, err := GetOrSet(ctx, c, BuildKey(NamespaceOverview, "INFY"), time.Minute, fetch)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := GetOrSet(ctx, c, BuildKey(NamespaceOverview, "INFY"), time.Minute, fetch)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Data, second.Data)
	assert.Equal(t, 1, calls)

	ttl, err := rdb.TTL(ctx, "test:cache:overview:INFY").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 50*time.Second)
}

func TestRedisStoreMissAndFlush(t *testing.T) {
	rdb := testsupport.NewRedisClient(t)
	store := NewRedisStore(redisadapter.Wrap(rdb), "test:cache:")
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "absent")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, rdb.Set(ctx, "other:key", "keep", 0).Err())
	require.NoError(t, store.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, store.Set(ctx, "b", []byte("2"), time.Minute))
	require.NoError(t, store.Flush(ctx))

	_, ok, err = store.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	val, err := rdb.Get(ctx, "other:key").Result()
	require.NoError(t, err)
	assert.Equal(t, "keep", val)
}
