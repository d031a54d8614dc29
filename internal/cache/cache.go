package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"stockscore/internal/metrics"
	"stockscore/pkg/errors"
	"stockscore/pkg/logger"
)

// Namespaces used when building keys
const (
	NamespaceOverview   = "overview"
	NamespaceFinancials = "financials"
	NamespaceHistorical = "historical"
	NamespaceAIScore    = "ai-score"
	NamespaceSearch     = "search"
	NamespacePopular    = "popular"
)

// Result wraps a value with whether it came from the cache
type Result[T any] struct {
	Data   T    `json:"data"`
	Cached bool `json:"cached"`
}

// Cache is a cache-aside helper over a Store
type Cache struct {
	store        Store
	singleFlight bool
	group        singleflight.Group
	log          *logger.Logger
}

// Option configures a Cache
type Option func(*Cache)

// WithSingleFlight collapses concurrent misses for one key into a single fetch
func WithSingleFlight(enabled bool) Option {
	return func(c *Cache) { c.singleFlight = enabled }
}

// WithLogger sets the cache logger
func WithLogger(l *logger.Logger) Option {
	return func(c *Cache) { c.log = l }
}

// New creates a cache over store
func New(store Store, opts ...Option) *Cache {
	c := &Cache{
		store: store,
		log:   logger.Get().With("component", "cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store returns the backing store
func (c *Cache) Store() Store {
	return c.store
}

// Invalidate removes one key
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	return c.store.Delete(ctx, key)
}

// Flush clears the backing store
func (c *Cache) Flush(ctx context.Context) error {
	return c.store.Flush(ctx)
}

// BuildKey joins namespace and parts with ':'. '%' and ':' inside a part are
// percent-encoded, so distinct part lists always give distinct keys.
func BuildKey(namespace string, parts ...string) string {
	var b strings.Builder
	b.WriteString(namespace)
	for _, p := range parts {
		b.WriteByte(':')
		b.WriteString(keyEscaper.Replace(p))
	}
	return b.String()
}

var keyEscaper = strings.NewReplacer("%", "%25", ":", "%3A")

// GetOrSet returns the cached value for key, or runs fetch, stores the
// result for ttl and returns it uncached. A fetch error is returned and
// nothing is stored.
func GetOrSet[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, fetch func(context.Context) (T, error)) (Result[T], error) {
	namespace := namespaceOf(key)

	data, ok, err := c.store.Get(ctx, key)
	if err != nil {
		return Result[T]{}, errors.Wrapf(err, "cache get %s", key)
	}
	if ok {
		var v T
		err := json.Unmarshal(data, &v)
		if err == nil {
			metrics.RecordCacheLookup(namespace, true)
			c.log.Debugw("Cache hit", "key", key)
			return Result[T]{Data: v, Cached: true}, nil
		}
		c.log.Warnw("Dropping undecodable cache entry", "key", key, "error", err)
	}

	metrics.RecordCacheLookup(namespace, false)
	c.log.Debugw("Cache miss", "key", key)

	load := func() (T, error) {
		v, err := fetch(ctx)
		if err != nil {
			return v, err
		}
		encoded, err := json.Marshal(v)
		if err != nil {
			return v, errors.Wrapf(err, "encode cache value %s", key)
		}
		if err := c.store.Set(ctx, key, encoded, ttl); err != nil {
			return v, errors.Wrapf(err, "cache set %s", key)
		}
		return v, nil
	}

	if !c.singleFlight {
		v, err := load()
		if err != nil {
			return Result[T]{}, err
		}
		return Result[T]{Data: v}, nil
	}

	shared, err, _ := c.group.Do(key, func() (interface{}, error) {
		return load()
	})
	if err != nil {
		return Result[T]{}, err
	}
	return Result[T]{Data: shared.(T)}, nil
}

func namespaceOf(key string) string {
	if i := strings.IndexByte(key, ':'); i >= 0 {
		return key[:i]
	}
	return key
}
