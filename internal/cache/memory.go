package cache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore is a process-local Store backed by ttlcache. Entries keep the
// TTL they were stored with; reads never extend it. When full, the least
// recently used entry is evicted.
type MemoryStore struct {
	items *ttlcache.Cache[string, []byte]
}

// NewMemoryStore creates a store holding at most maxEntries values.
// maxEntries <= 0 means unbounded.
func NewMemoryStore(maxEntries int) *MemoryStore {
	opts := []ttlcache.Option[string, []byte]{
		ttlcache.WithDisableTouchOnHit[string, []byte](),
	}
	if maxEntries > 0 {
		opts = append(opts, ttlcache.WithCapacity[string, []byte](uint64(maxEntries)))
	}
	return &MemoryStore{items: ttlcache.New[string, []byte](opts...)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	item := s.items.Get(key)
	if item == nil {
		return nil, false, nil
	}
	return item.Value(), true, nil
}

// Set stores value for ttl. A non-positive ttl keeps the entry until it is
// evicted, like a Redis SET without expiry.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = ttlcache.NoTTL
	}
	s.items.Set(key, value, ttl)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.items.Delete(key)
	return nil
}

func (s *MemoryStore) Flush(_ context.Context) error {
	s.items.DeleteAll()
	return nil
}

// Len returns the number of stored entries, expired ones included until swept
func (s *MemoryStore) Len() int {
	return s.items.Len()
}

// Sweep drops expired entries and returns how many were removed
func (s *MemoryStore) Sweep() int {
	before := s.items.Len()
	s.items.DeleteExpired()
	return before - s.items.Len()
}

// Run removes entries as they expire until ctx is done
func (s *MemoryStore) Run(ctx context.Context) {
	go func() {
		<-ctx.Done()
		s.items.Stop()
	}()
	s.items.Start()
}
