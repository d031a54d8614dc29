package ratelimit

import (
	"context"
	"sync"
	"time"

	"stockscore/internal/metrics"
)

var _ Limiter = (*MemoryLimiter)(nil)

type window struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter counts requests per identifier inside this process
type MemoryLimiter struct {
	policy Policy
	now    func() time.Time

	mu        sync.Mutex
	windows   map[string]*window
	lastSweep time.Time
}

// NewMemoryLimiter creates a fixed-window limiter
func NewMemoryLimiter(policy Policy, now func() time.Time) *MemoryLimiter {
	if now == nil {
		now = time.Now
	}
	return &MemoryLimiter{
		policy:    policy,
		now:       now,
		windows:   make(map[string]*window),
		lastSweep: now(),
	}
}

func (l *MemoryLimiter) Check(_ context.Context, identifier string) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweepLocked(now)

	w, ok := l.windows[identifier]
	if !ok || !now.Before(w.resetAt) {
		w = &window{count: 1, resetAt: now.Add(l.policy.Window)}
		l.windows[identifier] = w
		metrics.RecordRateLimit("memory", true)
		return Result{Success: true, Remaining: l.policy.remaining(1), ResetAt: w.resetAt}, nil
	}

	if w.count >= l.policy.MaxRequests {
		metrics.RecordRateLimit("memory", false)
		return Result{Success: false, Remaining: 0, ResetAt: w.resetAt}, nil
	}

	w.count++
	metrics.RecordRateLimit("memory", true)
	return Result{Success: true, Remaining: l.policy.remaining(w.count), ResetAt: w.resetAt}, nil
}

func (l *MemoryLimiter) Reset(_ context.Context, identifier string) error {
	l.mu.Lock()
	delete(l.windows, identifier)
	l.mu.Unlock()
	return nil
}

// Flush forgets every window
func (l *MemoryLimiter) Flush() {
	l.mu.Lock()
	l.windows = make(map[string]*window)
	l.mu.Unlock()
}

// Len returns the number of tracked identifiers
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// sweepLocked drops elapsed windows at most once per window duration
func (l *MemoryLimiter) sweepLocked(now time.Time) {
	if now.Sub(l.lastSweep) < l.policy.Window {
		return
	}
	for id, w := range l.windows {
		if !now.Before(w.resetAt) {
			delete(l.windows, id)
		}
	}
	l.lastSweep = now
}
