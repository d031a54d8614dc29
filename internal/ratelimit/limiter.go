package ratelimit

import (
	"context"
	"fmt"
	"math"
	"time"

	"stockscore/pkg/errors"
)

// UnknownCaller identifies requests without any client address
const UnknownCaller = "unknown"

// Limiter admits or rejects one request per call to Check
type Limiter interface {
	Check(ctx context.Context, identifier string) (Result, error)
	Reset(ctx context.Context, identifier string) error
}

// Result is one fixed-window decision
type Result struct {
	Success   bool      `json:"success"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"resetAt"`
}

// RetryAfter is the whole number of seconds until the window resets, never negative
func (r Result) RetryAfter(now time.Time) int {
	d := r.ResetAt.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}

// LimitedError is returned by callers that turn a rejection into an error
type LimitedError struct {
	Identifier string
	Result     Result
}

func (e *LimitedError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s, resets at %s",
		e.Identifier, e.Result.ResetAt.UTC().Format(time.RFC3339))
}

// Is makes every LimitedError match ErrRateLimitExceeded
func (e *LimitedError) Is(target error) bool {
	return target == errors.ErrRateLimitExceeded
}

// Policy is the window shared by every identifier
type Policy struct {
	MaxRequests int
	Window      time.Duration
}

func (p Policy) remaining(count int) int {
	if r := p.MaxRequests - count; r > 0 {
		return r
	}
	return 0
}
