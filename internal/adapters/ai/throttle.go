package ai

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"stockscore/internal/metrics"
)

// ThrottledProvider spaces outbound calls with a token bucket and records
// latency per call.
type ThrottledProvider struct {
	next    ChatProvider
	limiter *rate.Limiter
	perMin  int
}

// Ensure ThrottledProvider implements ChatProvider
var _ ChatProvider = (*ThrottledProvider)(nil)

// NewThrottledProvider wraps next. requestsPerMinute <= 0 disables throttling.
func NewThrottledProvider(next ChatProvider, requestsPerMinute int) *ThrottledProvider {
	limit := rate.Inf
	burst := 1
	if requestsPerMinute > 0 {
		limit = rate.Limit(float64(requestsPerMinute) / 60.0)

		// Allow burst of 10% of per-minute limit
		burst = requestsPerMinute / 10
		if burst < 1 {
			burst = 1
		}
	}

	return &ThrottledProvider{
		next:    next,
		limiter: rate.NewLimiter(limit, burst),
		perMin:  requestsPerMinute,
	}
}

// Name returns the wrapped provider name.
func (p *ThrottledProvider) Name() ProviderName { return p.next.Name() }

// Chat waits for a token and then forwards the request.
func (p *ThrottledProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, &RateLimitError{Provider: p.next.Name(), Limit: p.perMin, Err: err}
	}

	start := time.Now()
	resp, err := p.next.Chat(ctx, req)
	metrics.RecordUpstreamCall(p.next.Name().String(), purposeFrom(ctx), time.Since(start), err)
	return resp, err
}

// RateLimitError wraps rate limit related errors with provider context.
type RateLimitError struct {
	Provider ProviderName
	Limit    int
	Err      error
}

// Error implements error interface.
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit error for provider %s (limit: %d req/min): %v", e.Provider, e.Limit, e.Err)
}

// Unwrap returns the underlying error.
func (e *RateLimitError) Unwrap() error {
	return e.Err
}

type purposeKey struct{}

// WithPurpose labels outbound calls made with ctx, e.g. "metrics" or "narrative"
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

func purposeFrom(ctx context.Context) string {
	if p, ok := ctx.Value(purposeKey{}).(string); ok {
		return p
	}
	return "unspecified"
}
