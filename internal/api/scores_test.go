package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"stockscore/internal/adapters/ai"
	"stockscore/internal/api/health"
	"stockscore/internal/cache"
	"stockscore/internal/domain/score"
	"stockscore/internal/ratelimit"
	"stockscore/internal/scoring"
	"stockscore/internal/services/aiscore"
	"stockscore/pkg/errors"
	"stockscore/pkg/logger"
)

type MockScoreService struct {
	mock.Mock
}

func (m *MockScoreService) Score(ctx context.Context, caller, ticker string) (cache.Result[*score.AIScoreResult], error) {
	args := m.Called(ctx, caller, ticker)
	return args.Get(0).(cache.Result[*score.AIScoreResult]), args.Error(1)
}

func (m *MockScoreService) History(ctx context.Context, ticker string, limit int) ([]score.AIScoreResult, error) {
	args := m.Called(ctx, ticker, limit)
	results, _ := args.Get(0).([]score.AIScoreResult)
	return results, args.Error(1)
}

func sampleResult() *score.AIScoreResult {
	return &score.AIScoreResult{
		ID:             uuid.MustParse("6f1d2c7a-3f0e-4f5c-9c3e-0a7c2b1d4e5f"),
		Ticker:         "AAPL",
		Score:          97,
		Classification: score.Bullish,
		Grade:          score.GradeStrongBuy,
		Breakdown:      score.Breakdown{},
		Confidence:     56,
		RiskFactors:    []string{"Premium valuation"},
		Reasoning:      "Solid franchise at a fair price.",
		Timestamp:      time.Date(2026, 3, 2, 15, 4, 5, 0, time.UTC),
	}
}

func newTestRouter(svc ScoreService) http.Handler {
	return NewRouter(svc, health.New(logger.NewNop(), "stockscore", "test"), logger.NewNop())
}

func do(t *testing.T, h http.Handler, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec, body
}

func TestGetScoreMergesCachedFlag(t *testing.T) {
	svc := new(MockScoreService)
	svc.On("Score", mock.Anything, "203.0.113.7", "aapl").
		Return(cache.Result[*score.AIScoreResult]{Data: sampleResult(), Cached: true}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/stock/aapl/ai-score", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	rec, body := do(t, newTestRouter(svc), req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "AAPL", body["ticker"])
	assert.EqualValues(t, 97, body["score"])
	assert.Equal(t, "Strong Buy", body["grade"])
	assert.Equal(t, true, body["cached"])
	assert.NotContains(t, body, "data")
	svc.AssertExpectations(t)
}

func TestGetScoreRateLimited(t *testing.T) {
	now := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	limited := &ratelimit.LimitedError{
		Identifier: "unknown",
		Result:     ratelimit.Result{Success: false, Remaining: 0, ResetAt: now.Add(1500 * time.Millisecond)},
	}

	svc := new(MockScoreService)
	svc.On("Score", mock.Anything, "unknown", "AAPL").
		Return(cache.Result[*score.AIScoreResult]{}, limited)

	router := chiRouterWithClock(svc, func() time.Time { return now })
	rec, body := do(t, router, httptest.NewRequest(http.MethodGet, "/api/stock/AAPL/ai-score", nil))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "Rate limit exceeded. Please try again later.", body["error"])
}

func TestGetScoreErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"bad ticker", errors.NewValidationError("ticker", "must match", "$$$"), http.StatusBadRequest, "Invalid ticker symbol."},
		{"upstream", errors.Wrapf(errors.ErrUpstream, "perplexity: status %d", 503), http.StatusBadGateway, "Failed to calculate AI score. Please try again."},
		{"unavailable", errors.Wrap(errors.ErrUnavailable, "redis"), http.StatusServiceUnavailable, "Service temporarily unavailable."},
		{"internal", errors.New("boom"), http.StatusInternalServerError, "Failed to calculate AI score. Please try again."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := new(MockScoreService)
			svc.On("Score", mock.Anything, mock.Anything, mock.Anything).
				Return(cache.Result[*score.AIScoreResult]{}, errors.Wrap(tc.err, "score"))

			rec, body := do(t, newTestRouter(svc), httptest.NewRequest(http.MethodGet, "/api/stock/AAPL/ai-score", nil))
			assert.Equal(t, tc.code, rec.Code)
			assert.Equal(t, tc.msg, body["error"])
		})
	}
}

// replyProvider answers every chat request with a fixed reply
type replyProvider struct {
	reply string
}

func (p replyProvider) Name() ai.ProviderName { return ai.ProviderNamePerplexity }

func (p replyProvider) Chat(context.Context, ai.ChatRequest) (*ai.ChatResponse, error) {
	return &ai.ChatResponse{Content: p.reply}, nil
}

func TestGetScoreUndecodableProviderReplyIsBadGateway(t *testing.T) {
	nop := logger.NewNop()
	settings := aiscore.ProviderSettings{Model: "sonar-pro", Temperature: 0.1, MaxTokens: 4096, Timeout: time.Second}

	for _, reply := range []string{
		"Sorry, I could not find data for that ticker.",
		`["not","an","object"]`,
		"null",
	} {
		t.Run(reply, func(t *testing.T) {
			engine := scoring.NewEngine(aiscore.NewMetricsSource(replyProvider{reply: reply}, settings), nil, scoring.WithLogger(nop))
			svc := aiscore.NewService(nil, cache.New(cache.NewMemoryStore(10), cache.WithLogger(nop)), engine, time.Minute,
				aiscore.WithLogger(nop))

			rec, body := do(t, newTestRouter(svc), httptest.NewRequest(http.MethodGet, "/api/stock/AAPL/ai-score", nil))
			assert.Equal(t, http.StatusBadGateway, rec.Code)
			assert.Equal(t, "Failed to calculate AI score. Please try again.", body["error"])
		})
	}
}

func TestGetHistory(t *testing.T) {
	svc := new(MockScoreService)
	svc.On("History", mock.Anything, "msft", 5).Return([]score.AIScoreResult{*sampleResult()}, nil)

	rec, body := do(t, newTestRouter(svc), httptest.NewRequest(http.MethodGet, "/api/stock/msft/ai-score/history?limit=5", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MSFT", body["ticker"])
	assert.EqualValues(t, 1, body["count"])
	require.Len(t, body["results"], 1)
	svc.AssertExpectations(t)
}

func TestGetHistoryEmptyAndDefaults(t *testing.T) {
	svc := new(MockScoreService)
	svc.On("History", mock.Anything, "AAPL", 0).Return(nil, nil)

	rec, body := do(t, newTestRouter(svc), httptest.NewRequest(http.MethodGet, "/api/stock/AAPL/ai-score/history", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{}, body["results"])
}

func TestGetHistoryRejectsBadLimit(t *testing.T) {
	svc := new(MockScoreService)

	rec, body := do(t, newTestRouter(svc), httptest.NewRequest(http.MethodGet, "/api/stock/AAPL/ai-score/history?limit=ten", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "limit: must be an integer", body["error"])
	svc.AssertNotCalled(t, "History", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetHistoryUnavailable(t *testing.T) {
	svc := new(MockScoreService)
	svc.On("History", mock.Anything, "AAPL", 0).Return(nil, errors.Wrap(errors.ErrUnavailable, "score log not configured"))

	rec, _ := do(t, newTestRouter(svc), httptest.NewRequest(http.MethodGet, "/api/stock/AAPL/ai-score/history", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCallerID(t *testing.T) {
	cases := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"forwarded first entry", map[string]string{"X-Forwarded-For": " 198.51.100.4 , 10.0.0.2"}, "198.51.100.4"},
		{"real ip fallback", map[string]string{"X-Real-IP": "198.51.100.9"}, "198.51.100.9"},
		{"empty forwarded falls through", map[string]string{"X-Forwarded-For": " ", "X-Real-IP": "198.51.100.9"}, "198.51.100.9"},
		{"nothing", nil, "unknown"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tc.want, CallerID(req))
		})
	}
}

func TestHealthRoutesAndMetricsMounted(t *testing.T) {
	router := newTestRouter(new(MockScoreService))

	for _, path := range []string{"/health", "/ready", "/live", "/metrics"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

// chiRouterWithClock builds the score routes with a fixed clock for Retry-After
func chiRouterWithClock(svc ScoreService, now func() time.Time) http.Handler {
	h := &scoreHandler{scores: svc, now: now, log: logger.NewNop()}
	r := chi.NewRouter()
	r.Get("/api/stock/{ticker}/ai-score", h.getScore)
	return r
}
