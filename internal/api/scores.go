package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"stockscore/internal/cache"
	"stockscore/internal/domain/score"
	"stockscore/internal/ratelimit"
	"stockscore/pkg/errors"
	"stockscore/pkg/logger"
)

// ScoreService is the use case behind the score routes
type ScoreService interface {
	Score(ctx context.Context, caller, ticker string) (cache.Result[*score.AIScoreResult], error)
	History(ctx context.Context, ticker string, limit int) ([]score.AIScoreResult, error)
}

type scoreHandler struct {
	scores ScoreService
	now    func() time.Time
	log    *logger.Logger
}

// scoreResponse is the result with its cache flag merged in
type scoreResponse struct {
	*score.AIScoreResult
	Cached bool `json:"cached"`
}

type historyResponse struct {
	Ticker  string                `json:"ticker"`
	Count   int                   `json:"count"`
	Results []score.AIScoreResult `json:"results"`
}

func (h *scoreHandler) getScore(w http.ResponseWriter, r *http.Request) {
	res, err := h.scores.Score(r.Context(), CallerID(r), chi.URLParam(r, "ticker"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, scoreResponse{AIScoreResult: res.Data, Cached: res.Cached})
}

func (h *scoreHandler) getHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.writeError(w, r, errors.NewValidationError("limit", "must be an integer", raw))
			return
		}
		limit = n
	}

	results, err := h.scores.History(r.Context(), chi.URLParam(r, "ticker"), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if results == nil {
		results = []score.AIScoreResult{}
	}

	ticker, _ := score.SanitizeTicker(chi.URLParam(r, "ticker"))
	writeJSON(w, http.StatusOK, historyResponse{Ticker: ticker, Count: len(results), Results: results})
}

func (h *scoreHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var limited *ratelimit.LimitedError

	switch {
	case errors.As(err, &limited):
		w.Header().Set("Retry-After", strconv.Itoa(limited.Result.RetryAfter(h.now())))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(limited.Result.Remaining))
		writeJSON(w, http.StatusTooManyRequests, errorBody("Rate limit exceeded. Please try again later."))
	case errors.Is(err, errors.ErrUpstream):
		h.log.Warnw("Upstream failure", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusBadGateway, errorBody("Failed to calculate AI score. Please try again."))
	case errors.Is(err, errors.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorBody(invalidInputMessage(err)))
	case errors.Is(err, errors.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("No scores recorded for this ticker."))
	case errors.Is(err, errors.ErrUnavailable):
		h.log.Warnw("Dependency unavailable", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusServiceUnavailable, errorBody("Service temporarily unavailable."))
	default:
		h.log.Errorw("Request failed", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody("Failed to calculate AI score. Please try again."))
	}
}

func invalidInputMessage(err error) string {
	var ve *errors.ValidationError
	if errors.As(err, &ve) && ve.Field == "ticker" {
		return "Invalid ticker symbol."
	}
	if errors.As(err, &ve) {
		return ve.Field + ": " + ve.Message
	}
	return "Invalid request."
}

// CallerID identifies the client for rate limiting: the first
// X-Forwarded-For entry, else X-Real-IP, else "unknown".
func CallerID(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	return ratelimit.UnknownCaller
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
