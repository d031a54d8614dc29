package aiscore

import (
	"context"
	"time"

	"stockscore/internal/cache"
	"stockscore/internal/domain/score"
	"stockscore/internal/metrics"
	"stockscore/internal/ratelimit"
	"stockscore/pkg/errors"
	"stockscore/pkg/logger"
)

// sideEffectTimeout bounds persistence and publishing after a fresh score
const sideEffectTimeout = 5 * time.Second

// Scorer computes a fresh score for a sanitized ticker
type Scorer interface {
	ComputeScore(ctx context.Context, ticker string) (*score.AIScoreResult, error)
}

// Service is the AI score use case: rate limit, cache-aside scoring and
// best-effort logging of fresh results.
type Service struct {
	limiter ratelimit.Limiter
	cache   *cache.Cache
	scorer  Scorer
	repo    score.Repository
	events  score.EventPublisher
	ttl     time.Duration
	now     func() time.Time
	log     *logger.Logger
}

// Option configures a Service
type Option func(*Service)

// WithRepository enables the score log
func WithRepository(repo score.Repository) Option {
	return func(s *Service) { s.repo = repo }
}

// WithEventPublisher enables score.computed events
func WithEventPublisher(p score.EventPublisher) Option {
	return func(s *Service) { s.events = p }
}

// WithClock overrides the clock used for Retry-After
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the service logger
func WithLogger(l *logger.Logger) Option {
	return func(s *Service) { s.log = l }
}

// NewService creates the AI score service. limiter may be nil to disable
// rate limiting.
func NewService(limiter ratelimit.Limiter, c *cache.Cache, scorer Scorer, ttl time.Duration, opts ...Option) *Service {
	s := &Service{
		limiter: limiter,
		cache:   c,
		scorer:  scorer,
		ttl:     ttl,
		now:     time.Now,
		log:     logger.Get().With("component", "aiscore_service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score returns the score for rawTicker on behalf of caller. A rejected caller
// gets a *ratelimit.LimitedError; a malformed ticker gets ErrInvalidInput.
func (s *Service) Score(ctx context.Context, caller, rawTicker string) (cache.Result[*score.AIScoreResult], error) {
	var empty cache.Result[*score.AIScoreResult]

	if err := s.admit(ctx, caller); err != nil {
		return empty, err
	}

	ticker, err := score.SanitizeTicker(rawTicker)
	if err != nil {
		return empty, err
	}

	key := cache.BuildKey(cache.NamespaceAIScore, ticker)
	res, err := cache.GetOrSet(ctx, s.cache, key, s.ttl, func(ctx context.Context) (*score.AIScoreResult, error) {
		return s.compute(ctx, ticker)
	})
	if err != nil {
		return empty, errors.Wrapf(err, "score %s", ticker)
	}
	return res, nil
}

// History returns logged scores for rawTicker, newest first
func (s *Service) History(ctx context.Context, rawTicker string, limit int) ([]score.AIScoreResult, error) {
	ticker, err := score.SanitizeTicker(rawTicker)
	if err != nil {
		return nil, err
	}
	if s.repo == nil {
		return nil, errors.Wrap(errors.ErrUnavailable, "score log not configured")
	}
	return s.repo.History(ctx, ticker, score.ClampHistoryLimit(limit))
}

// Latest returns the newest logged score for rawTicker
func (s *Service) Latest(ctx context.Context, rawTicker string) (*score.AIScoreResult, error) {
	ticker, err := score.SanitizeTicker(rawTicker)
	if err != nil {
		return nil, err
	}
	if s.repo == nil {
		return nil, errors.Wrap(errors.ErrUnavailable, "score log not configured")
	}
	return s.repo.Latest(ctx, ticker)
}

func (s *Service) admit(ctx context.Context, caller string) error {
	if s.limiter == nil {
		return nil
	}
	if caller == "" {
		caller = ratelimit.UnknownCaller
	}

	res, err := s.limiter.Check(ctx, caller)
	if err != nil {
		return errors.Wrap(err, "rate limit check")
	}
	if !res.Success {
		s.log.Infow("Rate limit exceeded",
			"caller", caller,
			"retry_after", res.RetryAfter(s.now()),
		)
		return &ratelimit.LimitedError{Identifier: caller, Result: res}
	}
	return nil
}

func (s *Service) compute(ctx context.Context, ticker string) (*score.AIScoreResult, error) {
	start := time.Now()
	result, err := s.scorer.ComputeScore(ctx, ticker)
	if err != nil {
		metrics.RecordScore(0, time.Since(start), err)
		return nil, err
	}
	metrics.RecordScore(result.Score, time.Since(start), nil)

	s.log.Infow("Score computed",
		"ticker", ticker,
		"score", result.Score,
		"grade", result.Grade,
		"confidence", result.Confidence,
		"duration", time.Since(start),
	)

	s.recordSideEffects(ctx, result)
	return result, nil
}

// recordSideEffects logs and publishes a fresh result. Failures never reach the caller.
func (s *Service) recordSideEffects(ctx context.Context, result *score.AIScoreResult) {
	if s.repo == nil && s.events == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	if s.repo != nil {
		if err := s.repo.Save(ctx, result); err != nil {
			metrics.SideEffectFailures.WithLabelValues("persist").Inc()
			s.log.Warnw("Failed to log score", "ticker", result.Ticker, "error", err)
		}
	}

	if s.events != nil {
		if err := s.events.PublishScoreComputed(ctx, score.NewComputedEvent(result)); err != nil {
			metrics.SideEffectFailures.WithLabelValues("publish").Inc()
			s.log.Warnw("Failed to publish score event", "ticker", result.Ticker, "error", err)
		}
	}
}
