package scoring

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"stockscore/internal/domain/score"
	"stockscore/internal/metrics"
	"stockscore/pkg/errors"
	"stockscore/pkg/logger"
)

// MetricsSource fetches the raw metrics payload for a ticker
type MetricsSource interface {
	FetchMetrics(ctx context.Context, ticker string) (map[string]any, error)
}

// NarrativeRequest is what the narrative collaborator sees
type NarrativeRequest struct {
	Ticker     string
	Score      int
	Grade      score.Grade
	Categories map[score.Category]int
}

// NarrativeSource produces free-text reasoning for a computed score
type NarrativeSource interface {
	Reasoning(ctx context.Context, req NarrativeRequest) (string, error)
}

// Summary is the pure aggregation output
type Summary struct {
	Total          int
	Grade          score.Grade
	Classification score.Classification
}

// Aggregate combines category scores. Only categories with at least one
// available sub-metric contribute; with none, the total is 0.
func Aggregate(breakdown score.Breakdown, weights Weights) Summary {
	var weighted, sum float64
	for _, c := range score.Categories {
		r, ok := breakdown[c]
		if !ok || r.AvailableMetrics == 0 {
			continue
		}
		w := weights[c]
		weighted += w * float64(r.Score)
		sum += w
	}

	total := 0
	if sum > 0 {
		total = int(math.Round(weighted / sum))
	}
	return Summary{
		Total:          total,
		Grade:          GradeFor(total),
		Classification: ClassificationFor(total),
	}
}

// GradeFor maps a total score to a grade
func GradeFor(total int) score.Grade {
	switch {
	case total >= 80:
		return score.GradeStrongBuy
	case total >= 65:
		return score.GradeBuy
	case total >= 45:
		return score.GradeHold
	case total >= 25:
		return score.GradeSell
	default:
		return score.GradeStrongSell
	}
}

// ClassificationFor maps a total score to a sentiment label
func ClassificationFor(total int) score.Classification {
	switch {
	case total >= 65:
		return score.Bullish
	case total >= 35:
		return score.Neutral
	default:
		return score.Bearish
	}
}

// Confidence is the rounded share of the metric inventory that was reported
func Confidence(m score.Metrics) int {
	return int(math.Round(float64(m.Available()) / score.MetricFieldCount * 100))
}

// Engine runs the scoring pipeline for one ticker
type Engine struct {
	metrics          MetricsSource
	narrative        NarrativeSource
	weights          Weights
	deriveTechnicals bool
	now              func() time.Time
	log              *logger.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithWeights overrides the category weights
func WithWeights(w Weights) Option {
	return func(e *Engine) { e.weights = w }
}

// WithClock overrides the timestamp source
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithTechnicalEnrichment toggles deriving technicals from a price series
func WithTechnicalEnrichment(enabled bool) Option {
	return func(e *Engine) { e.deriveTechnicals = enabled }
}

// WithLogger sets the engine logger
func WithLogger(l *logger.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// NewEngine creates an engine. narrative may be nil, in which case every
// result carries the templated reasoning.
func NewEngine(source MetricsSource, narrative NarrativeSource, opts ...Option) *Engine {
	e := &Engine{
		metrics:          source,
		narrative:        narrative,
		weights:          DefaultWeights(),
		deriveTechnicals: true,
		now:              time.Now,
		log:              logger.Get().With("component", "scoring_engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ComputeScore fetches metrics for ticker and scores them. Fetch and parse
// failures are fatal; narrative failures are not.
func (e *Engine) ComputeScore(ctx context.Context, ticker string) (*score.AIScoreResult, error) {
	if e.metrics == nil {
		return nil, errors.Wrap(errors.ErrUnavailable, "no metrics source configured")
	}

	raw, err := e.metrics.FetchMetrics(ctx, ticker)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch metrics for %s", ticker)
	}

	m, err := Parse(raw)
	if err != nil {
		return nil, errors.Wrapf(errors.Join(errors.ErrUpstream, err), "parse metrics for %s", ticker)
	}

	return e.Evaluate(ctx, ticker, m)
}

// Evaluate scores already-parsed metrics. It only fails when ctx is done.
func (e *Engine) Evaluate(ctx context.Context, ticker string, m score.Metrics) (*score.AIScoreResult, error) {
	confidence := Confidence(m)
	if e.deriveTechnicals {
		m = Enrich(m)
	}

	breakdown := ScoreAll(m)
	summary := Aggregate(breakdown, e.weights)

	reasoning, err := e.reasoning(ctx, ticker, summary, breakdown)
	if err != nil {
		return nil, err
	}

	return &score.AIScoreResult{
		ID:             uuid.New(),
		Ticker:         ticker,
		Score:          summary.Total,
		Classification: summary.Classification,
		Grade:          summary.Grade,
		Breakdown:      breakdown,
		Confidence:     confidence,

		ValuationAnalysis:       CategoryAnalysis(Valuation.Name, breakdown[score.CategoryValuation]),
		FinancialHealthAnalysis: CategoryAnalysis(Profitability.Name, breakdown[score.CategoryProfitability]),
		GrowthOutlook:           CategoryAnalysis(Growth.Name, breakdown[score.CategoryGrowth]),
		RiskFactors:             RiskFactors(m, summary.Total),
		ShortTermOutlook: ShortTermOutlook(
			breakdown[score.CategoryTechnical], breakdown[score.CategorySentiment], summary.Grade),
		LongTermOutlook: LongTermOutlook(
			breakdown[score.CategoryValuation], breakdown[score.CategoryGrowth],
			breakdown[score.CategoryProfitability], summary.Grade),
		SentimentSummary: CategoryAnalysis(Sentiment.Name, breakdown[score.CategorySentiment]),
		Reasoning:        reasoning,

		Timestamp: e.now().UTC(),
	}, nil
}

// reasoning asks the collaborator for text and falls back to the template on
// any failure or empty reply. Only cancellation of ctx is returned.
func (e *Engine) reasoning(ctx context.Context, ticker string, s Summary, breakdown score.Breakdown) (string, error) {
	fallback := FallbackReasoning(ticker, s.Total, s.Grade)
	if e.narrative == nil {
		return fallback, nil
	}

	categories := make(map[score.Category]int, len(breakdown))
	for c, r := range breakdown {
		categories[c] = r.Score
	}

	text, err := e.narrative.Reasoning(ctx, NarrativeRequest{
		Ticker:     ticker,
		Score:      s.Total,
		Grade:      s.Grade,
		Categories: categories,
	})
	if err == nil {
		if cleaned := CleanReasoning(text); cleaned != "" {
			return cleaned, nil
		}
		err = errors.Wrap(errors.ErrNarrative, "empty reasoning")
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", errors.Wrap(ctxErr, "narrative")
	}

	metrics.NarrativeFallbacks.Inc()
	e.log.Warnw("Narrative unavailable, using template",
		"ticker", ticker,
		"error", err,
	)
	return fallback, nil
}
