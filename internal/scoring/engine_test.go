package scoring

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockscore/internal/domain/score"
	"stockscore/pkg/errors"
	"stockscore/pkg/logger"
)

type staticMetrics struct {
	raw map[string]any
	err error
}

func (s staticMetrics) FetchMetrics(context.Context, string) (map[string]any, error) {
	return s.raw, s.err
}

type stubNarrative struct {
	text string
	err  error
	got  NarrativeRequest
}

func (n *stubNarrative) Reasoning(_ context.Context, req NarrativeRequest) (string, error) {
	n.got = req
	return n.text, n.err
}

func scenario() map[string]any {
	return map[string]any{
		"peRatio":          12.0,
		"sectorPeRatio":    20.0,
		"roe":              22.0,
		"operatingMargin":  18.0,
		"debtToEquity":     0.2,
		"revenueGrowthYoY": 30.0,
		"rsi14":            50.0,
		"priceVs200dma":    5.0,
		"analystConsensus": "Buy",
		"newsSentiment":    "Positive",
	}
}

var fixedNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func newTestEngine(source MetricsSource, narrative NarrativeSource) *Engine {
	return NewEngine(source, narrative,
		WithClock(func() time.Time { return fixedNow }),
		WithLogger(logger.NewNop()),
	)
}

func TestEveryCategoryWithoutDataScoresZero(t *testing.T) {
	for _, scorer := range Scorers() {
		r := scorer.Score(score.Metrics{})
		assert.Equal(t, 0, r.Score, scorer.Name)
		assert.Equal(t, 0, r.AvailableMetrics, scorer.Name)
		assert.Equal(t, len(scorer.Labels()), r.TotalMetrics, scorer.Name)
		for _, v := range r.Metrics {
			assert.Nil(t, v.Value, v.Label)
		}
	}
}

func TestCategoryWeightsRedistributeOverAvailable(t *testing.T) {
	m := score.Metrics{ROE: f(22), OperatingMargin: f(18), DebtToEquity: f(0.2)}
	r := Profitability.Score(m)
	// (0.40*100 + 0.35*82.5 + 0.25*100) / 1.0
	assert.Equal(t, 94, r.Score)
	assert.Equal(t, 3, r.AvailableMetrics)

	r = Profitability.Score(score.Metrics{OperatingMargin: f(19)})
	assert.Equal(t, 85, r.Score)
	assert.Equal(t, 1, r.AvailableMetrics)
}

func TestCategoryDisplayValues(t *testing.T) {
	m := score.Metrics{
		PERatio: f(12), SectorPERatio: f(20), DividendYield: f(2.5),
		RevenueGrowthYoY: f(30), PriceVs200DMA: f(5),
		CurrentPrice: f(45), WeekHigh52: f(100), WeekLow52: f(0),
	}

	v, _ := Valuation.Score(m).Value("P/E vs Sector")
	assert.Equal(t, "12.0 vs 20.0", v)
	v, _ = Valuation.Score(m).Value("Dividend Yield")
	assert.Equal(t, "2.50%", v)
	v, _ = Growth.Score(m).Value("Revenue Growth YoY")
	assert.Equal(t, "30.0%", v)
	v, _ = Technical.Score(m).Value("Price vs 200 DMA")
	assert.Equal(t, "+5.0%", v)
	v, _ = Technical.Score(m).Value("52W Range Position")
	assert.Equal(t, "45.0%", v)

	v, _ = Technical.Score(score.Metrics{PriceVs200DMA: f(-3.25)}).Value("Price vs 200 DMA")
	assert.Equal(t, "-3.3%", v)

	v, _ = Technical.Score(score.Metrics{PriceVs200DMA: f(0)}).Value("Price vs 200 DMA")
	assert.Equal(t, "0.0%", v)
}

func TestOverflowingRatiosAreAbsent(t *testing.T) {
	var r score.CategoryResult
	require.NotPanics(t, func() {
		r = Technical.Score(score.Metrics{CurrentPrice: f(1e300), WeekHigh52: f(1e-10), WeekLow52: f(0)})
	})
	assert.Equal(t, 0, r.AvailableMetrics)
	v, ok := r.Value("52W Range Position")
	assert.True(t, ok)
	assert.Nil(t, v)

	require.NotPanics(t, func() {
		r = Valuation.Score(score.Metrics{PERatio: f(1e300), SectorPERatio: f(1e-300)})
	})
	assert.Equal(t, 0, r.AvailableMetrics)

	assert.Equal(t, "+Inf", fixed(math.Inf(1), 1))
	assert.Equal(t, "NaN", fixed(math.NaN(), 1))
}

func TestGradeAndClassificationBoundaries(t *testing.T) {
	grades := map[int]score.Grade{
		100: score.GradeStrongBuy, 80: score.GradeStrongBuy, 79: score.GradeBuy,
		65: score.GradeBuy, 64: score.GradeHold, 45: score.GradeHold, 44: score.GradeSell,
		25: score.GradeSell, 24: score.GradeStrongSell, 0: score.GradeStrongSell,
	}
	for total, want := range grades {
		assert.Equal(t, want, GradeFor(total), total)
	}

	classes := map[int]score.Classification{
		65: score.Bullish, 64: score.Neutral, 35: score.Neutral, 34: score.Bearish,
	}
	for total, want := range classes {
		assert.Equal(t, want, ClassificationFor(total), total)
	}
}

func TestConfidence(t *testing.T) {
	all := score.Metrics{
		PERatio: f(1), SectorPERatio: f(1), PBRatio: f(1), EVToEBITDA: f(1), DividendYield: f(1),
		RevenueGrowthYoY: f(1), EPSGrowthYoY: f(1), ProfitGrowthYoY: f(1),
		ROE: f(1), OperatingMargin: f(1), DebtToEquity: f(1),
		CurrentPrice: f(1), WeekHigh52: f(1), WeekLow52: f(1), RSI14: f(1), PriceVs200DMA: f(1),
		AnalystConsensus: s("Buy"), NewsSentiment: s("Mixed"),
	}
	assert.Equal(t, 100, Confidence(all))
	assert.Equal(t, 0, Confidence(score.Metrics{}))

	half := score.Metrics{
		PERatio: f(1), SectorPERatio: f(1), PBRatio: f(1), EVToEBITDA: f(1), DividendYield: f(1),
		RevenueGrowthYoY: f(1), EPSGrowthYoY: f(1), ProfitGrowthYoY: f(1), ROE: f(1),
	}
	assert.Equal(t, 50, Confidence(half))
}

func TestAggregateSkipsEmptyCategories(t *testing.T) {
	breakdown := score.Breakdown{
		score.CategoryValuation:     {Score: 80, AvailableMetrics: 2, TotalMetrics: 4},
		score.CategoryGrowth:        {Score: 0, AvailableMetrics: 0, TotalMetrics: 3},
		score.CategoryProfitability: {Score: 60, AvailableMetrics: 1, TotalMetrics: 3},
	}
	// (30*80 + 20*60) / 50
	assert.Equal(t, Summary{Total: 72, Grade: score.GradeBuy, Classification: score.Bullish},
		Aggregate(breakdown, DefaultWeights()))

	empty := Aggregate(score.Breakdown{}, DefaultWeights())
	assert.Equal(t, 0, empty.Total)
	assert.Equal(t, score.GradeStrongSell, empty.Grade)
}

func TestComputeScoreScenario(t *testing.T) {
	narrative := &stubNarrative{text: "Solid fundamentals.\n```json\n{\"ignored\": true}\n```"}
	engine := newTestEngine(staticMetrics{raw: scenario()}, narrative)

	result, err := engine.ComputeScore(context.Background(), "TCS")
	require.NoError(t, err)

	assert.Equal(t, 97, result.Score)
	assert.GreaterOrEqual(t, result.Score, 65)
	assert.Contains(t, []score.Grade{score.GradeBuy, score.GradeStrongBuy}, result.Grade)
	assert.Equal(t, score.Bullish, result.Classification)
	assert.Equal(t, 56, result.Confidence)
	assert.Less(t, result.Confidence, 100)

	assert.Equal(t, 100, result.Breakdown[score.CategoryValuation].Score)
	assert.Equal(t, 94, result.Breakdown[score.CategoryProfitability].Score)
	assert.Equal(t, 100, result.Breakdown[score.CategoryTechnical].Score)
	assert.Equal(t, 82, result.Breakdown[score.CategorySentiment].Score)

	assert.Equal(t, "Solid fundamentals.", result.Reasoning)
	assert.Equal(t, "TCS", narrative.got.Ticker)
	assert.Equal(t, 97, narrative.got.Score)
	assert.Equal(t, 82, narrative.got.Categories[score.CategorySentiment])

	assert.Equal(t, fixedNow, result.Timestamp)
	assert.NotEmpty(t, result.ID)
	assert.Equal(t,
		[]string{"High valuation expectations may limit further upside if earnings disappoint."},
		result.RiskFactors)
	assert.True(t, strings.HasPrefix(result.ValuationAnalysis,
		"Valuation Score: 100/100 (1/4 metrics available). P/E vs Sector: 12.0 vs 20.0"))
	assert.True(t, strings.HasPrefix(result.FinancialHealthAnalysis, "Financial Health Score: 94/100"))
	assert.Contains(t, result.ShortTermOutlook, "Short-term outlook is positive")
	assert.Contains(t, result.LongTermOutlook, "strongly positive")
}

func TestComputeScoreNarrativeFailureFallsBack(t *testing.T) {
	for name, narrative := range map[string]NarrativeSource{
		"error": &stubNarrative{err: errors.Wrap(errors.ErrUpstream, "perplexity: status 500")},
		"empty": &stubNarrative{text: "```\nonly a fence\n```"},
		"nil":   nil,
	} {
		t.Run(name, func(t *testing.T) {
			engine := newTestEngine(staticMetrics{raw: scenario()}, narrative)

			result, err := engine.ComputeScore(context.Background(), "INFY")
			require.NoError(t, err)
			assert.Equal(t, 97, result.Score)
			assert.Equal(t,
				"INFY received an AI score of 97/100 (Strong Buy). The analysis is based on available financial metrics across valuation, growth, profitability, technical, and sentiment categories.",
				result.Reasoning)
		})
	}
}

func TestComputeScoreCancelledContextIsFatal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	narrative := &stubNarrative{err: context.Canceled}
	_, err := newTestEngine(staticMetrics{raw: scenario()}, narrative).ComputeScore(ctx, "TCS")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestComputeScoreMetricsFailuresAreFatal(t *testing.T) {
	engine := newTestEngine(staticMetrics{err: errors.Wrap(errors.ErrUpstream, "timeout")}, nil)
	_, err := engine.ComputeScore(context.Background(), "TCS")
	assert.ErrorIs(t, err, errors.ErrUpstream)

	_, err = NewEngine(nil, nil, WithLogger(logger.NewNop())).ComputeScore(context.Background(), "TCS")
	assert.ErrorIs(t, err, errors.ErrUnavailable)
}

func TestComputeScoreAllAbsent(t *testing.T) {
	engine := newTestEngine(staticMetrics{raw: map[string]any{}}, nil)

	result, err := engine.ComputeScore(context.Background(), "XYZ")
	require.NoError(t, err)
	assert.Equal(t, 0, result.Score)
	assert.Equal(t, 0, result.Confidence)
	assert.Equal(t, score.GradeStrongSell, result.Grade)
	assert.Equal(t, "Valuation Score: 0/100 (0/4 metrics available). No metric data available.", result.ValuationAnalysis)
	assert.Len(t, result.RiskFactors, 1)
}

func TestRiskFactorsThresholds(t *testing.T) {
	m := score.Metrics{
		DebtToEquity: f(1.8), PERatio: f(45), SectorPERatio: f(20), RSI14: f(76.4),
		OperatingMargin: f(3.25), RevenueGrowthYoY: f(-2.5), ProfitGrowthYoY: f(-18),
	}
	risks := RiskFactors(m, 30)
	require.Len(t, risks, 6)
	assert.Equal(t, "High debt-to-equity ratio of 1.80 indicates elevated financial leverage risk.", risks[0])
	assert.Contains(t, risks[1], "P/E ratio of 45.0 significantly exceeds sector average of 20.0")
	assert.Contains(t, risks[2], "RSI of 76 indicates overbought")
	assert.Contains(t, risks[3], "Low operating margin of 3.3%")
	assert.Contains(t, risks[4], "Revenue declined 2.5%")
	assert.Contains(t, risks[5], "Profit declined 18.0%")

	assert.Contains(t, RiskFactors(score.Metrics{RSI14: f(22)}, 50)[0], "oversold")
	assert.Equal(t, []string{"Market conditions and sector-specific risks may impact near-term performance."},
		RiskFactors(score.Metrics{}, 50))
	assert.Equal(t, []string{"Weak fundamental metrics suggest elevated investment risk across multiple dimensions."},
		RiskFactors(score.Metrics{}, 10))
}

func TestCleanReasoningTruncates(t *testing.T) {
	long := strings.Repeat("a", 2000)
	cleaned := CleanReasoning(long)
	assert.Len(t, cleaned, 1500)
	assert.True(t, strings.HasSuffix(cleaned, "..."))

	assert.Equal(t, "kept", CleanReasoning("  kept  "))
}

func TestEnrichDerivesTechnicals(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = float64(100 + i)
	}

	m := Enrich(score.Metrics{PriceHistory: closes, WeekLow52: f(90)})
	require.NotNil(t, m.CurrentPrice)
	assert.Equal(t, 129.0, *m.CurrentPrice)
	require.NotNil(t, m.RSI14)
	assert.InDelta(t, 100, *m.RSI14, 1e-6)
	require.NotNil(t, m.WeekHigh52)
	assert.Equal(t, 129.0, *m.WeekHigh52)
	assert.Equal(t, 90.0, *m.WeekLow52)
	assert.Nil(t, m.PriceVs200DMA)

	plain := score.Metrics{RSI14: f(40)}
	assert.Equal(t, plain, Enrich(plain))
}

func TestConfidenceIgnoresEnrichment(t *testing.T) {
	closes := make([]float64, 220)
	for i := range closes {
		closes[i] = float64(100 + i)
	}
	engine := newTestEngine(staticMetrics{raw: map[string]any{"closes": toAny(closes)}}, nil)

	result, err := engine.ComputeScore(context.Background(), "FLAT")
	require.NoError(t, err)
	assert.Equal(t, 0, result.Confidence)
	assert.Equal(t, 3, result.Breakdown[score.CategoryTechnical].AvailableMetrics)
}

func toAny(values []float64) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
