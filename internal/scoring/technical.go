package scoring

import "stockscore/internal/domain/score"

// Technical prefers prices mid-range, RSI in the 40-60 band and a modest
// premium to the 200-day average. Extremes on either side score lower.
var Technical = Scorer{
	Category: score.CategoryTechnical,
	Name:     "Technical",
	subMetrics: []subMetric{
		{
			label:  "52W Range Position",
			weight: 0.30,
			score: func(m score.Metrics) *float64 {
				return scoreRangePosition(m.CurrentPrice, m.WeekHigh52, m.WeekLow52)
			},
			display: func(m score.Metrics) any {
				return rangePositionDisplay(m.CurrentPrice, m.WeekHigh52, m.WeekLow52)
			},
		},
		{
			label:   "RSI (14)",
			weight:  0.35,
			score:   func(m score.Metrics) *float64 { return scoreRSI(m.RSI14) },
			display: func(m score.Metrics) any { return rawNumber(m.RSI14) },
		},
		{
			label:   "Price vs 200 DMA",
			weight:  0.35,
			score:   func(m score.Metrics) *float64 { return scorePriceVs200DMA(m.PriceVs200DMA) },
			display: func(m score.Metrics) any { return signedPercent(m.PriceVs200DMA) },
		},
	},
}
