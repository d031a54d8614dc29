package scoring

import "stockscore/internal/domain/score"

// Growth scores year-over-year revenue, EPS and profit growth on one curve.
var Growth = Scorer{
	Category: score.CategoryGrowth,
	Name:     "Growth",
	subMetrics: []subMetric{
		{
			label:   "Revenue Growth YoY",
			weight:  0.40,
			score:   func(m score.Metrics) *float64 { return scoreGrowth(m.RevenueGrowthYoY) },
			display: func(m score.Metrics) any { return percent(m.RevenueGrowthYoY, 1) },
		},
		{
			label:   "EPS Growth YoY",
			weight:  0.35,
			score:   func(m score.Metrics) *float64 { return scoreGrowth(m.EPSGrowthYoY) },
			display: func(m score.Metrics) any { return percent(m.EPSGrowthYoY, 1) },
		},
		{
			label:   "Profit Growth YoY",
			weight:  0.25,
			score:   func(m score.Metrics) *float64 { return scoreGrowth(m.ProfitGrowthYoY) },
			display: func(m score.Metrics) any { return percent(m.ProfitGrowthYoY, 1) },
		},
	},
}
