package scoring

import "stockscore/internal/domain/score"

// Profitability covers returns, margins and leverage.
var Profitability = Scorer{
	Category: score.CategoryProfitability,
	Name:     "Financial Health",
	subMetrics: []subMetric{
		{
			label:   "ROE",
			weight:  0.40,
			score:   func(m score.Metrics) *float64 { return scoreROE(m.ROE) },
			display: func(m score.Metrics) any { return percent(m.ROE, 1) },
		},
		{
			label:   "Operating Margin",
			weight:  0.35,
			score:   func(m score.Metrics) *float64 { return scoreOperatingMargin(m.OperatingMargin) },
			display: func(m score.Metrics) any { return percent(m.OperatingMargin, 1) },
		},
		{
			label:   "Debt/Equity",
			weight:  0.25,
			score:   func(m score.Metrics) *float64 { return scoreDebtToEquity(m.DebtToEquity) },
			display: func(m score.Metrics) any { return rawNumber(m.DebtToEquity) },
		},
	},
}
