package scoring

import "stockscore/internal/domain/score"

// Valuation rewards a discount to the sector P/E, low P/B and EV/EBITDA, and yield.
var Valuation = Scorer{
	Category: score.CategoryValuation,
	Name:     "Valuation",
	subMetrics: []subMetric{
		{
			label:   "P/E vs Sector",
			weight:  0.35,
			score:   func(m score.Metrics) *float64 { return scorePEVsSector(m.PERatio, m.SectorPERatio) },
			display: func(m score.Metrics) any { return peVsSectorDisplay(m.PERatio, m.SectorPERatio) },
		},
		{
			label:   "P/B Ratio",
			weight:  0.25,
			score:   func(m score.Metrics) *float64 { return scorePB(m.PBRatio) },
			display: func(m score.Metrics) any { return rawNumber(m.PBRatio) },
		},
		{
			label:   "EV/EBITDA",
			weight:  0.25,
			score:   func(m score.Metrics) *float64 { return scoreEVToEBITDA(m.EVToEBITDA) },
			display: func(m score.Metrics) any { return rawNumber(m.EVToEBITDA) },
		},
		{
			label:   "Dividend Yield",
			weight:  0.15,
			score:   func(m score.Metrics) *float64 { return scoreDividendYield(m.DividendYield) },
			display: func(m score.Metrics) any { return percent(m.DividendYield, 2) },
		},
	},
}
