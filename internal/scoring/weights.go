package scoring

import "stockscore/internal/domain/score"

// Weights are the relative category weights used by Aggregate
type Weights map[score.Category]float64

// DefaultWeights: valuation 30, growth 25, profitability 20, technical 15, sentiment 10.
func DefaultWeights() Weights {
	return Weights{
		score.CategoryValuation:     30,
		score.CategoryGrowth:        25,
		score.CategoryProfitability: 20,
		score.CategoryTechnical:     15,
		score.CategorySentiment:     10,
	}
}
