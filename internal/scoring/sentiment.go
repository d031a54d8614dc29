package scoring

import "stockscore/internal/domain/score"

var Sentiment = Scorer{
	Category: score.CategorySentiment,
	Name:     "Sentiment",
	subMetrics: []subMetric{
		{
			label:   "Analyst Consensus",
			weight:  0.60,
			score:   func(m score.Metrics) *float64 { return scoreAnalystConsensus(m.AnalystConsensus) },
			display: func(m score.Metrics) any { return rawString(m.AnalystConsensus) },
		},
		{
			label:   "News Sentiment",
			weight:  0.40,
			score:   func(m score.Metrics) *float64 { return scoreNewsSentiment(m.NewsSentiment) },
			display: func(m score.Metrics) any { return rawString(m.NewsSentiment) },
		},
	},
}
