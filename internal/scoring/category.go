package scoring

import (
	"math"

	"stockscore/internal/domain/score"
)

// subMetric is one row of a category table. Weights are local to their category.
type subMetric struct {
	label   string
	weight  float64
	score   func(m score.Metrics) *float64
	display func(m score.Metrics) any
}

// Scorer scores one category from a fixed table of sub-metrics
type Scorer struct {
	Category score.Category
	// Name is used in narrative text
	Name       string
	subMetrics []subMetric
}

// Score computes the weighted average over the sub-metrics that have data.
// Absent sub-metrics drop out together with their weight.
func (s Scorer) Score(m score.Metrics) score.CategoryResult {
	var (
		weighted  float64
		weights   float64
		available int
	)
	values := make([]score.MetricValue, 0, len(s.subMetrics))

	for _, sm := range s.subMetrics {
		values = append(values, score.MetricValue{Label: sm.label, Value: sm.display(m)})

		v := sm.score(m)
		if v == nil {
			continue
		}
		weighted += sm.weight * *v
		weights += sm.weight
		available++
	}

	result := score.CategoryResult{
		Metrics:          values,
		AvailableMetrics: available,
		TotalMetrics:     len(s.subMetrics),
	}
	if weights > 0 {
		result.Score = int(math.Round(weighted / weights))
	}
	return result
}

// Labels returns the sub-metric labels in table order
func (s Scorer) Labels() []string {
	labels := make([]string, len(s.subMetrics))
	for i, sm := range s.subMetrics {
		labels[i] = sm.label
	}
	return labels
}

// Scorers lists the five category scorers in reporting order
func Scorers() []Scorer {
	return []Scorer{Valuation, Growth, Profitability, Technical, Sentiment}
}

// ScoreAll runs every category scorer
func ScoreAll(m score.Metrics) score.Breakdown {
	out := make(score.Breakdown, len(score.Categories))
	for _, s := range Scorers() {
		out[s.Category] = s.Score(m)
	}
	return out
}
