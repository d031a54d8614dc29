package scoring

import "strings"

type labelRule struct {
	phrases []string
	score   float64
}

// Exact consensus labels win over the fuzzy rules below.
var analystExact = []labelRule{
	{[]string{"strong buy", "strong_buy", "strongbuy"}, 100},
	{[]string{"strong sell", "strong_sell", "strongsell"}, 5},
	{[]string{"buy", "outperform", "overweight"}, 80},
	{[]string{"sell", "underperform", "underweight"}, 20},
	{[]string{"hold", "neutral", "equal-weight", "equal weight", "market perform"}, 50},
}

var analystFuzzy = []labelRule{
	{[]string{"strong buy", "strong_buy"}, 100},
	{[]string{"strong sell", "strong_sell"}, 5},
	{[]string{"underperform", "underweight"}, 20},
	{[]string{"outperform", "overweight"}, 80},
	{[]string{"buy"}, 80},
	{[]string{"sell"}, 20},
	{[]string{"hold", "neutral"}, 50},
}

// Most specific phrases first so "very negative" is not read as "negative".
var newsRules = []labelRule{
	{[]string{"very positive", "strongly positive"}, 95},
	{[]string{"very negative", "strongly negative"}, 10},
	{[]string{"mostly positive", "slightly positive", "lean positive", "leans positive"}, 70},
	{[]string{"mostly negative", "slightly negative", "lean negative", "leans negative"}, 35},
	{[]string{"positive", "bullish", "optimistic"}, 85},
	{[]string{"negative", "bearish", "pessimistic"}, 20},
	{[]string{"mixed", "neutral", "balanced"}, 50},
}

func scoreAnalystConsensus(label *string) *float64 {
	if label == nil {
		return nil
	}
	s := strings.ToLower(strings.TrimSpace(*label))
	for _, rule := range analystExact {
		for _, p := range rule.phrases {
			if s == p {
				return ptr(rule.score)
			}
		}
	}
	return matchContains(analystFuzzy, s)
}

func scoreNewsSentiment(label *string) *float64 {
	if label == nil {
		return nil
	}
	return matchContains(newsRules, strings.ToLower(strings.TrimSpace(*label)))
}

func matchContains(rules []labelRule, s string) *float64 {
	for _, rule := range rules {
		for _, p := range rule.phrases {
			if strings.Contains(s, p) {
				return ptr(rule.score)
			}
		}
	}
	return nil
}
