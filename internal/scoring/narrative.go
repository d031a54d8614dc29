package scoring

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"stockscore/internal/domain/score"
)

const maxReasoningLength = 1500

var fencedBlock = regexp.MustCompile("(?s)```.*?```")

// CategoryAnalysis renders "<name> Score: X/100 (a/b metrics available). k: v, ..."
func CategoryAnalysis(name string, r score.CategoryResult) string {
	parts := make([]string, 0, len(r.Metrics))
	for _, m := range r.Metrics {
		if m.Value == nil {
			continue
		}
		parts = append(parts, m.Label+": "+displayString(m.Value))
	}

	details := strings.Join(parts, ", ")
	if details == "" {
		details = "No metric data available."
	}
	return fmt.Sprintf("%s Score: %d/100 (%d/%d metrics available). %s",
		name, r.Score, r.AvailableMetrics, r.TotalMetrics, details)
}

func displayString(v any) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

// RiskFactors lists threshold breaches in m. When nothing triggers, a single
// generic risk for the score band is returned, so the list is never empty.
func RiskFactors(m score.Metrics, total int) []string {
	var risks []string

	if m.DebtToEquity != nil && *m.DebtToEquity > 1.0 {
		risks = append(risks, fmt.Sprintf(
			"High debt-to-equity ratio of %s indicates elevated financial leverage risk.",
			fixed(*m.DebtToEquity, 2)))
	}

	if m.PERatio != nil && m.SectorPERatio != nil && *m.PERatio > *m.SectorPERatio*1.5 {
		risks = append(risks, fmt.Sprintf(
			"P/E ratio of %s significantly exceeds sector average of %s, suggesting potential overvaluation.",
			fixed(*m.PERatio, 1), fixed(*m.SectorPERatio, 1)))
	}

	switch {
	case m.RSI14 != nil && *m.RSI14 > 70:
		risks = append(risks, fmt.Sprintf(
			"RSI of %s indicates overbought conditions; short-term pullback risk elevated.",
			fixed(*m.RSI14, 0)))
	case m.RSI14 != nil && *m.RSI14 < 30:
		risks = append(risks, fmt.Sprintf(
			"RSI of %s indicates oversold conditions; may signal underlying weakness.",
			fixed(*m.RSI14, 0)))
	}

	if m.OperatingMargin != nil && *m.OperatingMargin < 5 {
		risks = append(risks, fmt.Sprintf(
			"Low operating margin of %s%% leaves limited buffer against cost pressures.",
			fixed(*m.OperatingMargin, 1)))
	}

	if m.RevenueGrowthYoY != nil && *m.RevenueGrowthYoY < 0 {
		risks = append(risks, fmt.Sprintf(
			"Revenue declined %s%% year-over-year, signalling potential demand weakness.",
			fixed(math.Abs(*m.RevenueGrowthYoY), 1)))
	}

	if m.ProfitGrowthYoY != nil && *m.ProfitGrowthYoY < -10 {
		risks = append(risks, fmt.Sprintf(
			"Profit declined %s%% year-over-year, indicating deteriorating earnings quality.",
			fixed(math.Abs(*m.ProfitGrowthYoY), 1)))
	}

	if len(risks) > 0 {
		return risks
	}

	switch {
	case total >= 80:
		return []string{"High valuation expectations may limit further upside if earnings disappoint."}
	case total >= 45:
		return []string{"Market conditions and sector-specific risks may impact near-term performance."}
	default:
		return []string{"Weak fundamental metrics suggest elevated investment risk across multiple dimensions."}
	}
}

// ShortTermOutlook is driven by the technical and sentiment scores
func ShortTermOutlook(technical, sentiment score.CategoryResult, grade score.Grade) string {
	avg := int(math.Round(float64(technical.Score+sentiment.Score) / 2))

	switch {
	case avg >= 75:
		return fmt.Sprintf("Short-term outlook is positive. Technical indicators and market sentiment both support upward momentum. Grade: %s.", grade)
	case avg >= 50:
		return fmt.Sprintf("Short-term outlook is neutral to cautiously positive. Technical positioning is balanced, and sentiment indicators suggest measured optimism. Grade: %s.", grade)
	case avg >= 30:
		return fmt.Sprintf("Short-term outlook is cautious. Technical signals show mixed momentum, and sentiment is subdued. Investors may consider waiting for clearer signals. Grade: %s.", grade)
	default:
		return fmt.Sprintf("Short-term outlook is negative. Technical weakness and poor sentiment suggest potential further downside. Risk management is advisable. Grade: %s.", grade)
	}
}

// LongTermOutlook is driven by the fundamental categories
func LongTermOutlook(valuation, growth, profitability score.CategoryResult, grade score.Grade) string {
	avg := int(math.Round(float64(valuation.Score+growth.Score+profitability.Score) / 3))

	switch {
	case avg >= 75:
		return fmt.Sprintf("Long-term outlook is strongly positive. Attractive valuation, robust growth trajectory, and solid profitability metrics support sustained value creation. Grade: %s.", grade)
	case avg >= 55:
		return fmt.Sprintf("Long-term outlook is positive. Reasonable valuation combined with adequate growth and profitability provides a favourable risk-reward profile. Grade: %s.", grade)
	case avg >= 35:
		return fmt.Sprintf("Long-term outlook is neutral. Fundamental metrics present a mixed picture, and the stock may require a catalyst to unlock value. Grade: %s.", grade)
	default:
		return fmt.Sprintf("Long-term outlook is challenging. Weak fundamentals across valuation, growth, or profitability suggest limited upside potential and elevated downside risk. Grade: %s.", grade)
	}
}

// CleanReasoning strips fenced blocks and caps the text at 1500 characters.
func CleanReasoning(text string) string {
	cleaned := strings.TrimSpace(fencedBlock.ReplaceAllString(text, ""))
	runes := []rune(cleaned)
	if len(runes) > maxReasoningLength {
		return string(runes[:maxReasoningLength-3]) + "..."
	}
	return cleaned
}

// FallbackReasoning is used when the narrative collaborator fails
func FallbackReasoning(ticker string, total int, grade score.Grade) string {
	return fmt.Sprintf("%s received an AI score of %d/100 (%s). The analysis is based on available financial metrics across valuation, growth, profitability, technical, and sentiment categories.",
		ticker, total, grade)
}
