package scoring

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"stockscore/internal/domain/score"
	"stockscore/pkg/errors"
)

// field maps one canonical metric to the keys providers use for it.
// The first key holding a non-null value wins.
type field struct {
	keys   []string
	assign func(m *score.Metrics, v any)
}

func numeric(target func(m *score.Metrics) **float64, keys ...string) field {
	return field{keys: keys, assign: func(m *score.Metrics, v any) { *target(m) = SafeNumber(v) }}
}

func text(target func(m *score.Metrics) **string, keys ...string) field {
	return field{keys: keys, assign: func(m *score.Metrics, v any) { *target(m) = SafeString(v) }}
}

var fields = []field{
	numeric(func(m *score.Metrics) **float64 { return &m.PERatio }, "peRatio", "pe_ratio", "pe"),
	numeric(func(m *score.Metrics) **float64 { return &m.SectorPERatio },
		"sectorPeRatio", "sector_pe_ratio", "sectorPe", "sectorAvgPE", "sector_avg_pe"),
	numeric(func(m *score.Metrics) **float64 { return &m.PBRatio }, "pbRatio", "pb_ratio", "pb"),
	numeric(func(m *score.Metrics) **float64 { return &m.EVToEBITDA }, "evToEbitda", "ev_to_ebitda", "evEbitda"),
	numeric(func(m *score.Metrics) **float64 { return &m.DividendYield }, "dividendYield", "dividend_yield"),

	numeric(func(m *score.Metrics) **float64 { return &m.RevenueGrowthYoY },
		"revenueGrowthYoY", "revenue_growth_yoy", "revenueGrowth"),
	numeric(func(m *score.Metrics) **float64 { return &m.EPSGrowthYoY }, "epsGrowthYoY", "eps_growth_yoy", "epsGrowth"),
	numeric(func(m *score.Metrics) **float64 { return &m.ProfitGrowthYoY },
		"profitGrowthYoY", "profit_growth_yoy", "profitGrowth", "netIncomeGrowthYoY", "net_income_growth_yoy"),

	numeric(func(m *score.Metrics) **float64 { return &m.ROE }, "roe", "returnOnEquity", "return_on_equity"),
	numeric(func(m *score.Metrics) **float64 { return &m.OperatingMargin }, "operatingMargin", "operating_margin"),
	numeric(func(m *score.Metrics) **float64 { return &m.DebtToEquity }, "debtToEquity", "debt_to_equity", "debtEquity"),

	numeric(func(m *score.Metrics) **float64 { return &m.CurrentPrice }, "currentPrice", "current_price", "price"),
	numeric(func(m *score.Metrics) **float64 { return &m.WeekHigh52 }, "weekHigh52", "week_high_52", "high52w"),
	numeric(func(m *score.Metrics) **float64 { return &m.WeekLow52 }, "weekLow52", "week_low_52", "low52w"),
	numeric(func(m *score.Metrics) **float64 { return &m.RSI14 }, "rsi14", "rsi", "rsi_14"),
	numeric(func(m *score.Metrics) **float64 { return &m.PriceVs200DMA },
		"priceVs200dma", "price_vs_200dma", "priceVs200DMA", "priceVsSMA200", "price_vs_sma_200"),

	text(func(m *score.Metrics) **string { return &m.AnalystConsensus },
		"analystConsensus", "analyst_consensus", "consensus", "analystRating", "analyst_rating"),
	text(func(m *score.Metrics) **string { return &m.NewsSentiment },
		"newsSentiment", "news_sentiment", "sentiment", "newsScore"),
}

var priceHistoryKeys = []string{"priceHistory", "closes", "historicalCloses"}

// Parse converts a decoded provider payload into Metrics. Missing or
// unusable fields become absent; only a non-object payload is an error.
func Parse(raw any) (score.Metrics, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return score.Metrics{}, errors.NewValidationError("metrics", "expected a JSON object", describeType(raw))
	}

	flat := make(map[string]any)
	flatten(obj, flat)

	var m score.Metrics
	for _, f := range fields {
		for _, key := range f.keys {
			if v, ok := flat[key]; ok && v != nil {
				f.assign(&m, v)
				break
			}
		}
	}

	for _, key := range priceHistoryKeys {
		if series, ok := flat[key].([]any); ok {
			m.PriceHistory = closes(series)
			break
		}
	}

	return m, nil
}

// flatten copies leaf values of nested objects into out. Arrays stay intact.
// Values at a level are taken before its children, keys in sorted order,
// and a key keeps its first non-null value.
func flatten(obj map[string]any, out map[string]any) {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var nested []map[string]any
	for _, k := range keys {
		if child, ok := obj[k].(map[string]any); ok {
			nested = append(nested, child)
			continue
		}
		if existing, ok := out[k]; !ok || existing == nil {
			out[k] = obj[k]
		}
	}
	for _, child := range nested {
		flatten(child, out)
	}
}

// SafeNumber coerces v to a finite float. nil, "", "N/A", booleans,
// unparseable strings and non-finite values are absent.
func SafeNumber(v any) *float64 {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		s := strings.TrimSpace(x)
		if s == "" || strings.EqualFold(s, "n/a") {
			return nil
		}
		s = strings.TrimSuffix(s, "%")
		s = strings.ReplaceAll(s, ",", "")
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// SafeString trims v; empty and "N/A" are absent. Numbers are formatted.
func SafeString(v any) *string {
	var s string
	switch x := v.(type) {
	case string:
		s = strings.TrimSpace(x)
	case json.Number:
		s = x.String()
	case float64:
		s = strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		s = strconv.FormatBool(x)
	default:
		return nil
	}
	if s == "" || strings.EqualFold(s, "n/a") {
		return nil
	}
	return &s
}

// closes reads a price series of numbers or of objects carrying "close".
func closes(series []any) []float64 {
	out := make([]float64, 0, len(series))
	for _, item := range series {
		if point, ok := item.(map[string]any); ok {
			item = point["close"]
		}
		if v := SafeNumber(item); v != nil {
			out = append(out, *v)
		}
	}
	return out
}

func describeType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, json.Number:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
