package scoring

import (
	talib "github.com/markcheno/go-talib"

	"stockscore/internal/domain/score"
)

const (
	rsiPeriod    = 14
	smaPeriod    = 200
	tradingYear  = 252
	minRangeBars = 20
)

// Enrich derives missing technical fields from m.PriceHistory. Reported
// values are never overwritten.
func Enrich(m score.Metrics) score.Metrics {
	closes := m.PriceHistory
	if len(closes) == 0 {
		return m
	}

	if m.CurrentPrice == nil {
		m.CurrentPrice = ptr(closes[len(closes)-1])
	}

	if m.RSI14 == nil && len(closes) > rsiPeriod {
		m.RSI14 = ptr(lastValue(talib.Rsi(closes, rsiPeriod)))
	}

	if m.PriceVs200DMA == nil && len(closes) >= smaPeriod {
		if sma := lastValue(talib.Sma(closes, smaPeriod)); sma > 0 {
			m.PriceVs200DMA = ptr((*m.CurrentPrice/sma - 1) * 100)
		}
	}

	if (m.WeekHigh52 == nil || m.WeekLow52 == nil) && len(closes) >= minRangeBars {
		window := len(closes)
		if window > tradingYear {
			window = tradingYear
		}
		if m.WeekHigh52 == nil {
			m.WeekHigh52 = ptr(lastValue(talib.Max(closes, window)))
		}
		if m.WeekLow52 == nil {
			m.WeekLow52 = ptr(lastValue(talib.Min(closes, window)))
		}
	}

	return m
}

func lastValue(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	return series[len(series)-1]
}
