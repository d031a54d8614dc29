package scoring

import "math"

// Point is one breakpoint of a curve: raw value X scores Y
type Point struct {
	X, Y float64
}

// Curve is a piecewise-linear mapping from a raw metric to a 0-100 score.
// Points must be sorted by X. Values between two points are interpolated,
// values outside the outermost points are clamped to the nearest end.
type Curve []Point

// At evaluates the curve at x
func (c Curve) At(x float64) float64 {
	if len(c) == 0 {
		return 0
	}
	if x <= c[0].X {
		return c[0].Y
	}
	last := c[len(c)-1]
	if x >= last.X {
		return last.Y
	}
	for i := 1; i < len(c); i++ {
		hi := c[i]
		if x > hi.X {
			continue
		}
		lo := c[i-1]
		t := (x - lo.X) / (hi.X - lo.X)
		return lo.Y + t*(hi.Y-lo.Y)
	}
	return last.Y
}

// Curves. Ratios below the first breakpoint of the "lower is better"
// families are handled by the scorers below, not by the curves.
var (
	peVsSectorCurve = Curve{{0.7, 100}, {1.0, 70}, {1.3, 40}, {1.8, 20}}
	pbCurve         = Curve{{1, 100}, {2, 75}, {3, 50}, {5, 25}, {8, 10}}
	evEbitdaCurve   = Curve{{8, 100}, {12, 70}, {18, 40}, {25, 15}}
	dividendCurve   = Curve{{0, 20}, {1, 40}, {2, 70}, {4, 100}}

	// growthCurve is shared by revenue, EPS and profit growth (percent YoY)
	growthCurve = Curve{{-15, 10}, {0, 30}, {5, 50}, {15, 80}, {25, 100}}

	roeCurve             = Curve{{0, 10}, {5, 30}, {10, 50}, {15, 80}, {20, 100}}
	operatingMarginCurve = Curve{{0, 25}, {8, 50}, {15, 75}, {25, 100}}
	debtToEquityCurve    = Curve{{0.3, 100}, {0.7, 75}, {1.0, 50}, {1.5, 25}, {2.5, 10}}

	rangePositionCurve = Curve{
		{0, 20}, {10, 35}, {20, 55}, {30, 80}, {40, 100},
		{60, 100}, {70, 80}, {80, 55}, {90, 35}, {100, 20},
	}
	rsiCurve = Curve{
		{0, 30}, {20, 40}, {30, 60}, {40, 100},
		{60, 100}, {70, 60}, {80, 40}, {100, 30},
	}
	priceVs200DMACurve = Curve{{-25, 30}, {-10, 50}, {0, 100}, {10, 100}, {20, 60}, {40, 30}}
)

// Fixed scores for sign flips that carry information on their own.
const (
	nonPositivePEScore      = 10
	nonPositiveBookScore    = 10
	nonPositiveEBITDAScore  = 15
	negativeMarginScore     = 0
	negativeEquityDebtScore = 10
)

func ptr(v float64) *float64 { return &v }

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func on(c Curve, v *float64) *float64 {
	if v == nil {
		return nil
	}
	return ptr(c.At(*v))
}

// peRatioVsSector is absent when either input is absent or the sector P/E is zero.
func peRatioVsSector(pe, sectorPE *float64) (float64, bool) {
	if pe == nil || sectorPE == nil || *sectorPE == 0 {
		return 0, false
	}
	ratio := *pe / *sectorPE
	return ratio, finite(ratio)
}

func scorePEVsSector(pe, sectorPE *float64) *float64 {
	ratio, ok := peRatioVsSector(pe, sectorPE)
	if !ok {
		return nil
	}
	if ratio <= 0 {
		return ptr(nonPositivePEScore)
	}
	return ptr(peVsSectorCurve.At(ratio))
}

func scorePB(pb *float64) *float64 {
	if pb != nil && *pb <= 0 {
		return ptr(nonPositiveBookScore)
	}
	return on(pbCurve, pb)
}

func scoreEVToEBITDA(ev *float64) *float64 {
	if ev != nil && *ev <= 0 {
		return ptr(nonPositiveEBITDAScore)
	}
	return on(evEbitdaCurve, ev)
}

func scoreDividendYield(y *float64) *float64 { return on(dividendCurve, y) }

func scoreGrowth(g *float64) *float64 { return on(growthCurve, g) }

func scoreROE(roe *float64) *float64 { return on(roeCurve, roe) }

func scoreOperatingMargin(m *float64) *float64 {
	if m != nil && *m < 0 {
		return ptr(negativeMarginScore)
	}
	return on(operatingMarginCurve, m)
}

func scoreDebtToEquity(de *float64) *float64 {
	if de != nil && *de < 0 {
		return ptr(negativeEquityDebtScore)
	}
	return on(debtToEquityCurve, de)
}

// rangePosition is where price sits inside the 52-week range, in percent.
// Absent when any input is absent, the range is empty or the position
// overflows.
func rangePosition(price, high, low *float64) (float64, bool) {
	if price == nil || high == nil || low == nil || *high <= *low {
		return 0, false
	}
	pos := (*price - *low) / (*high - *low) * 100
	return pos, finite(pos)
}

func scoreRangePosition(price, high, low *float64) *float64 {
	pos, ok := rangePosition(price, high, low)
	if !ok {
		return nil
	}
	return ptr(rangePositionCurve.At(pos))
}

func scoreRSI(rsi *float64) *float64 {
	if rsi == nil {
		return nil
	}
	return ptr(rsiCurve.At(math.Max(0, math.Min(100, *rsi))))
}

func scorePriceVs200DMA(p *float64) *float64 { return on(priceVs200DMACurve, p) }
