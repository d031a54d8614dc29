package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func requireScore(t *testing.T, want float64, got *float64) {
	t.Helper()
	require.NotNil(t, got)
	assert.InDelta(t, want, *got, 1e-9)
}

func TestCurveAt(t *testing.T) {
	c := Curve{{0, 10}, {10, 60}, {20, 20}}

	assert.Equal(t, 10.0, c.At(-5))
	assert.Equal(t, 10.0, c.At(0))
	assert.Equal(t, 35.0, c.At(5))
	assert.Equal(t, 60.0, c.At(10))
	assert.Equal(t, 40.0, c.At(15))
	assert.Equal(t, 20.0, c.At(99))
	assert.Equal(t, 0.0, Curve{}.At(1))
}

func TestGrowthCurveBands(t *testing.T) {
	cases := map[float64]float64{
		40: 100, 25: 100, 20: 90, 15: 80, 10: 65, 5: 50,
		2.5: 40, 0: 30, -7.5: 20, -15: 10, -40: 10,
	}
	for in, want := range cases {
		requireScore(t, want, scoreGrowth(f(in)))
	}
	assert.Nil(t, scoreGrowth(nil))
}

func TestValuationCurves(t *testing.T) {
	requireScore(t, 100, scorePEVsSector(f(12), f(20)))
	requireScore(t, 55, scorePEVsSector(f(23), f(20)))
	requireScore(t, 20, scorePEVsSector(f(60), f(20)))
	requireScore(t, 10, scorePEVsSector(f(-5), f(20)))
	assert.Nil(t, scorePEVsSector(f(12), f(0)))
	assert.Nil(t, scorePEVsSector(nil, f(20)))
	assert.Nil(t, scorePEVsSector(f(12), nil))

	requireScore(t, 10, scorePB(f(-1)))
	requireScore(t, 100, scorePB(f(0.5)))
	requireScore(t, 87.5, scorePB(f(1.5)))
	requireScore(t, 10, scorePB(f(12)))

	requireScore(t, 15, scoreEVToEBITDA(f(-3)))
	requireScore(t, 85, scoreEVToEBITDA(f(10)))
	requireScore(t, 15, scoreEVToEBITDA(f(40)))

	requireScore(t, 20, scoreDividendYield(f(0)))
	requireScore(t, 85, scoreDividendYield(f(3)))
	requireScore(t, 100, scoreDividendYield(f(6)))
}

func TestProfitabilityCurves(t *testing.T) {
	requireScore(t, 10, scoreROE(f(-4)))
	requireScore(t, 65, scoreROE(f(12.5)))
	requireScore(t, 100, scoreROE(f(35)))

	requireScore(t, 0, scoreOperatingMargin(f(-2)))
	requireScore(t, 25, scoreOperatingMargin(f(0)))
	requireScore(t, 82.5, scoreOperatingMargin(f(18)))

	requireScore(t, 10, scoreDebtToEquity(f(-0.5)))
	requireScore(t, 100, scoreDebtToEquity(f(0.2)))
	requireScore(t, 37.5, scoreDebtToEquity(f(1.25)))
	requireScore(t, 10, scoreDebtToEquity(f(4)))
}

func TestTechnicalCurves(t *testing.T) {
	requireScore(t, 100, scoreRangePosition(f(50), f(100), f(0)))
	requireScore(t, 20, scoreRangePosition(f(100), f(100), f(0)))
	requireScore(t, 20, scoreRangePosition(f(-10), f(100), f(0)))
	assert.Nil(t, scoreRangePosition(f(50), f(100), f(100)))
	assert.Nil(t, scoreRangePosition(f(50), nil, f(10)))

	requireScore(t, 100, scoreRSI(f(50)))
	requireScore(t, 50, scoreRSI(f(75)))
	requireScore(t, 30, scoreRSI(f(150)))
	requireScore(t, 30, scoreRSI(f(-5)))

	requireScore(t, 100, scorePriceVs200DMA(f(5)))
	requireScore(t, 75, scorePriceVs200DMA(f(-5)))
	requireScore(t, 30, scorePriceVs200DMA(f(50)))
	requireScore(t, 30, scorePriceVs200DMA(f(-60)))
}

func sweep(from, to, step float64, score func(*float64) *float64) []float64 {
	var out []float64
	for x := from; x <= to; x += step {
		out = append(out, *score(f(x)))
	}
	return out
}

func TestCurvesMonotonicInFavourableDirection(t *testing.T) {
	nonDecreasing := map[string][]float64{
		"growth":    sweep(-40, 60, 0.25, scoreGrowth),
		"roe":       sweep(-10, 50, 0.25, scoreROE),
		"margin":    sweep(-10, 50, 0.25, scoreOperatingMargin),
		"dividend":  sweep(-1, 10, 0.05, scoreDividendYield),
		"rsi-lower": sweep(0, 50, 0.25, scoreRSI),
		"dma-lower": sweep(-50, 5, 0.25, scorePriceVs200DMA),
		"range-lower": sweep(0, 50, 0.25, func(p *float64) *float64 {
			return scoreRangePosition(p, f(100), f(0))
		}),
	}
	for name, scores := range nonDecreasing {
		for i := 1; i < len(scores); i++ {
			require.GreaterOrEqual(t, scores[i], scores[i-1], "%s at step %d", name, i)
		}
	}

	nonIncreasing := map[string][]float64{
		"pe-ratio": sweep(0.05, 3, 0.01, func(r *float64) *float64 { return scorePEVsSector(r, f(1)) }),
		"pb":       sweep(0.05, 12, 0.05, scorePB),
		"ev":       sweep(0.5, 40, 0.25, scoreEVToEBITDA),
		"de":       sweep(0, 4, 0.01, scoreDebtToEquity),
		"rsi-upper": sweep(50, 100, 0.25, scoreRSI),
		"dma-upper": sweep(5, 60, 0.25, scorePriceVs200DMA),
		"range-upper": sweep(50, 100, 0.25, func(p *float64) *float64 {
			return scoreRangePosition(p, f(100), f(0))
		}),
	}
	for name, scores := range nonIncreasing {
		for i := 1; i < len(scores); i++ {
			require.LessOrEqual(t, scores[i], scores[i-1], "%s at step %d", name, i)
		}
	}
}

func TestCurvesStayInRange(t *testing.T) {
	for _, c := range []Curve{
		peVsSectorCurve, pbCurve, evEbitdaCurve, dividendCurve, growthCurve, roeCurve,
		operatingMarginCurve, debtToEquityCurve, rangePositionCurve, rsiCurve, priceVs200DMACurve,
	} {
		for x := -100.0; x <= 200; x += 0.5 {
			v := c.At(x)
			require.GreaterOrEqual(t, v, 0.0)
			require.LessOrEqual(t, v, 100.0)
		}
	}
}
