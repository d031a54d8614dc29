package scoring

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockscore/pkg/errors"
)

func decode(t *testing.T, raw string) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}

func TestParseNestedSynonyms(t *testing.T) {
	raw := decode(t, `{
		"valuation": {"pe_ratio": "24.5", "sectorAvgPE": 30, "pb": "N/A", "ev_to_ebitda": null, "dividend_yield": "1.8%"},
		"growth": {"revenueGrowth": 12.1, "eps_growth_yoy": "", "net_income_growth_yoy": -4},
		"profitability": {"returnOnEquity": 18, "operating_margin": "22", "debtEquity": 0.4},
		"technical": {"price": "2,450.5", "high52w": 2600, "low52w": 2000, "rsi": 61, "priceVsSMA200": 7.5},
		"sentiment": {"consensus": "  Buy ", "sentiment": "n/a"}
	}`)

	m, err := Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, 24.5, *m.PERatio)
	assert.Equal(t, 30.0, *m.SectorPERatio)
	assert.Nil(t, m.PBRatio)
	assert.Nil(t, m.EVToEBITDA)
	assert.Equal(t, 1.8, *m.DividendYield)
	assert.Equal(t, 12.1, *m.RevenueGrowthYoY)
	assert.Nil(t, m.EPSGrowthYoY)
	assert.Equal(t, -4.0, *m.ProfitGrowthYoY)
	assert.Equal(t, 18.0, *m.ROE)
	assert.Equal(t, 22.0, *m.OperatingMargin)
	assert.Equal(t, 0.4, *m.DebtToEquity)
	assert.Equal(t, 2450.5, *m.CurrentPrice)
	assert.Equal(t, 2600.0, *m.WeekHigh52)
	assert.Equal(t, 2000.0, *m.WeekLow52)
	assert.Equal(t, 61.0, *m.RSI14)
	assert.Equal(t, 7.5, *m.PriceVs200DMA)
	assert.Equal(t, "Buy", *m.AnalystConsensus)
	assert.Nil(t, m.NewsSentiment)
	assert.Equal(t, 14, m.Available())
}

func TestParseFirstNonNullSynonymWins(t *testing.T) {
	m, err := Parse(decode(t, `{"peRatio": null, "pe_ratio": 18, "pe": 99}`))
	require.NoError(t, err)
	assert.Equal(t, 18.0, *m.PERatio)

	// A present but unusable value does not fall through to the next synonym.
	m, err = Parse(decode(t, `{"peRatio": "N/A", "pe": 99}`))
	require.NoError(t, err)
	assert.Nil(t, m.PERatio)
}

func TestParseShallowValueBeatsNested(t *testing.T) {
	m, err := Parse(decode(t, `{"roe": 21, "profitability": {"roe": 5}}`))
	require.NoError(t, err)
	assert.Equal(t, 21.0, *m.ROE)
}

func TestParseSiblingCollisionKeepsFirstNonNull(t *testing.T) {
	m, err := Parse(decode(t, `{"zeta": {"roe": 5}, "alpha": {"roe": 9}}`))
	require.NoError(t, err)
	assert.Equal(t, 9.0, *m.ROE)

	m, err = Parse(decode(t, `{"alpha": {"roe": null}, "zeta": {"roe": 7}}`))
	require.NoError(t, err)
	assert.Equal(t, 7.0, *m.ROE)
}

func TestParseKeepsPriceHistory(t *testing.T) {
	m, err := Parse(decode(t, `{"technical": {"closes": [10, "11", null, {"close": 12}, "bad"]}}`))
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 11, 12}, m.PriceHistory)
}

func TestParseRejectsNonObject(t *testing.T) {
	for _, raw := range []any{nil, []any{1.0}, "text", 3.0} {
		_, err := Parse(raw)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrInvalidInput))
	}
}

func TestParseEmptyObjectIsAllAbsent(t *testing.T) {
	m, err := Parse(map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, 0, m.Available())
}

func TestSafeNumber(t *testing.T) {
	assert.Nil(t, SafeNumber(nil))
	assert.Nil(t, SafeNumber(""))
	assert.Nil(t, SafeNumber("N/A"))
	assert.Nil(t, SafeNumber("n/a"))
	assert.Nil(t, SafeNumber("twelve"))
	assert.Nil(t, SafeNumber(true))
	assert.Nil(t, SafeNumber(math.Inf(1)))
	assert.Nil(t, SafeNumber("NaN"))
	assert.Equal(t, 12.5, *SafeNumber(" 12.5 "))
	assert.Equal(t, 3.0, *SafeNumber(json.Number("3")))
	assert.Equal(t, 7.0, *SafeNumber(7))
}

func TestSafeString(t *testing.T) {
	assert.Nil(t, SafeString(nil))
	assert.Nil(t, SafeString("   "))
	assert.Nil(t, SafeString("N/A"))
	assert.Nil(t, SafeString(map[string]any{}))
	assert.Equal(t, "Hold", *SafeString(" Hold "))
	assert.Equal(t, "4.5", *SafeString(4.5))
}
