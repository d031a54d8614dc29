package score

import (
	"time"

	"github.com/google/uuid"
)

// Grade is the investment recommendation derived from the aggregate score
type Grade string

const (
	GradeStrongBuy  Grade = "Strong Buy"
	GradeBuy        Grade = "Buy"
	GradeHold       Grade = "Hold"
	GradeSell       Grade = "Sell"
	GradeStrongSell Grade = "Strong Sell"
)

// Classification is the coarse market-sentiment label
type Classification string

const (
	Bullish Classification = "Bullish"
	Neutral Classification = "Neutral"
	Bearish Classification = "Bearish"
)

// Category groups related sub-metrics
type Category string

const (
	CategoryValuation     Category = "valuation"
	CategoryGrowth        Category = "growth"
	CategoryProfitability Category = "profitability"
	CategoryTechnical     Category = "technical"
	CategorySentiment     Category = "sentiment"
)

// Categories lists every category in reporting order
var Categories = []Category{
	CategoryValuation,
	CategoryGrowth,
	CategoryProfitability,
	CategoryTechnical,
	CategorySentiment,
}

// MetricFieldCount is the size of the metric inventory used for confidence
const MetricFieldCount = 18

// Metrics is the canonical flat metric record. A nil field is absent:
// it was not reported and must never be read as zero.
type Metrics struct {
	// Valuation
	PERatio       *float64 `json:"peRatio"`
	SectorPERatio *float64 `json:"sectorPeRatio"`
	PBRatio       *float64 `json:"pbRatio"`
	EVToEBITDA    *float64 `json:"evToEbitda"`
	DividendYield *float64 `json:"dividendYield"` // percent

	// Growth, percent
	RevenueGrowthYoY *float64 `json:"revenueGrowthYoY"`
	EPSGrowthYoY     *float64 `json:"epsGrowthYoY"`
	ProfitGrowthYoY  *float64 `json:"profitGrowthYoY"`

	// Profitability
	ROE             *float64 `json:"roe"`             // percent
	OperatingMargin *float64 `json:"operatingMargin"` // percent
	DebtToEquity    *float64 `json:"debtToEquity"`    // ratio

	// Technical
	CurrentPrice  *float64 `json:"currentPrice"`
	WeekHigh52    *float64 `json:"weekHigh52"`
	WeekLow52     *float64 `json:"weekLow52"`
	RSI14         *float64 `json:"rsi14"`
	PriceVs200DMA *float64 `json:"priceVs200dma"` // percent above (+) or below (-)

	// Sentiment
	AnalystConsensus *string `json:"analystConsensus"`
	NewsSentiment    *string `json:"newsSentiment"`

	// PriceHistory holds daily closes, oldest first, when the source supplied them.
	// It is not part of the metric inventory.
	PriceHistory []float64 `json:"-"`
}

// Available counts the non-absent fields of the metric inventory
func (m Metrics) Available() int {
	n := 0
	for _, v := range []*float64{
		m.PERatio, m.SectorPERatio, m.PBRatio, m.EVToEBITDA, m.DividendYield,
		m.RevenueGrowthYoY, m.EPSGrowthYoY, m.ProfitGrowthYoY,
		m.ROE, m.OperatingMargin, m.DebtToEquity,
		m.CurrentPrice, m.WeekHigh52, m.WeekLow52, m.RSI14, m.PriceVs200DMA,
	} {
		if v != nil {
			n++
		}
	}
	for _, v := range []*string{m.AnalystConsensus, m.NewsSentiment} {
		if v != nil {
			n++
		}
	}
	return n
}

// AIScoreResult is the terminal artifact of one scoring run. It is never
// updated in place; a re-score produces a new result.
type AIScoreResult struct {
	ID             uuid.UUID      `json:"id"`
	Ticker         string         `json:"ticker"`
	Score          int            `json:"score"`
	Classification Classification `json:"classification"`
	Grade          Grade          `json:"grade"`
	Breakdown      Breakdown      `json:"breakdown"`
	Confidence     int            `json:"confidence"`

	ValuationAnalysis       string   `json:"valuationAnalysis"`
	FinancialHealthAnalysis string   `json:"financialHealthAnalysis"`
	GrowthOutlook           string   `json:"growthOutlook"`
	RiskFactors             []string `json:"riskFactors"`
	ShortTermOutlook        string   `json:"shortTermOutlook"`
	LongTermOutlook         string   `json:"longTermOutlook"`
	SentimentSummary        string   `json:"sentimentSummary"`
	Reasoning               string   `json:"reasoning"`

	Timestamp time.Time `json:"timestamp"`
}

// Breakdown holds one result per category
type Breakdown map[Category]CategoryResult

// ComputedEvent is published after a fresh score is computed
type ComputedEvent struct {
	ID             uuid.UUID      `json:"id"`
	Ticker         string         `json:"ticker"`
	Score          int            `json:"score"`
	Grade          Grade          `json:"grade"`
	Classification Classification `json:"classification"`
	Confidence     int            `json:"confidence"`
	Timestamp      time.Time      `json:"timestamp"`
}

// NewComputedEvent summarizes a result for the event stream
func NewComputedEvent(r *AIScoreResult) ComputedEvent {
	return ComputedEvent{
		ID:             r.ID,
		Ticker:         r.Ticker,
		Score:          r.Score,
		Grade:          r.Grade,
		Classification: r.Classification,
		Confidence:     r.Confidence,
		Timestamp:      r.Timestamp,
	}
}
