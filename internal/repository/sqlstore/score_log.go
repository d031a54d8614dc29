package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"stockscore/internal/domain/score"
	"stockscore/internal/metrics"
	"stockscore/pkg/errors"
)

// Compile-time check
var _ score.Repository = (*ScoreLogRepository)(nil)

// schema is portable between sqlite and postgres. created_at holds unix
// milliseconds so both drivers scan it the same way.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS ai_score_logs (
		id                        TEXT PRIMARY KEY,
		ticker                    TEXT NOT NULL,
		score                     INTEGER NOT NULL,
		classification            TEXT NOT NULL,
		grade                     TEXT NOT NULL,
		confidence                INTEGER NOT NULL,
		breakdown_json            TEXT NOT NULL,
		valuation_analysis        TEXT NOT NULL DEFAULT '',
		financial_health_analysis TEXT NOT NULL DEFAULT '',
		growth_outlook            TEXT NOT NULL DEFAULT '',
		risk_factors_json         TEXT NOT NULL DEFAULT '[]',
		short_term_outlook        TEXT NOT NULL DEFAULT '',
		long_term_outlook         TEXT NOT NULL DEFAULT '',
		sentiment_summary         TEXT NOT NULL DEFAULT '',
		reasoning                 TEXT NOT NULL DEFAULT '',
		created_at                BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_ai_score_logs_ticker_created
		ON ai_score_logs (ticker, created_at DESC)`,
}

const selectColumns = `
	id, ticker, score, classification, grade, confidence,
	breakdown_json, valuation_analysis, financial_health_analysis,
	growth_outlook, risk_factors_json, short_term_outlook,
	long_term_outlook, sentiment_summary, reasoning, created_at`

// scoreLogRow mirrors one ai_score_logs row
type scoreLogRow struct {
	ID                      string `db:"id"`
	Ticker                  string `db:"ticker"`
	Score                   int    `db:"score"`
	Classification          string `db:"classification"`
	Grade                   string `db:"grade"`
	Confidence              int    `db:"confidence"`
	BreakdownJSON           string `db:"breakdown_json"`
	ValuationAnalysis       string `db:"valuation_analysis"`
	FinancialHealthAnalysis string `db:"financial_health_analysis"`
	GrowthOutlook           string `db:"growth_outlook"`
	RiskFactorsJSON         string `db:"risk_factors_json"`
	ShortTermOutlook        string `db:"short_term_outlook"`
	LongTermOutlook         string `db:"long_term_outlook"`
	SentimentSummary        string `db:"sentiment_summary"`
	Reasoning               string `db:"reasoning"`
	CreatedAt               int64  `db:"created_at"`
}

// ScoreLogRepository implements score.Repository using sqlx
type ScoreLogRepository struct {
	db DBTX
}

// NewScoreLogRepository creates a new score log repository
func NewScoreLogRepository(db DBTX) *ScoreLogRepository {
	return &ScoreLogRepository{db: db}
}

// Migrate creates the table and index when missing
func (r *ScoreLogRepository) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "migrate ai_score_logs")
		}
	}
	return nil
}

// Save appends a result. A zero ID or timestamp is filled in.
func (r *ScoreLogRepository) Save(ctx context.Context, result *score.AIScoreResult) error {
	if result == nil {
		return errors.Wrap(errors.ErrInvalidInput, "nil score result")
	}
	if result.ID == uuid.Nil {
		result.ID = uuid.New()
	}
	if result.Timestamp.IsZero() {
		result.Timestamp = time.Now().UTC()
	}

	breakdown, err := json.Marshal(result.Breakdown)
	if err != nil {
		return errors.Wrap(err, "encode breakdown")
	}
	risks := result.RiskFactors
	if risks == nil {
		risks = []string{}
	}
	riskJSON, err := json.Marshal(risks)
	if err != nil {
		return errors.Wrap(err, "encode risk factors")
	}

	query := r.db.Rebind(`
		INSERT INTO ai_score_logs (` + selectColumns + `
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	start := time.Now()
	_, err = r.db.ExecContext(ctx, query,
		result.ID.String(), result.Ticker, result.Score, string(result.Classification), string(result.Grade), result.Confidence,
		string(breakdown), result.ValuationAnalysis, result.FinancialHealthAnalysis,
		result.GrowthOutlook, string(riskJSON), result.ShortTermOutlook,
		result.LongTermOutlook, result.SentimentSummary, result.Reasoning, result.Timestamp.UnixMilli(),
	)
	metrics.RecordDBQuery("score_log_save", time.Since(start), err)
	if err != nil {
		return errors.Wrap(err, "insert score log")
	}
	return nil
}

// History returns up to limit results for ticker, newest first
func (r *ScoreLogRepository) History(ctx context.Context, ticker string, limit int) ([]score.AIScoreResult, error) {
	query := r.db.Rebind(`
		SELECT ` + selectColumns + `
		FROM ai_score_logs
		WHERE ticker = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`)

	var rows []scoreLogRow
	start := time.Now()
	err := r.db.SelectContext(ctx, &rows, query, ticker, score.ClampHistoryLimit(limit))
	metrics.RecordDBQuery("score_log_history", time.Since(start), err)
	if err != nil {
		return nil, errors.Wrap(err, "select score history")
	}

	out := make([]score.AIScoreResult, 0, len(rows))
	for _, row := range rows {
		res, err := row.toResult()
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, nil
}

// Latest returns the newest result for ticker
func (r *ScoreLogRepository) Latest(ctx context.Context, ticker string) (*score.AIScoreResult, error) {
	query := r.db.Rebind(`
		SELECT ` + selectColumns + `
		FROM ai_score_logs
		WHERE ticker = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1`)

	var row scoreLogRow
	start := time.Now()
	err := r.db.GetContext(ctx, &row, query, ticker)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordDBQuery("score_log_latest", time.Since(start), nil)
		return nil, errors.Wrapf(errors.ErrNotFound, "no score logged for %s", ticker)
	}
	metrics.RecordDBQuery("score_log_latest", time.Since(start), err)
	if err != nil {
		return nil, errors.Wrap(err, "select latest score")
	}
	return row.toResult()
}

// Count returns the number of logged results
func (r *ScoreLogRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM ai_score_logs`); err != nil {
		return 0, errors.Wrap(err, "count score logs")
	}
	return n, nil
}

func (row scoreLogRow) toResult() (*score.AIScoreResult, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, errors.Wrapf(err, "score log id %q", row.ID)
	}

	var breakdown score.Breakdown
	if err := json.Unmarshal([]byte(row.BreakdownJSON), &breakdown); err != nil {
		return nil, errors.Wrapf(err, "decode breakdown of %s", row.ID)
	}

	risks := []string{}
	if row.RiskFactorsJSON != "" {
		if err := json.Unmarshal([]byte(row.RiskFactorsJSON), &risks); err != nil {
			return nil, errors.Wrapf(err, "decode risk factors of %s", row.ID)
		}
	}

	return &score.AIScoreResult{
		ID:                      id,
		Ticker:                  row.Ticker,
		Score:                   row.Score,
		Classification:          score.Classification(row.Classification),
		Grade:                   score.Grade(row.Grade),
		Breakdown:               breakdown,
		Confidence:              row.Confidence,
		ValuationAnalysis:       row.ValuationAnalysis,
		FinancialHealthAnalysis: row.FinancialHealthAnalysis,
		GrowthOutlook:           row.GrowthOutlook,
		RiskFactors:             risks,
		ShortTermOutlook:        row.ShortTermOutlook,
		LongTermOutlook:         row.LongTermOutlook,
		SentimentSummary:        row.SentimentSummary,
		Reasoning:               row.Reasoning,
		Timestamp:               time.UnixMilli(row.CreatedAt).UTC(),
	}, nil
}
