package score

import (
	"context"
)

// DefaultHistoryLimit and MaxHistoryLimit bound History queries
const (
	DefaultHistoryLimit = 10
	MaxHistoryLimit     = 100
)

// Repository is the append-only score log
type Repository interface {
	Save(ctx context.Context, result *AIScoreResult) error
	// History returns the newest results for ticker first
	History(ctx context.Context, ticker string, limit int) ([]AIScoreResult, error)
	// Latest returns errors.ErrNotFound when ticker was never scored
	Latest(ctx context.Context, ticker string) (*AIScoreResult, error)
}

// EventPublisher announces freshly computed scores
type EventPublisher interface {
	PublishScoreComputed(ctx context.Context, event ComputedEvent) error
}

// ClampHistoryLimit applies the default and the upper bound
func ClampHistoryLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		return MaxHistoryLimit
	default:
		return limit
	}
}
