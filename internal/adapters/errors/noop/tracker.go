package noop

import (
	"context"

	"stockscore/pkg/errors"
)

// Tracker discards everything. Used when SENTRY_ENABLED is false.
type Tracker struct{}

var _ errors.Tracker = Tracker{}

// New creates a no-op tracker
func New() Tracker {
	return Tracker{}
}

func (Tracker) CaptureError(context.Context, error, map[string]string) error { return nil }

func (Tracker) CaptureMessage(context.Context, string, errors.Level, map[string]string) error {
	return nil
}

func (Tracker) AddBreadcrumb(context.Context, string, string, errors.Level, map[string]interface{}) {
}

func (Tracker) Flush(context.Context) error { return nil }
