package errors

import (
	"context"
)

// Tracker reports errors to an external service (Sentry) or discards them.
type Tracker interface {
	// CaptureError sends an error with tags
	CaptureError(ctx context.Context, err error, tags map[string]string) error

	// CaptureMessage sends a message at the given level
	CaptureMessage(ctx context.Context, message string, level Level, tags map[string]string) error

	// AddBreadcrumb records a step leading up to a later error
	AddBreadcrumb(ctx context.Context, message string, category string, level Level, data map[string]interface{})

	// Flush waits for pending events
	Flush(ctx context.Context) error
}

// Level is the severity of a tracked event
type Level string

const (
	LevelDebug   Level = "debug"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
	LevelFatal   Level = "fatal"
)

func (l Level) String() string {
	return string(l)
}
