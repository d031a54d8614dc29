package sentry

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"

	"stockscore/internal/adapters/config"
	"stockscore/pkg/errors"
)

const defaultFlushTimeout = 2 * time.Second

// Tracker reports errors to Sentry on its own hub
type Tracker struct {
	hub *sentry.Hub
}

var _ errors.Tracker = (*Tracker)(nil)

// New creates a Sentry tracker for the given environment
func New(cfg config.ErrorTrackingConfig, environment, release string) (*Tracker, error) {
	return NewWithOptions(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      environment,
		Release:          release,
		AttachStacktrace: true,
	})
}

// NewWithOptions creates a tracker from raw client options
func NewWithOptions(opts sentry.ClientOptions) (*Tracker, error) {
	client, err := sentry.NewClient(opts)
	if err != nil {
		return nil, errors.Wrap(err, "sentry client")
	}
	return &Tracker{hub: sentry.NewHub(client, sentry.NewScope())}, nil
}

// CaptureError sends err with tags. The error class is attached as the
// "error_class" tag and used as the fingerprint so upstream outages group together.
func (t *Tracker) CaptureError(ctx context.Context, err error, tags map[string]string) error {
	if err == nil {
		return nil
	}
	class := Classify(err)

	hub := t.hub.Clone()
	hub.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		scope.SetTag("error_class", class)
		scope.SetFingerprint([]string{"{{ default }}", class})
		hub.CaptureException(err)
	})
	return nil
}

// CaptureMessage sends message at level
func (t *Tracker) CaptureMessage(ctx context.Context, message string, level errors.Level, tags map[string]string) error {
	hub := t.hub.Clone()
	hub.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		scope.SetLevel(convertLevel(level))
		hub.CaptureMessage(message)
	})
	return nil
}

// AddBreadcrumb records a step leading up to a later error
func (t *Tracker) AddBreadcrumb(ctx context.Context, message string, category string, level errors.Level, data map[string]interface{}) {
	t.hub.AddBreadcrumb(&sentry.Breadcrumb{
		Message:  message,
		Category: category,
		Level:    convertLevel(level),
		Data:     data,
	}, nil)
}

// Flush waits for pending events until ctx expires or two seconds pass
func (t *Tracker) Flush(ctx context.Context) error {
	timeout := defaultFlushTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if !t.hub.Flush(timeout) {
		return errors.Wrap(errors.ErrTimeout, "sentry flush")
	}
	return nil
}

// Classify names the error class used for grouping
func Classify(err error) string {
	switch {
	case errors.Is(err, errors.ErrRateLimitExceeded):
		return "rate_limited"
	case errors.Is(err, errors.ErrUpstream):
		return "upstream"
	case errors.Is(err, errors.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, errors.ErrNarrative):
		return "narrative"
	case errors.Is(err, errors.ErrNotFound):
		return "not_found"
	case errors.Is(err, errors.ErrUnavailable):
		return "unavailable"
	case errors.Is(err, errors.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "internal"
	}
}

func convertLevel(level errors.Level) sentry.Level {
	switch level {
	case errors.LevelDebug:
		return sentry.LevelDebug
	case errors.LevelInfo:
		return sentry.LevelInfo
	case errors.LevelWarning:
		return sentry.LevelWarning
	case errors.LevelError:
		return sentry.LevelError
	case errors.LevelFatal:
		return sentry.LevelFatal
	default:
		return sentry.LevelInfo
	}
}
