package logger

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"stockscore/pkg/errors"
)

var (
	mu           sync.RWMutex
	globalLogger *Logger
)

// Logger wraps zap.SugaredLogger and forwards error-level entries to a tracker
type Logger struct {
	*zap.SugaredLogger
	tracker errors.Tracker
}

// New builds a logger: JSON output in production, colored console otherwise.
// Unknown levels fall back to info.
func New(level string, env string) (*Logger, error) {
	var config zap.Config

	if env == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)

	base, err := config.Build(
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	if err != nil {
		return nil, errors.Wrap(err, "build zap logger")
	}

	return &Logger{SugaredLogger: base.Sugar()}, nil
}

// NewNop returns a logger that discards everything
func NewNop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// Init replaces the global logger
func Init(level string, env string) error {
	l, err := New(level, env)
	if err != nil {
		return err
	}
	mu.Lock()
	globalLogger = l
	mu.Unlock()
	return nil
}

// SetErrorTracker attaches a tracker to the global logger
func SetErrorTracker(tracker errors.Tracker) {
	mu.Lock()
	defer mu.Unlock()
	if globalLogger != nil {
		globalLogger.tracker = tracker
	}
}

// Get returns the global logger, creating a development logger on first use
func Get() *Logger {
	mu.RLock()
	l := globalLogger
	mu.RUnlock()
	if l != nil {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if globalLogger == nil {
		base, _ := zap.NewDevelopment()
		globalLogger = &Logger{SugaredLogger: base.Sugar()}
	}
	return globalLogger
}

// With creates a child logger with additional fields
func (l *Logger) With(args ...interface{}) *Logger {
	return &Logger{
		SugaredLogger: l.SugaredLogger.With(args...),
		tracker:       l.tracker,
	}
}

// Errorw logs with key-value pairs and reports the entry to the tracker
func (l *Logger) Errorw(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Errorw(msg, keysAndValues...)
	l.track(fmt.Errorf("%s %v", msg, keysAndValues))
}

// Errorf logs a formatted error and reports it to the tracker
func (l *Logger) Errorf(template string, args ...interface{}) {
	l.SugaredLogger.Errorf(template, args...)
	l.track(fmt.Errorf(template, args...))
}

// ErrorWithContext logs err and reports it with tags
func (l *Logger) ErrorWithContext(ctx context.Context, err error, tags map[string]string) {
	l.SugaredLogger.Errorw(err.Error(), "tags", tags)
	if l.tracker != nil {
		_ = l.tracker.CaptureError(ctx, err, tags)
	}
}

func (l *Logger) track(err error) {
	if l.tracker == nil {
		return
	}
	_ = l.tracker.CaptureError(context.Background(), err, map[string]string{
		"component": "logger",
	})
}

// Sync flushes buffered entries
func Sync() error {
	mu.RLock()
	defer mu.RUnlock()
	if globalLogger != nil {
		return globalLogger.Sync()
	}
	return nil
}
