package bootstrap

import (
	"context"
	"sync"
	"time"

	"stockscore/internal/adapters/database"
	"stockscore/internal/adapters/kafka"
	redisclient "stockscore/internal/adapters/redis"
	"stockscore/internal/api"
	"stockscore/pkg/errors"
	"stockscore/pkg/logger"
)

// Lifecycle manages graceful shutdown of components
type Lifecycle struct {
	shutdownTimeout time.Duration
}

// NewLifecycle creates a new lifecycle manager
func NewLifecycle() *Lifecycle {
	return &Lifecycle{
		shutdownTimeout: 30 * time.Second,
	}
}

// Shutdown performs coordinated cleanup in order:
// 1. Stop accepting requests
// 2. Wait for in-flight work and background goroutines
// 3. Close the Kafka publisher (flushes pending writes)
// 4. Flush the error tracker and logs
// 5. Close data stores last
func (l *Lifecycle) Shutdown(
	wg *sync.WaitGroup,
	httpServer *api.Server,
	publisher *kafka.Publisher,
	errorTracker errors.Tracker,
	db *database.Client,
	redisClient *redisclient.Client,
	log *logger.Logger,
) {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), l.shutdownTimeout)
	defer shutdownCancel()

	log.Info("[1/5] Stopping HTTP server...")
	if httpServer != nil {
		httpCtx, httpCancel := context.WithTimeout(shutdownCtx, 10*time.Second)
		if err := httpServer.Shutdown(httpCtx); err != nil {
			log.Errorw("HTTP server shutdown failed", "error", err)
		}
		httpCancel()
	}

	log.Info("[2/5] Waiting for background goroutines...")
	l.waitForGoroutines(wg, 10*time.Second, log)

	log.Info("[3/5] Closing Kafka publisher...")
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			log.Errorw("Kafka publisher close failed", "error", err)
		} else {
			log.Info("✓ Kafka publisher closed")
		}
	}

	log.Info("[4/5] Flushing error tracker and logs...")
	l.flushErrorTracker(shutdownCtx, errorTracker, log)
	_ = logger.Sync()

	log.Info("[5/5] Closing data stores...")
	l.closeStores(db, redisClient, log)

	log.Info("✅ Graceful shutdown complete")
}

// waitForGoroutines waits for all goroutines with a timeout
func (l *Lifecycle) waitForGoroutines(wg *sync.WaitGroup, timeout time.Duration, log *logger.Logger) {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info("✓ All goroutines finished")
	case <-time.After(timeout):
		log.Warnw("⚠ Some goroutines did not finish within timeout", "timeout", timeout)
	}
}

func (l *Lifecycle) flushErrorTracker(ctx context.Context, tracker errors.Tracker, log *logger.Logger) {
	if tracker == nil {
		return
	}

	flushCtx, flushCancel := context.WithTimeout(ctx, 3*time.Second)
	defer flushCancel()

	if err := tracker.Flush(flushCtx); err != nil {
		log.Warnw("Error tracker flush failed", "error", err)
	} else {
		log.Info("✓ Error tracker flushed")
	}
}

func (l *Lifecycle) closeStores(db *database.Client, redisClient *redisclient.Client, log *logger.Logger) {
	var closeErrs []error

	if db != nil {
		if err := db.Close(); err != nil {
			closeErrs = append(closeErrs, errors.Wrap(err, "database"))
		}
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			closeErrs = append(closeErrs, errors.Wrap(err, "redis"))
		}
	}

	if len(closeErrs) > 0 {
		log.Errorw("Data store close errors", "errors", closeErrs)
	} else {
		log.Info("✓ Data stores closed")
	}
}
