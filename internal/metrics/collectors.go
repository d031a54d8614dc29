package metrics

import (
	"context"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"stockscore/pkg/logger"
)

// RowCounter counts logged scores
type RowCounter interface {
	Count(ctx context.Context) (int, error)
}

// HealthCheck pings one dependency
type HealthCheck func(ctx context.Context) error

// StateCollector reads score log size, cache size and dependency health on scrape
type StateCollector struct {
	log       *logger.Logger
	scoreLog  RowCounter
	cacheSize func() int
	checks    map[string]HealthCheck
	timeout   time.Duration

	scoreLogRows *prometheus.Desc
	cacheEntries *prometheus.Desc
	dependencyUp *prometheus.Desc
}

// CollectorOption configures a StateCollector
type CollectorOption func(*StateCollector)

// WithScoreLog reports the number of logged scores
func WithScoreLog(counter RowCounter) CollectorOption {
	return func(c *StateCollector) { c.scoreLog = counter }
}

// WithCacheSize reports the number of in-process cache entries
func WithCacheSize(size func() int) CollectorOption {
	return func(c *StateCollector) { c.cacheSize = size }
}

// WithHealthCheck reports name as up (1) or down (0)
func WithHealthCheck(name string, check HealthCheck) CollectorOption {
	return func(c *StateCollector) { c.checks[name] = check }
}

// NewStateCollector creates a collector. Every scrape is bounded by a 5s timeout.
func NewStateCollector(log *logger.Logger, opts ...CollectorOption) *StateCollector {
	c := &StateCollector{
		log:     log,
		checks:  make(map[string]HealthCheck),
		timeout: 5 * time.Second,

		scoreLogRows: prometheus.NewDesc(
			"stockscore_score_log_rows",
			"Number of scores in the score log",
			nil, nil,
		),
		cacheEntries: prometheus.NewDesc(
			"stockscore_cache_entries",
			"Entries held by the in-process cache",
			nil, nil,
		),
		dependencyUp: prometheus.NewDesc(
			"stockscore_dependency_up",
			"Whether a dependency answered its health check (1) or not (0)",
			[]string{"dependency"}, nil,
		),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Describe implements prometheus.Collector
func (c *StateCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.scoreLogRows
	ch <- c.cacheEntries
	ch <- c.dependencyUp
}

// Collect implements prometheus.Collector
func (c *StateCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	c.collectScoreLog(ctx, ch)

	if c.cacheSize != nil {
		ch <- prometheus.MustNewConstMetric(c.cacheEntries, prometheus.GaugeValue, float64(c.cacheSize()))
	}

	c.collectDependencies(ctx, ch)
}

func (c *StateCollector) collectScoreLog(ctx context.Context, ch chan<- prometheus.Metric) {
	if c.scoreLog == nil {
		return
	}
	n, err := c.scoreLog.Count(ctx)
	if err != nil {
		c.log.Warnw("Failed to collect score log size", "error", err)
		return
	}
	ch <- prometheus.MustNewConstMetric(c.scoreLogRows, prometheus.GaugeValue, float64(n))
}

func (c *StateCollector) collectDependencies(ctx context.Context, ch chan<- prometheus.Metric) {
	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		up := 1.0
		if err := c.checks[name](ctx); err != nil {
			c.log.Debugw("Dependency check failed", "dependency", name, "error", err)
			up = 0
		}
		ch <- prometheus.MustNewConstMetric(c.dependencyUp, prometheus.GaugeValue, up, name)
	}
}

// RegisterCollector registers a collector with the default registry
func RegisterCollector(collector prometheus.Collector) error {
	return prometheus.Register(collector)
}
