package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Cache metrics
	CacheRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockscore_cache_requests_total",
			Help: "Cache lookups by namespace and result",
		},
		[]string{"namespace", "result"}, // result: hit|miss|error
	)

	// Rate limiter metrics
	RateLimitDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockscore_rate_limit_decisions_total",
			Help: "Rate limiter decisions",
		},
		[]string{"backend", "decision"}, // decision: allowed|rejected
	)

	// Scoring metrics
	ScoreComputations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockscore_score_computations_total",
			Help: "Score computations by outcome",
		},
		[]string{"status"}, // status: success|error
	)

	ScoreValue = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stockscore_score_value",
			Help:    "Distribution of computed aggregate scores",
			Buckets: []float64{10, 25, 35, 45, 55, 65, 80, 90, 100},
		},
	)

	ScoreDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stockscore_score_duration_seconds",
			Help:    "End-to-end score computation time",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
	)

	NarrativeFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stockscore_narrative_fallbacks_total",
			Help: "Narrative calls that failed and were replaced by the template",
		},
	)

	// Upstream (text-generation) metrics
	UpstreamCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockscore_upstream_calls_total",
			Help: "Text-generation calls",
		},
		[]string{"provider", "purpose", "status"},
	)

	UpstreamLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stockscore_upstream_latency_seconds",
			Help:    "Text-generation call latency",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30},
		},
		[]string{"provider", "purpose"},
	)

	// Side effects that must never fail a request
	SideEffectFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockscore_side_effect_failures_total",
			Help: "Best-effort persistence and event failures",
		},
		[]string{"kind"}, // kind: persist|publish
	)

	// Database metrics
	DBQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockscore_db_queries_total",
			Help: "Total database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stockscore_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"operation"},
	)

	KafkaMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockscore_kafka_messages_total",
			Help: "Kafka messages published",
		},
		[]string{"topic", "status"},
	)
)

var registerOnce sync.Once

// Init registers all metrics with Prometheus. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			CacheRequests,
			RateLimitDecisions,
			ScoreComputations,
			ScoreValue,
			ScoreDuration,
			NarrativeFallbacks,
			UpstreamCalls,
			UpstreamLatency,
			SideEffectFailures,
			DBQueries,
			DBQueryDuration,
			KafkaMessages,
		)
	})
}

// Handler returns Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordCacheLookup counts a cache hit or miss
func RecordCacheLookup(namespace string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheRequests.WithLabelValues(namespace, result).Inc()
}

// RecordRateLimit counts a limiter decision
func RecordRateLimit(backend string, allowed bool) {
	decision := "rejected"
	if allowed {
		decision = "allowed"
	}
	RateLimitDecisions.WithLabelValues(backend, decision).Inc()
}

// RecordScore records a finished score computation
func RecordScore(score int, duration time.Duration, err error) {
	ScoreComputations.WithLabelValues(status(err)).Inc()
	if err != nil {
		return
	}
	ScoreValue.Observe(float64(score))
	ScoreDuration.Observe(duration.Seconds())
}

// RecordUpstreamCall records a text-generation call
func RecordUpstreamCall(provider, purpose string, latency time.Duration, err error) {
	UpstreamCalls.WithLabelValues(provider, purpose, status(err)).Inc()
	UpstreamLatency.WithLabelValues(provider, purpose).Observe(latency.Seconds())
}

// RecordDBQuery records a database query
func RecordDBQuery(operation string, duration time.Duration, err error) {
	DBQueries.WithLabelValues(operation, status(err)).Inc()
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordKafkaMessage records a publish attempt
func RecordKafkaMessage(topic string, err error) {
	KafkaMessages.WithLabelValues(topic, status(err)).Inc()
}
