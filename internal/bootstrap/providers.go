package bootstrap

import (
	"context"
	"time"

	"stockscore/internal/adapters/ai"
	"stockscore/internal/adapters/config"
	"stockscore/internal/adapters/database"
	errnoop "stockscore/internal/adapters/errors/noop"
	"stockscore/internal/adapters/errors/sentry"
	"stockscore/internal/adapters/kafka"
	redisclient "stockscore/internal/adapters/redis"
	"stockscore/internal/api"
	"stockscore/internal/api/health"
	"stockscore/internal/cache"
	"stockscore/internal/metrics"
	"stockscore/internal/ratelimit"
	"stockscore/internal/repository/sqlstore"
	"stockscore/internal/scoring"
	"stockscore/internal/services/aiscore"
	"stockscore/pkg/errors"
	"stockscore/pkg/logger"
)

// Version is stamped at build time with -ldflags
var Version = "dev"

const connectTimeout = 10 * time.Second

// ========================================
// Phase 1: Configuration & Logging
// ========================================

// InitConfig loads configuration, the logger and the error tracker.
// A Config set on the container beforehand is used as is.
func (c *Container) InitConfig() error {
	if c.Config == nil {
		cfg, err := config.Load()
		if err != nil {
			return errors.Wrap(err, "load config")
		}
		c.Config = cfg
	}
	cfg := c.Config

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		return errors.Wrap(err, "init logger")
	}
	c.Log = logger.Get()
	c.Log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	c.ErrorTracker = provideErrorTracker(cfg, c.Log)
	logger.SetErrorTracker(c.ErrorTracker)

	metrics.Init()
	return nil
}

// ========================================
// Phase 2: Infrastructure
// ========================================

// InitInfrastructure connects Redis (when a backend needs it), opens the
// score log database and builds the response cache.
func (c *Container) InitInfrastructure() error {
	cfg := c.Config
	ctx, cancel := context.WithTimeout(c.Context, connectTimeout)
	defer cancel()

	if cfg.Cache.Backend == "redis" || cfg.RateLimit.Backend == "redis" {
		c.Log.Infow("Connecting to Redis...", "addr", cfg.Redis.Addr())
		client, err := redisclient.NewClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		c.Redis = client
		c.Log.Info("✓ Redis connected")
	}

	c.Log.Infow("Opening score log...", "driver", cfg.Database.Driver)
	db, err := database.NewClient(ctx, cfg.Database)
	if err != nil {
		return err
	}
	c.DB = db

	c.Services.ScoreLog = sqlstore.NewScoreLogRepository(db.DB())
	if err := c.Services.ScoreLog.Migrate(ctx); err != nil {
		return err
	}
	c.Log.Info("✓ Score log ready")

	c.Services.CacheStore, c.Services.MemoryCache = provideCacheStore(cfg.Cache, c.Redis)
	c.Services.Cache = cache.New(c.Services.CacheStore,
		cache.WithSingleFlight(cfg.Cache.SingleFlight),
		cache.WithLogger(c.Log.With("component", "cache")),
	)
	c.Log.Infow("✓ Cache ready", "backend", cfg.Cache.Backend, "single_flight", cfg.Cache.SingleFlight)

	return nil
}

// ========================================
// Phase 3: External Adapters
// ========================================

// InitAdapters builds the chat provider and the optional event publisher
func (c *Container) InitAdapters() error {
	cfg := c.Config

	provider, err := ai.NewChatProvider(c.Context, cfg.AI)
	if err != nil {
		return errors.Wrap(err, "chat provider")
	}
	c.Adapters.ChatProvider = provider
	c.Log.Infow("✓ Chat provider ready",
		"provider", provider.Name(),
		"model", ai.ModelFor(cfg.AI),
		"requests_per_minute", cfg.AI.RequestsPerMinute,
	)

	if cfg.Kafka.Enabled() {
		publisher, err := kafka.NewPublisher(cfg.Kafka)
		if err != nil {
			return err
		}
		c.Adapters.Publisher = publisher
		c.Log.Infow("✓ Kafka publisher ready", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.ScoreTopic)
	} else {
		c.Log.Info("Kafka disabled, score events will not be published")
	}

	return nil
}

// ========================================
// Phase 4: Services
// ========================================

// InitServices builds the limiter, the engine and the score service
func (c *Container) InitServices() error {
	cfg := c.Config

	c.Services.Limiter = provideLimiter(cfg.RateLimit, c.Redis)

	settings := aiscore.ProviderSettings{
		Model:       ai.ModelFor(cfg.AI),
		Temperature: cfg.AI.Temperature,
		MaxTokens:   cfg.AI.MaxTokens,
		Timeout:     cfg.AI.Timeout,
	}
	c.Services.Engine = scoring.NewEngine(
		aiscore.NewMetricsSource(c.Adapters.ChatProvider, settings),
		aiscore.NewNarrativeSource(c.Adapters.ChatProvider, settings),
		scoring.WithTechnicalEnrichment(cfg.Scoring.DeriveTechnicals),
		scoring.WithLogger(c.Log.With("component", "scoring_engine")),
	)

	opts := []aiscore.Option{
		aiscore.WithRepository(c.Services.ScoreLog),
		aiscore.WithLogger(c.Log.With("component", "aiscore_service")),
	}
	if c.Adapters.Publisher != nil {
		opts = append(opts, aiscore.WithEventPublisher(c.Adapters.Publisher))
	}
	c.Services.Scores = aiscore.NewService(
		c.Services.Limiter,
		c.Services.Cache,
		c.Services.Engine,
		cfg.Cache.AIScoreTTL(),
		opts...,
	)

	c.Log.Infow("✓ Score service ready",
		"rate_limit", cfg.RateLimit.MaxRequests,
		"window", cfg.RateLimit.Window(),
		"ttl", cfg.Cache.AIScoreTTL(),
	)
	return nil
}

// ========================================
// Phase 5: Application
// ========================================

// InitApplication builds health checks, the metrics collector and the HTTP server
func (c *Container) InitApplication() {
	cfg := c.Config
	checks := provideHealthChecks(c)

	c.HealthHandler = health.New(c.Log.With("component", "health"), cfg.App.Name, Version, checks...)

	collectorOpts := []metrics.CollectorOption{metrics.WithScoreLog(c.Services.ScoreLog)}
	if c.Services.MemoryCache != nil {
		collectorOpts = append(collectorOpts, metrics.WithCacheSize(c.Services.MemoryCache.Len))
	}
	for _, check := range checks {
		collectorOpts = append(collectorOpts, metrics.WithHealthCheck(check.Name, check.Probe))
	}
	if err := metrics.RegisterCollector(metrics.NewStateCollector(c.Log.With("component", "metrics"), collectorOpts...)); err != nil {
		c.Log.Warnw("State collector not registered", "error", err)
	}

	c.HTTPServer = api.NewServer(api.ServerConfig{
		Addr:         cfg.HTTP.Addr(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}, c.Services.Scores, c.HealthHandler, c.Log)
}

// ========================================
// Providers
// ========================================

func provideErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return errnoop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking, cfg.App.Env, Version)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return errnoop.New()
	}

	log.Info("✓ Error tracking initialized (Sentry)")
	return tracker
}

func provideCacheStore(cfg config.CacheConfig, redis *redisclient.Client) (cache.Store, *cache.MemoryStore) {
	if cfg.Backend == "redis" && redis != nil {
		return cache.NewRedisStore(redis, cache.DefaultRedisPrefix), nil
	}
	mem := cache.NewMemoryStore(cfg.MaxEntries)
	return mem, mem
}

func provideLimiter(cfg config.RateLimitConfig, redis *redisclient.Client) ratelimit.Limiter {
	policy := ratelimit.Policy{MaxRequests: cfg.MaxRequests, Window: cfg.Window()}
	if cfg.Backend == "redis" && redis != nil {
		return ratelimit.NewRedisLimiter(redis, policy, time.Now)
	}
	return ratelimit.NewMemoryLimiter(policy, time.Now)
}

func provideHealthChecks(c *Container) []health.Check {
	checks := []health.Check{
		{Name: "database", Required: true, Probe: c.DB.Health},
	}
	if c.Redis != nil {
		checks = append(checks, health.Check{Name: "redis", Required: true, Probe: c.Redis.Health})
	}
	return checks
}
