package bootstrap

import (
	"context"
	"sync"

	"stockscore/internal/adapters/ai"
	"stockscore/internal/adapters/config"
	"stockscore/internal/adapters/database"
	"stockscore/internal/adapters/kafka"
	redisclient "stockscore/internal/adapters/redis"
	"stockscore/internal/api"
	"stockscore/internal/api/health"
	"stockscore/internal/cache"
	"stockscore/internal/ratelimit"
	"stockscore/internal/repository/sqlstore"
	"stockscore/internal/scoring"
	"stockscore/internal/services/aiscore"
	"stockscore/pkg/errors"
	"stockscore/pkg/logger"
)

// Container holds all application dependencies and their lifecycle.
// Components are organized in initialization order.
type Container struct {
	// Core configuration & logging
	Config       *config.Config
	Log          *logger.Logger
	ErrorTracker errors.Tracker

	// Infrastructure (nil when not configured)
	Redis *redisclient.Client
	DB    *database.Client

	Adapters *Adapters
	Services *Services

	// Application layer
	HTTPServer    *api.Server
	HealthHandler *health.Handler

	Lifecycle *Lifecycle
	WG        *sync.WaitGroup
	Context   context.Context
	Cancel    context.CancelFunc
}

// Adapters groups external adapters
type Adapters struct {
	ChatProvider ai.ChatProvider
	Publisher    *kafka.Publisher
}

// Services groups the scoring stack
type Services struct {
	CacheStore  cache.Store
	MemoryCache *cache.MemoryStore // set only for the memory backend
	Cache       *cache.Cache
	Limiter     ratelimit.Limiter
	ScoreLog    *sqlstore.ScoreLogRepository
	Engine      *scoring.Engine
	Scores      *aiscore.Service
}

// NewContainer creates an empty container
func NewContainer() *Container {
	ctx, cancel := context.WithCancel(context.Background())

	return &Container{
		Adapters:  &Adapters{},
		Services:  &Services{},
		Lifecycle: NewLifecycle(),
		WG:        &sync.WaitGroup{},
		Context:   ctx,
		Cancel:    cancel,
	}
}

// MustInit initializes every component and exits on the first failure
func (c *Container) MustInit() {
	if err := c.Init(); err != nil {
		if c.Log != nil {
			c.Log.Fatalf("startup failed: %v", err)
		}
		panic("startup failed: " + err.Error())
	}
}

// Init runs every phase in order
func (c *Container) Init() error {
	if err := c.InitCore(); err != nil {
		return err
	}
	c.InitApplication()
	return nil
}

// InitCore builds everything except the HTTP layer
func (c *Container) InitCore() error {
	if err := c.InitConfig(); err != nil {
		return err
	}
	if err := c.InitInfrastructure(); err != nil {
		return err
	}
	if err := c.InitAdapters(); err != nil {
		return err
	}
	return c.InitServices()
}

// Start runs the cache janitor and the HTTP server in the background
func (c *Container) Start() error {
	if c.HTTPServer == nil {
		return errors.Wrap(errors.ErrInternal, "container not initialized")
	}
	c.Log.Info("Starting all systems...")

	if c.Services.MemoryCache != nil {
		c.WG.Add(1)
		go func() {
			defer c.WG.Done()
			c.Services.MemoryCache.Run(c.Context)
		}()
		c.Log.Info("✓ Cache janitor started")
	}

	c.WG.Add(1)
	go func() {
		defer c.WG.Done()
		if err := c.HTTPServer.Start(); err != nil {
			c.Log.Errorf("HTTP server failed: %v", err)
			c.Cancel()
		}
	}()

	c.Log.Info("✓ All systems operational")
	return nil
}

// Shutdown stops components in reverse dependency order
func (c *Container) Shutdown() {
	if c.Log == nil {
		c.Cancel()
		return
	}
	c.Log.Info("Initiating graceful shutdown...")
	c.Cancel()

	c.Lifecycle.Shutdown(
		c.WG,
		c.HTTPServer,
		c.Adapters.Publisher,
		c.ErrorTracker,
		c.DB,
		c.Redis,
		c.Log,
	)
}
