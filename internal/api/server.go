package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"stockscore/internal/api/health"
	"stockscore/internal/metrics"
	"stockscore/pkg/errors"
	"stockscore/pkg/logger"
)

// ServerConfig contains configuration for HTTP server
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server wraps HTTP server with lifecycle management
type Server struct {
	httpServer *http.Server
	log        *logger.Logger
}

// NewServer creates the HTTP server with all routes
func NewServer(cfg ServerConfig, scores ScoreService, healthHandler *health.Handler, log *logger.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      NewRouter(scores, healthHandler, log),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	log.Infow("HTTP server configured", "addr", cfg.Addr)

	return &Server{
		httpServer: httpServer,
		log:        log,
	}
}

// NewRouter mounts the score API, health probes and /metrics
func NewRouter(scores ScoreService, healthHandler *health.Handler, log *logger.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))

	r.Get("/health", healthHandler.HandleHealth)
	r.Get("/ready", healthHandler.HandleReadiness)
	r.Get("/live", healthHandler.HandleLiveness)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	h := &scoreHandler{scores: scores, now: time.Now, log: log.With("component", "score_api")}
	r.Route("/api/stock/{ticker}", func(r chi.Router) {
		r.Get("/ai-score", h.getScore)
		r.Get("/ai-score/history", h.getHistory)
	})

	return r
}

// Start begins listening for HTTP requests and blocks until the server stops
func (s *Server) Start() error {
	s.log.Infof("Starting HTTP server on %s", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "http server failed")
	}

	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Stopping HTTP server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "http server shutdown failed")
	}

	s.log.Info("✓ HTTP server stopped")
	return nil
}
