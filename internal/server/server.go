// Package server provides the HTTP API for kiji.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hyperjump/kiji/internal/config"
	"github.com/hyperjump/kiji/internal/corpus"
	"github.com/hyperjump/kiji/internal/metrics"
	"github.com/hyperjump/kiji/internal/models"
)

// Researcher answers research queries and describes the corpus.
type Researcher interface {
	Research(ctx context.Context, q *models.ResearchQuery) (*models.Report, error)
	Stats() corpus.Stats
	Hotspots() []string
}

// Reloader reloads the corpus from its dataset.
type Reloader interface {
	Reload(ctx context.Context) error
}

// Server is the HTTP server for the kiji API.
type Server struct {
	engine   Researcher
	reloader Reloader
	config   *config.ServerConfig
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates a server. reloader may be nil, which disables the reload endpoint.
func NewServer(engine Researcher, reloader Reloader, cfg *config.ServerConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		engine:   engine,
		reloader: reloader,
		config:   cfg,
		logger:   logger,
	}
}

// Router returns the API routes with middleware applied.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))
	r.Use(metrics.Middleware())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/research", s.handleResearch)
		r.Get("/stats", s.handleStats)
		r.Get("/hotspots", s.handleHotspots)
		r.Post("/corpus/reload", s.handleReload)
	})
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
