// Package server exposes the decision pipeline over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/civicroute/internal/config"
	"github.com/hyperjump/civicroute/internal/metrics"
	"github.com/hyperjump/civicroute/internal/models"
)

// Predictor turns an encoded image into a routing decision.
type Predictor interface {
	HandleImage(ctx context.Context, imageBytes []byte) (*models.DecisionRecord, error)
}

// Server is the HTTP adapter for the decision pipeline.
type Server struct {
	predictor Predictor
	config    *config.ServerConfig
	metrics   *metrics.PredictMetrics
	logger    *zap.Logger
	server    *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(predictor Predictor, cfg *config.ServerConfig, m *metrics.PredictMetrics, logger *zap.Logger) *Server {
	return &Server{
		predictor: predictor,
		config:    cfg,
		metrics:   m,
		logger:    logger,
	}
}

// Router builds the route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if s.config.RequestTimeoutSeconds > 0 {
		r.Use(middleware.Timeout(time.Duration(s.config.RequestTimeoutSeconds) * time.Second))
	}

	r.Post("/api/v1/predict/image", s.handlePredictImage)
	r.Get("/api/v1/departments", s.handleDepartments)
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := s.config.Addr()
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
