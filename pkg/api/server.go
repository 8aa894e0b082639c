// Package api exposes the authenticated admin control plane: reconfigure
// the pipeline, query stored alerts and logs, and report health.
package api

import (
	"context"
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/sentinelsec/sentinel/pkg/config"
	"github.com/sentinelsec/sentinel/pkg/engine"
	"github.com/sentinelsec/sentinel/pkg/models"
)

// Pipeline is the subset of the engine the admin surface drives.
type Pipeline interface {
	Initialize(ctx context.Context, sources []string) error
	StartMonitoring() error
	StopMonitoring()
	State() engine.State
	StorageHealthy(ctx context.Context) bool
}

// Searcher is the subset of the storage client the query endpoints use.
type Searcher interface {
	Search(ctx context.Context, query map[string]any, size int) []*models.Event
}

// Server is the admin API server.
type Server struct {
	cfg    *config.Config
	engine Pipeline
	store  Searcher
	echo   *echo.Echo
	http   *http.Server
}

// NewServer creates the admin API server and registers its routes.
func NewServer(cfg *config.Config, eng Pipeline, store Searcher) *Server {
	s := &Server{
		cfg:    cfg,
		engine: eng,
		store:  store,
		echo:   echo.New(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	e := s.echo
	e.Use(securityHeaders())

	// Health is deliberately unauthenticated.
	e.GET("/health", s.healthHandler)

	e.POST("/configure", s.configureHandler, s.requireAPIKey())
	e.GET("/alerts", s.alertsHandler, s.requireAPIKey())
	e.GET("/logs", s.logsHandler, s.requireAPIKey())
}

// Handler returns the underlying HTTP handler, for tests.
func (s *Server) Handler() http.Handler { return s.echo }

// Start serves HTTP on addr, blocking until shutdown or failure.
func (s *Server) Start(addr string) error {
	s.http = &http.Server{Addr: addr, Handler: s.echo}
	return s.http.ListenAndServe()
}

// Shutdown stops the HTTP server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
