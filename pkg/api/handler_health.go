package api

import (
	"context"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"

	"github.com/sentinelsec/sentinel/pkg/engine"
	"github.com/sentinelsec/sentinel/pkg/version"
)

// healthHandler handles GET /health. Unauthenticated; reports whether the
// document store is reachable and whether monitoring is running.
func (s *Server) healthHandler(c *echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	return c.JSON(http.StatusOK, &HealthResponse{
		Status:                 "healthy",
		Version:                version.Full(),
		EngineRunning:          s.engine.State() == engine.StateRunning,
		ElasticsearchConnected: s.engine.StorageHealthy(ctx),
	})
}
