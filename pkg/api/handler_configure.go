package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"
)

// configureHandler handles POST /configure: stop monitoring, reinitialize
// against the new sources, restart.
func (s *Server) configureHandler(c *echo.Context) error {
	var req ConfigureRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if len(req.Sources) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "sources field is required")
	}

	if err := s.engine.Initialize(c.Request().Context(), req.Sources); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to initialize engine")
	}
	if err := s.engine.StartMonitoring(); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to start monitoring")
	}

	return c.JSON(http.StatusOK, &ConfigureResponse{
		Status:  "configured",
		Sources: req.Sources,
	})
}
