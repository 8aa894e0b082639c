package api

import (
	"net/http"
	"strconv"
	"strings"

	echo "github.com/labstack/echo/v5"

	"github.com/sentinelsec/sentinel/pkg/models"
	"github.com/sentinelsec/sentinel/pkg/storage"
)

// timeRanges maps the accepted time_range values onto date-math filters.
var timeRanges = map[string]string{
	"1h":  "now-1h/h",
	"6h":  "now-6h/h",
	"24h": "now-24h/d",
	"7d":  "now-7d/d",
}

// alertsHandler handles GET /alerts: stored events filtered by optional
// severity and time range, newest first, at most 100.
func (s *Server) alertsHandler(c *echo.Context) error {
	severity := strings.ToLower(c.QueryParam("severity"))
	if severity != "" && !models.IsValidSeverity(severity) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid severity: must be low, medium, high, or critical")
	}

	timeRange := c.QueryParam("time_range")
	if timeRange == "" {
		timeRange = "1h"
	}
	timeFilter, ok := timeRanges[timeRange]
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid time_range: must be 1h, 6h, 24h, or 7d")
	}

	events := s.store.Search(c.Request().Context(), storage.AlertsQuery(severity, timeFilter), 100)
	return c.JSON(http.StatusOK, &AlertsResponse{Alerts: documents(events)})
}

// logsHandler handles GET /logs: multi-field text search over message,
// raw_log, source and ip, newest first.
func (s *Server) logsHandler(c *echo.Context) error {
	query := c.QueryParam("query")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter is required")
	}

	size := 50
	if v := c.QueryParam("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid size: must be a positive integer")
		}
		size = n
	}

	events := s.store.Search(c.Request().Context(), storage.MultiMatchQuery(query), size)
	return c.JSON(http.StatusOK, &LogsResponse{Logs: documents(events)})
}

// documents renders events in their persisted document shape.
func documents(events []*models.Event) []map[string]any {
	docs := make([]map[string]any, 0, len(events))
	for _, e := range events {
		docs = append(docs, e.Document())
	}
	return docs
}
