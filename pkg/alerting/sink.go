// Package alerting delivers alerts to their destinations. The core emits
// alerts as structured log lines; webhook and Slack delivery are optional
// sinks layered on top. Every sink is fail-open: delivery errors are logged
// and never reach the pipeline.
package alerting

import (
	"context"
	"log/slog"

	"github.com/sentinelsec/sentinel/pkg/models"
)

// Sink delivers one alert to an external destination.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, alert *models.Alert)
}

// LogSink emits alerts as structured log lines. It is always installed.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates the structured-log alert sink.
func NewLogSink() *LogSink {
	return &LogSink{logger: slog.Default().With("component", "alerts")}
}

// Name returns the sink name.
func (s *LogSink) Name() string { return "log" }

// Deliver writes the alert as one structured warning line.
func (s *LogSink) Deliver(_ context.Context, alert *models.Alert) {
	attrs := []any{
		"alert_id", alert.ID,
		"severity", alert.Severity,
		"source", alert.Source,
		"message", alert.Message,
		"recommendation", alert.Recommendation,
	}
	if alert.RuleName != "" {
		attrs = append(attrs, "rule_name", alert.RuleName)
	}
	if alert.AnomalyScore != nil {
		attrs = append(attrs, "anomaly_score", *alert.AnomalyScore)
	}
	if alert.Summary != "" {
		attrs = append(attrs, "summary", alert.Summary)
	}
	s.logger.Warn("SECURITY ALERT", attrs...)
}
