package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/sentinelsec/sentinel/pkg/models"
)

// WebhookSink POSTs alerts as JSON to a configured URL.
type WebhookSink struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

// NewWebhookSink creates a webhook sink. Returns nil if url is empty.
func NewWebhookSink(url string) *WebhookSink {
	if url == "" {
		return nil
	}
	return &WebhookSink{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
		logger: slog.Default().With("component", "webhook-sink"),
	}
}

// Name returns the sink name.
func (s *WebhookSink) Name() string { return "webhook" }

// Deliver POSTs the alert. Fail-open: errors are logged, never returned.
func (s *WebhookSink) Deliver(ctx context.Context, alert *models.Alert) {
	body, err := json.Marshal(alert)
	if err != nil {
		s.logger.Error("Failed to encode alert", "alert_id", alert.ID, "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		s.logger.Error("Failed to build webhook request", "alert_id", alert.ID, "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error("Webhook delivery failed", "alert_id", alert.ID, "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		s.logger.Error("Webhook delivery rejected",
			"alert_id", alert.ID, "status", resp.StatusCode)
	}
}
