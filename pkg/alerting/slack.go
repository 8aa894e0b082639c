package alerting

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	goslack "github.com/slack-go/slack"

	"github.com/sentinelsec/sentinel/pkg/models"
)

// SlackSink posts alerts to a Slack channel.
type SlackSink struct {
	api       *goslack.Client
	channelID string
	logger    *slog.Logger
}

// NewSlackSink creates a Slack sink. Returns nil if token or channel is
// empty (Slack notifications disabled).
func NewSlackSink(token, channelID string) *SlackSink {
	if token == "" || channelID == "" {
		return nil
	}
	return &SlackSink{
		api:       goslack.New(token),
		channelID: channelID,
		logger:    slog.Default().With("component", "slack-sink"),
	}
}

// NewSlackSinkWithAPIURL creates a Slack sink that targets a custom API
// URL. Useful for testing with a mock server.
func NewSlackSinkWithAPIURL(token, channelID, apiURL string) *SlackSink {
	return &SlackSink{
		api:       goslack.New(token, goslack.OptionAPIURL(apiURL)),
		channelID: channelID,
		logger:    slog.Default().With("component", "slack-sink"),
	}
}

// Name returns the sink name.
func (s *SlackSink) Name() string { return "slack" }

// Deliver posts the alert message. Fail-open: errors are logged, never
// returned.
func (s *SlackSink) Deliver(ctx context.Context, alert *models.Alert) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	blocks := buildAlertBlocks(alert)
	_, _, err := s.api.PostMessageContext(ctx, s.channelID,
		goslack.MsgOptionBlocks(blocks...))
	if err != nil {
		s.logger.Error("Failed to send Slack alert",
			"alert_id", alert.ID, "error", err)
	}
}

func buildAlertBlocks(alert *models.Alert) []goslack.Block {
	header := fmt.Sprintf(":rotating_light: Security alert (%s)", alert.Severity)
	if alert.RuleName != "" {
		header = fmt.Sprintf(":rotating_light: %s (%s)", alert.RuleName, alert.Severity)
	}

	body := fmt.Sprintf("*Source:* %s\n*Message:* %s\n*Recommendation:* %s",
		alert.Source, alert.Message, alert.Recommendation)
	if alert.AnomalyScore != nil {
		body += fmt.Sprintf("\n*Anomaly score:* %.3f", *alert.AnomalyScore)
	}

	return []goslack.Block{
		goslack.NewHeaderBlock(
			goslack.NewTextBlockObject(goslack.PlainTextType, header, false, false)),
		goslack.NewSectionBlock(
			goslack.NewTextBlockObject(goslack.MarkdownType, body, false, false), nil, nil),
	}
}
