// Package enrich attaches severity, sentiment, entity and summary fields to
// parsed events. The heuristic path always runs and is deterministic; an
// optional provider can override severity, summary and recommendation, with
// silent fallback to the heuristic result on any provider failure.
package enrich

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	govader "github.com/jonreiter/govader"

	"github.com/sentinelsec/sentinel/pkg/models"
	"github.com/sentinelsec/sentinel/pkg/parser"
)

// summaryLimit is the maximum summary length in characters.
const summaryLimit = 100

// severityLevel pairs a severity with its trigger keywords. Levels are
// matched in declared order, stopping at the first hit.
type severityLevel struct {
	severity models.Severity
	keywords []string
}

var severityLevels = []severityLevel{
	{models.SeverityCritical, []string{"critical", "fatal", "panic", "crash", "segmentation fault"}},
	{models.SeverityHigh, []string{"error", "fail", "denied", "blocked", "attack", "exception", "unauthorized"}},
	{models.SeverityMedium, []string{"warning", "unusual", "suspicious", "timeout", "refused", "non-fatal"}},
	{models.SeverityLow, []string{"info", "debug", "normal", "success", "accepted", "connected"}},
}

// Enricher computes the enrichment fields for events.
type Enricher struct {
	sentiment       *govader.SentimentIntensityAnalyzer
	provider        Provider
	providerTimeout time.Duration
	logger          *slog.Logger
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithProvider installs an external analysis provider whose result
// overrides the heuristic severity, summary and recommendation.
func WithProvider(p Provider) Option {
	return func(e *Enricher) { e.provider = p }
}

// WithProviderTimeout bounds each provider call. Default 10s.
func WithProviderTimeout(d time.Duration) Option {
	return func(e *Enricher) { e.providerTimeout = d }
}

// New creates an enricher.
func New(opts ...Option) *Enricher {
	e := &Enricher{
		sentiment:       govader.NewSentimentIntensityAnalyzer(),
		providerTimeout: 10 * time.Second,
		logger:          slog.Default().With("component", "enricher"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich writes the enrichment fields onto the event in place.
func (e *Enricher) Enrich(ctx context.Context, event *models.Event) {
	msg := event.Message
	if msg == "" {
		msg = event.RawLog
	}

	event.Sentiment = e.classifySentiment(msg)
	event.Severity = ClassifySeverity(msg)
	event.KeyEntities = ExtractEntities(msg)
	event.Summary = Summarize(msg)

	if e.provider == nil {
		return
	}

	callCtx, cancel := context.WithTimeout(ctx, e.providerTimeout)
	defer cancel()

	result, err := e.provider.Analyze(callCtx, msg)
	if err != nil {
		e.logger.Warn("Provider analysis failed, keeping heuristic result",
			"provider", e.provider.Name(), "error", err)
		return
	}
	if result.Severity != "" {
		event.Severity = result.Severity
	}
	if result.Summary != "" {
		event.Summary = result.Summary
	}
	if result.Recommendation != "" {
		event.Recommendation = result.Recommendation
	}
}

// classifySentiment maps VADER polarity scores onto a single label.
// compound >= 0.05 is POSITIVE, <= -0.05 NEGATIVE, else NEUTRAL.
func (e *Enricher) classifySentiment(msg string) *models.Sentiment {
	scores := e.sentiment.PolarityScores(msg)
	switch {
	case scores.Compound >= 0.05:
		return &models.Sentiment{Label: "POSITIVE", Score: scores.Positive}
	case scores.Compound <= -0.05:
		return &models.Sentiment{Label: "NEGATIVE", Score: scores.Negative}
	default:
		return &models.Sentiment{Label: "NEUTRAL", Score: scores.Neutral}
	}
}

// ClassifySeverity derives a severity by case-insensitive keyword match,
// in precedence order critical > high > medium > low. Default is low.
func ClassifySeverity(msg string) models.Severity {
	lower := strings.ToLower(msg)
	for _, level := range severityLevels {
		for _, kw := range level.keywords {
			if strings.Contains(lower, kw) {
				return level.severity
			}
		}
	}
	return models.SeverityLow
}

// ExtractEntities tokenises on whitespace and tags security-relevant tokens
// as IP:, FILE: or USER:. Token order is preserved, duplicates allowed.
func ExtractEntities(msg string) []string {
	var entities []string
	for _, word := range strings.Fields(msg) {
		lower := strings.ToLower(word)
		switch {
		case parser.IsIPv4(word):
			entities = append(entities, "IP:"+word)
		case strings.ContainsAny(word, `/\`):
			entities = append(entities, "FILE:"+word)
		case strings.HasPrefix(lower, "user:") || strings.Contains(lower, "username"):
			entities = append(entities, "USER:"+word)
		}
	}
	return entities
}

// Summarize returns the message verbatim, or its first 97 characters
// followed by "..." when it exceeds 100 characters.
func Summarize(msg string) string {
	if utf8.RuneCountInString(msg) <= summaryLimit {
		return msg
	}
	return string([]rune(msg)[:summaryLimit-3]) + "..."
}
