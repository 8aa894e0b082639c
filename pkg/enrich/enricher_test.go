package enrich

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinelsec/sentinel/pkg/models"
)

func TestClassifySeverity(t *testing.T) {
	tests := []struct {
		message string
		want    models.Severity
	}{
		{"critical error: auth denied", models.SeverityCritical},
		{"FATAL: out of memory", models.SeverityCritical},
		{"segmentation fault in worker", models.SeverityCritical},
		{"error connecting to database", models.SeverityHigh},
		{"access denied for admin", models.SeverityHigh},
		{"warning: unusual login time", models.SeverityMedium},
		{"connection refused by peer", models.SeverityMedium},
		{"info: user connected", models.SeverityLow},
		{"nothing notable here", models.SeverityLow},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifySeverity(tt.message))
		})
	}
}

// A message containing keywords from several levels maps to the most
// severe one regardless of their order in the text.
func TestClassifySeverity_PrecedenceIsOrderIndependent(t *testing.T) {
	assert.Equal(t, models.SeverityCritical, ClassifySeverity("debug then crash"))
	assert.Equal(t, models.SeverityCritical, ClassifySeverity("crash then debug"))
	assert.Equal(t, models.SeverityHigh, ClassifySeverity("info about an error"))
	assert.Equal(t, models.SeverityHigh, ClassifySeverity("error about an info"))
}

func TestExtractEntities(t *testing.T) {
	entities := ExtractEntities("user:bob read /etc/passwd from 10.1.2.3")

	assert.Equal(t, []string{"USER:user:bob", "FILE:/etc/passwd", "IP:10.1.2.3"}, entities)
}

// Reordering tokens reorders the extracted entities identically.
func TestExtractEntities_PermutationStable(t *testing.T) {
	tokens := []string{"10.1.2.3", "/var/log/x", "user:eve", "plain"}

	forward := ExtractEntities(strings.Join(tokens, " "))
	reversed := ExtractEntities(strings.Join([]string{"plain", "user:eve", "/var/log/x", "10.1.2.3"}, " "))

	require.Len(t, forward, 3)
	require.Len(t, reversed, 3)
	assert.Equal(t, forward[0], reversed[2])
	assert.Equal(t, forward[1], reversed[1])
	assert.Equal(t, forward[2], reversed[0])
}

func TestSummarize(t *testing.T) {
	short := "short message"
	assert.Equal(t, short, Summarize(short))

	long := strings.Repeat("a", 150)
	got := Summarize(long)
	assert.Len(t, got, 100)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, strings.Repeat("a", 97), strings.TrimSuffix(got, "..."))

	exactly := strings.Repeat("b", 100)
	assert.Equal(t, exactly, Summarize(exactly))
}

func TestEnrich_HeuristicPath(t *testing.T) {
	e := New()
	event := &models.Event{Message: "error: login failed for user:bob from 10.0.0.5"}

	e.Enrich(context.Background(), event)

	assert.Equal(t, models.SeverityHigh, event.Severity)
	require.NotNil(t, event.Sentiment)
	assert.Contains(t, []string{"POSITIVE", "NEGATIVE", "NEUTRAL"}, event.Sentiment.Label)
	assert.GreaterOrEqual(t, event.Sentiment.Score, 0.0)
	assert.LessOrEqual(t, event.Sentiment.Score, 1.0)
	assert.NotEmpty(t, event.KeyEntities)
	assert.Equal(t, event.Message, event.Summary)
}

func TestEnrich_NegativeSentimentForHostileMessage(t *testing.T) {
	e := New()
	event := &models.Event{Message: "horrible fatal attack, everything is broken and terrible"}

	e.Enrich(context.Background(), event)

	require.NotNil(t, event.Sentiment)
	assert.Equal(t, "NEGATIVE", event.Sentiment.Label)
}

type stubProvider struct {
	result *ProviderResult
	err    error
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Analyze(_ context.Context, _ string) (*ProviderResult, error) {
	return p.result, p.err
}

func TestEnrich_ProviderOverride(t *testing.T) {
	e := New(WithProvider(&stubProvider{result: &ProviderResult{
		Severity:       models.SeverityCritical,
		Summary:        "provider summary",
		Recommendation: "do the thing",
	}}))
	event := &models.Event{Message: "info: all good"}

	e.Enrich(context.Background(), event)

	assert.Equal(t, models.SeverityCritical, event.Severity)
	assert.Equal(t, "provider summary", event.Summary)
	assert.Equal(t, "do the thing", event.Recommendation)
	// Heuristic-owned fields are untouched by the provider.
	assert.NotNil(t, event.Sentiment)
}

func TestEnrich_ProviderFailureFallsBackToHeuristic(t *testing.T) {
	e := New(WithProvider(&stubProvider{err: errors.New("connection refused")}))
	event := &models.Event{Message: "error: disk failure"}

	e.Enrich(context.Background(), event)

	assert.Equal(t, models.SeverityHigh, event.Severity)
	assert.Equal(t, event.Message, event.Summary)
	assert.Empty(t, event.Recommendation)
}

func TestEnrich_FallsBackToRawLogWhenMessageEmpty(t *testing.T) {
	e := New()
	event := &models.Event{RawLog: "critical failure in module"}

	e.Enrich(context.Background(), event)

	assert.Equal(t, models.SeverityCritical, event.Severity)
	assert.Equal(t, "critical failure in module", event.Summary)
}
