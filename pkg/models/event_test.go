package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidSeverity(t *testing.T) {
	for _, s := range []string{"low", "medium", "high", "critical"} {
		assert.True(t, IsValidSeverity(s), s)
	}
	assert.False(t, IsValidSeverity("unknown"))
	assert.False(t, IsValidSeverity("HIGH"))
	assert.False(t, IsValidSeverity(""))
}

func TestEvent_Field(t *testing.T) {
	e := &Event{
		Source:   "auth.log",
		RawLog:   "raw",
		Message:  "msg",
		IP:       "10.0.0.1",
		Severity: SeverityHigh,
		Extras:   map[string]any{"user": "bob", "count": 3},
	}

	assert.Equal(t, "10.0.0.1", e.Field("ip"))
	assert.Equal(t, "auth.log", e.Field("source"))
	assert.Equal(t, "msg", e.Field("message"))
	assert.Equal(t, "high", e.Field("severity"))
	assert.Equal(t, "raw", e.Field("raw_log"))
	assert.Equal(t, "bob", e.Field("user"))
	assert.Empty(t, e.Field("count"), "non-string extras resolve to empty")
	assert.Empty(t, e.Field("missing"))
}

func TestDocument(t *testing.T) {
	e := &Event{
		Timestamp:    time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC),
		Source:       "auth.log",
		RawLog:       "10.0.0.1 failed login",
		Message:      "failed login",
		IP:           "10.0.0.1",
		Severity:     SeverityHigh,
		Sentiment:    &Sentiment{Label: "NEGATIVE", Score: 0.82},
		KeyEntities:  []string{"IP:10.0.0.1"},
		Summary:      "failed login",
		AnomalyScore: -0.6,
		Extras:       map[string]any{"user": "bob"},
	}

	doc := e.Document()

	assert.Equal(t, "2026-03-01T12:30:00Z", doc["timestamp"])
	assert.Equal(t, "failed login", doc["message"])
	assert.Equal(t, "10.0.0.1", doc["ip"])
	assert.Equal(t, "high", doc["severity"])
	assert.Equal(t, -0.6, doc["anomaly_score"])
	assert.Equal(t, "bob", doc["user"], "extras are carried top-level")

	analysis := doc["ai_analysis"].(map[string]any)
	assert.Equal(t, []string{"IP:10.0.0.1"}, analysis["key_entities"])
	assert.Equal(t, "failed login", analysis["summary"])
	sentiment := analysis["sentiment"].(map[string]any)
	assert.Equal(t, "NEGATIVE", sentiment["label"])
}

func TestDocument_OmitsEmptyOptionalFields(t *testing.T) {
	e := &Event{Timestamp: time.Now().UTC(), Source: "a.log", Message: "x"}
	doc := e.Document()

	_, hasIP := doc["ip"]
	assert.False(t, hasIP)
	_, hasSeverity := doc["severity"]
	assert.False(t, hasSeverity)
	_, hasAnalysis := doc["ai_analysis"]
	assert.False(t, hasAnalysis)
	assert.Equal(t, 0.0, doc["anomaly_score"], "anomaly_score is always present")
}

func TestEventFromDocument(t *testing.T) {
	doc := map[string]any{
		"timestamp":     "2026-03-01T12:30:00Z",
		"source":        "auth.log",
		"raw_log":       "10.0.0.1 failed login",
		"message":       "failed login",
		"ip":            "10.0.0.1",
		"severity":      "high",
		"anomaly_score": -0.6,
		"user":          "bob",
		"ai_analysis": map[string]any{
			"summary":        "failed login",
			"recommendation": "check it",
			"key_entities":   []any{"IP:10.0.0.1"},
			"sentiment":      map[string]any{"label": "NEGATIVE", "score": 0.82},
		},
	}

	e := EventFromDocument(doc)

	assert.Equal(t, time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC), e.Timestamp)
	assert.Equal(t, "auth.log", e.Source)
	assert.Equal(t, SeverityHigh, e.Severity)
	assert.Equal(t, -0.6, e.AnomalyScore)
	assert.Equal(t, "bob", e.Extras["user"])
	assert.Equal(t, "check it", e.Recommendation)
	assert.Equal(t, []string{"IP:10.0.0.1"}, e.KeyEntities)
	require.NotNil(t, e.Sentiment)
	assert.Equal(t, "NEGATIVE", e.Sentiment.Label)
	assert.Equal(t, 0.82, e.Sentiment.Score)
}

func TestDocumentRoundTrip(t *testing.T) {
	original := &Event{
		Timestamp:    time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC),
		Source:       "app.log",
		RawLog:       "raw",
		Message:      "msg",
		IP:           "192.168.0.1",
		Severity:     SeverityMedium,
		Summary:      "msg",
		AnomalyScore: -0.1,
		Extras:       map[string]any{"request_id": "r-7"},
	}

	got := EventFromDocument(original.Document())

	assert.Equal(t, original.Timestamp, got.Timestamp)
	assert.Equal(t, original.Source, got.Source)
	assert.Equal(t, original.Message, got.Message)
	assert.Equal(t, original.IP, got.IP)
	assert.Equal(t, original.Severity, got.Severity)
	assert.Equal(t, original.Summary, got.Summary)
	assert.Equal(t, original.AnomalyScore, got.AnomalyScore)
	assert.Equal(t, "r-7", got.Extras["request_id"])
}
