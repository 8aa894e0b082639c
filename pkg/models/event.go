// Package models defines the data types that flow through the pipeline:
// events parsed from log lines and the alerts generated from them.
package models

import (
	"time"
)

// Severity classifies how serious an event is.
type Severity string

// Severity levels, ordered from least to most serious.
const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
	SeverityUnknown  Severity = "unknown"
)

// ValidSeverities lists the severities accepted by the alerts API filter.
var ValidSeverities = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

// IsValidSeverity reports whether s names a filterable severity level.
func IsValidSeverity(s string) bool {
	for _, v := range ValidSeverities {
		if string(v) == s {
			return true
		}
	}
	return false
}

// Sentiment is the lexicon-based polarity classification of a message.
type Sentiment struct {
	Label string  `json:"label"` // POSITIVE, NEGATIVE or NEUTRAL
	Score float64 `json:"score"`
}

// Event is a single parsed log line with enrichment fields attached as it
// flows through the pipeline.
//
// Timestamp, Source and RawLog are set by the parser and immutable after it.
// Each enrichment field is written exactly once by its owning stage:
// Severity, Sentiment, KeyEntities and Summary by the enricher,
// AnomalyScore by the scorer, Recommendation by the alerting policy.
// AnomalyScore is 0.0 when the scorer has not been fit ("unscored");
// the alert threshold check treats that value as non-alerting.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	RawLog    string    `json:"raw_log"`
	Message   string    `json:"message"`
	IP        string    `json:"ip,omitempty"`

	Severity       Severity   `json:"severity,omitempty"`
	Sentiment      *Sentiment `json:"sentiment,omitempty"`
	KeyEntities    []string   `json:"key_entities,omitempty"`
	Summary        string     `json:"summary,omitempty"`
	AnomalyScore   float64    `json:"anomaly_score"`
	Recommendation string     `json:"recommendation,omitempty"`

	// ParseError holds the "ParseError" tag when the line could not be
	// decoded. The event is kept and flows through the pipeline anyway.
	ParseError string `json:"error,omitempty"`

	// Extras holds attributes from structured log lines that do not map
	// to a named field (for example a "user" key in a JSON line).
	Extras map[string]any `json:"-"`
}

// Field resolves a grouping-field name against the event. Named fields are
// checked first, then Extras. Returns "" when the field is absent or empty.
func (e *Event) Field(name string) string {
	switch name {
	case "ip":
		return e.IP
	case "source":
		return e.Source
	case "message":
		return e.Message
	case "severity":
		return string(e.Severity)
	case "raw_log":
		return e.RawLog
	}
	if v, ok := e.Extras[name]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
