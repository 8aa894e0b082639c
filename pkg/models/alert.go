package models

import (
	"time"
)

// Alert is emitted when an event's anomaly score crosses the configured
// threshold or a frequency rule triggers.
//
// Every alert carries a non-empty recommendation and a severity from the
// enumerated set. Rule alerts additionally carry RuleName and a
// human-readable count/window description in Message.
type Alert struct {
	ID             string    `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	Severity       Severity  `json:"severity"`
	Source         string    `json:"source"`
	Message        string    `json:"message"`
	AnomalyScore   *float64  `json:"anomaly_score,omitempty"`
	RuleName       string    `json:"rule_name,omitempty"`
	Recommendation string    `json:"recommendation"`
	Summary        string    `json:"summary,omitempty"`

	// Event is the triggering event.
	Event *Event `json:"-"`
}
