package models

import (
	"time"
)

// Document converts the event to the shape persisted in the search index:
// top-level indexed fields plus an ai_analysis object that is stored but
// not indexed. Extras from structured log lines are carried top-level so
// they remain queryable.
func (e *Event) Document() map[string]any {
	doc := make(map[string]any, len(e.Extras)+8)
	for k, v := range e.Extras {
		doc[k] = v
	}

	doc["timestamp"] = e.Timestamp.UTC().Format(time.RFC3339)
	doc["source"] = e.Source
	doc["raw_log"] = e.RawLog
	doc["message"] = e.Message
	doc["anomaly_score"] = e.AnomalyScore
	if e.IP != "" {
		doc["ip"] = e.IP
	}
	if e.Severity != "" {
		doc["severity"] = string(e.Severity)
	}
	if e.ParseError != "" {
		doc["error"] = e.ParseError
	}

	analysis := map[string]any{}
	if e.Sentiment != nil {
		analysis["sentiment"] = map[string]any{
			"label": e.Sentiment.Label,
			"score": e.Sentiment.Score,
		}
	}
	if len(e.KeyEntities) > 0 {
		analysis["key_entities"] = e.KeyEntities
	}
	if e.Summary != "" {
		analysis["summary"] = e.Summary
	}
	if e.Recommendation != "" {
		analysis["recommendation"] = e.Recommendation
	}
	if len(analysis) > 0 {
		doc["ai_analysis"] = analysis
	}

	return doc
}

// EventFromDocument rebuilds an event from a stored document. Unknown keys
// land in Extras. Used when historical events are loaded for scorer training
// and when search results are returned through the API.
func EventFromDocument(doc map[string]any) *Event {
	e := &Event{Extras: make(map[string]any)}

	for k, v := range doc {
		switch k {
		case "timestamp":
			if s, ok := v.(string); ok {
				if ts, err := time.Parse(time.RFC3339, s); err == nil {
					e.Timestamp = ts
				}
			}
		case "source":
			e.Source, _ = v.(string)
		case "raw_log":
			e.RawLog, _ = v.(string)
		case "message":
			e.Message, _ = v.(string)
		case "ip":
			e.IP, _ = v.(string)
		case "severity":
			if s, ok := v.(string); ok {
				e.Severity = Severity(s)
			}
		case "anomaly_score":
			if f, ok := v.(float64); ok {
				e.AnomalyScore = f
			}
		case "error":
			e.ParseError, _ = v.(string)
		case "ai_analysis":
			if m, ok := v.(map[string]any); ok {
				applyAnalysis(e, m)
			}
		default:
			e.Extras[k] = v
		}
	}

	return e
}

func applyAnalysis(e *Event, m map[string]any) {
	if s, ok := m["summary"].(string); ok {
		e.Summary = s
	}
	if r, ok := m["recommendation"].(string); ok {
		e.Recommendation = r
	}
	if ents, ok := m["key_entities"].([]any); ok {
		for _, ent := range ents {
			if s, ok := ent.(string); ok {
				e.KeyEntities = append(e.KeyEntities, s)
			}
		}
	}
	if sm, ok := m["sentiment"].(map[string]any); ok {
		sent := &Sentiment{}
		sent.Label, _ = sm["label"].(string)
		sent.Score, _ = sm["score"].(float64)
		e.Sentiment = sent
	}
}
