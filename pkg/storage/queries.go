package storage

import "fmt"

// Query builders for the structured queries the pipeline and the admin API
// run against the store. Date math strings (now-7d/d and friends) are
// resolved server-side by Elasticsearch.

// HistoricalRangeQuery selects events from daysBack days ago up to the
// start of today, for scorer training.
func HistoricalRangeQuery(daysBack int) map[string]any {
	return map[string]any{
		"query": map[string]any{
			"range": map[string]any{
				"timestamp": map[string]any{
					"gte": dateMathDays(daysBack),
					"lt":  "now/d",
				},
			},
		},
	}
}

// AlertsQuery filters stored events by optional severity and a time-range
// date-math expression, newest first.
func AlertsQuery(severity, timeFilter string) map[string]any {
	must := []any{
		map[string]any{
			"range": map[string]any{
				"timestamp": map[string]any{"gte": timeFilter},
			},
		},
	}
	if severity != "" {
		must = append([]any{
			map[string]any{
				"term": map[string]any{"severity": severity},
			},
		}, must...)
	}
	return map[string]any{
		"query": map[string]any{
			"bool": map[string]any{"must": must},
		},
		"sort": []any{
			map[string]any{"timestamp": map[string]any{"order": "desc"}},
		},
	}
}

// MultiMatchQuery searches free text over message, raw log, source and ip,
// newest first.
func MultiMatchQuery(text string) map[string]any {
	return map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  text,
				"fields": []string{"message", "raw_log", "source", "ip"},
			},
		},
		"sort": []any{
			map[string]any{"timestamp": map[string]any{"order": "desc"}},
		},
	}
}

func dateMathDays(days int) string {
	return fmt.Sprintf("now-%dd/d", days)
}
