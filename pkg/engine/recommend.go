package engine

import (
	"strings"

	"github.com/sentinelsec/sentinel/pkg/models"
)

// Recommendation texts, scanned for in order: access keywords first, then
// generic error keywords, then critical severity, then the default.
const (
	recommendAccess   = "Investigate potential unauthorized access attempt. Check source IP and user."
	recommendError    = "Check system health and application logs for root cause of this error."
	recommendCritical = "Immediate investigation required - potential system crash or security incident."
	recommendDefault  = "Monitor for similar patterns and investigate if recurring."
)

var (
	accessKeywords = []string{"denied", "blocked", "unauthorized"}
	errorWords     = []string{"error", "fail", "exception"}
)

// RecommendationFor derives an actionable operator hint from the event's
// message and severity.
func RecommendationFor(e *models.Event) string {
	msg := strings.ToLower(e.Message)

	for _, kw := range accessKeywords {
		if strings.Contains(msg, kw) {
			return recommendAccess
		}
	}
	for _, kw := range errorWords {
		if strings.Contains(msg, kw) {
			return recommendError
		}
	}
	if e.Severity == models.SeverityCritical {
		return recommendCritical
	}
	return recommendDefault
}
