// Package anomaly scores events for statistical anomaly against a baseline
// fit on historical events. More-negative scores denote more anomalous
// events; an unfit detector yields no scores.
package anomaly

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sentinelsec/sentinel/pkg/models"
)

// NumFeatures is the length of the per-event feature vector.
const NumFeatures = 8

var errorKeywords = []string{"error", "fail", "exception", "denied"}

// Features extracts the deterministic feature vector for one event.
// The layout is fixed so vectors are reproducible across fit and score:
// hour, day_of_week, is_weekend, source_hash, ip_hash, message_length,
// word_count, has_error.
func Features(e *models.Event) []float64 {
	f := make([]float64, NumFeatures)

	if !e.Timestamp.IsZero() {
		t := e.Timestamp.UTC()
		// Monday = 0 .. Sunday = 6, so the weekend is days 5 and 6.
		dow := (int(t.Weekday()) + 6) % 7
		f[0] = float64(t.Hour())
		f[1] = float64(dow)
		if dow >= 5 {
			f[2] = 1
		}
	}

	f[3] = hashFeature(e.Source)
	if e.IP != "" {
		f[4] = hashFeature(e.IP)
	}

	f[5] = float64(utf8.RuneCountInString(e.Message))
	f[6] = float64(len(strings.Fields(e.Message)))

	lower := strings.ToLower(e.Message)
	for _, kw := range errorKeywords {
		if strings.Contains(lower, kw) {
			f[7] = 1
			break
		}
	}

	return f
}

// hashFeature maps a string to the leading 32 bits of its md5 digest,
// interpreted as an integer. Stable across processes and runs.
func hashFeature(s string) float64 {
	sum := md5.Sum([]byte(s))
	n, _ := strconv.ParseUint(hex.EncodeToString(sum[:])[:8], 16, 32)
	return float64(n)
}
