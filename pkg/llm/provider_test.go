package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinelsec/sentinel/pkg/models"
)

func TestParseAnalysis(t *testing.T) {
	result, err := parseAnalysis(`{"severity":"high","summary":"sus login","recommendation":"lock account"}`)

	require.NoError(t, err)
	assert.Equal(t, models.SeverityHigh, result.Severity)
	assert.Equal(t, "sus login", result.Summary)
	assert.Equal(t, "lock account", result.Recommendation)
}

func TestParseAnalysis_StripsCodeFences(t *testing.T) {
	fenced := "```json\n{\"severity\":\"low\",\"summary\":\"ok\"}\n```"

	result, err := parseAnalysis(fenced)

	require.NoError(t, err)
	assert.Equal(t, models.SeverityLow, result.Severity)
	assert.Equal(t, "ok", result.Summary)
}

func TestParseAnalysis_PartialResponse(t *testing.T) {
	// Missing keys are allowed; the enricher only overrides non-empty fields.
	result, err := parseAnalysis(`{"summary":"just a summary"}`)

	require.NoError(t, err)
	assert.Empty(t, result.Severity)
	assert.Equal(t, "just a summary", result.Summary)
}

func TestParseAnalysis_Malformed(t *testing.T) {
	_, err := parseAnalysis("the log looks fine to me")
	assert.Error(t, err)

	_, err = parseAnalysis(`{"severity":"catastrophic"}`)
	assert.Error(t, err)
}

func TestNewGemini_RequiresAPIKey(t *testing.T) {
	_, err := NewGemini(t.Context(), "", "gemini-2.0-flash")
	assert.Error(t, err)
}
