// Package llm implements the optional provider path of the enricher on top
// of LLM backends. Providers are selected by configuration; when none is
// configured the pipeline runs the heuristic path only.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"github.com/sentinelsec/sentinel/pkg/enrich"
	"github.com/sentinelsec/sentinel/pkg/models"
)

const analysisPrompt = `You are a security log analyst. Analyze the log message below and respond
with a single JSON object, no prose, with exactly these keys:
  "severity": one of "low", "medium", "high", "critical"
  "summary": a one-sentence summary (max 100 characters)
  "recommendation": a short actionable hint for the operator

Log message:
%s`

// modelProvider adapts a langchaingo model to the enricher provider contract.
type modelProvider struct {
	name  string
	model llms.Model
}

// Name returns the configured provider name.
func (p *modelProvider) Name() string { return p.name }

// Analyze prompts the model for a structured analysis of the message.
// Malformed responses are an error; the enricher falls back to heuristics.
func (p *modelProvider) Analyze(ctx context.Context, message string) (*enrich.ProviderResult, error) {
	prompt := fmt.Sprintf(analysisPrompt, message)

	completion, err := llms.GenerateFromSinglePrompt(ctx, p.model, prompt)
	if err != nil {
		return nil, fmt.Errorf("%s completion failed: %w", p.name, err)
	}

	result, err := parseAnalysis(completion)
	if err != nil {
		return nil, fmt.Errorf("%s returned malformed analysis: %w", p.name, err)
	}
	return result, nil
}

// parseAnalysis decodes the model response, tolerating markdown code fences.
func parseAnalysis(completion string) (*enrich.ProviderResult, error) {
	text := strings.TrimSpace(completion)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var result enrich.ProviderResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, err
	}
	if result.Severity != "" && !models.IsValidSeverity(string(result.Severity)) {
		return nil, fmt.Errorf("unknown severity %q", result.Severity)
	}
	return &result, nil
}
