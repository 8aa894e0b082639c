package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms/googleai"

	"github.com/sentinelsec/sentinel/pkg/enrich"
)

// NewGemini creates a provider backed by the Gemini API.
func NewGemini(ctx context.Context, apiKey, model string) (enrich.Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini provider requires GEMINI_API_KEY")
	}
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &modelProvider{name: "gemini", model: llm}, nil
}
