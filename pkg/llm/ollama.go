package llm

import (
	"fmt"

	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/sentinelsec/sentinel/pkg/enrich"
)

// NewOllama creates a provider backed by a local Ollama server.
func NewOllama(serverURL, model string) (enrich.Provider, error) {
	opts := []ollama.Option{ollama.WithModel(model)}
	if serverURL != "" {
		opts = append(opts, ollama.WithServerURL(serverURL))
	}
	llm, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama client: %w", err)
	}
	return &modelProvider{name: "ollama", model: llm}, nil
}
