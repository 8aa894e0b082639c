package enrich

import (
	"context"

	"github.com/sentinelsec/sentinel/pkg/models"
)

// ProviderResult is the analysis returned by an external provider.
// Empty fields leave the heuristic value in place.
type ProviderResult struct {
	Severity       models.Severity `json:"severity"`
	Summary        string          `json:"summary"`
	Recommendation string          `json:"recommendation"`
}

// Provider analyzes a log message with an external model. Implementations
// must honour the context deadline; any error falls back to the heuristic
// path and never stalls the pipeline.
type Provider interface {
	Name() string
	Analyze(ctx context.Context, message string) (*ProviderResult, error)
}
