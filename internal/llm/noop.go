package llm

import (
	"context"

	"github.com/finsightlab/finsight/internal/contracts"
)

// NoopNarrator is used when no LLM endpoint is configured. Every call
// reports an error analysis so the metrics pipeline keeps its shape.
type NoopNarrator struct{}

// NewNoopNarrator creates a narrator that never calls out
func NewNoopNarrator() *NoopNarrator {
	return &NoopNarrator{}
}

// Narrate reports the missing configuration as an embedded error
func (n *NoopNarrator) Narrate(ctx context.Context, summary contracts.StockSummary, settings contracts.AISettings) (*contracts.LLMAnalysis, error) {
	return &contracts.LLMAnalysis{
		Status: "error",
		Error:  "no LLM endpoint configured",
	}, nil
}
