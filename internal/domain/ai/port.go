package ai

import (
	"context"

	"github.com/smartmemorandum/contract-analyzer/internal/domain/contracts"
)

// ExplainRequest is the input of the AI Analysis Service
type ExplainRequest struct {
	SourceCode   string
	Address      string
	AnalysisType contracts.AnalysisType
	Jurisdiction string
}

// Explainer port (interface untuk AI Analysis Service).
// An empty string with a nil error means the service answered without an
// analysis.
type Explainer interface {
	Explain(ctx context.Context, req ExplainRequest) (string, error)
}
