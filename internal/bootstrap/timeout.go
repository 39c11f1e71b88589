package bootstrap

import (
	"context"
	"time"

	"github.com/smartmemorandum/contract-analyzer/internal/domain/ai"
	"github.com/smartmemorandum/contract-analyzer/internal/domain/contracts"
)

type timeoutSource struct {
	next    contracts.SourceFetcher
	timeout time.Duration
}

// WithSourceTimeout bounds every FetchSource call; d <= 0 returns next as is.
func WithSourceTimeout(next contracts.SourceFetcher, d time.Duration) contracts.SourceFetcher {
	if d <= 0 {
		return next
	}
	return timeoutSource{next: next, timeout: d}
}

func (t timeoutSource) FetchSource(ctx context.Context, address string, network contracts.Network) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.FetchSource(ctx, address, network)
}

type timeoutExplainer struct {
	next    ai.Explainer
	timeout time.Duration
}

// WithExplainTimeout bounds every Explain call; d <= 0 returns next as is.
func WithExplainTimeout(next ai.Explainer, d time.Duration) ai.Explainer {
	if d <= 0 {
		return next
	}
	return timeoutExplainer{next: next, timeout: d}
}

func (t timeoutExplainer) Explain(ctx context.Context, req ai.ExplainRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Explain(ctx, req)
}
