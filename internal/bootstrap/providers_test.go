package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/smartmemorandum/contract-analyzer/internal/config"
	"github.com/smartmemorandum/contract-analyzer/internal/domain/ai"
	"github.com/smartmemorandum/contract-analyzer/internal/domain/contracts"
	anthropicai "github.com/smartmemorandum/contract-analyzer/internal/infra/ai/anthropic"
	openaiai "github.com/smartmemorandum/contract-analyzer/internal/infra/ai/openai"
	"github.com/smartmemorandum/contract-analyzer/internal/infra/etherscan"
	"github.com/smartmemorandum/contract-analyzer/internal/infra/functions"
	"github.com/smartmemorandum/contract-analyzer/internal/infra/storage"
)

func baseConfig() *config.Config {
	cfg := config.Default()
	cfg.Functions.BaseURL = "https://project.supabase.co"
	cfg.Source.Timeout = 0
	cfg.Explainer.Timeout = 0
	return cfg
}

func TestBuild_Providers(t *testing.T) {
	tests := []struct {
		name      string
		source    string
		explainer string
		wantSrc   any
		wantExp   any
		checker   string
	}{
		{"functions", config.ProviderFunctions, config.ProviderFunctions, &functions.Client{}, &functions.Client{}, ""},
		{"etherscan+openai", config.ProviderEtherscan, config.ProviderOpenAI, &etherscan.Client{}, &openaiai.Client{}, ""},
		{"minio+anthropic", config.ProviderMinio, config.ProviderAnthropic, &storage.Archive{}, &anthropicai.Client{}, "minio"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig()
			cfg.Source.Provider = tt.source
			cfg.Explainer.Provider = tt.explainer
			cfg.Minio.Endpoint = "127.0.0.1:9000"

			p, err := Build(context.Background(), cfg, zaptest.NewLogger(t))
			require.NoError(t, err)
			defer p.Close()

			assert.IsType(t, tt.wantSrc, p.Sources)
			assert.IsType(t, tt.wantExp, p.Explainer)
			if tt.checker != "" {
				assert.Contains(t, p.Checkers, tt.checker)
			} else {
				assert.Empty(t, p.Checkers)
			}
		})
	}
}

func TestBuild_UnknownProvider(t *testing.T) {
	cfg := baseConfig()
	cfg.Source.Provider = "ipfs"
	_, err := Build(context.Background(), cfg, nil)
	assert.Error(t, err)

	cfg = baseConfig()
	cfg.Explainer.Provider = "llama"
	_, err = Build(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func TestBuild_WrapsTimeouts(t *testing.T) {
	cfg := baseConfig()
	cfg.Source.Timeout = time.Second
	cfg.Explainer.Timeout = time.Second

	p, err := Build(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, timeoutSource{}, p.Sources)
	assert.IsType(t, timeoutExplainer{}, p.Explainer)
}

type deadlineProbe struct{ hasDeadline bool }

func (d *deadlineProbe) FetchSource(ctx context.Context, _ string, _ contracts.Network) (string, error) {
	_, d.hasDeadline = ctx.Deadline()
	return "", nil
}

func (d *deadlineProbe) Explain(ctx context.Context, _ ai.ExplainRequest) (string, error) {
	_, d.hasDeadline = ctx.Deadline()
	return "", nil
}

func TestTimeoutDecorators(t *testing.T) {
	probe := &deadlineProbe{}

	_, _ = WithSourceTimeout(probe, time.Minute).FetchSource(context.Background(), "0x1", contracts.NetworkEthereum)
	assert.True(t, probe.hasDeadline)

	probe.hasDeadline = false
	_, _ = WithExplainTimeout(probe, time.Minute).Explain(context.Background(), ai.ExplainRequest{})
	assert.True(t, probe.hasDeadline)

	assert.Same(t, probe, WithSourceTimeout(probe, 0))
}
