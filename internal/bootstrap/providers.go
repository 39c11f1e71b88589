package bootstrap

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/smartmemorandum/contract-analyzer/internal/config"
	"github.com/smartmemorandum/contract-analyzer/internal/domain/ai"
	"github.com/smartmemorandum/contract-analyzer/internal/domain/contracts"
	anthropicai "github.com/smartmemorandum/contract-analyzer/internal/infra/ai/anthropic"
	openaiai "github.com/smartmemorandum/contract-analyzer/internal/infra/ai/openai"
	mysqlp "github.com/smartmemorandum/contract-analyzer/internal/infra/db/mysql"
	postgresp "github.com/smartmemorandum/contract-analyzer/internal/infra/db/postgres"
	"github.com/smartmemorandum/contract-analyzer/internal/infra/etherscan"
	"github.com/smartmemorandum/contract-analyzer/internal/infra/functions"
	"github.com/smartmemorandum/contract-analyzer/internal/infra/storage"
	"github.com/smartmemorandum/contract-analyzer/internal/middleware"
)

// Providers are the collaborators selected by configuration.
type Providers struct {
	Sources   contracts.SourceFetcher
	Explainer ai.Explainer
	Checkers  map[string]middleware.HealthChecker

	closers []func() error
}

// Close releases connections opened by Build.
func (p *Providers) Close() error {
	var first error
	for _, c := range p.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Build creates the source fetcher and explainer named by cfg. Database
// providers connect eagerly so a bad DSN fails at startup.
func Build(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Providers, error) {
	if log == nil {
		log = zap.NewNop()
	}
	p := &Providers{Checkers: make(map[string]middleware.HealthChecker)}

	src, err := p.sourceFetcher(ctx, cfg)
	if err != nil {
		p.Close()
		return nil, err
	}
	exp, err := p.explainer(cfg)
	if err != nil {
		p.Close()
		return nil, err
	}

	p.Sources = WithSourceTimeout(src, cfg.Source.Timeout)
	p.Explainer = WithExplainTimeout(exp, cfg.Explainer.Timeout)
	log.Info("providers ready",
		zap.String("source", cfg.Source.Provider),
		zap.String("explainer", cfg.Explainer.Provider),
	)
	return p, nil
}

func (p *Providers) sourceFetcher(ctx context.Context, cfg *config.Config) (contracts.SourceFetcher, error) {
	switch cfg.Source.Provider {
	case config.ProviderFunctions:
		return newFunctions(cfg)
	case config.ProviderEtherscan:
		return etherscan.NewClient(etherscan.Config{
			APIKey:  cfg.Etherscan.APIKey,
			BaseURL: cfg.Etherscan.BaseURL,
		}), nil
	case config.ProviderMySQL:
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, err
		}
		p.track(db)
		repo := mysqlp.NewSourceRepository(db)
		p.Checkers["mysql"] = repo
		return repo, nil
	case config.ProviderPostgres:
		db, err := postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, err
		}
		p.track(db)
		repo := postgresp.NewSourceRepository(db)
		p.Checkers["postgres"] = repo
		return repo, nil
	case config.ProviderMinio:
		archive, err := storage.New(storage.Config{
			Endpoint:   cfg.Minio.Endpoint,
			Region:     cfg.Minio.Region,
			BucketName: cfg.Minio.BucketName,
			AccessKey:  cfg.Minio.AccessKey,
			SecretKey:  cfg.Minio.SecretKey,
			UseSSL:     cfg.Minio.UseSSL,
		})
		if err != nil {
			return nil, err
		}
		p.Checkers["minio"] = archive
		return archive, nil
	default:
		return nil, eris.Errorf("unsupported source provider: %s", cfg.Source.Provider)
	}
}

func (p *Providers) explainer(cfg *config.Config) (ai.Explainer, error) {
	switch cfg.Explainer.Provider {
	case config.ProviderFunctions:
		return newFunctions(cfg)
	case config.ProviderOpenAI:
		return openaiai.NewClient(openaiai.Config{
			APIKey:         cfg.OpenAI.APIKey,
			Model:          cfg.OpenAI.Model,
			BaseURL:        cfg.OpenAI.BaseURL,
			MaxSourceChars: cfg.OpenAI.MaxSourceChars,
		}), nil
	case config.ProviderAnthropic:
		return anthropicai.NewClient(anthropicai.Config{
			APIKey:         cfg.Anthropic.APIKey,
			Model:          cfg.Anthropic.Model,
			BaseURL:        cfg.Anthropic.BaseURL,
			MaxSourceChars: cfg.Anthropic.MaxSourceChars,
		}), nil
	default:
		return nil, eris.Errorf("unsupported explainer provider: %s", cfg.Explainer.Provider)
	}
}

func newFunctions(cfg *config.Config) (*functions.Client, error) {
	return functions.NewClient(functions.Config{
		BaseURL:          cfg.Functions.BaseURL,
		APIKey:           cfg.Functions.APIKey,
		SourceFunction:   cfg.Functions.SourceFunction,
		AnalysisFunction: cfg.Functions.AnalysisFunction,
	})
}

func (p *Providers) track(db *sql.DB) {
	p.closers = append(p.closers, db.Close)
}
