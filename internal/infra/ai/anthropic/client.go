package anthropic

import (
	"context"
	"errors"
	"net/http"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"

	"github.com/smartmemorandum/contract-analyzer/internal/domain/ai"
	"github.com/smartmemorandum/contract-analyzer/internal/infra/ai/prompt"
)

const (
	DefaultModel = "claude-sonnet-4-5-20250929"
	maxTokens    = 2048
)

// Config Anthropic explainer
type Config struct {
	APIKey         string
	Model          string
	BaseURL        string
	MaxSourceChars int
	// MaxRetries defaults to zero; a failed call fails the run.
	MaxRetries int
}

// Client explains contracts with the Messages API.
type Client struct {
	client         sdk.Client
	model          string
	maxSourceChars int
}

func NewClient(cfg Config) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxSourceChars == 0 {
		cfg.MaxSourceChars = prompt.DefaultMaxSourceChars
	}
	return &Client{
		client:         sdk.NewClient(opts...),
		model:          cfg.Model,
		maxSourceChars: cfg.MaxSourceChars,
	}
}

// Explain implements ai.Explainer. Text blocks of the reply are joined.
func (c *Client) Explain(ctx context.Context, in ai.ExplainRequest) (string, error) {
	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: maxTokens,
		System: []sdk.TextBlockParam{
			{Text: prompt.GetSystemPrompt(in.AnalysisType, in.Jurisdiction)},
		},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt.GetUserPrompt(in, c.maxSourceChars))),
		},
	})
	if err != nil {
		var apiErr *sdk.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
			return "", eris.Wrap(ai.ErrQuotaExceeded, "anthropic: create message")
		}
		return "", eris.Wrap(err, "anthropic: create message")
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return strings.TrimSpace(b.String()), nil
}
