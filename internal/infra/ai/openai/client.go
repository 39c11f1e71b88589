package openai

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/sashabaranov/go-openai"

	"github.com/smartmemorandum/contract-analyzer/internal/domain/ai"
	"github.com/smartmemorandum/contract-analyzer/internal/infra/ai/prompt"
)

const (
	DefaultModel = "gpt-4o-mini"
	maxTokens    = 2048
)

// Config OpenAI explainer
type Config struct {
	APIKey         string
	Model          string
	BaseURL        string
	MaxSourceChars int
}

type Client struct {
	*openai.Client
	Model          string
	maxSourceChars int
}

func NewClient(cfg Config) *Client {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.MaxSourceChars == 0 {
		cfg.MaxSourceChars = prompt.DefaultMaxSourceChars
	}
	return &Client{Client: openai.NewClientWithConfig(oc), Model: cfg.Model, maxSourceChars: cfg.MaxSourceChars}
}

// Explain implements ai.Explainer with a single chat completion.
func (c *Client) Explain(ctx context.Context, in ai.ExplainRequest) (string, error) {
	model := c.Model
	if model == "" {
		model = DefaultModel
	}
	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.GetSystemPrompt(in.AnalysisType, in.Jurisdiction)},
			{Role: openai.ChatMessageRoleUser, Content: prompt.GetUserPrompt(in, c.maxSourceChars)},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if isReasoningModel(model) {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		if isRateLimited(err) {
			return "", eris.Wrap(ai.ErrQuotaExceeded, err.Error())
		}
		return "", eris.Wrap(err, "failed to create chat completion")
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func isReasoningModel(model string) bool {
	for _, p := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, p) {
			return true
		}
	}
	return false
}

func isRateLimited(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	return false
}
