package functions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/smartmemorandum/contract-analyzer/internal/domain/ai"
	"github.com/smartmemorandum/contract-analyzer/internal/domain/contracts"
)

const (
	DefaultSourceFunction   = "analyze-contract"
	DefaultAnalysisFunction = "analyze-with-ai"

	maxErrorBody = 1024
)

// Config for the hosted edge functions
type Config struct {
	BaseURL          string
	APIKey           string
	SourceFunction   string
	AnalysisFunction string
	Timeout          time.Duration
}

// Client invokes the remote Source Fetch and AI Analysis functions.
// It implements contracts.SourceFetcher and ai.Explainer.
type Client struct {
	baseURL          string
	apiKey           string
	sourceFunction   string
	analysisFunction string
	http             *http.Client
}

// StatusError is a non-2xx answer from a function
type StatusError struct {
	Function   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("function %s returned %d: %s", e.Function, e.StatusCode, e.Body)
}

func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, eris.New("functions: base URL is required")
	}
	if cfg.SourceFunction == "" {
		cfg.SourceFunction = DefaultSourceFunction
	}
	if cfg.AnalysisFunction == "" {
		cfg.AnalysisFunction = DefaultAnalysisFunction
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		baseURL:          base,
		apiKey:           cfg.APIKey,
		sourceFunction:   cfg.SourceFunction,
		analysisFunction: cfg.AnalysisFunction,
		http:             &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type sourceRequest struct {
	ContractAddress string `json:"contract_address"`
	Network         string `json:"network"`
}

type sourceResponse struct {
	SourceCode string `json:"source_code"`
}

type analysisRequest struct {
	SourceCode      string `json:"source_code"`
	ContractAddress string `json:"contract_address"`
	AnalysisType    string `json:"analysis_type"`
	Jurisdiction    string `json:"jurisdiction"`
}

type analysisResponse struct {
	Analysis string `json:"analysis"`
}

// FetchSource implements contracts.SourceFetcher
func (c *Client) FetchSource(ctx context.Context, address string, network contracts.Network) (string, error) {
	var out sourceResponse
	err := c.Invoke(ctx, c.sourceFunction, sourceRequest{ContractAddress: address, Network: string(network)}, &out)
	if err != nil {
		return "", err
	}
	return out.SourceCode, nil
}

// Explain implements ai.Explainer
func (c *Client) Explain(ctx context.Context, req ai.ExplainRequest) (string, error) {
	var out analysisResponse
	err := c.Invoke(ctx, c.analysisFunction, analysisRequest{
		SourceCode:      req.SourceCode,
		ContractAddress: req.Address,
		AnalysisType:    string(req.AnalysisType),
		Jurisdiction:    req.Jurisdiction,
	}, &out)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusTooManyRequests {
			return "", eris.Wrap(ai.ErrQuotaExceeded, se.Error())
		}
		return "", err
	}
	return out.Analysis, nil
}

// Invoke POSTs body as JSON to the named function and decodes the answer
// into out. A JSON body carrying an "error" field counts as a failure.
func (c *Client) Invoke(ctx context.Context, name string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return eris.Wrapf(err, "functions: marshal %s request", name)
	}

	url := fmt.Sprintf("%s/functions/v1/%s", c.baseURL, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return eris.Wrapf(err, "functions: build %s request", name)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("apikey", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrapf(err, "functions: invoke %s", name)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrapf(err, "functions: read %s response", name)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := string(raw)
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return &StatusError{Function: name, StatusCode: resp.StatusCode, Body: snippet}
	}

	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return eris.Wrapf(err, "functions: decode %s response", name)
	}
	if envelope.Error != "" {
		return eris.Errorf("functions: %s: %s", name, envelope.Error)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return eris.Wrapf(err, "functions: decode %s response", name)
	}
	return nil
}
