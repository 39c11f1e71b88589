package etherscan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/smartmemorandum/contract-analyzer/internal/domain/contracts"
)

const DefaultBaseURL = "https://api.etherscan.io/v2/api"

// Config Etherscan API
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Client fetches verified source code through the Etherscan v2 API; one
// key covers every supported chain via the chainid parameter.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 20 * time.Second
	}
	return &Client{
		apiKey:  strings.TrimSpace(cfg.APIKey),
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

type response struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

type sourceEntry struct {
	SourceCode      string `json:"SourceCode"`
	ContractName    string `json:"ContractName"`
	CompilerVersion string `json:"CompilerVersion"`
}

// FetchSource implements contracts.SourceFetcher. Unverified contracts
// yield an empty string.
func (c *Client) FetchSource(ctx context.Context, address string, network contracts.Network) (string, error) {
	chainID, ok := network.ChainID()
	if !ok {
		return "", eris.Wrapf(contracts.ErrUnsupportedNetwork, "etherscan: network %q", network)
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", eris.Wrap(err, "etherscan: parse base URL")
	}
	q := url.Values{}
	q.Set("chainid", strconv.FormatInt(chainID, 10))
	q.Set("module", "contract")
	q.Set("action", "getsourcecode")
	q.Set("address", strings.TrimSpace(address))
	q.Set("apikey", c.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", eris.Wrap(err, "etherscan: build request")
	}
	req.Header.Set("User-Agent", "contract-analyzer/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "etherscan: request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", eris.Wrap(err, "etherscan: read response")
	}
	if resp.StatusCode != http.StatusOK {
		snippet := string(body)
		if len(snippet) > 1024 {
			snippet = snippet[:1024]
		}
		return "", eris.Errorf("etherscan: status %d: %s", resp.StatusCode, snippet)
	}

	var r response
	if err := json.Unmarshal(body, &r); err != nil {
		return "", eris.Wrap(err, "etherscan: decode response")
	}
	// status "0" carries the reason as a plain string result
	if r.Status != "1" {
		var reason string
		_ = json.Unmarshal(r.Result, &reason)
		return "", eris.Errorf("etherscan: %s: %s", r.Message, reason)
	}

	var entries []sourceEntry
	if err := json.Unmarshal(r.Result, &entries); err != nil {
		return "", eris.Wrap(err, "etherscan: decode result")
	}
	if len(entries) == 0 || strings.TrimSpace(entries[0].SourceCode) == "" {
		return "", nil
	}
	return Flatten(entries[0].SourceCode), nil
}

// Flatten turns a standard-json-input or multi-file source payload into a
// single listing with one "// File:" header per source. Plain Solidity is
// returned unchanged.
func Flatten(src string) string {
	trimmed := strings.TrimSpace(src)
	if !strings.HasPrefix(trimmed, "{") {
		return src
	}
	// standard json input is wrapped in an extra pair of braces
	if strings.HasPrefix(trimmed, "{{") && strings.HasSuffix(trimmed, "}}") {
		trimmed = trimmed[1 : len(trimmed)-1]
	}

	type file struct {
		Content string `json:"content"`
	}
	var input struct {
		Sources map[string]file `json:"sources"`
	}
	if err := json.Unmarshal([]byte(trimmed), &input); err != nil {
		return src
	}
	files := input.Sources
	if len(files) == 0 {
		if err := json.Unmarshal([]byte(trimmed), &files); err != nil || len(files) == 0 {
			return src
		}
	}

	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var b strings.Builder
	for i, p := range paths {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "// File: %s\n", p)
		b.WriteString(strings.TrimRight(files[p].Content, "\n"))
	}
	return b.String()
}
