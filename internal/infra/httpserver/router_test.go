package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	appanalysis "github.com/smartmemorandum/contract-analyzer/internal/application/analysis"
	"github.com/smartmemorandum/contract-analyzer/internal/application/session"
	"github.com/smartmemorandum/contract-analyzer/internal/domain/ai"
	domain "github.com/smartmemorandum/contract-analyzer/internal/domain/analysis"
	"github.com/smartmemorandum/contract-analyzer/internal/domain/contracts"
	"github.com/smartmemorandum/contract-analyzer/internal/domain/embed"
	"github.com/smartmemorandum/contract-analyzer/internal/middleware"
)

const validAddress = "0xde0b295669a9fd93d5f28d9ec85e40f4cb697bae"

type stubSources struct {
	mu     sync.Mutex
	source string
	err    error
	block  chan struct{}
	seen   chan struct{}
}

func (s *stubSources) FetchSource(ctx context.Context, _ string, _ contracts.Network) (string, error) {
	if s.seen != nil {
		s.seen <- struct{}{}
	}
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source, s.err
}

type stubExplainer struct {
	text string
	err  error
	got  []ai.ExplainRequest
}

func (e *stubExplainer) Explain(_ context.Context, req ai.ExplainRequest) (string, error) {
	e.got = append(e.got, req)
	return e.text, e.err
}

type fixture struct {
	handler  http.Handler
	sources  *stubSources
	explain  *stubExplainer
	sessions *session.Registry
}

func newFixture(t *testing.T, mutate func(d *Deps)) *fixture {
	t.Helper()
	f := &fixture{
		sources: &stubSources{source: "contract Wallet {}"},
		explain: &stubExplainer{text: "A multisig wallet."},
	}
	log := zaptest.NewLogger(t)
	f.sessions = session.NewRegistry(func(n domain.Notifier) *appanalysis.Service {
		return appanalysis.NewService(f.sources, f.explain, n, appanalysis.WithLogger(log))
	}, nil, 0, nil, log)

	deps := Deps{Sessions: f.sessions, Logger: log}
	if mutate != nil {
		mutate(&deps)
	}
	f.handler = NewRouter(deps)
	return f
}

func (f *fixture) do(t *testing.T, method, target, sessionID string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if sessionID != "" {
		req.Header.Set(SessionHeader, sessionID)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestAnalyze_Succeeds(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/v1/analyze", "",
		`{"address":"`+validAddress+`","network":"Ethereum","jurisdiction":"US"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[analysisResponse](t, rec)
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, resp.SessionID, rec.Header().Get(SessionHeader))
	assert.Equal(t, domain.PhaseSucceeded, resp.State.Phase)
	assert.Equal(t, contracts.AnalysisGeneral, resp.State.AnalysisType)
	assert.Equal(t, "contract Wallet {}", resp.State.SourceCode)
	assert.Equal(t, "A multisig wallet.", resp.State.AIAnalysis)
	assert.False(t, resp.IsLoading)
	assert.Equal(t, []domain.Notification{domain.SuccessNotification}, resp.Notifications)

	require.Len(t, f.explain.got, 1)
	assert.Equal(t, "0xde0B295669a9FD93d5F28D9Ec85E40f4cb697BAe", f.explain.got[0].Address)

	// same session, notifications already delivered
	rec = f.do(t, http.MethodGet, "/v1/analysis", resp.SessionID, "")
	again := decode[analysisResponse](t, rec)
	assert.Equal(t, resp.SessionID, again.SessionID)
	assert.Equal(t, domain.PhaseSucceeded, again.State.Phase)
	assert.Empty(t, again.Notifications)
}

func TestAnalyze_ServiceFailureIsGeneric(t *testing.T) {
	f := newFixture(t, nil)
	f.explain.err = errors.New("upstream: secret internal detail")

	rec := f.do(t, http.MethodPost, "/v1/analyze", "", `{"address":"`+validAddress+`","network":"bsc"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[analysisResponse](t, rec)

	assert.Equal(t, domain.PhaseFailed, resp.State.Phase)
	assert.Equal(t, []domain.Notification{domain.FailureNotification}, resp.Notifications)
	assert.NotContains(t, rec.Body.String(), "secret internal detail")
}

func TestAnalyze_BadRequests(t *testing.T) {
	f := newFixture(t, nil)
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"address":`},
		{"unknown field", `{"address":"` + validAddress + `","network":"ethereum","chain":1}`},
		{"bad address", `{"address":"0x123","network":"ethereum"}`},
		{"bad network", `{"address":"` + validAddress + `","network":"dogechain"}`},
		{"bad type", `{"address":"` + validAddress + `","network":"ethereum","analysis_type":"poetry"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/v1/analyze", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, decode[map[string]string](t, rec)["error"])
		})
	}
	assert.Zero(t, f.sessions.Len(), "rejected input opens no session")
}

func TestAnalyze_RejectsOverlap(t *testing.T) {
	f := newFixture(t, nil)
	f.sources.block = make(chan struct{})
	f.sources.seen = make(chan struct{}, 1)

	id := f.do(t, http.MethodGet, "/v1/analysis", "", "").Header().Get(SessionHeader)
	require.NotEmpty(t, id)
	body := `{"address":"` + validAddress + `","network":"ethereum"}`

	done := make(chan *httptest.ResponseRecorder)
	go func() { done <- f.do(t, http.MethodPost, "/v1/analyze", id, body) }()
	<-f.sources.seen

	rec := f.do(t, http.MethodPost, "/v1/analyze", id, body)
	assert.Equal(t, http.StatusConflict, rec.Code)

	loading := decode[analysisResponse](t, f.do(t, http.MethodGet, "/v1/analysis", id, ""))
	assert.True(t, loading.IsLoading)

	close(f.sources.block)
	first := <-done
	assert.Equal(t, http.StatusOK, first.Code)
}

func TestCopyEmbed(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/v1/embed/copy", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Clipboard     string                `json:"clipboard"`
		Notifications []domain.Notification `json:"notifications"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, embed.Snippet, resp.Clipboard)
	assert.Equal(t, []domain.Notification{domain.CopiedNotification}, resp.Notifications)

	rec = f.do(t, http.MethodGet, "/v1/embed", "", "")
	assert.Equal(t, embed.Snippet, decode[map[string]string](t, rec)["snippet"])
}

func TestOptions(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodGet, "/v1/options", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Networks      []string `json:"networks"`
		AnalysisTypes []string `json:"analysis_types"`
		Default       string   `json:"default_analysis_type"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Contains(t, resp.Networks, "ethereum")
	assert.Equal(t, []string{"general", "security", "legal", "technical"}, resp.AnalysisTypes)
	assert.Equal(t, "general", resp.Default)
}

func TestAPIKeysProtectV1Only(t *testing.T) {
	f := newFixture(t, func(d *Deps) { d.APIKeys = map[string]string{"web": "s3cret"} })

	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/v1/options", "", "").Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/health", "", "").Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/", "", "").Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/options", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t, func(d *Deps) { d.Metrics = middleware.NewMetrics() })
	f.do(t, http.MethodGet, "/v1/options", "", "")

	rec := f.do(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="/v1/options"`)
}

func TestPage(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<h1>Smart Contract Analyzer</h1>")
	assert.Contains(t, body, "let AI explain its functionality in plain English")
	assert.Contains(t, body, "Embed this analyzer in your website")
	assert.Contains(t, body, `&lt;iframe src=&#34;https://smartmemorandum.netlify.app/embed&#34;`)
	assert.NotEmpty(t, rec.Result().Cookies())
}

func postForm(t *testing.T, f *fixture, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestPage_SubmitAndCopy(t *testing.T) {
	f := newFixture(t, nil)

	rec := postForm(t, f, "/", url.Values{
		"address":       {validAddress},
		"network":       {"polygon"},
		"analysis_type": {"security"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Analysis Complete")
	assert.Contains(t, body, "AI Analysis (security)")
	assert.Contains(t, body, "A multisig wallet.")
	assert.Contains(t, body, "contract Wallet {}")

	rec = postForm(t, f, "/embed", url.Values{"action": {"copy"}})
	assert.Contains(t, rec.Body.String(), "Copied!")

	rec = postForm(t, f, "/", url.Values{"address": {"nope"}, "network": {"ethereum"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `class="error"`)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(eris.Wrap(contracts.ErrInvalidAddress, "x")))
	assert.Equal(t, http.StatusBadRequest, statusFor(eris.Wrap(errBadRequest, "x")))
	assert.Equal(t, http.StatusConflict, statusFor(eris.Wrap(domain.ErrAnalysisInProgress, "x")))
	assert.Equal(t, http.StatusTooManyRequests, statusFor(eris.Wrap(ai.ErrQuotaExceeded, "x")))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
}
