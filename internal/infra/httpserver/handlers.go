package httpserver

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/rotisserie/eris"

	"github.com/smartmemorandum/contract-analyzer/internal/application/session"
	domain "github.com/smartmemorandum/contract-analyzer/internal/domain/analysis"
	"github.com/smartmemorandum/contract-analyzer/internal/domain/contracts"
	"github.com/smartmemorandum/contract-analyzer/internal/domain/embed"
)

const maxBodyBytes = 64 << 10

type analysisResponse struct {
	SessionID     string                `json:"session_id"`
	State         domain.State          `json:"state"`
	IsLoading     bool                  `json:"is_loading"`
	Notifications []domain.Notification `json:"notifications"`
}

func newAnalysisResponse(s *session.Session, st domain.State) analysisResponse {
	return analysisResponse{
		SessionID:     s.ID,
		State:         st,
		IsLoading:     st.IsLoading(),
		Notifications: s.Inbox.Drain(),
	}
}

// POST /v1/analyze
// Body: {"address": "0x..", "network": "ethereum", "analysis_type": "general", "jurisdiction": ""}
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	var body contracts.Request
	dec := json.NewDecoder(io.LimitReader(req.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		return eris.Wrap(errBadRequest, "invalid JSON body: "+err.Error())
	}
	in, err := contracts.Normalize(body)
	if err != nil {
		return err
	}

	s := r.openSession(w, req)
	st, err := s.Analysis.Analyze(req.Context(), in)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, newAnalysisResponse(s, st))
}

// GET /v1/analysis
func (r *Router) handleAnalysis(w http.ResponseWriter, req *http.Request) error {
	s := r.openSession(w, req)
	return writeJSON(w, http.StatusOK, newAnalysisResponse(s, s.Analysis.State()))
}

// GET /v1/notifications
func (r *Router) handleNotifications(w http.ResponseWriter, req *http.Request) error {
	s := r.openSession(w, req)
	return writeJSON(w, http.StatusOK, map[string]any{
		"session_id":    s.ID,
		"notifications": s.Inbox.Drain(),
	})
}

// GET /v1/embed
func (r *Router) handleEmbed(w http.ResponseWriter, req *http.Request) error {
	return writeJSON(w, http.StatusOK, map[string]string{
		"snippet": embed.Snippet,
		"url":     embed.URL,
	})
}

// POST /v1/embed/copy
func (r *Router) handleCopyEmbed(w http.ResponseWriter, req *http.Request) error {
	s := r.openSession(w, req)
	s.Embed.CopyEmbedCode(req.Context())
	return writeJSON(w, http.StatusOK, map[string]any{
		"session_id":    s.ID,
		"clipboard":     s.Clipboard.Text(),
		"notifications": s.Inbox.Drain(),
	})
}

// GET /v1/options
func (r *Router) handleOptions(w http.ResponseWriter, req *http.Request) error {
	return writeJSON(w, http.StatusOK, map[string]any{
		"networks":              contracts.Networks(),
		"analysis_types":        contracts.AnalysisTypes(),
		"default_analysis_type": contracts.DefaultAnalysisType,
	})
}
