package httpserver

import (
	"embed"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/smartmemorandum/contract-analyzer/internal/application/session"
	domain "github.com/smartmemorandum/contract-analyzer/internal/domain/analysis"
	"github.com/smartmemorandum/contract-analyzer/internal/domain/contracts"
	embedsnippet "github.com/smartmemorandum/contract-analyzer/internal/domain/embed"
)

//go:embed templates/*.html
var templateFS embed.FS

const actionCopy = "copy"

type pageRenderer struct {
	tmpl *template.Template
}

func newPageRenderer() *pageRenderer {
	return &pageRenderer{tmpl: template.Must(template.ParseFS(templateFS, "templates/*.html"))}
}

type pageData struct {
	SessionID     string
	Action        string
	Form          contracts.Request
	Networks      []contracts.Network
	AnalysisTypes []contracts.AnalysisType
	State         domain.State
	Notifications []domain.Notification
	Error         string
	Snippet       string
}

func (p *pageRenderer) render(w http.ResponseWriter, name string, status int, data pageData) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	return p.tmpl.ExecuteTemplate(w, name, data)
}

func (r *Router) newPageData(s *session.Session, action string) pageData {
	st := s.Analysis.State()
	return pageData{
		SessionID:     s.ID,
		Action:        action,
		Form:          contracts.Request{Network: contracts.NetworkEthereum, AnalysisType: st.AnalysisType},
		Networks:      contracts.Networks(),
		AnalysisTypes: contracts.AnalysisTypes(),
		State:         st,
		Snippet:       embedsnippet.Snippet,
	}
}

// GET /
func (r *Router) handlePage(w http.ResponseWriter, req *http.Request) {
	r.showPage(w, req, "page.html", "/")
}

// GET /embed
func (r *Router) handleEmbedPage(w http.ResponseWriter, req *http.Request) {
	r.showPage(w, req, "embed.html", "/embed")
}

// POST /
func (r *Router) handlePageSubmit(w http.ResponseWriter, req *http.Request) {
	r.submitPage(w, req, "page.html", "/")
}

// POST /embed
func (r *Router) handleEmbedSubmit(w http.ResponseWriter, req *http.Request) {
	r.submitPage(w, req, "embed.html", "/embed")
}

func (r *Router) showPage(w http.ResponseWriter, req *http.Request, name, action string) {
	s := r.openSession(w, req)
	data := r.newPageData(s, action)
	data.Notifications = s.Inbox.Drain()
	r.renderPage(w, name, http.StatusOK, data)
}

func (r *Router) submitPage(w http.ResponseWriter, req *http.Request, name, action string) {
	s := r.openSession(w, req)
	if err := req.ParseForm(); err != nil {
		data := r.newPageData(s, action)
		data.Error = "Could not read the submitted form."
		r.renderPage(w, name, http.StatusBadRequest, data)
		return
	}

	if req.PostForm.Get("action") == actionCopy {
		s.Embed.CopyEmbedCode(req.Context())
		data := r.newPageData(s, action)
		data.Notifications = s.Inbox.Drain()
		r.renderPage(w, name, http.StatusOK, data)
		return
	}

	form := contracts.Request{
		Address:      req.PostForm.Get("address"),
		Network:      contracts.Network(req.PostForm.Get("network")),
		AnalysisType: contracts.AnalysisType(req.PostForm.Get("analysis_type")),
		Jurisdiction: req.PostForm.Get("jurisdiction"),
	}
	status := http.StatusOK
	var errText string
	in, err := contracts.Normalize(form)
	if err == nil {
		_, err = s.Analysis.Analyze(req.Context(), in)
		form = in
	}
	if err != nil {
		status = statusFor(err)
		errText = err.Error()
	}

	data := r.newPageData(s, action)
	data.Form = form
	data.Error = errText
	data.Notifications = s.Inbox.Drain()
	r.renderPage(w, name, status, data)
}

func (r *Router) renderPage(w http.ResponseWriter, name string, status int, data pageData) {
	if err := r.page.render(w, name, status, data); err != nil {
		r.logger.Error("render page", zap.String("template", name), zap.Error(err))
	}
}
