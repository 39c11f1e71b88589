package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/smartmemorandum/contract-analyzer/internal/application/session"
	"github.com/smartmemorandum/contract-analyzer/internal/domain/ai"
	domain "github.com/smartmemorandum/contract-analyzer/internal/domain/analysis"
	"github.com/smartmemorandum/contract-analyzer/internal/domain/contracts"
	"github.com/smartmemorandum/contract-analyzer/internal/middleware"
)

const (
	SessionHeader = "X-Session-ID"
	SessionCookie = "session_id"
)

var errBadRequest = eris.New("bad request")

// Deps are the collaborators of the HTTP surface. Only Sessions is required.
type Deps struct {
	Sessions       *session.Registry
	Metrics        *middleware.Metrics
	Checkers       map[string]middleware.HealthChecker
	Limiter        *middleware.RateLimiter
	AllowedOrigins []string
	APIKeys        map[string]string
	Logger         *zap.Logger
}

type Router struct {
	sessions *session.Registry
	logger   *zap.Logger
	page     *pageRenderer
}

func NewRouter(deps Deps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if len(deps.AllowedOrigins) == 0 {
		deps.AllowedOrigins = []string{"*"}
	}
	r := &Router{sessions: deps.Sessions, logger: deps.Logger, page: newPageRenderer()}

	mux := chi.NewRouter()
	mux.Use(chimw.RequestID)
	mux.Use(chimw.RealIP)
	mux.Use(middleware.Logging(deps.Logger))
	if deps.Metrics != nil {
		mux.Use(deps.Metrics.Middleware)
	}
	mux.Use(chimw.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key", SessionHeader},
		ExposedHeaders:   []string{SessionHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	mux.Get("/health", middleware.HealthHandler(deps.Checkers))
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/live", middleware.LivenessHandler)
	if deps.Metrics != nil {
		mux.Handle("/metrics", deps.Metrics.Handler())
	}

	mux.Get("/", r.handlePage)
	mux.Post("/", r.handlePageSubmit)
	mux.Get("/embed", r.handleEmbedPage)
	mux.Post("/embed", r.handleEmbedSubmit)

	mux.Route("/v1", func(rt chi.Router) {
		rt.Use(middleware.APIKeyAuth(deps.APIKeys))
		if deps.Limiter != nil {
			rt.Use(middleware.RateLimitMiddleware(deps.Limiter))
		}
		rt.Post("/analyze", r.wrap(r.handleAnalyze))
		rt.Get("/analysis", r.wrap(r.handleAnalysis))
		rt.Get("/notifications", r.wrap(r.handleNotifications))
		rt.Get("/embed", r.wrap(r.handleEmbed))
		rt.Post("/embed/copy", r.wrap(r.handleCopyEmbed))
		rt.Get("/options", r.wrap(r.handleOptions))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			status := statusFor(err)
			msg := err.Error()
			if status == http.StatusInternalServerError {
				r.logger.Error("request failed",
					zap.String("path", req.URL.Path),
					zap.String("request_id", chimw.GetReqID(req.Context())),
					zap.Error(err),
				)
				msg = "internal server error"
			}
			writeJSON(w, status, map[string]string{"error": msg})
		}
	}
}

func statusFor(err error) int {
	switch {
	case contracts.IsValidationError(err), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAnalysisInProgress):
		return http.StatusConflict
	case errors.Is(err, ai.ErrQuotaExceeded):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// openSession resolves the caller's session from the header or cookie and
// echoes its id back on both.
func (r *Router) openSession(w http.ResponseWriter, req *http.Request) *session.Session {
	id := req.Header.Get(SessionHeader)
	if id == "" {
		if c, err := req.Cookie(SessionCookie); err == nil {
			id = c.Value
		}
	}
	if !middleware.ValidSessionID(id) {
		id = ""
	}
	s := r.sessions.Open(id)
	w.Header().Set(SessionHeader, s.ID)
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    s.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return s
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}
