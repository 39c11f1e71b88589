package analysis

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/smartmemorandum/contract-analyzer/internal/application"
	"github.com/smartmemorandum/contract-analyzer/internal/domain/ai"
	domain "github.com/smartmemorandum/contract-analyzer/internal/domain/analysis"
	"github.com/smartmemorandum/contract-analyzer/internal/domain/contracts"
)

// Observer records the outcome of finished runs (metrics).
type Observer interface {
	ObserveAnalysis(phase domain.Phase, elapsed time.Duration)
}

// Service is the orchestrator of one session: it owns the analysis state
// and sequences the source fetch and the AI explanation.
// Service is safe for concurrent use; overlapping Analyze calls are
// rejected with domain.ErrAnalysisInProgress.
type Service struct {
	sources   contracts.SourceFetcher
	explainer ai.Explainer
	notifier  domain.Notifier
	clock     application.Clock
	logger    *zap.Logger
	observer  Observer

	inflight *semaphore.Weighted

	mu    sync.RWMutex
	state domain.State
}

// Option configures a Service
type Option func(*Service)

func WithClock(c application.Clock) Option { return func(s *Service) { s.clock = c } }

func WithLogger(l *zap.Logger) Option { return func(s *Service) { s.logger = l } }

func WithObserver(o Observer) Option { return func(s *Service) { s.observer = o } }

func NewService(sources contracts.SourceFetcher, explainer ai.Explainer, notifier domain.Notifier, opts ...Option) *Service {
	s := &Service{
		sources:   sources,
		explainer: explainer,
		notifier:  notifier,
		inflight:  semaphore.NewWeighted(1),
		state:     domain.Initial(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.clock = application.ClockOrSystem(s.clock)
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.notifier == nil {
		s.notifier = domain.Notifiers{}
	}
	return s
}

// State returns a snapshot of the current analysis state.
func (s *Service) State() domain.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Analyze runs one submission to completion and returns the settled state.
// Service failures never surface as an error: they end in PhaseFailed with
// one failure notification. The only error is ErrAnalysisInProgress.
func (s *Service) Analyze(ctx context.Context, req contracts.Request) (domain.State, error) {
	if !s.inflight.TryAcquire(1) {
		return s.State(), eris.Wrap(domain.ErrAnalysisInProgress, "analyze")
	}
	defer s.inflight.Release(1)

	id := uuid.NewString()
	start := s.clock.Now()
	if _, err := s.apply(domain.Started{ID: id, AnalysisType: req.AnalysisType, At: start}); err != nil {
		return s.State(), err
	}

	log := s.logger.With(
		zap.String("analysis_id", id),
		zap.String("address", req.Address),
		zap.String("network", string(req.Network)),
		zap.String("analysis_type", string(req.AnalysisType)),
	)

	final := s.run(ctx, req, log)
	elapsed := s.clock.Now().Sub(start)
	if s.observer != nil {
		s.observer.ObserveAnalysis(final.Phase, elapsed)
	}
	log.Info("analysis finished", zap.String("phase", string(final.Phase)), zap.Duration("elapsed", elapsed))
	return final, nil
}

func (s *Service) run(ctx context.Context, req contracts.Request, log *zap.Logger) (st domain.State) {
	stage := "fetch_source"
	defer func() {
		if r := recover(); r != nil {
			st = s.fail(ctx, log, stage, eris.Errorf("panic: %v", r))
		}
	}()

	source, err := s.sources.FetchSource(ctx, req.Address, req.Network)
	if err != nil {
		return s.fail(ctx, log, stage, err)
	}
	st, err = s.apply(domain.SourceFetched{SourceCode: source, At: s.clock.Now()})
	if err != nil {
		log.Error("apply source", zap.Error(err))
		return st
	}
	if source == "" {
		log.Info("source fetch returned no source code")
		return st
	}

	stage = "explain"
	text, err := s.explainer.Explain(ctx, ai.ExplainRequest{
		SourceCode:   source,
		Address:      req.Address,
		AnalysisType: st.AnalysisType,
		Jurisdiction: req.Jurisdiction,
	})
	if err != nil {
		return s.fail(ctx, log, stage, err)
	}
	st, err = s.apply(domain.Explained{Analysis: text, At: s.clock.Now()})
	if err != nil {
		log.Error("apply analysis", zap.Error(err))
		return st
	}
	if text == "" {
		log.Info("ai analysis returned no text")
		return st
	}

	s.notifier.Notify(ctx, domain.SuccessNotification)
	return st
}

// fail is the single error path: log the cause, settle the state, notify.
// A run that already settled keeps its outcome and is not notified twice.
func (s *Service) fail(ctx context.Context, log *zap.Logger, stage string, cause error) domain.State {
	log.Error("error analyzing contract", zap.String("stage", stage), zap.Error(cause))
	st, err := s.apply(domain.Failed{At: s.clock.Now()})
	if err != nil {
		log.Error("apply failure", zap.Error(err))
		return st
	}
	s.notifier.Notify(ctx, domain.FailureNotification)
	return st
}

func (s *Service) apply(e domain.Event) (domain.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := domain.Transition(s.state, e)
	if err != nil {
		return s.state, eris.Wrapf(err, "apply %T", e)
	}
	s.state = next
	return next, nil
}
