package analysis

import (
	"time"

	"github.com/rotisserie/eris"

	"github.com/smartmemorandum/contract-analyzer/internal/domain/contracts"
)

// Phase of an analysis run
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseLoading    Phase = "loading"
	PhaseSucceeded  Phase = "succeeded"
	PhaseFailed     Phase = "failed"
	PhaseNoSource   Phase = "no_source"
	PhaseNoAnalysis Phase = "no_analysis"
)

// Terminal reports whether the phase ends a run.
func (p Phase) Terminal() bool {
	switch p {
	case PhaseSucceeded, PhaseFailed, PhaseNoSource, PhaseNoAnalysis:
		return true
	}
	return false
}

// State is the analysis state owned by one orchestrator.
// Results of a previous run stay in place until a new run overwrites them.
type State struct {
	ID           string                 `json:"id,omitempty"`
	Phase        Phase                  `json:"phase"`
	AnalysisType contracts.AnalysisType `json:"analysis_type"`
	SourceCode   string                 `json:"source_code,omitempty"`
	AIAnalysis   string                 `json:"ai_analysis,omitempty"`
	Error        string                 `json:"error,omitempty"`
	StartedAt    time.Time              `json:"started_at"`
	FinishedAt   time.Time              `json:"finished_at"`
}

// Initial returns the state of a session that never ran an analysis.
func Initial() State {
	return State{Phase: PhaseIdle, AnalysisType: contracts.DefaultAnalysisType}
}

// IsLoading is true while a run is in flight
func (s State) IsLoading() bool { return s.Phase == PhaseLoading }

// Event drives Transition
type Event interface{ event() }

// Started opens a run.
type Started struct {
	ID           string
	AnalysisType contracts.AnalysisType
	At           time.Time
}

// SourceFetched carries the Source Fetch Service answer; empty means absent.
type SourceFetched struct {
	SourceCode string
	At         time.Time
}

// Explained carries the AI Analysis Service answer; empty means absent.
type Explained struct {
	Analysis string
	At       time.Time
}

// Failed ends a run through the error path.
type Failed struct {
	At time.Time
}

func (Started) event()       {}
func (SourceFetched) event() {}
func (Explained) event()     {}
func (Failed) event()        {}

// Transition applies e to s. It never mutates s.
//
//	idle|terminal --Started--> loading
//	loading --SourceFetched(empty)--> no_source
//	loading --SourceFetched--> loading (source stored)
//	loading --Explained(empty)--> no_analysis
//	loading --Explained--> succeeded (analysis stored)
//	loading --Failed--> failed
func Transition(s State, e Event) (State, error) {
	switch ev := e.(type) {
	case Started:
		if s.IsLoading() {
			return s, eris.Wrap(ErrAnalysisInProgress, "start")
		}
		kind := ev.AnalysisType
		if kind == "" {
			kind = contracts.DefaultAnalysisType
		}
		next := s
		next.ID = ev.ID
		next.Phase = PhaseLoading
		next.AnalysisType = kind
		next.Error = ""
		next.StartedAt = ev.At
		next.FinishedAt = time.Time{}
		return next, nil

	case SourceFetched:
		if !s.IsLoading() {
			return s, invalid(s, "source fetched")
		}
		next := s
		if ev.SourceCode == "" {
			next.Phase = PhaseNoSource
			next.FinishedAt = ev.At
			return next, nil
		}
		next.SourceCode = ev.SourceCode
		return next, nil

	case Explained:
		if !s.IsLoading() {
			return s, invalid(s, "explained")
		}
		next := s
		next.FinishedAt = ev.At
		if ev.Analysis == "" {
			next.Phase = PhaseNoAnalysis
			return next, nil
		}
		next.AIAnalysis = ev.Analysis
		next.Phase = PhaseSucceeded
		return next, nil

	case Failed:
		if !s.IsLoading() {
			return s, invalid(s, "failed")
		}
		next := s
		next.Phase = PhaseFailed
		next.Error = FailureNotification.Description
		next.FinishedAt = ev.At
		return next, nil
	}
	return s, eris.Wrapf(ErrInvalidTransition, "unknown event %T", e)
}

func invalid(s State, what string) error {
	return eris.Wrapf(ErrInvalidTransition, "%s while %s", what, s.Phase)
}
