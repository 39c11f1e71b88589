package analysis

import "github.com/rotisserie/eris"

var (
	// ErrAnalysisInProgress rejects a submission while another one is loading.
	ErrAnalysisInProgress = eris.New("analysis already in progress")
	ErrInvalidTransition  = eris.New("invalid analysis state transition")
)
