package contracts

import "github.com/rotisserie/eris"

var (
	ErrInvalidAddress          = eris.New("invalid contract address")
	ErrUnsupportedNetwork      = eris.New("unsupported network")
	ErrUnsupportedAnalysisType = eris.New("unsupported analysis type")
	ErrInvalidJurisdiction     = eris.New("invalid jurisdiction")
)
