package contracts

import (
	"strings"
	"unicode"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rotisserie/eris"
)

const maxJurisdictionLen = 64

// Normalize validates a submission and returns it in canonical form:
// checksummed address, lower-case network, default analysis type and a
// trimmed jurisdiction.
func Normalize(req Request) (Request, error) {
	addr := strings.TrimSpace(req.Address)
	if !common.IsHexAddress(addr) {
		return Request{}, eris.Wrapf(ErrInvalidAddress, "address %q", addr)
	}

	network := Network(strings.ToLower(strings.TrimSpace(string(req.Network))))
	if _, ok := network.ChainID(); !ok {
		return Request{}, eris.Wrapf(ErrUnsupportedNetwork, "network %q", network)
	}

	kind := AnalysisType(strings.ToLower(strings.TrimSpace(string(req.AnalysisType))))
	if kind == "" {
		kind = DefaultAnalysisType
	}
	if !kind.Valid() {
		return Request{}, eris.Wrapf(ErrUnsupportedAnalysisType, "analysis type %q", kind)
	}

	jurisdiction := sanitize(req.Jurisdiction)
	if len(jurisdiction) > maxJurisdictionLen {
		return Request{}, eris.Wrapf(ErrInvalidJurisdiction, "longer than %d characters", maxJurisdictionLen)
	}

	return Request{
		Address:      common.HexToAddress(addr).Hex(),
		Network:      network,
		AnalysisType: kind,
		Jurisdiction: jurisdiction,
	}, nil
}

// Valid reports whether t is a supported analysis type.
func (t AnalysisType) Valid() bool {
	for _, k := range AnalysisTypes() {
		if k == t {
			return true
		}
	}
	return false
}

// IsValidationError reports whether err came from Normalize.
func IsValidationError(err error) bool {
	return eris.Is(err, ErrInvalidAddress) ||
		eris.Is(err, ErrUnsupportedNetwork) ||
		eris.Is(err, ErrUnsupportedAnalysisType) ||
		eris.Is(err, ErrInvalidJurisdiction)
}

// sanitize drops control characters and trims surrounding space
func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
