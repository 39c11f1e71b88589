package contracts

import "sort"

// Network identifies the chain a contract lives on
type Network string

const (
	NetworkEthereum  Network = "ethereum"
	NetworkSepolia   Network = "sepolia"
	NetworkBSC       Network = "bsc"
	NetworkPolygon   Network = "polygon"
	NetworkArbitrum  Network = "arbitrum"
	NetworkOptimism  Network = "optimism"
	NetworkBase      Network = "base"
	NetworkAvalanche Network = "avalanche"
)

var chainIDs = map[Network]int64{
	NetworkEthereum:  1,
	NetworkSepolia:   11155111,
	NetworkBSC:       56,
	NetworkPolygon:   137,
	NetworkArbitrum:  42161,
	NetworkOptimism:  10,
	NetworkBase:      8453,
	NetworkAvalanche: 43114,
}

// ChainID returns the EVM chain id, ok=false for unknown networks.
func (n Network) ChainID() (int64, bool) {
	id, ok := chainIDs[n]
	return id, ok
}

// Networks lists supported networks sorted by name.
func Networks() []Network {
	out := make([]Network, 0, len(chainIDs))
	for n := range chainIDs {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// AnalysisType selects the kind of explanation requested
type AnalysisType string

const (
	AnalysisGeneral   AnalysisType = "general"
	AnalysisSecurity  AnalysisType = "security"
	AnalysisLegal     AnalysisType = "legal"
	AnalysisTechnical AnalysisType = "technical"
)

// DefaultAnalysisType is used when the caller does not pick one.
const DefaultAnalysisType = AnalysisGeneral

// AnalysisTypes lists the supported analysis types, default first.
func AnalysisTypes() []AnalysisType {
	return []AnalysisType{AnalysisGeneral, AnalysisSecurity, AnalysisLegal, AnalysisTechnical}
}

// Request is one submission from the input collector
type Request struct {
	Address      string       `json:"address"`
	Network      Network      `json:"network"`
	AnalysisType AnalysisType `json:"analysis_type"`
	Jurisdiction string       `json:"jurisdiction"`
}
