package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	appanalysis "github.com/smartmemorandum/contract-analyzer/internal/application/analysis"
	"github.com/smartmemorandum/contract-analyzer/internal/bootstrap"
	domain "github.com/smartmemorandum/contract-analyzer/internal/domain/analysis"
	"github.com/smartmemorandum/contract-analyzer/internal/domain/contracts"
	"github.com/smartmemorandum/contract-analyzer/internal/infra/notify"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze one contract and print the result",
	Long: `Runs a single analysis: fetch the contract source, then explain it.
Notifications are written to stderr, the final state to stdout.

Examples:
  analyzer analyze --address 0xde0B295669a9FD93d5F28D9Ec85E40f4cb697BAe
  analyzer analyze --address 0x... --network polygon --type security --output json`,
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.String("address", "", "contract address (0x-prefixed hex)")
	f.String("network", string(contracts.NetworkEthereum), "network name")
	f.String("type", string(contracts.DefaultAnalysisType), "analysis type: general, security, legal, technical")
	f.String("jurisdiction", "", "jurisdiction for legal remarks")
	f.String("output", "text", "output format: text or json")
	_ = analyzeCmd.MarkFlagRequired("address")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	f := cmd.Flags()
	address, _ := f.GetString("address")
	network, _ := f.GetString("network")
	kind, _ := f.GetString("type")
	jurisdiction, _ := f.GetString("jurisdiction")
	output, _ := f.GetString("output")

	req, err := contracts.Normalize(contracts.Request{
		Address:      address,
		Network:      contracts.Network(network),
		AnalysisType: contracts.AnalysisType(kind),
		Jurisdiction: jurisdiction,
	})
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	log := zap.L()
	providers, err := bootstrap.Build(ctx, cfg, log)
	if err != nil {
		return eris.Wrap(err, "build providers")
	}
	defer providers.Close()

	svc := appanalysis.NewService(providers.Sources, providers.Explainer,
		notify.NewWriter(cmd.ErrOrStderr()),
		appanalysis.WithLogger(log),
	)
	st, err := svc.Analyze(ctx, req)
	if err != nil {
		return err
	}

	if err := printState(cmd.OutOrStdout(), output, st); err != nil {
		return err
	}
	if st.Phase == domain.PhaseFailed {
		return eris.New("analysis failed")
	}
	return nil
}

func printState(w io.Writer, format string, st domain.State) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	}

	fmt.Fprintf(w, "Phase: %s\nAnalysis type: %s\n", st.Phase, st.AnalysisType)
	switch st.Phase {
	case domain.PhaseNoSource:
		fmt.Fprintln(w, "\nNo verified source code was found for this contract.")
	case domain.PhaseNoAnalysis:
		fmt.Fprintln(w, "\nThe AI service returned no analysis.")
	}
	if st.AIAnalysis != "" {
		fmt.Fprintf(w, "\n== AI Analysis ==\n%s\n", st.AIAnalysis)
	}
	if st.SourceCode != "" {
		fmt.Fprintf(w, "\n== Source Code ==\n%s\n", st.SourceCode)
	}
	return nil
}
