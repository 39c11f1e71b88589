package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smartmemorandum/contract-analyzer/internal/domain/contracts"
)

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "List supported networks and analysis types",
	RunE: func(cmd *cobra.Command, _ []string) error {
		w := cmd.OutOrStdout()
		fmt.Fprintln(w, "Networks:")
		for _, n := range contracts.Networks() {
			id, _ := n.ChainID()
			fmt.Fprintf(w, "  %-10s chain id %d\n", n, id)
		}
		fmt.Fprintln(w, "Analysis types:")
		for _, t := range contracts.AnalysisTypes() {
			marker := ""
			if t == contracts.DefaultAnalysisType {
				marker = " (default)"
			}
			fmt.Fprintf(w, "  %s%s\n", t, marker)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(optionsCmd)
}
