package main

import (
	"github.com/spf13/cobra"

	appembed "github.com/smartmemorandum/contract-analyzer/internal/application/embed"
	"github.com/smartmemorandum/contract-analyzer/internal/infra/clipboard"
	"github.com/smartmemorandum/contract-analyzer/internal/infra/notify"
)

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Print the embed snippet",
	Long:  "Copies the iframe snippet to stdout and confirms on stderr, so it can be piped into a clipboard tool.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc := appembed.NewService(clipboard.NewWriter(cmd.OutOrStdout()), notify.NewWriter(cmd.ErrOrStderr()))
		svc.CopyEmbedCode(cmd.Context())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(embedCmd)
}
