package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"psls/internal/config"
	"psls/internal/lsp"
)

var lspCmd = &cobra.Command{
	Use:          "lsp",
	Short:        "Run the psls language server over stdio",
	SilenceUsage: true,
	RunE:         runLSP,
}

func init() {
	lspCmd.Flags().Bool("trace", false, "log protocol traffic to stderr")
}

func runLSP(cmd *cobra.Command, _ []string) error {
	trace, _ := cmd.Flags().GetBool("trace")

	// Workspace config seeds the defaults; client settings override later.
	cfg, err := config.Discover(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "psls: config: %v\n", err)
		cfg = config.Default()
	}

	server := lsp.NewServer(os.Stdin, os.Stdout, lsp.ServerOptions{
		IncludeLastLine: cfg.Folding.IncludeLastLine,
		Trace:           trace,
	})
	if err := server.Run(cmd.Context()); err != nil {
		if errors.Is(err, lsp.ErrExit) {
			return nil
		}
		if errors.Is(err, lsp.ErrExitWithoutShutdown) {
			return fmt.Errorf("lsp exit without shutdown")
		}
		return err
	}
	return nil
}
