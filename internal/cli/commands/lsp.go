package commands

import (
	"os"

	"github.com/leapstack-labs/drl/internal/cli/config"
	"github.com/leapstack-labs/drl/internal/lsp"
	"github.com/spf13/cobra"
)

// NewLSPCommand creates the lsp command.
func NewLSPCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		Long: `Start the LSP server for IDE integration.

The server communicates over stdin/stdout using JSON-RPC.
The project root is taken from the client's initialization request
(rootUri parameter); workspace symbols need 'drl index build'.`,
		Example: `  # Start LSP server (usually called by an IDE)
  drl lsp`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLSP(cmd)
		},
	}

	return cmd
}

func runLSP(cmd *cobra.Command) error {
	logger := config.GetLogger(ctxOf(cmd))
	server := lsp.NewServerWithLogger(os.Stdin, os.Stdout, logger)
	return server.Run()
}
