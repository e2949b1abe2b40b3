package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"b2ctail/internal/mcpserver"
)

func newMCPCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the error digest as an MCP tool over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			svc, err := ctx.digestService()
			if err != nil {
				return err
			}
			runCtx, stop := signal.NotifyContext(commandCtx(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return mcpserver.New(svc, logger).Serve(runCtx, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
