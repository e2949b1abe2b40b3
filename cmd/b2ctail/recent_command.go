package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"b2ctail/internal/snapshot"
	"b2ctail/internal/tail"
)

func newRecentCommand(ctx *commandContext) *cobra.Command {
	var filters []string
	var maxEntries int
	var noNormalize bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Print the most recent entries of the newest log per filter",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			client, err := ctx.webdavClient()
			if err != nil {
				return err
			}

			var normalizer snapshot.Normalizer
			if !noNormalize {
				n, err := ctx.normalizer(logger)
				if err != nil {
					return err
				}
				normalizer = n
			}

			retriever := snapshot.New(client, normalizer, logger)
			streams, err := retriever.Recent(commandCtx(cmd), resolveFilters(cmd, filters, cfg.Tail.Filters), maxEntries, !noNormalize)
			if err != nil {
				return fmt.Errorf("fetch recent logs: %w", err)
			}

			if jsonOutput {
				if streams == nil {
					streams = []snapshot.Stream{}
				}
				return writeJSON(cmd, streams)
			}
			if len(streams) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No matching log entries")
				return nil
			}
			printer := tail.NewConsolePrinter(cmd.OutOrStdout())
			for _, stream := range streams {
				if err := printer.Emit(tail.Block{Stream: stream.Name, Entries: stream.Entries}); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&filters, "filter", "f", nil, "Log file prefixes to read (default error-, customerror-)")
	cmd.Flags().IntVarP(&maxEntries, "max-entries", "n", snapshot.DefaultMaxEntries, "Entries to keep per log file")
	cmd.Flags().BoolVar(&noNormalize, "no-normalize", false, "Leave cartridge paths untouched")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
