package main

import (
	"github.com/spf13/cobra"

	"b2ctail/internal/digest"
)

func newDigestCommand(ctx *commandContext) *cobra.Command {
	var filters []string
	var maxEntries int
	var includeAll bool

	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Print a compact JSON digest of recent errors",
		Long: "Collect recent ERROR and FATAL entries, keep those that mention a local\n" +
			"project path (unless --all), shorten stack traces and print JSON.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			svc, err := ctx.digestService()
			if err != nil {
				return err
			}
			req := digest.Request{MaxEntries: cfg.Digest.MaxEntries, IncludeAllLogs: includeAll}
			if cmd.Flags().Changed("max-entries") {
				req.MaxEntries = maxEntries
			}
			if cmd.Flags().Changed("filter") {
				req.Filters = resolveFilters(cmd, filters, nil)
			}
			return writeJSON(cmd, svc.ErrorLogs(commandCtx(cmd), req))
		},
	}

	cmd.Flags().StringSliceVarP(&filters, "filter", "f", nil, "Log file prefixes to read (default from [digest])")
	cmd.Flags().IntVarP(&maxEntries, "max-entries", "n", digest.DefaultMaxEntries, "Entries to keep per log file")
	cmd.Flags().BoolVar(&includeAll, "all", false, "Include entries without local project paths")
	return cmd
}
