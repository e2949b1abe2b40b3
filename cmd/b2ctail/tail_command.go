package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"b2ctail/internal/logging"
	"b2ctail/internal/tail"
)

func newTailCommand(ctx *commandContext) *cobra.Command {
	var filters []string
	var normalize bool

	cmd := &cobra.Command{
		Use:     "tail",
		Aliases: []string{"watch"},
		Short:   "Watch instance logs",
		Long: "Poll the logs directory and print entries appended to the newest file of\n" +
			"each filter prefix. The first poll shows only the latest entry per file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			baseLogger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			client, err := ctx.webdavClient()
			if err != nil {
				return err
			}

			sessionID := uuid.NewString()
			logger := baseLogger.With(logging.String(logging.FieldSessionID, sessionID))

			if !cmd.Flags().Changed("task") && !cmd.Flags().Changed("normalize") {
				normalize = cfg.Tail.Normalize
			}
			opts := tail.Options{Interval: cfg.PollInterval(), Logger: logger}
			if normalize {
				n, err := ctx.normalizer(logger)
				if err != nil {
					return err
				}
				opts.Normalizer = n
			}

			watch := resolveFilters(cmd, filters, cfg.Tail.Filters)
			logger.Info("watching logs",
				logging.String("server", cfg.BaseURL()),
				logging.String("filters", strings.Join(watch, ",")),
				logging.Bool("normalize", normalize),
			)

			runCtx, stop := signal.NotifyContext(commandCtx(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			tailer := tail.New(client, tail.NewConsolePrinter(cmd.OutOrStdout()), opts)
			return tailer.Run(runCtx, watch)
		},
	}

	cmd.Flags().StringSliceVarP(&filters, "filter", "f", nil, "Log file prefixes to watch (default error-, customerror-)")
	cmd.Flags().BoolVar(&normalize, "task", false, "Rewrite cartridge paths to local project paths")
	cmd.Flags().BoolVar(&normalize, "normalize", false, "Alias for --task")
	return cmd
}

func commandCtx(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
