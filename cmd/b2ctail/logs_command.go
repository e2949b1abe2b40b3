package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"b2ctail/internal/webdav"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var filters []string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "List remote log files, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.webdavClient()
			if err != nil {
				return err
			}
			files, err := client.List(commandCtx(cmd))
			if err != nil {
				return fmt.Errorf("list logs: %w", err)
			}
			files = filterFiles(files, filters)
			webdav.SortNewestFirst(files)

			if jsonOutput {
				if files == nil {
					files = []webdav.LogFile{}
				}
				return writeJSON(cmd, files)
			}
			out := cmd.OutOrStdout()
			if len(files) == 0 {
				fmt.Fprintln(out, "No log files found")
				return nil
			}
			rows := make([][]string, 0, len(files))
			for _, f := range files {
				rows = append(rows, []string{f.Name, formatModified(f.LastModified)})
			}
			fmt.Fprintln(out, renderTable([]string{"Name", "Last Modified"}, rows, []columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&filters, "filter", "f", nil, "Only list files starting with these prefixes")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func filterFiles(files []webdav.LogFile, prefixes []string) []webdav.LogFile {
	var kept []string
	for _, p := range prefixes {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return files
	}
	var out []webdav.LogFile
	for _, f := range files {
		for _, p := range kept {
			if strings.HasPrefix(f.Name, p) {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

func formatModified(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
