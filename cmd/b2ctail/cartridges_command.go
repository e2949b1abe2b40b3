package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"b2ctail/internal/cartridge"
)

type cartridgeView struct {
	Name  string `json:"name"`
	Local string `json:"local"`
	Src   string `json:"src"`
}

func newCartridgesCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "cartridges",
		Short: "Show the cartridge mappings used for path rewriting",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			mappings, err := cartridge.FromConfig(cfg)
			if err != nil {
				return fmt.Errorf("resolve cartridges: %w", err)
			}

			views := make([]cartridgeView, 0, len(mappings))
			for _, m := range mappings {
				views = append(views, cartridgeView{Name: m.Name, Local: m.RelativePath(cfg.Project.Root), Src: m.Src})
			}
			if jsonOutput {
				return writeJSON(cmd, views)
			}

			out := cmd.OutOrStdout()
			if len(views) == 0 {
				fmt.Fprintf(out, "No cartridges found below %s\n", cfg.Project.Root)
				return nil
			}
			rows := make([][]string, 0, len(views))
			for _, v := range views {
				rows = append(rows, []string{v.Name, v.Local})
			}
			fmt.Fprintln(out, renderTable([]string{"Cartridge", "Local Path"}, rows, nil))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
