package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/confex-labs/confex/internal/index"
	"github.com/confex-labs/confex/internal/tui"
)

// NewUICommand creates the ui command.
func NewUICommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Browse indexed configs interactively",
		Long: `Open an interactive browser over the indexed configs.

Type / to filter by name, enter to inspect every indexed column of the
selected config, esc to go back and q to quit.`,
		Example: `  # Browse both families
  confex ui

  # Browse only group-bys
  confex ui --family group_bys`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			family, _ := cmd.Flags().GetString("family")
			return runUI(cmd, family)
		},
	}

	addFamilyFlag(cmd, "all")
	return cmd
}

func runUI(cmd *cobra.Command, family string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	families, err := searchTables(family)
	if err != nil {
		return err
	}
	if err := cmdCtx.Explorer.Build(cmd.Context()); err != nil {
		return err
	}

	var entries []*index.Entry
	for _, name := range families {
		tbl, _ := cmdCtx.Explorer.Family(name)
		entries = append(entries, tbl.All()...)
	}
	if len(entries) == 0 {
		cmdCtx.Renderer.Muted("no configs indexed")
		return nil
	}

	cmdCtx.Logger.Debug("starting browse ui", "configs", len(entries))
	return tui.Browse(tui.Config{
		Entries: entries,
		Title:   fmt.Sprintf("Configs (%d)", len(entries)),
	})
}
