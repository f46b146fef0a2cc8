package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/confex-labs/confex/internal/cli/output"
	intconfig "github.com/confex-labs/confex/internal/config"
	"github.com/confex-labs/confex/internal/index"
	"github.com/confex-labs/confex/internal/search"
)

// NewSearchCommand creates the search command.
func NewSearchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <keyword>",
		Short: "Search indexed configs for a keyword",
		Long: `Search the indexed config families for a keyword.

The keyword matches against names, sources, keys, aggregation inputs and
consuming joins. Each hit prints with its source file, latest git authorship
and every indexed column, oldest modification first.`,
		Example: `  # Find every group-by touching a table or column
  confex search user_id

  # Search join configs instead
  confex search driver_table --family joins

  # Search both families, machine-readable
  confex search user_id --family all --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			family, _ := cmd.Flags().GetString("family")
			return RunSearch(cmd, args[0], family)
		},
	}

	addFamilyFlag(cmd, intconfig.FamilyGroupBys)
	return cmd
}

// addFamilyFlag registers the --family selector with shell completion.
func addFamilyFlag(cmd *cobra.Command, def string) {
	cmd.Flags().String("family", def, "config family (group_bys|joins|all)")
	_ = cmd.RegisterFlagCompletionFunc("family", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{intconfig.FamilyGroupBys, intconfig.FamilyJoins, "all"}, cobra.ShellCompDirectiveNoFileComp
	})
}

// RunSearch indexes the repository and renders every config matching the
// keyword. The root command routes bare keywords here with the default
// family.
func RunSearch(cmd *cobra.Command, keyword, family string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	tables, err := searchTables(family)
	if err != nil {
		return err
	}
	if err := cmdCtx.Explorer.Build(cmd.Context()); err != nil {
		return err
	}

	var matches []*index.Entry
	for _, name := range tables {
		table, _ := cmdCtx.Explorer.Family(name)
		matches = append(matches, search.Find(table, keyword)...)
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return searchJSON(r, keyword, matches)
	}
	if len(matches) == 0 {
		r.Muted(fmt.Sprintf("no configs match %q", keyword))
		return nil
	}
	search.Display(cmd.Context(), r, cmdCtx.Explorer.Resolver(), matches, keyword, cmdCtx.Cfg.ExcludeCommits)
	return nil
}

// searchTables resolves the --family flag to the family names to search.
func searchTables(family string) ([]string, error) {
	switch family {
	case "", intconfig.FamilyGroupBys:
		return []string{intconfig.FamilyGroupBys}, nil
	case intconfig.FamilyJoins:
		return []string{intconfig.FamilyJoins}, nil
	case "all":
		return []string{intconfig.FamilyGroupBys, intconfig.FamilyJoins}, nil
	default:
		return nil, fmt.Errorf("unknown family %q (expected %s, %s or all)",
			family, intconfig.FamilyGroupBys, intconfig.FamilyJoins)
	}
}

func searchJSON(r *output.Renderer, keyword string, matches []*index.Entry) error {
	result := struct {
		Keyword string         `json:"keyword"`
		Total   int            `json:"total"`
		Matches []*index.Entry `json:"matches"`
	}{Keyword: keyword, Total: len(matches), Matches: matches}
	if result.Matches == nil {
		result.Matches = []*index.Entry{}
	}

	enc := json.NewEncoder(r.Writer())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
