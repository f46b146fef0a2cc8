package commands

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/confex-labs/confex/internal/cli/output"
	"github.com/confex-labs/confex/internal/index"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List indexed configs with their lineage",
		Long: `List every indexed config with its team, family, online flag, the
number of joins consuming it and the source file it was derived from.

Output adapts to environment:
  - Terminal: Styled table
  - Piped/Scripted: Markdown table (agent-friendly)

Use --output to override: auto, text, markdown, json`,
		Example: `  # List all configs
  confex list

  # List only joins
  confex list --family joins

  # List configs as JSON
  confex list --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			family, _ := cmd.Flags().GetString("family")
			return runList(cmd, family)
		},
	}

	addFamilyFlag(cmd, "all")
	return cmd
}

// listRow is one line of the list output.
type listRow struct {
	Name   string `json:"name"`
	Team   string `json:"team"`
	Family string `json:"family"`
	Online bool   `json:"online"`
	Joins  int    `json:"joins"`
	File   string `json:"file"`
}

func runList(cmd *cobra.Command, family string) error {
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

	var rows []listRow
	for _, name := range families {
		tbl, _ := cmdCtx.Explorer.Family(name)
		for _, e := range tbl.All() {
			rows = append(rows, listRow{
				Name:   e.Name(),
				Team:   teamOf(e.Name()),
				Family: e.Family,
				Online: len(e.Values(index.ColOnline)) > 0,
				Joins:  len(e.Joins()),
				File:   e.File,
			})
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })

	r := cmdCtx.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return listJSON(r, rows)
	case output.ModeMarkdown:
		return listTable(r, rows, true)
	default:
		return listTable(r, rows, false)
	}
}

// listTable renders the rows as a go-pretty table, styled on a terminal and
// as a markdown table when piped.
func listTable(r *output.Renderer, rows []listRow, markdown bool) error {
	r.Header(1, fmt.Sprintf("Configs (%d total)", len(rows)))

	if len(rows) == 0 {
		r.Muted("no configs indexed")
		return nil
	}

	titleCaser := cases.Title(language.English)

	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Name", "Team", "Family", "Online", "Joins", "File"})
	for _, row := range rows {
		t.AppendRow(table.Row{
			row.Name,
			row.Team,
			titleCaser.String(strings.ReplaceAll(row.Family, "_", " ")),
			strconv.FormatBool(row.Online),
			strconv.Itoa(row.Joins),
			row.File,
		})
	}

	if markdown {
		t.RenderMarkdown()
	} else {
		t.Render()
	}
	return nil
}

func listJSON(r *output.Renderer, rows []listRow) error {
	result := struct {
		Total   int       `json:"total"`
		Configs []listRow `json:"configs"`
	}{Total: len(rows), Configs: rows}
	if result.Configs == nil {
		result.Configs = []listRow{}
	}

	enc := json.NewEncoder(r.Writer())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// teamOf extracts the team segment from a dotted config name.
func teamOf(name string) string {
	team, _, ok := strings.Cut(name, ".")
	if !ok {
		return ""
	}
	return team
}
