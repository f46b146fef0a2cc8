package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/confex-labs/confex/internal/cli/output"
	"github.com/confex-labs/confex/internal/dag"
)

// NewDAGCommand creates the dag command.
func NewDAGCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dag [config]",
		Short: "Show the config lineage graph",
		Long: `Display the producer/consumer lineage graph of the indexed configs.

Configs are grouped by level: level 0 holds the group-bys (and anything
else nothing depends on), later levels hold the joins that consume them.
With a config name the view narrows to that config's upstream and
downstream neighborhood.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format (agent-friendly)`,
		Example: `  # Show the full lineage graph
  confex dag

  # Focus on one config's neighborhood
  confex dag search.clicks.v1

  # Output as JSON
  confex dag --output json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			focus := ""
			if len(args) > 0 {
				focus = args[0]
			}
			return runDAG(cmd, focus)
		},
	}

	return cmd
}

func runDAG(cmd *cobra.Command, focus string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	if err := cmdCtx.Explorer.Build(cmd.Context()); err != nil {
		return err
	}

	graph := cmdCtx.Explorer.Graph()
	r := cmdCtx.Renderer

	if focus != "" {
		if _, ok := graph.Node(focus); !ok {
			return fmt.Errorf("config %q is not in the lineage graph", focus)
		}
		ids := append(graph.Upstream(focus), focus)
		ids = append(ids, graph.Downstream(focus)...)
		graph = graph.Subgraph(ids)
	}

	levels, err := graph.Levels()
	if err != nil {
		return err
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return dagJSON(r, graph, levels)
	case output.ModeMarkdown:
		return dagMarkdown(r, graph, levels, focus)
	default:
		return dagText(r, graph, levels, focus)
	}
}

// dagText outputs the graph in styled text format.
func dagText(r *output.Renderer, graph *dag.Graph, levels [][]string, focus string) error {
	styles := r.Styles()

	r.Header(1, dagTitle(focus))

	for i, level := range levels {
		r.Println(styles.Header2.Render(fmt.Sprintf("Level %d:", i)))
		for _, name := range level {
			parents := graph.Parents(name)
			children := graph.Children(name)

			r.Printf("  %s\n", styles.ConfName.Render(name))
			if len(parents) > 0 {
				r.Printf("    %s %s\n", styles.Muted.Render("depends on:"), strings.Join(parents, ", "))
			}
			if len(children) > 0 {
				r.Printf("    %s %s\n", styles.Muted.Render("used by:"), strings.Join(children, ", "))
			}
		}
		r.Println("")
	}

	r.Println(styles.Muted.Render(fmt.Sprintf("Total: %d configs, %d links", graph.NodeCount(), graph.EdgeCount())))

	return nil
}

// dagMarkdown outputs the graph in markdown format.
func dagMarkdown(r *output.Renderer, graph *dag.Graph, levels [][]string, focus string) error {
	r.Println(output.FormatHeader(1, dagTitle(focus)))
	r.Println("")

	for i, level := range levels {
		levelName := fmt.Sprintf("Level %d", i)
		if i == 0 {
			levelName = "Level 0 (Producers)"
		}
		r.Println(output.FormatHeader(2, levelName))

		for _, name := range level {
			parents := graph.Parents(name)
			children := graph.Children(name)

			r.Printf("- %s\n", name)
			if len(parents) > 0 {
				r.Printf("  - depends on: %s\n", strings.Join(parents, ", "))
			}
			if len(children) > 0 {
				r.Printf("  - used by: %s\n", strings.Join(children, ", "))
			}
		}
		r.Println("")
	}

	r.Println(output.FormatHeader(2, "Summary"))
	r.Println(output.FormatKeyValue("Total Configs", fmt.Sprintf("%d", graph.NodeCount())))
	r.Println(output.FormatKeyValue("Total Links", fmt.Sprintf("%d", graph.EdgeCount())))

	return nil
}

// dagJSON outputs the graph in JSON format.
func dagJSON(r *output.Renderer, graph *dag.Graph, levels [][]string) error {
	type dagNode struct {
		Name      string   `json:"name"`
		Family    string   `json:"family,omitempty"`
		DependsOn []string `json:"depends_on,omitempty"`
		UsedBy    []string `json:"used_by,omitempty"`
	}
	type dagLevel struct {
		Level   int       `json:"level"`
		Configs []dagNode `json:"configs"`
	}

	result := struct {
		Levels       []dagLevel `json:"levels"`
		TotalConfigs int        `json:"total_configs"`
		TotalLinks   int        `json:"total_links"`
	}{
		Levels:       make([]dagLevel, 0, len(levels)),
		TotalConfigs: graph.NodeCount(),
		TotalLinks:   graph.EdgeCount(),
	}

	for i, level := range levels {
		l := dagLevel{Level: i, Configs: make([]dagNode, 0, len(level))}
		for _, name := range level {
			family := ""
			if node, ok := graph.Node(name); ok && node.Entry != nil {
				family = node.Entry.Family
			}
			l.Configs = append(l.Configs, dagNode{
				Name:      name,
				Family:    family,
				DependsOn: graph.Parents(name),
				UsedBy:    graph.Children(name),
			})
		}
		result.Levels = append(result.Levels, l)
	}

	enc := json.NewEncoder(r.Writer())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func dagTitle(focus string) string {
	if focus == "" {
		return "Lineage Graph"
	}
	return "Lineage: " + focus
}
