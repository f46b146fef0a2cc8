package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/confex-labs/confex/internal/cli/output"
	"github.com/confex-labs/confex/internal/report"
)

// NewReportCommand creates the report command.
func NewReportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [name] [param=value...]",
		Short: "Run a registered report over the indexes",
		Long: `Run one of the registered reports over the built config indexes.

Without arguments the registered reports are listed with the parameters
they accept. Parameters are passed as param=value pairs after the report
name.`,
		Example: `  # List available reports
  confex report

  # Run a report to stdout
  confex report events-without-topics

  # Write the rows to a file, skipping automated commits
  confex report events-without-topics output_file=~/events.tsv exclude_commit_message=backfill`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return listReports(cmd)
			}
			rep, ok := report.Default().Get(args[0])
			if !ok {
				return fmt.Errorf("unknown report %q (run \"confex report\" for the list)", args[0])
			}
			return RunReport(cmd, rep, args[1:])
		},
	}
	return cmd
}

// RunReport validates the parameters, builds the indexes and runs the
// report. The root command routes registered report names here directly.
func RunReport(cmd *cobra.Command, rep *report.Report, args []string) error {
	params, err := rep.ParseParams(args)
	if err != nil {
		return err
	}

	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	if err := cmdCtx.Explorer.Build(cmd.Context()); err != nil {
		return err
	}

	// The configured exclude pattern fills in when the invocation did not
	// pass its own.
	if rep.Accepts(report.ParamExcludeCommitMessage) {
		if _, ok := params[report.ParamExcludeCommitMessage]; !ok && cmdCtx.Cfg.ExcludeCommits != "" {
			params[report.ParamExcludeCommitMessage] = cmdCtx.Cfg.ExcludeCommits
		}
	}

	cmdCtx.Logger.Debug("running report", "report", rep.Name, "params", len(params))
	return rep.Run(cmdCtx.RunReportContext(cmd), params)
}

func listReports(cmd *cobra.Command) error {
	cmdCtx := NewCommandContextWithoutIndex(cmd)
	r := cmdCtx.Renderer
	reg := report.Default()

	if r.EffectiveMode() == output.ModeJSON {
		return listReportsJSON(r, reg)
	}

	r.Header(1, "Reports")
	for _, name := range reg.Names() {
		rep, _ := reg.Get(name)
		r.Println("")
		title := name
		if len(rep.Aliases) > 0 {
			title += " (" + strings.Join(rep.Aliases, ", ") + ")"
		}
		r.Println(r.Styles().ConfName.Render(title))
		r.Println("  " + rep.Summary)
		for _, p := range rep.Params {
			r.Printf("  %s - %s\n", r.Styles().Label.Render(p.Key), p.Description)
		}
	}
	return nil
}

func listReportsJSON(r *output.Renderer, reg *report.Registry) error {
	type paramInfo struct {
		Key         string `json:"key"`
		Description string `json:"description"`
	}
	type reportInfo struct {
		Name    string      `json:"name"`
		Aliases []string    `json:"aliases,omitempty"`
		Summary string      `json:"summary"`
		Params  []paramInfo `json:"params,omitempty"`
	}

	reports := make([]reportInfo, 0, len(reg.Names()))
	for _, name := range reg.Names() {
		rep, _ := reg.Get(name)
		info := reportInfo{Name: rep.Name, Aliases: rep.Aliases, Summary: rep.Summary}
		for _, p := range rep.Params {
			info.Params = append(info.Params, paramInfo{Key: p.Key, Description: p.Description})
		}
		reports = append(reports, info)
	}

	enc := json.NewEncoder(r.Writer())
	enc.SetIndent("", "  ")
	return enc.Encode(reports)
}
