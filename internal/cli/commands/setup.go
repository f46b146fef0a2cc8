package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/confex-labs/confex/internal/cli/config"
	"github.com/confex-labs/confex/internal/cli/output"
	"github.com/confex-labs/confex/internal/explorer"
	"github.com/confex-labs/confex/internal/report"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Explorer *explorer.Explorer
	Renderer *output.Renderer
}

// NewCommandContext builds the shared dependencies for a command that
// indexes the repository. The production tree is validated here so every
// indexing command fails the same way on a wrong root; Build still has to
// be called before the indexes hold anything.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg := getConfig(cmd)
	logger := config.GetLogger(cmd.Context())

	if err := cfg.ValidateLayout(); err != nil {
		return nil, err
	}

	exp := explorer.New(explorer.Config{
		RepoRoot:       cfg.RepoRoot,
		ProductionDir:  cfg.ProductionDir,
		SourceExt:      cfg.SourceExt,
		GitTimeout:     cfg.GitTimeout,
		ExcludeCommits: cfg.ExcludeCommits,
		Logger:         logger,
	})

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Explorer: exp,
		Renderer: newRenderer(cmd, cfg),
	}, nil
}

// NewCommandContextWithoutIndex builds the shared dependencies for commands
// that never touch the production tree.
func NewCommandContextWithoutIndex(cmd *cobra.Command) *CommandContext {
	cfg := getConfig(cmd)
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: newRenderer(cmd, cfg),
	}
}

// RunReportContext assembles the services a report run needs.
func (c *CommandContext) RunReportContext(cmd *cobra.Command) report.RunContext {
	return report.RunContext{
		Context:  cmd.Context(),
		GroupBys: c.Explorer.GroupBys(),
		Joins:    c.Explorer.Joins(),
		Builder:  c.Explorer.Builder(),
		Resolver: c.Explorer.Resolver(),
		Renderer: c.Renderer,
		Logger:   c.Logger,
	}
}

func newRenderer(cmd *cobra.Command, cfg *config.Config) *output.Renderer {
	return output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))
}

// getConfig returns the loaded configuration, falling back to a fresh load
// when the command runs outside the root command's PersistentPreRunE.
func getConfig(cmd *cobra.Command) *config.Config {
	if cfg := config.GetConfig(cmd.Context()); cfg != nil {
		return cfg
	}
	cfg, err := config.Load("", cmd.Flags())
	if err != nil {
		return &config.Config{OutputFormat: config.DefaultOutput}
	}
	return cfg
}
