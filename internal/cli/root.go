// Package cli provides the command-line interface for Confex.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/confex-labs/confex/internal/cli/commands"
	"github.com/confex-labs/confex/internal/cli/config"
	intconfig "github.com/confex-labs/confex/internal/config"
	"github.com/confex-labs/confex/internal/report"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "confex [report|keyword] [param=value...]",
		Short: "Confex - Chronon feature config explorer",
		Long: `Confex indexes the compiled feature configs of a Chronon repository and
answers questions about them: which group-bys touch a table or column, which
joins consume them, and who to talk to about each one.

Run it with a keyword to search the group-by index, with a report name to run
that report, or use the subcommands for lineage, listing and browsing.`,
		Example: `  # Find every group-by touching a column
  confex user_id

  # Run a report
  confex events-without-topics output_file=~/events.tsv

  # Explicit subcommands
  confex list --family joins
  confex dag search.clicks.v1`,
		Version: Version,
		Args:    cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			level := slog.LevelWarn
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: level,
			}))

			ctx := context.WithValue(cmd.Context(), config.ConfigKey(), cfg)
			ctx = context.WithValue(ctx, config.LoggerKey(), logger)
			cmd.SetContext(ctx)

			if cfg.Verbose && cfg.ConfigFileUsed != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Using config file: %s\n", cfg.ConfigFileUsed)
			}
			if cfg.ConfigFileUsed == "" && !intconfig.IsKnownRepo(filepath.Base(cfg.RepoRoot)) {
				logger.Debug("repo root is not a recognized config repository",
					"root", cfg.RepoRoot)
			}

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_ = cmd.Help()
				return fmt.Errorf("expected a report name or search keyword")
			}
			if rep, ok := report.Default().Get(args[0]); ok {
				return commands.RunReport(cmd, rep, args[1:])
			}
			if len(args) > 1 {
				return fmt.Errorf("expected a report name or a single search keyword, got %d arguments", len(args))
			}
			return commands.RunSearch(cmd, args[0], "")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set version template
	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
Feature config explorer for Chronon repositories
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: <repo-root>/confex.yaml)")
	rootCmd.PersistentFlags().StringP("repo-root", "C", "", "Chronon repository root (default: discovered upward from the working directory)")
	rootCmd.PersistentFlags().String("production-dir", "", `compiled config directory under the repo root (default "production")`)
	rootCmd.PersistentFlags().String("source-ext", "", `authoring source file extension (default ".py")`)
	rootCmd.PersistentFlags().Duration("git-timeout", 0, "timeout per git authorship lookup (default 10s)")
	rootCmd.PersistentFlags().String("exclude-commits", "", "skip commits whose message matches this pattern when attributing authors")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (auto|text|markdown|json)")

	// Register completion for output flag
	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "text", "markdown", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewSearchCommand())
	rootCmd.AddCommand(commands.NewReportCommand())
	rootCmd.AddCommand(commands.NewListCommand())
	rootCmd.AddCommand(commands.NewDAGCommand())
	rootCmd.AddCommand(commands.NewUICommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for Confex.

To load completions:

Bash:
  $ source <(confex completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ confex completion bash > /etc/bash_completion.d/confex
  # macOS:
  $ confex completion bash > $(brew --prefix)/etc/bash_completion.d/confex

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ confex completion zsh > "${fpath[1]}/_confex"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ confex completion fish | source

  # To load completions for each session, execute once:
  $ confex completion fish > ~/.config/fish/completions/confex.fish

PowerShell:
  PS> confex completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> confex completion powershell > confex.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
	return cmd
}
