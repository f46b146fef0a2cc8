package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	intconfig "github.com/confex-labs/confex/internal/config"
)

// Context keys for values the root command stores for its subcommands.
// The commands package retrieves them via the accessors below, which avoids
// an import cycle with the cli package.
type (
	loggerKey struct{}
	configKey struct{}
)

// maxUpwardSearchLevels limits how far up the directory tree to search for
// the repository root.
const maxUpwardSearchLevels = 10

// configFileNames are the config files recognized in a repository root.
var configFileNames = []string{"confex.yaml", "confex.yml"}

func looksLikeRepoRoot(dir string) bool {
	for _, name := range configFileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	if info, err := os.Stat(filepath.Join(dir, intconfig.DefaultProductionDir)); err == nil && info.IsDir() {
		return true
	}
	return false
}

// findRepoRootUpward searches upward from startDir for a directory holding a
// confex config file or a production tree. Returns empty when none is found
// within maxUpwardSearchLevels.
func findRepoRootUpward(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		if looksLikeRepoRoot(dir) {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// inferRepoRoot determines the repository root from CLI flags and the
// filesystem.
// Priority:
//  1. Explicit -C/--repo-root flag
//  2. Search upward from CWD for confex.yaml or a production/ tree
//  3. Current working directory
func inferRepoRoot(flags *pflag.FlagSet) string {
	if flags != nil && flags.Changed("repo-root") {
		if root, _ := flags.GetString("repo-root"); root != "" {
			if abs, err := filepath.Abs(root); err == nil {
				return abs
			}
			return filepath.Clean(root)
		}
	}

	if cwd, err := os.Getwd(); err == nil {
		if root := findRepoRootUpward(cwd); root != "" {
			return root
		}
	}

	cwd, _ := os.Getwd()
	if cwd == "" {
		cwd = "."
	}
	return cwd
}

// Load loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	rootFromFlags := flags != nil && flags.Changed("repo-root")
	repoRoot := inferRepoRoot(flags)

	// 1. Defaults.
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"production_dir":  intconfig.DefaultProductionDir,
		"source_ext":      intconfig.DefaultSourceExt,
		"git_timeout":     intconfig.DefaultGitTimeout,
		"exclude_commits": "",
		"output":          DefaultOutput,
		"verbose":         false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file: an explicit path wins; otherwise the first config file
	// in the inferred root. An explicit path also anchors the root when no
	// -C flag says otherwise.
	if cfgFile != "" {
		if abs, err := filepath.Abs(cfgFile); err == nil {
			cfgFile = abs
		}
		if !rootFromFlags {
			repoRoot = filepath.Dir(cfgFile)
		}
	} else {
		for _, name := range configFileNames {
			candidate := filepath.Join(repoRoot, name)
			if _, err := os.Stat(candidate); err == nil {
				cfgFile = candidate
				break
			}
		}
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	}

	// 3. Environment variables: CONFEX_SOURCE_EXT -> source_ext.
	if err := k.Load(env.Provider("CONFEX_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "CONFEX_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags, highest priority. Only explicitly set flags load, with
	// kebab-case names mapping onto snake_case config keys.
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if cfg.RepoRoot == "" {
		cfg.RepoRoot = repoRoot
	}
	if abs, err := filepath.Abs(cfg.RepoRoot); err == nil {
		cfg.RepoRoot = abs
	}
	cfg.ConfigFileUsed = cfgFile

	return &cfg, nil
}

// LoggerKey returns the context key the root command stores the logger under.
func LoggerKey() interface{} {
	return loggerKey{}
}

// ConfigKey returns the context key the root command stores the loaded
// config under.
func ConfigKey() interface{} {
	return configKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

// GetConfig retrieves the loaded config from the command context.
func GetConfig(ctx context.Context) *Config {
	if c, ok := ctx.Value(configKey{}).(*Config); ok {
		return c
	}
	return nil
}
