// Package config loads CLI configuration for confex. Values merge from
// defaults, an optional confex.yaml, CONFEX_-prefixed environment variables
// and command-line flags, in rising precedence.
package config

import (
	"time"
)

// Config holds all CLI configuration options.
type Config struct {
	// RepoRoot is the config repository the indexes are built from.
	RepoRoot string `koanf:"repo_root"`
	// ProductionDir is the compiled config tree, relative to RepoRoot.
	ProductionDir string `koanf:"production_dir"`
	// SourceExt is the authoring-language extension for derived file paths.
	SourceExt string `koanf:"source_ext"`
	// GitTimeout bounds each authorship lookup.
	GitTimeout time.Duration `koanf:"git_timeout"`
	// ExcludeCommits is the default commit-message pattern excluded from
	// authorship lookups.
	ExcludeCommits string `koanf:"exclude_commits"`
	// OutputFormat selects the renderer mode (auto, text, markdown, json).
	OutputFormat string `koanf:"output"`
	// Verbose enables debug logging.
	Verbose bool `koanf:"verbose"`

	// ConfigFileUsed is the file the values were loaded from, if any.
	ConfigFileUsed string `koanf:"-"`
}

// DefaultOutput auto-detects the renderer mode: TTY=text, non-TTY=markdown.
const DefaultOutput = "auto"
