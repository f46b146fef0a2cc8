// Package config holds the feature-repository layout shared across confex.
package config

import "time"

// Default configuration values.
const (
	// DefaultProductionDir is the compiled-config tree under the repo root.
	DefaultProductionDir = "production"

	// DefaultSourceExt is the authoring-language extension used when
	// deriving source file paths from config names.
	DefaultSourceExt = ".py"

	// DefaultGitTimeout bounds a single git log lookup.
	DefaultGitTimeout = 10 * time.Second
)

// Config families, named after their directories under the production tree.
const (
	FamilyGroupBys = "group_bys"
	FamilyJoins    = "joins"
)

// KnownRepoNames are the repository basenames this tool has historically
// lived alongside. Root inference logs a debug note when the chosen root is
// named something else.
var KnownRepoNames = []string{"chronon", "zipline"}

// IsKnownRepo reports whether base matches one of the known repository
// basenames.
func IsKnownRepo(base string) bool {
	for _, name := range KnownRepoNames {
		if base == name {
			return true
		}
	}
	return false
}
