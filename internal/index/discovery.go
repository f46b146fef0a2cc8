package index

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// BuildOptions configures a family index build.
type BuildOptions struct {
	// Spec selects the family directory and the columns to extract.
	Spec Spec
	// Builder resolves documents into entries. Required.
	Builder *EntryBuilder
	Logger  *slog.Logger
}

// BuildError records a config file that could not be indexed.
type BuildError struct {
	Path    string
	Message string
}

// BuildResult contains the table and statistics for one family build.
type BuildResult struct {
	Table *Table

	// Total counts every regular file visited, Indexed the entries that
	// made it into the table, Skipped the files parsed but unnamed.
	Total   int
	Indexed int
	Skipped int

	// Errors collects non-fatal per-file problems.
	Errors []BuildError
}

// HasErrors reports whether any file failed to index.
func (r *BuildResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// Summary returns a one-line account of the build.
func (r *BuildResult) Summary() string {
	return fmt.Sprintf("%s: %d total (%d indexed, %d skipped, %d errored)",
		r.Table.Family(), r.Total, r.Indexed, r.Skipped, len(r.Errors))
}

// Build walks the family directory under the production tree and indexes
// every regular file it finds. Unparseable or unnamed configs are recorded
// and skipped rather than failing the walk; only a missing or unreadable
// family directory is a build error.
func Build(opts BuildOptions) (*BuildResult, error) {
	if opts.Builder == nil {
		return nil, errors.New("index: BuildOptions.Builder is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	dir := opts.Builder.FamilyDir(opts.Spec.Family)
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("family directory %s: %w", dir, err)
	}

	logger.Debug("indexing family", "family", opts.Spec.Family, "dir", dir)

	result := &BuildResult{Table: NewTable(opts.Spec.Family)}
	err := filepath.Walk(dir, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			result.Errors = append(result.Errors, BuildError{Path: path, Message: walkErr.Error()})
			return nil
		}
		if info.IsDir() {
			return nil
		}
		result.Total++

		entry, err := opts.Builder.BuildFile(opts.Spec, path)
		if err != nil {
			logger.Debug("config index error", "path", path, "error", err.Error())
			result.Errors = append(result.Errors, BuildError{Path: path, Message: err.Error()})
			return nil
		}
		if entry == nil {
			logger.Debug("skipping unnamed config", "path", path)
			result.Skipped++
			return nil
		}

		result.Table.Insert(entry)
		result.Indexed++
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("family indexed",
		"family", opts.Spec.Family,
		"total", result.Total,
		"indexed", result.Indexed,
		"skipped", result.Skipped,
		"errors", len(result.Errors))

	return result, nil
}
