// Package explorer wires the indexing pipeline together. One Explorer
// builds both config family indexes from a repository's production tree,
// cross-links them with lineage, and hands out the shared services the
// commands run against.
package explorer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/confex-labs/confex/internal/config"
	"github.com/confex-labs/confex/internal/dag"
	"github.com/confex-labs/confex/internal/gitlog"
	"github.com/confex-labs/confex/internal/index"
	"github.com/confex-labs/confex/internal/lineage"
)

// Explorer owns the built indexes and shared services for one repository.
type Explorer struct {
	repoRoot string
	exclude  string
	logger   *slog.Logger

	builder  *index.EntryBuilder
	resolver *gitlog.Resolver

	groupBys *index.Table
	joins    *index.Table
	graph    *dag.Graph

	groupByResult *index.BuildResult
	joinResult    *index.BuildResult
	lineageStats  lineage.Stats
}

// Config holds explorer configuration.
type Config struct {
	// RepoRoot is the repository holding the production tree.
	RepoRoot string
	// ProductionDir is the compiled config tree relative to the root.
	ProductionDir string
	// SourceExt is the authoring-language extension for derived file paths.
	SourceExt string
	// GitTimeout bounds each authorship lookup.
	GitTimeout time.Duration
	// ExcludeCommits is the default commit-message pattern excluded from
	// authorship lookups.
	ExcludeCommits string
	// Logger is the structured logger (optional, discards if nil).
	Logger *slog.Logger
}

// New creates an explorer. Indexes are empty until Build runs.
func New(cfg Config) *Explorer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	builder := index.NewEntryBuilder(index.EntryBuilderConfig{
		Root:          cfg.RepoRoot,
		ProductionDir: cfg.ProductionDir,
		SourceExt:     cfg.SourceExt,
		Logger:        logger,
	})
	resolver := gitlog.NewResolver(gitlog.ResolverConfig{
		Root:    cfg.RepoRoot,
		Timeout: cfg.GitTimeout,
		Logger:  logger,
	})

	return &Explorer{
		repoRoot: cfg.RepoRoot,
		exclude:  cfg.ExcludeCommits,
		logger:   logger,
		builder:  builder,
		resolver: resolver,
		groupBys: index.NewTable(config.FamilyGroupBys),
		joins:    index.NewTable(config.FamilyJoins),
		graph:    dag.New(),
	}
}

// Build indexes both config families, enriches the group-bys with lineage
// and assembles the producer-consumer graph.
func (e *Explorer) Build(ctx context.Context) error {
	e.logger.Debug("building config indexes", "root", e.repoRoot)

	groupBys, err := index.Build(index.BuildOptions{
		Spec:    index.GroupBySpec,
		Builder: e.builder,
		Logger:  e.logger,
	})
	if err != nil {
		return fmt.Errorf("indexing %s: %w", config.FamilyGroupBys, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	joins, err := index.Build(index.BuildOptions{
		Spec:    index.JoinSpec,
		Builder: e.builder,
		Logger:  e.logger,
	})
	if err != nil {
		return fmt.Errorf("indexing %s: %w", config.FamilyJoins, err)
	}

	e.lineageStats = lineage.Enrich(groupBys.Table, joins.Table, e.builder, e.logger)

	e.groupByResult = groupBys
	e.joinResult = joins
	e.groupBys = groupBys.Table
	e.joins = joins.Table
	e.graph = dag.FromIndexes(e.groupBys, e.joins)
	return nil
}

// Root returns the repository root the explorer indexes.
func (e *Explorer) Root() string {
	return e.repoRoot
}

// ExcludeCommits returns the configured default exclude pattern for
// authorship lookups.
func (e *Explorer) ExcludeCommits() string {
	return e.exclude
}

// GroupBys returns the group-by index.
func (e *Explorer) GroupBys() *index.Table {
	return e.groupBys
}

// Joins returns the join index.
func (e *Explorer) Joins() *index.Table {
	return e.joins
}

// Family returns the index for a family name.
func (e *Explorer) Family(name string) (*index.Table, bool) {
	switch name {
	case config.FamilyGroupBys:
		return e.groupBys, true
	case config.FamilyJoins:
		return e.joins, true
	default:
		return nil, false
	}
}

// Graph returns the lineage graph assembled by Build.
func (e *Explorer) Graph() *dag.Graph {
	return e.graph
}

// Resolver returns the shared authorship resolver.
func (e *Explorer) Resolver() *gitlog.Resolver {
	return e.resolver
}

// Builder returns the entry builder bound to the repository.
func (e *Explorer) Builder() *index.EntryBuilder {
	return e.builder
}

// BuildResults returns the per-family build statistics from the last Build.
func (e *Explorer) BuildResults() (groupBys, joins *index.BuildResult) {
	return e.groupByResult, e.joinResult
}

// LineageStats returns the enrichment statistics from the last Build.
func (e *Explorer) LineageStats() lineage.Stats {
	return e.lineageStats
}
