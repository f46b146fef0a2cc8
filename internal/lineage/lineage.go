package lineage

import (
	"log/slog"

	"github.com/confex-labs/confex/internal/index"
)

// Stats summarizes what one enrichment pass did.
type Stats struct {
	// InlineAdded counts inline group-by documents promoted into the index.
	InlineAdded int
	// InlineSkipped counts inline documents without a usable name.
	InlineSkipped int
	// Links counts group-by to join references recorded.
	Links int
}

// Enrich mutates the group-by table in place using the join table.
//
// First every inline group-by document found in a join is indexed through
// the regular group-by spec; an inline definition under an already-indexed
// name replaces the standalone entry, since the join's copy is the one
// actually deployed. Then each group-by gets joins and join_event_driver
// columns: the names of the joins that reference it, in join-name order,
// and for each referencing join with an event-driven left side, that join's
// driver table.
func Enrich(groupBys, joins *index.Table, builder *index.EntryBuilder, logger *slog.Logger) Stats {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	var stats Stats

	for _, join := range joins.All() {
		for _, doc := range join.Values(index.ColInlineGroupBys) {
			entry := builder.BuildDoc(index.GroupBySpec, doc)
			if entry == nil {
				logger.Warn("skipping unnamed inline group-by", "join", join.Name())
				stats.InlineSkipped++
				continue
			}
			groupBys.Insert(entry)
			stats.InlineAdded++
		}
	}

	for _, gb := range groupBys.All() {
		gb.Set(index.ColJoins, nil)
		gb.Set(index.ColJoinEventDriver, nil)
	}

	for _, join := range joins.All() {
		for _, gbName := range join.Strings(index.ColGroupBys) {
			gb, ok := groupBys.Get(gbName)
			if !ok {
				continue
			}
			gb.Append(index.ColJoins, join.Name())
			if driver, ok := join.First(index.ColEventsDriver); ok {
				gb.Append(index.ColJoinEventDriver, driver)
			}
			stats.Links++
		}
	}

	logger.Debug("lineage enriched",
		"inline_added", stats.InlineAdded,
		"inline_skipped", stats.InlineSkipped,
		"links", stats.Links)

	return stats
}
