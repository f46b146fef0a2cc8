package lineage

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confex-labs/confex/internal/index"
	"github.com/confex-labs/confex/internal/testutil"
)

func buildEntry(t *testing.T, b *index.EntryBuilder, spec index.Spec, raw string) *index.Entry {
	t.Helper()
	var doc any
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	e := b.BuildDoc(spec, doc)
	require.NotNil(t, e)
	return e
}

func TestEnrichReverseLinks(t *testing.T) {
	b := index.NewEntryBuilder(index.EntryBuilderConfig{Root: t.TempDir()})

	groupBys := index.NewTable("group_bys")
	groupBys.Insert(buildEntry(t, b, index.GroupBySpec,
		`{"metaData": {"name": "search.user_features.v1"},
		  "sources": [{"events": {"table": "db.purchases"}}]}`))
	groupBys.Insert(buildEntry(t, b, index.GroupBySpec,
		`{"metaData": {"name": "ads.clicks.v1"}}`))

	joins := index.NewTable("joins")
	joins.Insert(buildEntry(t, b, index.JoinSpec,
		`{"metaData": {"name": "search.ranker.v1"},
		  "left": {"events": {"table": "db.queries"}},
		  "joinParts": [{"groupBy": {"metaData": {"name": "search.user_features.v1"}}}]}`))
	joins.Insert(buildEntry(t, b, index.JoinSpec,
		`{"metaData": {"name": "ads.bidder.v1"},
		  "left": {"entities": {"snapshotTable": "db.ads_snapshot"}},
		  "joinParts": [{"groupBy": {"metaData": {"name": "search.user_features.v1"}}}]}`))

	stats := Enrich(groupBys, joins, b, testutil.NewTestLogger(t))
	assert.Equal(t, 2, stats.Links)

	gb, _ := groupBys.Get("search.user_features.v1")
	// Join-name order: ads.bidder sorts before search.ranker.
	assert.Equal(t, []string{"ads.bidder.v1", "search.ranker.v1"}, gb.Joins())
	// Only the event-driven join contributes a driver table.
	assert.Equal(t, []string{"db.queries"}, gb.JoinEventDrivers())

	// Unreferenced group-bys still carry empty lineage columns.
	other, _ := groupBys.Get("ads.clicks.v1")
	assert.True(t, other.Has(index.ColJoins))
	assert.True(t, other.Has(index.ColJoinEventDriver))
	assert.Empty(t, other.Values(index.ColJoins))
}

func TestEnrichPromotesInlineGroupBys(t *testing.T) {
	b := index.NewEntryBuilder(index.EntryBuilderConfig{Root: t.TempDir()})

	groupBys := index.NewTable("group_bys")
	groupBys.Insert(buildEntry(t, b, index.GroupBySpec,
		`{"metaData": {"name": "search.user_features.v1"}, "keyColumns": ["old_key"]}`))

	joins := index.NewTable("joins")
	joins.Insert(buildEntry(t, b, index.JoinSpec,
		`{"metaData": {"name": "search.ranker.v1"},
		  "left": {"events": {"table": "db.queries"}},
		  "joinParts": [
			{"groupBy": {"metaData": {"name": "search.user_features.v1"}, "keyColumns": ["user_id"]}},
			{"groupBy": {"metaData": {"name": "search.session_features.v1"}}}
		  ]}`))

	stats := Enrich(groupBys, joins, b, nil)
	assert.Equal(t, 2, stats.InlineAdded)
	assert.Equal(t, 0, stats.InlineSkipped)
	assert.Equal(t, 2, groupBys.Len())

	// The join's inline copy replaces the standalone entry.
	gb, _ := groupBys.Get("search.user_features.v1")
	assert.Equal(t, []string{"user_id"}, gb.Strings(index.ColKeys))

	// A group-by known only from the join is now indexed and linked.
	inline, ok := groupBys.Get("search.session_features.v1")
	require.True(t, ok)
	assert.Equal(t, []string{"search.ranker.v1"}, inline.Strings(index.ColJoins))
}

func TestEnrichSkipsUnnamedInline(t *testing.T) {
	b := index.NewEntryBuilder(index.EntryBuilderConfig{Root: t.TempDir()})

	groupBys := index.NewTable("group_bys")
	joins := index.NewTable("joins")
	// rightParts carry the legacy schema with the name at the top level,
	// which the group-by spec cannot index. The reference it produced then
	// dangles and is ignored by the link pass.
	joins.Insert(buildEntry(t, b, index.JoinSpec,
		`{"metaData": {"name": "legacy.join.v0"},
		  "rightParts": [{"groupBy": {"name": "legacy.features.v0"}}]}`))

	stats := Enrich(groupBys, joins, b, nil)
	assert.Equal(t, 0, stats.InlineAdded)
	assert.Equal(t, 1, stats.InlineSkipped)
	assert.Equal(t, 0, stats.Links)
	assert.Equal(t, 0, groupBys.Len())
}
