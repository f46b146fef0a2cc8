package search

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confex-labs/confex/internal/index"
)

func buildEntry(t *testing.T, b *index.EntryBuilder, raw string) *index.Entry {
	t.Helper()
	var doc any
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	e := b.BuildDoc(index.GroupBySpec, doc)
	require.NotNil(t, e)
	return e
}

func TestMatches(t *testing.T) {
	b := index.NewEntryBuilder(index.EntryBuilderConfig{Root: t.TempDir()})
	e := buildEntry(t, b, `{
		"metaData": {"name": "search.user_features.v1"},
		"keyColumns": ["user_id"],
		"aggregations": [{"inputColumn": "price"}],
		"sources": [{"events": {"table": "db.purchases", "topic": "purchase_events"}}]
	}`)

	tests := []struct {
		name   string
		target string
		want   bool
	}{
		{name: "key column", target: "user_id", want: true},
		{name: "aggregation input", target: "price", want: true},
		{name: "source table", target: "purchases", want: true},
		{name: "config name substring", target: "features", want: true},
		{name: "no match", target: "revenue", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(e, tt.target))
		})
	}
}

func TestMatchesIgnoresInternalColumns(t *testing.T) {
	b := index.NewEntryBuilder(index.EntryBuilderConfig{Root: t.TempDir()})
	e := buildEntry(t, b, `{
		"metaData": {"name": "team.cfg.v1"},
		"sources": [{"entities": {"topic": "mutations_feed"}}]
	}`)
	// The topic lands in sources (searchable) but the event-only plumbing
	// columns stay empty; a value visible only there must not match.
	e.Set(index.ColEventTables, []any{"hidden.table"})

	assert.False(t, Matches(e, "hidden"))
	assert.True(t, Matches(e, "mutations"))
}

func TestMatchesJoinColumn(t *testing.T) {
	b := index.NewEntryBuilder(index.EntryBuilderConfig{Root: t.TempDir()})
	e := buildEntry(t, b, `{"metaData": {"name": "team.cfg.v1"}}`)
	e.Set(index.ColJoins, []any{"search.ranker.v1"})

	assert.True(t, Matches(e, "ranker"))
}

func TestFind(t *testing.T) {
	b := index.NewEntryBuilder(index.EntryBuilderConfig{Root: t.TempDir()})
	tbl := index.NewTable("group_bys")
	tbl.Insert(buildEntry(t, b, `{"metaData": {"name": "z.prices.v1"}, "keyColumns": ["item_id"]}`))
	tbl.Insert(buildEntry(t, b, `{"metaData": {"name": "a.clicks.v1"}, "keyColumns": ["item_id"]}`))
	tbl.Insert(buildEntry(t, b, `{"metaData": {"name": "m.other.v1"}, "keyColumns": ["session"]}`))

	found := Find(tbl, "item_id")
	require.Len(t, found, 2)
	assert.Equal(t, "a.clicks.v1", found[0].Name())
	assert.Equal(t, "z.prices.v1", found[1].Name())

	assert.Empty(t, Find(tbl, "missing"))
}
