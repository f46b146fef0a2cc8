package explorer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confex-labs/confex/internal/config"
	"github.com/confex-labs/confex/internal/index"
	"github.com/confex-labs/confex/internal/testutil"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestBuildIndexesBothFamilies(t *testing.T) {
	root := writeTree(t, map[string]string{
		"production/group_bys/search/clicks.v1": `{
			"metaData": {"name": "search.clicks.v1", "online": 1},
			"sources": [{"events": {"table": "db.clicks"}}],
			"keyColumns": ["user_id"]
		}`,
		"production/group_bys/ads/spend.v1": `{
			"metaData": {"name": "ads.spend.v1"},
			"sources": [{"entities": {"snapshotTable": "db.spend_snapshot"}}]
		}`,
		"production/joins/search/ranker.v1": `{
			"metaData": {"name": "search.ranker.v1"},
			"left": {"events": {"table": "db.queries"}},
			"joinParts": [{"groupBy": {
				"metaData": {"name": "search.clicks.v1", "online": 1},
				"sources": [{"events": {"table": "db.clicks"}}],
				"keyColumns": ["user_id"]
			}}]
		}`,
	})

	e := New(Config{RepoRoot: root, Logger: testutil.NewTestLogger(t)})
	require.NoError(t, e.Build(context.Background()))

	assert.Equal(t, 2, e.GroupBys().Len())
	assert.Equal(t, 1, e.Joins().Len())

	clicks, ok := e.GroupBys().Get("search.clicks.v1")
	require.True(t, ok)
	assert.Equal(t, []string{"search.ranker.v1"}, clicks.Strings(index.ColJoins))

	// The inline copy embedded in the join replaced the standalone entry.
	assert.Equal(t, 1, e.LineageStats().InlineAdded)
	assert.Equal(t, 1, e.LineageStats().Links)

	graph := e.Graph()
	assert.Equal(t, 3, graph.NodeCount())
	assert.Equal(t, 1, graph.EdgeCount())
	assert.Equal(t, []string{"search.clicks.v1"}, graph.Parents("search.ranker.v1"))

	gbResult, joinResult := e.BuildResults()
	require.NotNil(t, gbResult)
	require.NotNil(t, joinResult)
	assert.Equal(t, 2, gbResult.Indexed)
	assert.Equal(t, 1, joinResult.Indexed)
}

func TestBuildMissingProductionTree(t *testing.T) {
	e := New(Config{RepoRoot: t.TempDir()})

	err := e.Build(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.FamilyGroupBys)
}

func TestBuildHonorsCancellation(t *testing.T) {
	root := writeTree(t, map[string]string{
		"production/group_bys/search/clicks.v1": `{"metaData": {"name": "search.clicks.v1"}}`,
		"production/joins/search/ranker.v1":     `{"metaData": {"name": "search.ranker.v1"}}`,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := New(Config{RepoRoot: root})
	assert.ErrorIs(t, e.Build(ctx), context.Canceled)
}

func TestFamilyLookup(t *testing.T) {
	e := New(Config{RepoRoot: t.TempDir()})

	table, ok := e.Family(config.FamilyGroupBys)
	require.True(t, ok)
	assert.Equal(t, config.FamilyGroupBys, table.Family())

	table, ok = e.Family(config.FamilyJoins)
	require.True(t, ok)
	assert.Equal(t, config.FamilyJoins, table.Family())

	_, ok = e.Family("staging_queries")
	assert.False(t, ok)
}
