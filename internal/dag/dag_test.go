package dag

import (
	"testing"

	"github.com/confex-labs/confex/internal/index"
)

func TestGraph_AddNodeAndEdge(t *testing.T) {
	g := New()

	g.AddNode("ads.spend.v1", nil)
	g.AddNode("ads.clicks.v1", nil)
	g.AddNode("ads.bidder.v1", nil)

	if g.NodeCount() != 3 {
		t.Errorf("expected 3 nodes, got %d", g.NodeCount())
	}

	if err := g.AddEdge("ads.spend.v1", "ads.bidder.v1"); err != nil {
		t.Errorf("failed to add edge: %v", err)
	}
	if err := g.AddEdge("ads.clicks.v1", "ads.bidder.v1"); err != nil {
		t.Errorf("failed to add edge: %v", err)
	}

	if g.EdgeCount() != 2 {
		t.Errorf("expected 2 edges, got %d", g.EdgeCount())
	}
}

func TestGraph_AddEdge_InvalidNodes(t *testing.T) {
	g := New()
	g.AddNode("a", nil)

	if err := g.AddEdge("a", "nonexistent"); err == nil {
		t.Error("expected error for missing consumer")
	}
	if err := g.AddEdge("nonexistent", "a"); err == nil {
		t.Error("expected error for missing producer")
	}
}

func TestGraph_AddEdge_SelfLoop(t *testing.T) {
	g := New()
	g.AddNode("a", nil)

	if err := g.AddEdge("a", "a"); err == nil {
		t.Error("expected error for self-loop")
	}
}

func TestGraph_ParentsAndChildren(t *testing.T) {
	g := New()
	g.AddNode("a", nil)
	g.AddNode("b", nil)
	g.AddNode("c", nil)

	g.AddEdge("a", "b")
	g.AddEdge("a", "c")
	g.AddEdge("b", "c")

	if parents := g.Parents("c"); len(parents) != 2 {
		t.Errorf("expected c to have 2 parents, got %d", len(parents))
	}
	if children := g.Children("a"); len(children) != 2 {
		t.Errorf("expected a to have 2 children, got %d", len(children))
	}
}

func TestGraph_HasCycle_NoCycle(t *testing.T) {
	g := New()
	g.AddNode("a", nil)
	g.AddNode("b", nil)
	g.AddNode("c", nil)

	g.AddEdge("a", "b")
	g.AddEdge("b", "c")

	if cyclic, path := g.HasCycle(); cyclic {
		t.Errorf("expected no cycle, but found: %v", path)
	}
}

func TestGraph_HasCycle_WithCycle(t *testing.T) {
	g := New()
	g.AddNode("a", nil)
	g.AddNode("b", nil)
	g.AddNode("c", nil)

	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	g.AddEdge("c", "a")

	cyclic, path := g.HasCycle()
	if !cyclic {
		t.Error("expected cycle to be detected")
	}
	if len(path) == 0 {
		t.Error("expected cycle path to be non-empty")
	}
}

func TestGraph_TopologicalSort_Simple(t *testing.T) {
	g := New()
	g.AddNode("a", nil)
	g.AddNode("b", nil)
	g.AddNode("c", nil)

	g.AddEdge("a", "b")
	g.AddEdge("b", "c")

	sorted, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("failed to sort: %v", err)
	}
	if len(sorted) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(sorted))
	}

	positions := make(map[string]int)
	for i, node := range sorted {
		positions[node.ID] = i
	}
	if positions["a"] >= positions["b"] {
		t.Error("a should come before b")
	}
	if positions["b"] >= positions["c"] {
		t.Error("b should come before c")
	}
}

func TestGraph_TopologicalSort_Diamond(t *testing.T) {
	// a feeds b and c; both feed d.
	g := New()
	g.AddNode("a", nil)
	g.AddNode("b", nil)
	g.AddNode("c", nil)
	g.AddNode("d", nil)

	g.AddEdge("a", "b")
	g.AddEdge("a", "c")
	g.AddEdge("b", "d")
	g.AddEdge("c", "d")

	sorted, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("failed to sort: %v", err)
	}

	positions := make(map[string]int)
	for i, node := range sorted {
		positions[node.ID] = i
	}
	if positions["a"] != 0 {
		t.Error("a should be first")
	}
	if positions["d"] != 3 {
		t.Error("d should be last")
	}
}

func TestGraph_TopologicalSort_WithCycle(t *testing.T) {
	g := New()
	g.AddNode("a", nil)
	g.AddNode("b", nil)

	g.AddEdge("a", "b")
	g.AddEdge("b", "a")

	if _, err := g.TopologicalSort(); err == nil {
		t.Error("expected error for cyclic graph")
	}
}

func TestGraph_Levels(t *testing.T) {
	g := New()
	g.AddNode("gb1", nil)
	g.AddNode("gb2", nil)
	g.AddNode("join1", nil)
	g.AddNode("join2", nil)
	g.AddNode("wide", nil)

	g.AddEdge("gb1", "join1")
	g.AddEdge("gb2", "join2")
	g.AddEdge("join1", "wide")
	g.AddEdge("join2", "wide")

	levels, err := g.Levels()
	if err != nil {
		t.Fatalf("failed to get levels: %v", err)
	}
	if len(levels) != 3 {
		t.Fatalf("expected 3 levels, got %d", len(levels))
	}
	if len(levels[0]) != 2 {
		t.Errorf("expected 2 configs at level 0, got %v", levels[0])
	}
	if len(levels[1]) != 2 {
		t.Errorf("expected 2 configs at level 1, got %v", levels[1])
	}
	if len(levels[2]) != 1 || levels[2][0] != "wide" {
		t.Errorf("expected [wide] at level 2, got %v", levels[2])
	}
}

func TestGraph_UpstreamAndDownstream(t *testing.T) {
	g := New()
	g.AddNode("a", nil)
	g.AddNode("b", nil)
	g.AddNode("c", nil)
	g.AddNode("d", nil)

	g.AddEdge("a", "c")
	g.AddEdge("b", "c")
	g.AddEdge("c", "d")

	upstream := g.Upstream("d")
	if len(upstream) != 3 {
		t.Errorf("expected 3 upstream configs, got %v", upstream)
	}

	downstream := g.Downstream("a")
	if len(downstream) != 2 {
		t.Errorf("expected 2 downstream configs, got %v", downstream)
	}
	for _, id := range downstream {
		if id == "a" {
			t.Error("downstream should not include the config itself")
		}
	}
}

func TestGraph_RootsAndLeaves(t *testing.T) {
	g := New()
	g.AddNode("a", nil)
	g.AddNode("b", nil)
	g.AddNode("c", nil)

	g.AddEdge("a", "c")
	g.AddEdge("b", "c")

	if roots := g.Roots(); len(roots) != 2 {
		t.Errorf("expected 2 roots, got %v", roots)
	}
	if leaves := g.Leaves(); len(leaves) != 1 || leaves[0] != "c" {
		t.Errorf("expected [c] as leaves, got %v", g.Leaves())
	}
}

func TestGraph_Subgraph(t *testing.T) {
	g := New()
	g.AddNode("a", nil)
	g.AddNode("b", nil)
	g.AddNode("c", nil)
	g.AddNode("d", nil)

	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	g.AddEdge("c", "d")

	sub := g.Subgraph([]string{"b", "c"})

	if sub.NodeCount() != 2 {
		t.Errorf("expected 2 nodes, got %d", sub.NodeCount())
	}
	if sub.EdgeCount() != 1 {
		t.Errorf("expected 1 edge, got %d", sub.EdgeCount())
	}
	if children := sub.Children("b"); len(children) != 1 || children[0] != "c" {
		t.Error("expected edge from b to c")
	}
}

func TestGraph_DuplicateEdges(t *testing.T) {
	g := New()
	g.AddNode("a", nil)
	g.AddNode("b", nil)

	g.AddEdge("a", "b")
	g.AddEdge("a", "b")

	if g.EdgeCount() != 1 {
		t.Errorf("expected 1 edge (no duplicates), got %d", g.EdgeCount())
	}
}

func TestFromIndexes(t *testing.T) {
	builder := index.NewEntryBuilder(index.EntryBuilderConfig{Root: t.TempDir()})

	groupBys := index.NewTable("group_bys")
	groupBys.Insert(builder.BuildDoc(index.GroupBySpec, map[string]any{
		"metaData": map[string]any{"name": "search.clicks.v1"},
	}))
	groupBys.Insert(builder.BuildDoc(index.GroupBySpec, map[string]any{
		"metaData": map[string]any{"name": "search.views.v1"},
	}))

	joins := index.NewTable("joins")
	joins.Insert(builder.BuildDoc(index.JoinSpec, map[string]any{
		"metaData": map[string]any{"name": "search.ranker.v1"},
		"joinParts": []any{
			map[string]any{"groupBy": map[string]any{"metaData": map[string]any{"name": "search.clicks.v1"}}},
			map[string]any{"groupBy": map[string]any{"metaData": map[string]any{"name": "ops.retired.v9"}}},
		},
	}))

	g := FromIndexes(groupBys, joins)

	if g.NodeCount() != 3 {
		t.Fatalf("expected 3 nodes, got %d", g.NodeCount())
	}
	// The reference to the unindexed group-by adds no edge.
	if g.EdgeCount() != 1 {
		t.Fatalf("expected 1 edge, got %d", g.EdgeCount())
	}
	if parents := g.Parents("search.ranker.v1"); len(parents) != 1 || parents[0] != "search.clicks.v1" {
		t.Errorf("expected ranker to read from clicks, got %v", parents)
	}

	node, ok := g.Node("search.clicks.v1")
	if !ok || node.Entry == nil || node.Entry.Family != "group_bys" {
		t.Error("expected the clicks node to carry its group-by entry")
	}

	levels, err := g.Levels()
	if err != nil {
		t.Fatalf("failed to get levels: %v", err)
	}
	if len(levels) != 2 {
		t.Fatalf("expected 2 levels, got %v", levels)
	}
	if levels[1][0] != "search.ranker.v1" {
		t.Errorf("expected the join below its group-bys, got %v", levels)
	}
}
