// Package dag models config lineage as a directed acyclic graph. Group-bys
// are producers, joins are the consumers wired to them, and the graph
// answers ordering questions: execution levels, topological order, and what
// sits upstream or downstream of a given config.
package dag

import (
	"fmt"
	"sort"

	"github.com/confex-labs/confex/internal/index"
)

// Node is one config in the lineage graph.
type Node struct {
	// ID is the config name.
	ID string
	// Entry is the indexed config behind the node.
	Entry *index.Entry
}

// Graph is a directed acyclic graph of config lineage. Edges run from
// producing group-bys to the joins that consume them.
type Graph struct {
	nodes    map[string]*Node
	children map[string][]string
	parents  map[string][]string
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		children: make(map[string][]string),
		parents:  make(map[string][]string),
	}
}

// FromIndexes builds the lineage graph from the two family tables. Every
// entry becomes a node; each join gains an incoming edge from every group-by
// it references that exists in the group-by table.
func FromIndexes(groupBys, joins *index.Table) *Graph {
	g := New()
	for _, gb := range groupBys.All() {
		g.AddNode(gb.Name(), gb)
	}
	for _, join := range joins.All() {
		g.AddNode(join.Name(), join)
	}
	for _, join := range joins.All() {
		for _, gbName := range join.Strings(index.ColGroupBys) {
			if _, ok := groupBys.Get(gbName); !ok {
				continue
			}
			_ = g.AddEdge(gbName, join.Name())
		}
	}
	return g
}

// AddNode adds a node, updating the entry when the ID is already present.
func (g *Graph) AddNode(id string, entry *index.Entry) {
	if existing, ok := g.nodes[id]; ok {
		existing.Entry = entry
		return
	}
	g.nodes[id] = &Node{ID: id, Entry: entry}
	g.children[id] = []string{}
	g.parents[id] = []string{}
}

// AddEdge records that consumer reads from producer. Both nodes must exist;
// self-loops are rejected and duplicate edges collapse.
func (g *Graph) AddEdge(producer, consumer string) error {
	if _, ok := g.nodes[producer]; !ok {
		return fmt.Errorf("producer %q is not in the graph", producer)
	}
	if _, ok := g.nodes[consumer]; !ok {
		return fmt.Errorf("consumer %q is not in the graph", consumer)
	}
	if producer == consumer {
		return fmt.Errorf("config %q cannot consume itself", producer)
	}

	if !contains(g.children[producer], consumer) {
		g.children[producer] = append(g.children[producer], consumer)
	}
	if !contains(g.parents[consumer], producer) {
		g.parents[consumer] = append(g.parents[consumer], producer)
	}
	return nil
}

// Node returns the node for a config name.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Parents returns the producers a config reads from.
func (g *Graph) Parents(id string) []string {
	return g.parents[id]
}

// Children returns the consumers reading from a config.
func (g *Graph) Children(id string) []string {
	return g.children[id]
}

// Nodes returns every node sorted by ID.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	return nodes
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, consumers := range g.children {
		count += len(consumers)
	}
	return count
}

// HasCycle reports whether the graph contains a cycle and returns one such
// cycle as a path of IDs.
func (g *Graph) HasCycle() (bool, []string) {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	cameFrom := make(map[string]string)

	var cycle []string

	var visit func(id string) bool
	visit = func(id string) bool {
		visited[id] = true
		onStack[id] = true

		for _, next := range g.children[id] {
			if !visited[next] {
				cameFrom[next] = id
				if visit(next) {
					return true
				}
			} else if onStack[next] {
				cycle = []string{next}
				for curr := id; curr != next; curr = cameFrom[curr] {
					cycle = append([]string{curr}, cycle...)
				}
				cycle = append([]string{next}, cycle...)
				return true
			}
		}

		onStack[id] = false
		return false
	}

	for id := range g.nodes {
		if !visited[id] && visit(id) {
			return true, cycle
		}
	}
	return false, nil
}

// TopologicalSort returns the nodes with every producer before its
// consumers. Ties break by ID so the order is stable.
func (g *Graph) TopologicalSort() ([]*Node, error) {
	if cyclic, cycle := g.HasCycle(); cyclic {
		return nil, fmt.Errorf("lineage cycle: %v", cycle)
	}

	visited := make(map[string]bool)
	var result []*Node

	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, producer := range g.parents[id] {
			visit(producer)
		}
		result = append(result, g.nodes[id])
	}

	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		visit(id)
	}
	return result, nil
}

// Levels groups config names by lineage depth. Level 0 holds configs with no
// producers; a config lands one level below its deepest producer, so each
// level only reads from the levels above it.
func (g *Graph) Levels() ([][]string, error) {
	if cyclic, cycle := g.HasCycle(); cyclic {
		return nil, fmt.Errorf("lineage cycle: %v", cycle)
	}

	assigned := make(map[string]int)
	var levelOf func(id string) int
	levelOf = func(id string) int {
		if level, ok := assigned[id]; ok {
			return level
		}
		level := 0
		for _, producer := range g.parents[id] {
			if pl := levelOf(producer) + 1; pl > level {
				level = pl
			}
		}
		assigned[id] = level
		return level
	}

	maxLevel := -1
	for id := range g.nodes {
		if level := levelOf(id); level > maxLevel {
			maxLevel = level
		}
	}

	levels := make([][]string, maxLevel+1)
	for id, level := range assigned {
		levels[level] = append(levels[level], id)
	}
	for i := range levels {
		sort.Strings(levels[i])
	}
	return levels, nil
}

// Upstream returns every config the given one transitively reads from.
func (g *Graph) Upstream(id string) []string {
	seen := make(map[string]bool)
	var walk func(id string)
	walk = func(id string) {
		for _, producer := range g.parents[id] {
			if !seen[producer] {
				seen[producer] = true
				walk(producer)
			}
		}
	}
	walk(id)
	return sortedKeys(seen)
}

// Downstream returns every config transitively reading from the given one.
func (g *Graph) Downstream(id string) []string {
	seen := make(map[string]bool)
	var walk func(id string)
	walk = func(id string) {
		for _, consumer := range g.children[id] {
			if !seen[consumer] {
				seen[consumer] = true
				walk(consumer)
			}
		}
	}
	walk(id)
	return sortedKeys(seen)
}

// Roots returns configs with no producers.
func (g *Graph) Roots() []string {
	var roots []string
	for id := range g.nodes {
		if len(g.parents[id]) == 0 {
			roots = append(roots, id)
		}
	}
	sort.Strings(roots)
	return roots
}

// Leaves returns configs nothing reads from.
func (g *Graph) Leaves() []string {
	var leaves []string
	for id := range g.nodes {
		if len(g.children[id]) == 0 {
			leaves = append(leaves, id)
		}
	}
	sort.Strings(leaves)
	return leaves
}

// Subgraph returns a new graph holding only the named configs and the edges
// between them.
func (g *Graph) Subgraph(ids []string) *Graph {
	sub := New()
	keep := make(map[string]bool, len(ids))
	for _, id := range ids {
		keep[id] = true
		if n, ok := g.nodes[id]; ok {
			sub.AddNode(id, n.Entry)
		}
	}
	for _, id := range ids {
		for _, consumer := range g.children[id] {
			if keep[consumer] {
				_ = sub.AddEdge(id, consumer)
			}
		}
	}
	return sub
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
