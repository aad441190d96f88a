package layering

import (
	"cmp"
	"maps"
	"slices"

	"github.com/matzehuels/flowtower/pkg/flow"
	"github.com/matzehuels/flowtower/pkg/identity"
)

// Adjacency is a mutable, deduplicated view of the edges between nodes.
// It is what the strategies traverse; callers only need it for
// [BreakCycles].
type Adjacency struct {
	nodes    []identity.ID
	outgoing map[identity.ID][]identity.ID
	incoming map[identity.ID][]identity.ID
	weights  map[identity.ID]float64
	edges    int
}

// NewAdjacency indexes edges. Parallel edges collapse into one; node and
// child lists are sorted.
func NewAdjacency(edges []flow.Edge) *Adjacency {
	a := &Adjacency{
		outgoing: make(map[identity.ID][]identity.ID),
		incoming: make(map[identity.ID][]identity.ID),
		weights:  flow.Weights(edges),
	}
	seen := make(map[identity.ID]bool)
	for _, e := range edges {
		seen[e.Source] = true
		seen[e.Target] = true
		if slices.Contains(a.outgoing[e.Source], e.Target) {
			continue
		}
		a.outgoing[e.Source] = append(a.outgoing[e.Source], e.Target)
		a.incoming[e.Target] = append(a.incoming[e.Target], e.Source)
		a.edges++
	}
	a.nodes = slices.SortedFunc(maps.Keys(seen), identity.Compare)
	for _, l := range a.outgoing {
		slices.SortFunc(l, identity.Compare)
	}
	for _, l := range a.incoming {
		slices.SortFunc(l, identity.Compare)
	}
	return a
}

// Nodes returns all nodes in sorted order.
func (a *Adjacency) Nodes() []identity.ID { return a.nodes }

// Children returns the sorted distinct targets of id.
func (a *Adjacency) Children(id identity.ID) []identity.ID { return a.outgoing[id] }

// Parents returns the sorted distinct sources of id.
func (a *Adjacency) Parents(id identity.ID) []identity.ID { return a.incoming[id] }

// InDegree returns the number of distinct parents of id.
func (a *Adjacency) InDegree(id identity.ID) int { return len(a.incoming[id]) }

// OutDegree returns the number of distinct children of id.
func (a *Adjacency) OutDegree(id identity.ID) int { return len(a.outgoing[id]) }

// Weight returns the summed outgoing value of id.
func (a *Adjacency) Weight(id identity.ID) float64 { return a.weights[id] }

// EdgeCount returns the number of distinct edges.
func (a *Adjacency) EdgeCount() int { return a.edges }

// RemoveEdge removes the edge from→to if present.
func (a *Adjacency) RemoveEdge(from, to identity.ID) {
	n := len(a.outgoing[from])
	a.outgoing[from] = slices.DeleteFunc(a.outgoing[from], func(id identity.ID) bool { return id == to })
	a.incoming[to] = slices.DeleteFunc(a.incoming[to], func(id identity.ID) bool { return id == from })
	if len(a.outgoing[from]) < n {
		a.edges--
	}
}

// Roots returns the nodes that never receive, in sorted order. If every node
// receives, the single sending node with the largest outgoing value is
// returned, ties broken by ID. An empty graph has no roots.
func (a *Adjacency) Roots() []identity.ID {
	var roots []identity.ID
	for _, id := range a.nodes {
		if len(a.incoming[id]) == 0 {
			roots = append(roots, id)
		}
	}
	if len(roots) > 0 {
		return roots
	}
	if heaviest, ok := a.heaviest(func(id identity.ID) bool { return len(a.outgoing[id]) > 0 }); ok {
		return []identity.ID{heaviest}
	}
	return nil
}

// heaviest returns the node accepted by keep with the largest weight.
// Nodes are scanned in sorted order so the first maximum wins ties.
func (a *Adjacency) heaviest(keep func(identity.ID) bool) (identity.ID, bool) {
	var (
		best  identity.ID
		found bool
	)
	for _, id := range a.nodes {
		if !keep(id) {
			continue
		}
		if !found || cmp.Compare(a.weights[id], a.weights[best]) > 0 {
			best, found = id, true
		}
	}
	return best, found
}

// Roots returns the roots of the graph formed by edges. See [Adjacency.Roots].
func Roots(edges []flow.Edge) []identity.ID {
	return NewAdjacency(edges).Roots()
}
