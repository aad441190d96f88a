package flow

import (
	"maps"
	"slices"

	"github.com/matzehuels/flowtower/pkg/identity"
)

// Node is a party in a flow graph with its derived metrics.
type Node struct {
	ID     identity.ID
	Weight float64 // summed outgoing value over raw edges, 0 for pure sinks
	Size   float64 // Weight scaled into the graph's SizeRange

	// Level is the layer assigned by a layering strategy. It is only
	// meaningful when Leveled is true.
	Level   int
	Leveled bool
}

// Graph is an immutable weighted flow graph.
//
// The node set is exactly the union of the endpoints of the graph's edge
// summaries. The zero value is an empty graph; use [New] to build one.
type Graph struct {
	nodes    map[identity.ID]*Node
	order    []identity.ID
	edges    []EdgeSummary
	outgoing map[identity.ID][]identity.ID
	incoming map[identity.ID][]identity.ID
	maxValue float64
}

// Option configures [New].
type Option func(*config)

type config struct {
	sizes SizeRange
}

// WithSizeRange sets the range node sizes are scaled into.
// The default is [DefaultSizeRange].
func WithSizeRange(r SizeRange) Option {
	return func(c *config) { c.sizes = r }
}

// New builds a graph from edge summaries. Node weights come from the raw
// edges so that itemized and aggregated summaries yield the same metrics.
// Only nodes present in summaries are included.
func New(summaries []EdgeSummary, edges []Edge, opts ...Option) *Graph {
	cfg := config{sizes: DefaultSizeRange}
	for _, opt := range opts {
		opt(&cfg)
	}

	g := &Graph{
		nodes:    make(map[identity.ID]*Node),
		edges:    slices.Clone(summaries),
		outgoing: make(map[identity.ID][]identity.ID),
		incoming: make(map[identity.ID][]identity.ID),
	}

	for _, s := range summaries {
		g.addNode(s.Source)
		g.addNode(s.Target)
		if !slices.Contains(g.outgoing[s.Source], s.Target) {
			g.outgoing[s.Source] = append(g.outgoing[s.Source], s.Target)
			g.incoming[s.Target] = append(g.incoming[s.Target], s.Source)
		}
		if s.TotalValue > g.maxValue {
			g.maxValue = s.TotalValue
		}
	}
	g.order = slices.SortedFunc(maps.Keys(g.nodes), identity.Compare)
	for _, adj := range g.outgoing {
		slices.SortFunc(adj, identity.Compare)
	}
	for _, adj := range g.incoming {
		slices.SortFunc(adj, identity.Compare)
	}

	weights := Weights(edges)
	sizes := VisualSizes(g.order, pick(weights, g.nodes), cfg.sizes)
	for id, n := range g.nodes {
		n.Weight = weights[id]
		n.Size = sizes[id]
	}
	return g
}

func (g *Graph) addNode(id identity.ID) {
	if _, ok := g.nodes[id]; !ok {
		g.nodes[id] = &Node{ID: id}
	}
}

// pick restricts weights to the graph's nodes so that sizes are scaled
// against the visible maximum.
func pick(weights map[identity.ID]float64, nodes map[identity.ID]*Node) map[identity.ID]float64 {
	out := make(map[identity.ID]float64, len(nodes))
	for id := range nodes {
		if w, ok := weights[id]; ok {
			out[id] = w
		}
	}
	return out
}

// Nodes returns copies of all nodes sorted by ID.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.order))
	for i, id := range g.order {
		out[i] = *g.nodes[id]
	}
	return out
}

// IDs returns all node IDs in sorted order.
func (g *Graph) IDs() []identity.ID { return slices.Clone(g.order) }

// Node returns the node with the given ID.
func (g *Graph) Node(id identity.ID) (Node, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Edges returns a copy of the graph's edge summaries.
func (g *Graph) Edges() []EdgeSummary { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edge summaries.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// IsEmpty reports whether the graph has no edges.
func (g *Graph) IsEmpty() bool { return len(g.edges) == 0 }

// MaxValue returns the largest TotalValue over all summaries, or 0.
func (g *Graph) MaxValue() float64 { return g.maxValue }

// Children returns the distinct targets of id in sorted order.
// The returned slice must not be modified.
func (g *Graph) Children(id identity.ID) []identity.ID { return g.outgoing[id] }

// Parents returns the distinct sources sending to id in sorted order.
// The returned slice must not be modified.
func (g *Graph) Parents(id identity.ID) []identity.ID { return g.incoming[id] }

// OutDegree returns the number of distinct targets of id.
func (g *Graph) OutDegree(id identity.ID) int { return len(g.outgoing[id]) }

// InDegree returns the number of distinct sources sending to id.
func (g *Graph) InDegree(id identity.ID) int { return len(g.incoming[id]) }

// Degree returns InDegree + OutDegree.
func (g *Graph) Degree(id identity.ID) int { return g.InDegree(id) + g.OutDegree(id) }

// Sources returns nodes that never receive, sorted by ID.
func (g *Graph) Sources() []identity.ID {
	var out []identity.ID
	for _, id := range g.order {
		if len(g.incoming[id]) == 0 {
			out = append(out, id)
		}
	}
	return out
}

// Sinks returns nodes that never send, sorted by ID.
func (g *Graph) Sinks() []identity.ID {
	var out []identity.ID
	for _, id := range g.order {
		if len(g.outgoing[id]) == 0 {
			out = append(out, id)
		}
	}
	return out
}

// WithLevels returns a copy of g with the given levels assigned.
// Nodes missing from levels are left unleveled; unknown IDs are ignored.
func (g *Graph) WithLevels(levels map[identity.ID]int) *Graph {
	c := &Graph{
		nodes:    make(map[identity.ID]*Node, len(g.nodes)),
		order:    g.order,
		edges:    g.edges,
		outgoing: g.outgoing,
		incoming: g.incoming,
		maxValue: g.maxValue,
	}
	for id, n := range g.nodes {
		cp := *n
		cp.Level, cp.Leveled = levels[id]
		c.nodes[id] = &cp
	}
	return c
}

// Levels returns the assigned level of every leveled node.
func (g *Graph) Levels() map[identity.ID]int {
	out := make(map[identity.ID]int)
	for id, n := range g.nodes {
		if n.Leveled {
			out[id] = n.Level
		}
	}
	return out
}

// MaxLevel returns the deepest assigned level, or -1 when no node is leveled.
func (g *Graph) MaxLevel() int {
	deepest := -1
	for _, n := range g.nodes {
		if n.Leveled && n.Level > deepest {
			deepest = n.Level
		}
	}
	return deepest
}
