package layering

import "github.com/matzehuels/flowtower/pkg/identity"

// BreakCycles removes back edges from a until it is acyclic and returns the
// number of edges removed.
//
// The depth-first search starts at a.Roots(). Nodes still unvisited
// afterwards are entered at the heaviest remaining node, repeatedly, until
// every node has been visited. Children are visited in sorted order.
func BreakCycles(a *Adjacency) int {
	removed, _ := breakCycles(a)
	return removed
}

func breakCycles(a *Adjacency) (int, []identity.ID) {
	const (
		white = iota
		gray
		black
	)

	color := make(map[identity.ID]int, len(a.nodes))
	var backEdges [][2]identity.ID

	var dfs func(node identity.ID)
	dfs = func(node identity.ID) {
		color[node] = gray
		for _, child := range a.Children(node) {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				backEdges = append(backEdges, [2]identity.ID{node, child})
			}
		}
		color[node] = black
	}

	for _, id := range a.Roots() {
		if color[id] == white {
			dfs(id)
		}
	}

	var entries []identity.ID
	for {
		next, ok := a.heaviest(func(id identity.ID) bool { return color[id] == white })
		if !ok {
			break
		}
		entries = append(entries, next)
		dfs(next)
	}

	for _, e := range backEdges {
		a.RemoveEdge(e[0], e[1])
	}
	return len(backEdges), entries
}
