package layering

import (
	"slices"

	"github.com/matzehuels/flowtower/pkg/flow"
	"github.com/matzehuels/flowtower/pkg/identity"
)

// TopDown assigns each node one plus the maximum level of its parents,
// starting from the roots at level 0.
//
// Cycles are broken first with [BreakCycles]; the levels are then the
// longest paths in the residual graph, computed with Kahn's algorithm.
// The nodes returned by [Adjacency.Roots] always sit at level 0: edges that
// still enter them after cycle breaking are dropped. Every node receives a
// level. Time complexity is O(V log V + E).
func TopDown(edges []flow.Edge) map[identity.ID]int {
	a := NewAdjacency(edges)
	roots := a.Roots()
	breakCycles(a)
	for _, root := range roots {
		for _, parent := range slices.Clone(a.Parents(root)) {
			a.RemoveEdge(parent, root)
		}
	}
	return longestPath(a)
}

func longestPath(a *Adjacency) map[identity.ID]int {
	nodes := a.Nodes()
	inDegree := make(map[identity.ID]int, len(nodes))
	levels := make(map[identity.ID]int, len(nodes))
	queue := make([]identity.ID, 0, len(nodes))

	for _, id := range nodes {
		degree := a.InDegree(id)
		inDegree[id] = degree
		if degree == 0 {
			queue = append(queue, id)
			levels[id] = 0
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, child := range a.Children(curr) {
			if level := levels[curr] + 1; level > levels[child] {
				levels[child] = level
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}
	return levels
}

// LeftRight partitions nodes into three fixed levels: 0 for nodes that only
// send, 1 for nodes that send and receive, 2 for nodes that only receive.
func LeftRight(edges []flow.Edge) map[identity.ID]int {
	sends := make(map[identity.ID]bool)
	receives := make(map[identity.ID]bool)
	for _, e := range edges {
		sends[e.Source] = true
		receives[e.Target] = true
	}

	levels := make(map[identity.ID]int, len(sends)+len(receives))
	for id := range sends {
		if receives[id] {
			levels[id] = 1
		} else {
			levels[id] = 0
		}
	}
	for id := range receives {
		if !sends[id] {
			levels[id] = 2
		}
	}
	return levels
}

// Timeline numbers nodes in the order they first appear when edges are
// walked by ascending date, source before target. Levels never exceed
// maxLevel; a negative maxLevel means no cap.
//
// Undated edges are walked after all dated ones. Edges sharing a date are
// ordered by source, then target, so row order does not matter.
func Timeline(edges []flow.Edge, maxLevel int) map[identity.ID]int {
	sorted := slices.Clone(edges)
	slices.SortStableFunc(sorted, compareChronological)

	levels := make(map[identity.ID]int)
	next := 0
	visit := func(id identity.ID) {
		if _, ok := levels[id]; ok {
			return
		}
		level := next
		if maxLevel >= 0 && level > maxLevel {
			level = maxLevel
		}
		levels[id] = level
		next++
	}
	for _, e := range sorted {
		visit(e.Source)
		visit(e.Target)
	}
	return levels
}

func compareChronological(a, b flow.Edge) int {
	switch {
	case a.HasDate() && !b.HasDate():
		return -1
	case !a.HasDate() && b.HasDate():
		return 1
	}
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	if c := identity.Compare(a.Source, b.Source); c != 0 {
		return c
	}
	return identity.Compare(a.Target, b.Target)
}

// DemoteHubs wraps base so that nodes with more than threshold distinct
// counterparties (in-degree plus out-degree) are moved one level down.
func DemoteHubs(base Assigner, threshold int) Assigner {
	return Func(func(edges []flow.Edge) map[identity.ID]int {
		levels := base.Assign(edges)
		a := NewAdjacency(edges)
		for id, level := range levels {
			if a.InDegree(id)+a.OutDegree(id) > threshold {
				levels[id] = level + 1
			}
		}
		return levels
	})
}

// Hubs returns the nodes of edges whose degree exceeds threshold, sorted.
// Degree counts distinct neighbours, so repeated rows between one pair add
// nothing.
func Hubs(edges []flow.Edge, threshold int) []identity.ID {
	a := NewAdjacency(edges)
	var out []identity.ID
	for _, id := range a.Nodes() {
		if a.InDegree(id)+a.OutDegree(id) > threshold {
			out = append(out, id)
		}
	}
	return out
}
