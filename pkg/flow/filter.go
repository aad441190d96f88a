package flow

import (
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/matzehuels/flowtower/pkg/identity"
)

// Threshold keeps edges whose value is at least minValue.
func Threshold(edges []Edge, minValue float64) []Edge {
	return keep(edges, func(e Edge) bool { return e.Value >= minValue })
}

// ThresholdSummaries keeps summaries whose total is at least minValue. It is the
// pair-level counterpart of [Threshold], applied after aggregation.
func ThresholdSummaries(summaries []EdgeSummary, minValue float64) []EdgeSummary {
	out := make([]EdgeSummary, 0, len(summaries))
	for _, s := range summaries {
		if s.TotalValue >= minValue {
			out = append(out, s)
		}
	}
	return out
}

// Search keeps edges where either endpoint contains needle,
// case-insensitively. An empty or blank needle keeps every edge.
func Search(edges []Edge, needle string) []Edge {
	needle = identity.Normalize(needle)
	if needle == "" {
		return slices.Clone(edges)
	}
	return keep(edges, func(e Edge) bool {
		return strings.Contains(strings.ToUpper(e.Source.String()), needle) ||
			strings.Contains(strings.ToUpper(e.Target.String()), needle)
	})
}

// Involving keeps edges with id as either endpoint.
func Involving(edges []Edge, id identity.ID) []Edge {
	return keep(edges, func(e Edge) bool { return e.Source == id || e.Target == id })
}

// Between keeps edges flowing between a and b in either direction.
func Between(edges []Edge, a, b identity.ID) []Edge {
	return keep(edges, func(e Edge) bool {
		return (e.Source == a && e.Target == b) || (e.Source == b && e.Target == a)
	})
}

// Counterparties returns the sorted distinct parties that sent money to or
// received money from id.
func Counterparties(edges []Edge, id identity.ID) []identity.ID {
	seen := make(map[identity.ID]bool)
	for _, e := range edges {
		switch {
		case e.Source == id && e.Target != id:
			seen[e.Target] = true
		case e.Target == id && e.Source != id:
			seen[e.Source] = true
		}
	}
	return sortedIDs(seen)
}

// Entities returns the sorted union of all endpoints.
func Entities(edges []Edge) []identity.ID {
	seen := make(map[identity.ID]bool)
	for _, e := range edges {
		seen[e.Source] = true
		seen[e.Target] = true
	}
	return sortedIDs(seen)
}

// Suggest returns up to n candidates closest to needle by edit distance.
// Candidates farther than half the needle length (plus one) are dropped.
// Ties are broken by ID order.
func Suggest(candidates []identity.ID, needle string, n int) []identity.ID {
	needle = identity.Normalize(needle)
	if needle == "" || n <= 0 {
		return nil
	}
	limit := len(needle)/2 + 1

	type scored struct {
		id   identity.ID
		dist int
	}
	var matches []scored
	for _, c := range candidates {
		s := strings.ToUpper(c.String())
		d := levenshtein.ComputeDistance(needle, s)
		if alt := levenshtein.ComputeDistance(needle, strings.ToUpper(c.Account)); alt < d {
			d = alt
		}
		if d <= limit {
			matches = append(matches, scored{c, d})
		}
	}
	slices.SortFunc(matches, func(a, b scored) int {
		if a.dist != b.dist {
			return a.dist - b.dist
		}
		return identity.Compare(a.id, b.id)
	})

	out := make([]identity.ID, 0, min(n, len(matches)))
	for _, m := range matches[:min(n, len(matches))] {
		out = append(out, m.id)
	}
	return out
}

func keep(edges []Edge, pred func(Edge) bool) []Edge {
	out := make([]Edge, 0, len(edges))
	for _, e := range edges {
		if pred(e) {
			out = append(out, e)
		}
	}
	return out
}

func sortedIDs(set map[identity.ID]bool) []identity.ID {
	out := make([]identity.ID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	slices.SortFunc(out, identity.Compare)
	return out
}
