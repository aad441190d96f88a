package flow

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/matzehuels/flowtower/pkg/identity"
)

type pair struct{ source, target identity.ID }

type group struct {
	total decimal.Decimal
	last  time.Time
	count int
}

// Aggregate groups edges by (source, target).
//
// Within a group TotalValue is the exact sum of values, LastDate the
// maximum non-zero date and Frequency the number of edges. The result is
// sorted by source, then target, and does not depend on input order.
func Aggregate(edges []Edge) []EdgeSummary {
	groups := make(map[pair]*group)
	for _, e := range edges {
		k := pair{e.Source, e.Target}
		g, ok := groups[k]
		if !ok {
			g = &group{total: decimal.Zero}
			groups[k] = g
		}
		g.total = g.total.Add(decimal.NewFromFloat(e.Value))
		if e.Date.After(g.last) {
			g.last = e.Date
		}
		g.count++
	}

	out := make([]EdgeSummary, 0, len(groups))
	for k, g := range groups {
		out = append(out, EdgeSummary{
			Source:     k.source,
			Target:     k.target,
			TotalValue: g.total.InexactFloat64(),
			LastDate:   g.last,
			Frequency:  g.count,
		})
	}
	SortSummaries(out)
	return out
}

// Itemize turns every edge into its own summary with Frequency 1,
// bypassing aggregation. Input order is preserved.
func Itemize(edges []Edge) []EdgeSummary {
	out := make([]EdgeSummary, len(edges))
	for i, e := range edges {
		out[i] = EdgeSummary{
			Source:     e.Source,
			Target:     e.Target,
			TotalValue: e.Value,
			LastDate:   e.Date,
			Frequency:  1,
		}
	}
	return out
}

// SortSummaries sorts summaries in place by source, then target.
func SortSummaries(s []EdgeSummary) {
	slices.SortStableFunc(s, func(a, b EdgeSummary) int {
		if c := identity.Compare(a.Source, b.Source); c != 0 {
			return c
		}
		return identity.Compare(a.Target, b.Target)
	})
}
