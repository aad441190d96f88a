// Package flow builds weighted directed graphs of money flowing between
// ledger parties.
//
// # Overview
//
// The package turns [ledger.Record] rows into raw [Edge] values, one per
// qualifying row, aggregates edges sharing a (source, target) pair into
// [EdgeSummary] values and wraps the result in a [Graph]. Nodes are never
// stored on their own: the node set of a Graph is always exactly the union of
// the endpoints of its edges, and node metrics (outgoing weight, visual size)
// are derived when the Graph is built.
//
// # Stages
//
//	edges, report := flow.BuildEdges(records, flow.BuildOptions{})
//	edges = flow.Threshold(edges, 10_000_000) // raw rows, before aggregation
//	edges = flow.Search(edges, "mandiri")
//	g := flow.New(flow.Aggregate(edges), edges)
//
// Filters operate on raw edges so that a minimum-value threshold keeps or
// drops individual transactions rather than summed pairs.
// [ThresholdSummaries] applies the same check to aggregated pairs. Every stage
// returns a new slice; inputs are never modified.
//
// # Determinism
//
// Aggregation is a map reduction whose sums are computed with exact decimal
// arithmetic, so the result does not depend on row order. Slices returned by
// this package are sorted by (source, target) using [identity.Compare].
//
// # Concurrency
//
// All functions are pure. A [Graph] is immutable after construction;
// [Graph.WithLevels] returns a copy. Graphs can be read from multiple
// goroutines without synchronization.
package flow
