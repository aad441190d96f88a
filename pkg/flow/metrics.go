package flow

import (
	"github.com/shopspring/decimal"

	"github.com/matzehuels/flowtower/pkg/identity"
)

// SizeRange is the display range node sizes are scaled into.
type SizeRange struct {
	Min float64
	Max float64
}

// DefaultSizeRange is used when a zero SizeRange is supplied.
var DefaultSizeRange = SizeRange{Min: 10, Max: 40}

// Span returns Max - Min.
func (r SizeRange) Span() float64 { return r.Max - r.Min }

func (r SizeRange) orDefault() SizeRange {
	if r == (SizeRange{}) {
		return DefaultSizeRange
	}
	return r
}

// Weights returns the summed outgoing value of every node appearing as a
// source. Pure sinks are absent from the result.
func Weights(edges []Edge) map[identity.ID]float64 {
	sums := make(map[identity.ID]decimal.Decimal)
	for _, e := range edges {
		sums[e.Source] = sums[e.Source].Add(decimal.NewFromFloat(e.Value))
	}
	out := make(map[identity.ID]float64, len(sums))
	for id, d := range sums {
		out[id] = d.InexactFloat64()
	}
	return out
}

// VisualSizes scales weights linearly into r:
//
//	size = weight / max(weight) * r.Span() + r.Min
//
// A maximum weight of zero is treated as one. Nodes without a weight get r.Min.
func VisualSizes(nodes []identity.ID, weights map[identity.ID]float64, r SizeRange) map[identity.ID]float64 {
	r = r.orDefault()
	maxWeight := 0.0
	for _, w := range weights {
		if w > maxWeight {
			maxWeight = w
		}
	}
	if maxWeight == 0 {
		maxWeight = 1
	}

	out := make(map[identity.ID]float64, len(nodes))
	for _, id := range nodes {
		w := weights[id]
		if w < 0 {
			w = 0
		}
		out[id] = w/maxWeight*r.Span() + r.Min
	}
	return out
}
