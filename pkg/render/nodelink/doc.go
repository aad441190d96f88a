// Package nodelink renders flow graphs as layered node-link diagrams.
//
// # Overview
//
// This package produces directed graph visualizations using Graphviz. Nodes
// sharing a level are placed on the same rank, so the layering strategy
// chosen in the pipeline decides the vertical (or horizontal) structure of
// the drawing.
//
// # Usage
//
// Convert an exported graph to DOT format, then render it:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Direction: graph.DirectionLeftRight})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := nodelink.Render(ctx, dot, nodelink.FormatPNG)
//
// # Options
//
//   - Direction: "TB" (top to bottom, default) or "LR" (left to right)
//   - Detailed: node labels include the outgoing weight and level
//
// # Colours
//
// CSS rgb() and rgba() colours produced by the exporter are converted to
// Graphviz #RRGGBBAA notation; hex colours pass through unchanged.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process rendering;
// no Graphviz installation is required.
package nodelink
