// Package render groups the renderers for exported flow graphs.
//
// The [nodelink] subpackage turns a [graph.Graph] into Graphviz DOT source
// and renders it to SVG or PNG in-process:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [nodelink]: github.com/matzehuels/flowtower/pkg/render/nodelink
// [graph.Graph]: github.com/matzehuels/flowtower/pkg/graph.Graph
package render
