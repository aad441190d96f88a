package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/flowtower/pkg/graph"
	"github.com/matzehuels/flowtower/pkg/render/nodelink"
)

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, g graph.Graph, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var dot string
	for _, format := range opts.Formats {
		if format != FormatJSON && dot == "" {
			dot = nodelink.ToDOT(g, dotOptions(g, opts))
		}

		var data []byte
		var err error
		switch format {
		case FormatJSON:
			data, err = graph.Marshal(g)
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			data, err = nodelink.RenderSVG(ctx, dot)
		case FormatPNG:
			data, err = nodelink.Render(ctx, dot, nodelink.FormatPNG)
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// dotOptions prefers the direction recorded in the graph over opts.
func dotOptions(g graph.Graph, opts Options) nodelink.Options {
	dir := opts.Direction
	if g.Meta != nil && g.Meta.Direction != "" {
		dir = g.Meta.Direction
	}
	return nodelink.Options{Direction: dir, Detailed: opts.Detailed}
}
