package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/flowtower/pkg/graph"
)

// Options configures DOT generation.
type Options struct {
	// Direction is graph.DirectionTopDown (default) or graph.DirectionLeftRight.
	Direction string
	// Detailed adds weight and level lines to node labels.
	Detailed bool
}

// ToDOT converts an exported graph to Graphviz DOT source.
//
// Nodes sharing a level are pinned to the same rank. Node colours, shapes
// and icons come from the exported styles; edge labels, colours and widths
// are carried over unchanged.
func ToDOT(g graph.Graph, opts Options) string {
	rankdir := graph.DirectionTopDown
	if strings.EqualFold(opts.Direction, graph.DirectionLeftRight) {
		rankdir = graph.DirectionLeftRight
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	buf.WriteString("  bgcolor=\"white\";\n")
	buf.WriteString("  node [style=filled, fontname=\"Helvetica\", fontsize=12, fontcolor=\"#333333\"];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=10, fontcolor=\"#333333\", arrowhead=normal];\n")
	buf.WriteString("  ranksep=1.2;\n")
	buf.WriteString("  nodesep=0.6;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		fmt.Fprintf(&buf, "  %s [%s];\n", quote(n.ID), strings.Join(nodeAttrs(n, opts.Detailed), ", "))
	}

	if ranks := levels(g); len(ranks) > 0 {
		buf.WriteString("\n")
		for _, ids := range ranks {
			quoted := make([]string, len(ids))
			for i, id := range ids {
				quoted[i] = quote(id)
			}
			fmt.Fprintf(&buf, "  { rank=same; %s; }\n", strings.Join(quoted, "; "))
		}
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		fmt.Fprintf(&buf, "  %s -> %s [%s];\n", quote(e.Source), quote(e.Target), strings.Join(edgeAttrs(e), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n graph.Node, detailed bool) []string {
	label := n.DisplayLabel()
	if detailed {
		parts := []string{label, "weight: " + graph.FormatAmount(n.Weight)}
		if n.Level != nil {
			parts = append(parts, fmt.Sprintf("level: %d", *n.Level))
		}
		label = strings.Join(parts, "\n")
	}

	attrs := []string{"label=" + quote(label)}
	if c := dotColor(n.Color); c != "" {
		attrs = append(attrs, "fillcolor="+quote(c))
	}
	switch {
	case n.Shape == "image" && n.Icon != "":
		attrs = append(attrs, "shape=none", "image="+quote(n.Icon), "labelloc=b")
	default:
		attrs = append(attrs, "shape="+dotShape(n.Shape))
	}
	if n.Size > 0 {
		attrs = append(attrs, "width="+strconv.FormatFloat(n.Size/30, 'f', 2, 64))
	}
	if n.Focus {
		attrs = append(attrs, "penwidth=3")
	}
	return attrs
}

func edgeAttrs(e graph.Edge) []string {
	attrs := []string{"label=" + quote(e.Label)}
	if c := dotColor(e.Color); c != "" {
		attrs = append(attrs, "color="+quote(c))
	}
	if e.Width > 0 {
		attrs = append(attrs, "penwidth="+strconv.FormatFloat(e.Width/2, 'f', 2, 64))
	}
	return attrs
}

// levels groups node IDs by level in ascending level order.
func levels(g graph.Graph) [][]string {
	byLevel := make(map[int][]string)
	for _, n := range g.Nodes {
		if n.Level != nil {
			byLevel[*n.Level] = append(byLevel[*n.Level], n.ID)
		}
	}
	keys := make([]int, 0, len(byLevel))
	for k := range byLevel {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make([][]string, len(keys))
	for i, k := range keys {
		out[i] = byLevel[k]
	}
	return out
}

var shapes = map[string]string{
	"":         "circle",
	"dot":      "circle",
	"circle":   "circle",
	"ellipse":  "ellipse",
	"box":      "box",
	"square":   "square",
	"diamond":  "diamond",
	"star":     "star",
	"triangle": "triangle",
	"image":    "circle",
}

func dotShape(s string) string {
	if shape, ok := shapes[strings.ToLower(s)]; ok {
		return shape
	}
	return "ellipse"
}

var rgbaRe = regexp.MustCompile(`^rgba?\(\s*(\d+)\s*,\s*(\d+)\s*,\s*(\d+)\s*(?:,\s*([0-9.]+)\s*)?\)$`)

// dotColor converts CSS rgb()/rgba() colours to #RRGGBB[AA]; other
// values pass through.
func dotColor(c string) string {
	m := rgbaRe.FindStringSubmatch(strings.TrimSpace(c))
	if m == nil {
		return c
	}
	channel := func(s string) int {
		v, _ := strconv.Atoi(s)
		return min(max(v, 0), 255)
	}
	out := fmt.Sprintf("#%02x%02x%02x", channel(m[1]), channel(m[2]), channel(m[3]))
	if m[4] != "" {
		a, _ := strconv.ParseFloat(m[4], 64)
		out += fmt.Sprintf("%02x", int(min(max(a, 0), 1)*255+0.5))
	}
	return out
}

// quote writes s as a DOT double-quoted string.
func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
	return `"` + r.Replace(s) + `"`
}

// Format is an output format supported by [Render].
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := Render(ctx, dot, FormatSVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// Render renders DOT source in the given format using Graphviz.
func Render(ctx context.Context, dot string, format Format) ([]byte, error) {
	var gvFormat graphviz.Format
	switch format {
	case FormatSVG:
		gvFormat = graphviz.SVG
	case FormatPNG:
		gvFormat = graphviz.PNG
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, gvFormat, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
