package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/flowtower/pkg/graph"
)

func intp(v int) *int { return &v }

func sampleGraph() graph.Graph {
	return graph.Graph{
		Nodes: []graph.Node{
			{ID: "BCA|1", Label: "BCA|1", Size: 40, Color: "#2563eb", Shape: "dot", Level: intp(0), Weight: 2_000_000},
			{ID: "BNI|3", Label: "BNI|3", Size: 10, Color: "#16a34a", Shape: "image", Icon: "icons/bni.png", Level: intp(1)},
			{ID: "MANDIRI|2", Label: "MANDIRI|2", Size: 10, Color: "#16a34a", Shape: "box", Level: intp(1), Focus: true},
			{ID: `ODD "NAME"`, Size: 10, Color: "#16a34a"},
		},
		Edges: []graph.Edge{
			{Source: "BCA|1", Target: "MANDIRI|2", Label: "2.00 Juta | 2x transaksi", Width: 15, Color: graph.ColorNeutral},
			{Source: "BCA|1", Target: "BNI|3", Label: "500.000", Width: 2, Color: graph.ColorOutgoing},
		},
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sampleGraph(), Options{})

	for _, want := range []string{
		"digraph G {",
		"rankdir=TB;",
		`"BCA|1" [label="BCA|1", fillcolor="#2563eb", shape=circle, width=1.33];`,
		`"BNI|3" [label="BNI|3", fillcolor="#16a34a", shape=none, image="icons/bni.png", labelloc=b, width=0.33];`,
		`"MANDIRI|2" [label="MANDIRI|2", fillcolor="#16a34a", shape=box, width=0.33, penwidth=3];`,
		`"ODD \"NAME\"" [label="ODD \"NAME\""`,
		`{ rank=same; "BCA|1"; }`,
		`{ rank=same; "BNI|3"; "MANDIRI|2"; }`,
		`"BCA|1" -> "MANDIRI|2" [label="2.00 Juta | 2x transaksi", color="#c8c8c880", penwidth=7.50];`,
		`"BCA|1" -> "BNI|3" [label="500.000", color="#FF3366", penwidth=1.00];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q\n%s", want, dot)
		}
	}
	if !strings.HasSuffix(dot, "}\n") {
		t.Error("DOT not terminated")
	}
}

func TestToDOT_Direction(t *testing.T) {
	tests := []struct {
		dir  string
		want string
	}{
		{"", "rankdir=TB;"},
		{"TB", "rankdir=TB;"},
		{"lr", "rankdir=LR;"},
		{"sideways", "rankdir=TB;"},
	}
	for _, tt := range tests {
		t.Run(tt.dir, func(t *testing.T) {
			if dot := ToDOT(graph.Graph{}, Options{Direction: tt.dir}); !strings.Contains(dot, tt.want) {
				t.Errorf("ToDOT(%q) missing %q", tt.dir, tt.want)
			}
		})
	}
}

func TestToDOT_Detailed(t *testing.T) {
	dot := ToDOT(sampleGraph(), Options{Detailed: true})
	if !strings.Contains(dot, `label="BCA|1\nweight: 2.00 Juta\nlevel: 0"`) {
		t.Errorf("detailed label missing:\n%s", dot)
	}
}

func TestToDOT_NoLevels(t *testing.T) {
	g := graph.Graph{Nodes: []graph.Node{{ID: "A"}}}
	if dot := ToDOT(g, Options{}); strings.Contains(dot, "rank=same") {
		t.Errorf("unleveled graph has rank constraints:\n%s", dot)
	}
}

func TestDotColor(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"#2563eb", "#2563eb"},
		{"", ""},
		{"rgb(255, 0, 16)", "#ff0010"},
		{"rgba(200, 200, 200, 0.5)", "#c8c8c880"},
		{"rgba(300,0,0,2)", "#ff0000ff"},
		{"red", "red"},
	}
	for _, tt := range tests {
		if got := dotColor(tt.in); got != tt.want {
			t.Errorf("dotColor(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDotShape(t *testing.T) {
	tests := map[string]string{
		"":        "circle",
		"dot":     "circle",
		"BOX":     "box",
		"hexagon": "ellipse",
	}
	for in, want := range tests {
		if got := dotShape(in); got != want {
			t.Errorf("dotShape(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRender_UnsupportedFormat(t *testing.T) {
	if _, err := Render(t.Context(), "digraph G {}", Format("gif")); err == nil {
		t.Error("Render(gif): want error")
	}
}
