package graph

import (
	"github.com/matzehuels/flowtower/pkg/flow"
	"github.com/matzehuels/flowtower/pkg/identity"
	"github.com/matzehuels/flowtower/pkg/style"
)

// Layout directions.
const (
	DirectionTopDown   = "TB"
	DirectionLeftRight = "LR"
)

// Edge colours.
const (
	ColorOutgoing = "#FF3366" // leaves the focus entity
	ColorIncoming = "#22FF88" // enters the focus entity
	ColorOther    = "#44CCFF" // focus set, edge not touching it
	ColorNeutral  = "rgba(200, 200, 200, 0.5)"
)

// FocusSize is the minimum display size of the focus node.
const FocusSize = 30

// Graph is the display-ready form of a flow graph.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
	Meta  *Meta  `json:"meta,omitempty"`
}

// Meta records the parameters a graph was exported with.
type Meta struct {
	Direction    string  `json:"direction,omitempty"`
	Layout       string  `json:"layout,omitempty"`
	Focus        string  `json:"focus,omitempty"`
	Counterparty string  `json:"counterparty,omitempty"`
	Itemized     bool    `json:"itemized,omitempty"`
	MinValue     float64 `json:"min_value,omitempty"`
}

// Node is a styled graph node.
type Node struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	Size   float64 `json:"size"`
	Color  string  `json:"color"`
	Shape  string  `json:"shape"`
	Icon   string  `json:"icon,omitempty"`
	Level  *int    `json:"level,omitempty"`
	Weight float64 `json:"weight,omitempty"`
	Focus  bool    `json:"focus,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Edge is a styled, labeled edge summary.
type Edge struct {
	Source    string  `json:"source"`
	Target    string  `json:"target"`
	Label     string  `json:"label"`
	Width     float64 `json:"width"`
	Color     string  `json:"color"`
	Value     float64 `json:"value"`
	Frequency int     `json:"frequency,omitempty"`
	Date      string  `json:"date,omitempty"`
}

// ExportOptions controls [Export].
type ExportOptions struct {
	// Styles resolves node styles. Nil means [style.DefaultTable].
	Styles *style.Table
	// Focus highlights one entity and colours edges by their direction
	// relative to it. The zero ID disables focus colouring.
	Focus identity.ID
	// Counterparty is recorded in Meta when a focus pair is shown.
	Counterparty identity.ID
	// Itemized marks the summaries as one-per-transaction: edge widths are
	// fixed and edge labels carry no frequency.
	Itemized bool

	Direction string
	Layout    string
	MinValue  float64
}

// Export converts a flow graph into its display form. Nodes keep the
// graph's sorted order, edges keep the graph's summary order.
func Export(g *flow.Graph, opts ExportOptions) Graph {
	table := opts.Styles
	if table == nil {
		table = style.DefaultTable()
	}

	nodes := g.Nodes()
	out := Graph{
		Nodes: make([]Node, len(nodes)),
		Edges: make([]Edge, 0, g.EdgeCount()),
		Meta:  exportMeta(opts),
	}
	for i, n := range nodes {
		out.Nodes[i] = exportNode(n, table, opts.Focus)
	}

	maxValue := g.MaxValue()
	for _, s := range g.Edges() {
		e := Edge{
			Source:    s.Source.String(),
			Target:    s.Target.String(),
			Label:     EdgeLabel(s, opts.Itemized),
			Width:     EdgeWidth(s.TotalValue, maxValue, opts.Itemized),
			Color:     edgeColor(s, opts.Focus),
			Value:     s.TotalValue,
			Frequency: s.Frequency,
		}
		if s.HasDate() {
			e.Date = s.LastDate.Format(isoDate)
		}
		out.Edges = append(out.Edges, e)
	}
	return out
}

const isoDate = "2006-01-02"

func exportMeta(opts ExportOptions) *Meta {
	m := &Meta{
		Direction: opts.Direction,
		Layout:    opts.Layout,
		Itemized:  opts.Itemized,
		MinValue:  opts.MinValue,
	}
	if !opts.Focus.IsZero() {
		m.Focus = opts.Focus.String()
	}
	if !opts.Counterparty.IsZero() {
		m.Counterparty = opts.Counterparty.String()
	}
	if *m == (Meta{}) {
		return nil
	}
	return m
}

func exportNode(n flow.Node, table *style.Table, focus identity.ID) Node {
	st, ok := table.Lookup(n.ID)
	switch {
	case !focus.IsZero() && n.ID == focus:
		st = table.Focus
	case ok:
	case n.Weight == 0 && !table.Receiver.IsZero():
		st = table.Receiver
	default:
		st = table.Default
	}

	node := Node{
		ID:     n.ID.String(),
		Label:  n.ID.String(),
		Size:   n.Size,
		Color:  st.Color,
		Shape:  st.Shape,
		Icon:   st.Icon,
		Weight: n.Weight,
	}
	if n.Leveled {
		level := n.Level
		node.Level = &level
	}
	if !focus.IsZero() && n.ID == focus {
		node.Focus = true
		node.Size = max(node.Size, FocusSize)
	}
	return node
}

func edgeColor(s flow.EdgeSummary, focus identity.ID) string {
	switch {
	case focus.IsZero():
		return ColorNeutral
	case s.Source == focus:
		return ColorOutgoing
	case s.Target == focus:
		return ColorIncoming
	default:
		return ColorOther
	}
}
