// Package style maps node identities to visual styles.
//
// A [Table] is keyed by bank code (account identities) or entity name
// (entity identities). Lookups are case-insensitive and exact; an identity
// without an entry gets the table's default style. Tables are loaded once,
// usually from TOML, and are read-only afterwards.
package style

import (
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/flowtower/pkg/identity"
)

// Style is the visual appearance of a node.
type Style struct {
	Color string `toml:"color" json:"color,omitempty"`
	Shape string `toml:"shape" json:"shape,omitempty"`
	Icon  string `toml:"icon" json:"icon,omitempty"`
}

// IsZero reports whether no field is set.
func (s Style) IsZero() bool { return s == Style{} }

// merge fills empty fields of s from fallback.
func (s Style) merge(fallback Style) Style {
	if s.Color == "" {
		s.Color = fallback.Color
	}
	if s.Shape == "" {
		s.Shape = fallback.Shape
	}
	return s
}

// Built-in colours.
const (
	ColorSender   = "#2563eb"
	ColorReceiver = "#16a34a"
	ColorFocus    = "#dc2626"
	ColorCash     = "#64748b"
	ShapeDot      = "dot"
	ShapeImage    = "image"
)

// Reserved table keys in configuration files.
const (
	KeyDefault  = "default"
	KeyReceiver = "receiver"
	KeyFocus    = "focus"
)

// Table resolves identities to styles.
type Table struct {
	entries map[string]Style

	Default  Style // used when no entry matches
	Receiver Style // used instead of Default for nodes that never send, if set
	Focus    Style // highlighted search entity
}

// NewTable builds a table from entries keyed by prefix. Keys are
// normalized; the reserved keys default, receiver and focus set the
// corresponding fields. Entries missing a colour or shape inherit them
// from the default. The built-in cash entries are kept unless overridden.
func NewTable(entries map[string]Style) *Table {
	def := DefaultTable()
	t := &Table{entries: maps.Clone(def.entries)}
	t.Default = def.Default
	t.Receiver = def.Receiver
	t.Focus = def.Focus

	for key, s := range entries {
		switch strings.ToLower(strings.TrimSpace(key)) {
		case KeyDefault:
			t.Default = s.merge(def.Default)
		case KeyReceiver:
			t.Receiver = s
		case KeyFocus:
			t.Focus = s
		}
	}
	for key, s := range entries {
		switch strings.ToLower(strings.TrimSpace(key)) {
		case KeyDefault, KeyReceiver, KeyFocus:
			continue
		}
		t.entries[identity.Normalize(key)] = s.merge(t.Default)
	}
	t.Receiver = t.Receiver.merge(t.Default)
	t.Focus = t.Focus.merge(t.Default)
	return t
}

// DefaultTable returns the built-in table. It has no prefix entries;
// the cash sentinels are styled grey.
func DefaultTable() *Table {
	return &Table{
		entries: map[string]Style{
			identity.Cash.Prefix():       {Color: ColorCash, Shape: ShapeDot},
			identity.EntityCash.Prefix(): {Color: ColorCash, Shape: ShapeDot},
		},
		Default:  Style{Color: ColorSender, Shape: ShapeDot},
		Receiver: Style{Color: ColorReceiver, Shape: ShapeDot},
		Focus:    Style{Color: ColorFocus, Shape: ShapeDot},
	}
}

// Lookup returns the entry for id's prefix and whether one exists.
func (t *Table) Lookup(id identity.ID) (Style, bool) {
	if t == nil {
		return Style{}, false
	}
	s, ok := t.entries[identity.Normalize(id.Prefix())]
	return s, ok
}

// Resolve returns the style for id, falling back to the default.
// It never fails.
func (t *Table) Resolve(id identity.ID) Style {
	if s, ok := t.Lookup(id); ok {
		return s
	}
	if t == nil {
		return DefaultTable().Default
	}
	return t.Default
}

// Keys returns the configured prefixes in sorted order.
func (t *Table) Keys() []string {
	if t == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(t.entries))
}

// Len returns the number of prefix entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Entries returns a copy of the table, including the reserved keys, in the
// form accepted by [NewTable].
func (t *Table) Entries() map[string]Style {
	if t == nil {
		t = DefaultTable()
	}
	out := maps.Clone(t.entries)
	if out == nil {
		out = make(map[string]Style, 3)
	}
	out[KeyDefault] = t.Default
	out[KeyReceiver] = t.Receiver
	out[KeyFocus] = t.Focus
	return out
}
