// Package pipeline provides the core flow-graph pipeline for flowtower.
//
// This package implements the complete load → build → layout → render
// pipeline used by the CLI and the HTTP server. By centralizing this logic,
// every entry point filters, aggregates and levels a ledger the same way.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Load: read ledger rows from a file or an uploaded table
//  2. Build: turn rows into edges, filter them, and aggregate summaries
//  3. Layout: assign a level to every node with a layering strategy
//  4. Render: export the graph as JSON, DOT, SVG or PNG
//
// Build and Layout are pure: [Build] is a function of the records and the
// options only, so running it twice on the same input yields the same graph.
// [Runner] adds loading, caching, hooks and rendering around it.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Path:     "ledger.csv",
//	    MinValue: pipeline.DefaultMinValue,
//	    Layout:   "topdown",
//	    Formats:  []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if result.Status != pipeline.StatusOK {
//	    fmt.Println(result.Status.Message())
//	}
//	svg := result.Artifacts["svg"]
//
// # Empty results
//
// An empty dataset and a filter that removes every edge are not errors.
// Both return a Result with a nil error and a [Status] telling them apart.
package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowtower/pkg/cache"
	errs "github.com/matzehuels/flowtower/pkg/errors"
	"github.com/matzehuels/flowtower/pkg/flow"
	"github.com/matzehuels/flowtower/pkg/flow/layering"
	"github.com/matzehuels/flowtower/pkg/graph"
	"github.com/matzehuels/flowtower/pkg/identity"
	"github.com/matzehuels/flowtower/pkg/ledger"
	"github.com/matzehuels/flowtower/pkg/style"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultMinValue is the minimum transaction value shown by default.
	DefaultMinValue = 10_000_000

	// DefaultSuggestions is the number of "did you mean" entities offered
	// when a search matches nothing.
	DefaultSuggestions = 5
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
)

var discard = log.NewWithOptions(io.Discard, log.Options{})

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the flow pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Input options. Data takes precedence over Path.
	Path string `json:"-"`
	Data []byte `json:"-"`

	// Build options
	Mode         string   `json:"mode,omitempty"` // "account" (default) or "entity"
	Kinds        []string `json:"kinds,omitempty"`
	AllKinds     bool     `json:"all_kinds,omitempty"`
	MinValue     float64  `json:"min_value"`
	PairMinimum  bool     `json:"pair_minimum,omitempty"` // compare MinValue to pair totals instead of rows
	Search       string   `json:"search,omitempty"`
	Focus        string   `json:"focus,omitempty"`
	Counterparty string   `json:"counterparty,omitempty"`
	Itemized     bool     `json:"itemized,omitempty"`

	// Layout options
	Layout       string `json:"layout,omitempty"`
	MaxLevel     int    `json:"max_level,omitempty"`
	DemoteHubs   bool   `json:"demote_hubs,omitempty"`
	HubThreshold int    `json:"hub_threshold,omitempty"`
	Direction    string `json:"direction,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`
	Refresh  bool     `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Styles    *style.Table   `json:"-"`
	SizeRange flow.SizeRange `json:"-"`
	Logger    *log.Logger    `json:"-"`

	// resolved by ValidateAndSetDefaults
	mode         identity.Mode
	kinds        ledger.Kinds
	layering     layering.Options
	focus        identity.ID
	counterparty identity.ID
	validated    bool
}

// ValidateAndSetDefaults checks the options and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForBuild(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForBuild checks the build options.
func (o *Options) ValidateForBuild() error {
	mode, ok := identity.ParseMode(o.Mode)
	if !ok {
		return errs.New(errs.ErrCodeInvalidInput, "invalid mode %q (must be one of: account, entity)", o.Mode)
	}
	o.mode = mode
	o.Mode = mode.String()

	if err := errs.ValidateThreshold(o.MinValue); err != nil {
		return err
	}
	if err := errs.ValidateSearchTerm(o.Search); err != nil {
		return err
	}

	o.kinds = nil
	if len(o.Kinds) > 0 {
		o.kinds = ledger.NewKinds(o.Kinds...)
		o.Kinds = o.kinds.List()
	}

	o.focus = parseID(o.Focus, mode)
	o.counterparty = parseID(o.Counterparty, mode)
	if !o.counterparty.IsZero() && o.focus.IsZero() {
		return errs.New(errs.ErrCodeInvalidInput, "counterparty %q requires a focus entity", o.Counterparty)
	}
	if !o.focus.IsZero() {
		o.Focus = o.focus.String()
	}
	if !o.counterparty.IsZero() {
		o.Counterparty = o.counterparty.String()
	}

	if o.Logger == nil {
		o.Logger = discard
	}
	return nil
}

// ValidateForLayout checks the layout options and applies defaults.
func (o *Options) ValidateForLayout() error {
	lo := layering.Options{
		Strategy:     layering.Strategy(o.Layout),
		MaxLevel:     o.MaxLevel,
		DemoteHubs:   o.DemoteHubs,
		HubThreshold: o.HubThreshold,
	}
	if err := lo.ValidateAndSetDefaults(); err != nil {
		return err
	}
	o.layering = lo
	o.Layout = lo.Strategy.String()
	o.MaxLevel = lo.MaxLevel
	o.HubThreshold = lo.HubThreshold

	switch {
	case o.Direction == "" || eqFold(o.Direction, graph.DirectionTopDown):
		o.Direction = graph.DirectionTopDown
	case eqFold(o.Direction, graph.DirectionLeftRight):
		o.Direction = graph.DirectionLeftRight
	default:
		return errs.New(errs.ErrCodeInvalidInput, "invalid direction %q (must be one of: TB, LR)", o.Direction)
	}
	return nil
}

// ValidateForRender checks the render options and applies defaults.
func (o *Options) ValidateForRender() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	return ValidateFormats(o.Formats)
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errs.New(errs.ErrCodeUnsupported, "invalid format: %q (must be one of: json, dot, svg, png)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// GraphKeyOpts returns cache key options for the built graph.
func (o *Options) GraphKeyOpts() cache.GraphKeyOpts {
	k := cache.GraphKeyOpts{
		Mode:         o.Mode,
		Kinds:        o.Kinds,
		AllKinds:     o.AllKinds,
		MinValue:     o.MinValue,
		PairMinimum:  o.PairMinimum,
		Search:       identity.Normalize(o.Search),
		Focus:        o.Focus,
		Counterparty: o.Counterparty,
		Itemized:     o.Itemized,
		Layout:       o.Layout,
		MaxLevel:     o.MaxLevel,
		DemoteHubs:   o.DemoteHubs,
		HubThreshold: o.HubThreshold,
		Direction:    o.Direction,
	}
	if o.Styles != nil {
		data, _ := json.Marshal(o.Styles.Entries())
		k.StylesHash = cache.Hash(data)
	}
	if o.SizeRange != (flow.SizeRange{}) {
		k.StylesHash += fmt.Sprintf(":%g-%g", o.SizeRange.Min, o.SizeRange.Max)
	}
	return k
}

// RenderKeyOpts returns cache key options for one rendered format.
func (o *Options) RenderKeyOpts(format string) cache.RenderKeyOpts {
	return cache.RenderKeyOpts{
		Format:    format,
		Direction: o.Direction,
		Detailed:  o.Detailed,
	}
}

func parseID(s string, mode identity.Mode) identity.ID {
	if identity.Normalize(s) == "" {
		return identity.ID{}
	}
	if mode == identity.ModeEntity {
		return identity.ResolveEntity(s)
	}
	return identity.Parse(s)
}

func eqFold(a, b string) bool { return strings.EqualFold(strings.TrimSpace(a), b) }

// =============================================================================
// Results
// =============================================================================

// Status tells a usable graph apart from the two empty-result cases.
type Status int

const (
	// StatusOK means the graph has at least one edge.
	StatusOK Status = iota
	// StatusNoData means the dataset is missing, empty, or holds no
	// transaction of an eligible kind.
	StatusNoData
	// StatusNoMatch means the dataset has edges but the threshold or the
	// search removed all of them.
	StatusNoMatch
)

// String returns the status name used in JSON responses.
func (s Status) String() string {
	switch s {
	case StatusNoData:
		return "no_data"
	case StatusNoMatch:
		return "no_match"
	default:
		return "ok"
	}
}

// Message returns a user-facing description of the status.
func (s Status) Message() string {
	switch s {
	case StatusNoData:
		return "no data loaded"
	case StatusNoMatch:
		return "no transactions match the filter"
	default:
		return ""
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(b []byte) error {
	switch string(b) {
	case "ok":
		*s = StatusOK
	case "no_data":
		*s = StatusNoData
	case "no_match":
		*s = StatusNoMatch
	default:
		return errs.New(errs.ErrCodeInvalidInput, "unknown status %q", b)
	}
	return nil
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies the run in logs and API responses. It is set by
	// [Runner]; [Build] leaves it empty.
	RunID string

	// Status is StatusOK unless the graph is empty.
	Status Status

	// Report summarizes row handling during edge construction.
	Report flow.Report

	// Graph is the built flow graph with levels. It is nil when the result
	// was served from the cache or Status is not StatusOK.
	Graph *flow.Graph

	// Export is the display-ready graph handed to renderers.
	Export graph.Graph

	// GraphHash is the content hash of Export.
	GraphHash string

	// Suggestions lists entities close to the search term when nothing
	// matched it.
	Suggestions []identity.ID

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Levels returns the level of every exported node that has one.
func (r *Result) Levels() map[string]int {
	out := make(map[string]int, len(r.Export.Nodes))
	for _, n := range r.Export.Nodes {
		if n.Level != nil {
			out[n.ID] = *n.Level
		}
	}
	return out
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Rows       int
	Edges      int // raw edges after filtering
	Summaries  int
	NodeCount  int
	Skipped    int
	LoadTime   time.Duration
	BuildTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	GraphHit  bool // Whether the graph came from cache
	RenderHit bool // Whether all artifacts came from cache
}
