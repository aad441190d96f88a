package layering

import (
	"strings"

	errs "github.com/matzehuels/flowtower/pkg/errors"
	"github.com/matzehuels/flowtower/pkg/flow"
	"github.com/matzehuels/flowtower/pkg/identity"
)

// Strategy names a level assignment algorithm.
type Strategy string

const (
	StrategyTopDown   Strategy = "topdown"
	StrategyLeftRight Strategy = "leftright"
	StrategyTimeline  Strategy = "timeline"
)

// Defaults applied by [New] to zero-valued [Options] fields.
const (
	DefaultStrategy     = StrategyTopDown
	DefaultMaxLevel     = 10
	DefaultHubThreshold = 5
)

var strategies = []Strategy{StrategyTopDown, StrategyLeftRight, StrategyTimeline}

var aliases = map[string]Strategy{
	"top-down":   StrategyTopDown,
	"bfs":        StrategyTopDown,
	"left-right": StrategyLeftRight,
	"partition":  StrategyLeftRight,
	"time":       StrategyTimeline,
	"staircase":  StrategyTimeline,
}

// Strategies returns all strategies in presentation order.
func Strategies() []Strategy {
	return append([]Strategy(nil), strategies...)
}

// ParseStrategy resolves a strategy name or alias, case-insensitively.
// An empty name yields [DefaultStrategy].
func ParseStrategy(s string) (Strategy, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return DefaultStrategy, nil
	}
	for _, st := range strategies {
		if string(st) == key {
			return st, nil
		}
	}
	if st, ok := aliases[key]; ok {
		return st, nil
	}
	return "", errs.New(errs.ErrCodeInvalidStrategy, "unknown layout %q (want one of %s)", s, strings.Join(names(), ", "))
}

func (s Strategy) String() string { return string(s) }

func names() []string {
	out := make([]string, len(strategies))
	for i, s := range strategies {
		out[i] = string(s)
	}
	return out
}

// Assigner computes a level for every endpoint of edges.
type Assigner interface {
	Assign(edges []flow.Edge) map[identity.ID]int
}

// Func adapts a function to [Assigner].
type Func func(edges []flow.Edge) map[identity.ID]int

// Assign calls f(edges).
func (f Func) Assign(edges []flow.Edge) map[identity.ID]int { return f(edges) }

// Options configures [New].
type Options struct {
	Strategy Strategy
	// MaxLevel caps timeline levels. Zero means DefaultMaxLevel.
	MaxLevel int
	// DemoteHubs wraps the strategy with [DemoteHubs].
	DemoteHubs bool
	// HubThreshold is the degree above which a node is a hub.
	// Zero means DefaultHubThreshold.
	HubThreshold int
}

// ValidateAndSetDefaults checks o and fills zero fields with defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Strategy == "" {
		o.Strategy = DefaultStrategy
	}
	st, err := ParseStrategy(string(o.Strategy))
	if err != nil {
		return err
	}
	o.Strategy = st
	if o.MaxLevel < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "max level must not be negative, got %d", o.MaxLevel)
	}
	if o.MaxLevel == 0 {
		o.MaxLevel = DefaultMaxLevel
	}
	if o.HubThreshold < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "hub threshold must not be negative, got %d", o.HubThreshold)
	}
	if o.HubThreshold == 0 {
		o.HubThreshold = DefaultHubThreshold
	}
	return nil
}

// New returns the Assigner described by opts.
func New(opts Options) (Assigner, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	var base Assigner
	switch opts.Strategy {
	case StrategyTopDown:
		base = Func(TopDown)
	case StrategyLeftRight:
		base = Func(LeftRight)
	case StrategyTimeline:
		maxLevel := opts.MaxLevel
		base = Func(func(edges []flow.Edge) map[identity.ID]int { return Timeline(edges, maxLevel) })
	}

	if opts.DemoteHubs {
		return DemoteHubs(base, opts.HubThreshold), nil
	}
	return base, nil
}
