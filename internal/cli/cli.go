// Package cli implements the flowtower command-line interface.
package cli

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowtower/pkg/cache"
	"github.com/matzehuels/flowtower/pkg/pipeline"
	"github.com/matzehuels/flowtower/pkg/style"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "flowtower"

	// redisEnv names the environment variable read when --redis is not set.
	redisEnv = "FLOWTOWER_REDIS_URL"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	noCache    bool
	redisURL   string

	config *style.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner() (*pipeline.Runner, error) {
	store, err := c.newCache()
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, nil, c.Logger), nil
}

// newCache picks the cache backend from the persistent flags: none with
// --no-cache, Redis with --redis, otherwise files under cacheDir.
func (c *CLI) newCache() (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	if url := c.redisAddr(); url != "" {
		rc, err := cache.NewRedisCache(cache.RedisConfig{URL: url})
		if err != nil {
			return nil, err
		}
		c.Logger.Debug("using redis cache", "prefix", rc.Prefix())
		return rc, nil
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Debug("cache disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

func (c *CLI) redisAddr() string {
	if c.redisURL != "" {
		return c.redisURL
	}
	return os.Getenv(redisEnv)
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig reads --config, or the default config file when it exists.
// Without either it returns a nil Config, which means built-in defaults.
func (c *CLI) loadConfig() (*style.Config, error) {
	if c.config != nil {
		return c.config, nil
	}
	path := c.configPath
	if path == "" {
		p, ok := style.DefaultPath()
		if !ok {
			return nil, nil
		}
		path = p
	}
	cfg, err := style.LoadFile(path)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded config", "path", path, "styles", len(cfg.Styles))
	c.config = cfg
	return cfg, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/flowtower/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// amountFlag is a float64 flag printed without exponent, so that help shows
// "default 10000000" rather than "1e+07". Underscores are allowed as digit
// separators.
type amountFlag float64

func (a *amountFlag) String() string { return strconv.FormatFloat(float64(*a), 'f', -1, 64) }
func (a *amountFlag) Type() string   { return "amount" }

func (a *amountFlag) Set(s string) error {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, "_", ""), 64)
	if err != nil {
		return err
	}
	*a = amountFlag(v)
	return nil
}

// flowFlags holds the pipeline flags shared by build, render, layout and serve.
type flowFlags struct {
	mode         string
	kinds        []string
	allKinds     bool
	minValue     float64
	pairMinimum  bool
	search       string
	focus        string
	counterparty string
	itemized     bool
	layout       string
	maxLevel     int
	demoteHubs   bool
	hubThreshold int
	direction    string
	refresh      bool
}

// defaultFlowFlags returns the CLI defaults.
func defaultFlowFlags() flowFlags {
	return flowFlags{
		minValue: pipeline.DefaultMinValue,
	}
}

// register adds the pipeline flags to cmd.
func (f *flowFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.mode, "mode", f.mode, "identity mode: account (default), entity")
	fs.StringSliceVar(&f.kinds, "kinds", f.kinds, "transaction kinds that become edges (comma-separated)")
	fs.BoolVar(&f.allKinds, "all-kinds", f.allKinds, "turn every row into an edge regardless of kind")
	fs.Var((*amountFlag)(&f.minValue), "min-value", "minimum transaction value")
	fs.BoolVar(&f.pairMinimum, "pair-minimum", f.pairMinimum, "apply --min-value to pair totals instead of single rows")
	fs.StringVarP(&f.search, "search", "s", f.search, "keep edges whose endpoints contain this text")
	fs.StringVar(&f.focus, "focus", f.focus, "highlight one entity and keep only its edges")
	fs.StringVar(&f.counterparty, "counterparty", f.counterparty, "with --focus, keep only flows with this entity")
	fs.BoolVar(&f.itemized, "itemized", f.itemized, "one edge per transaction instead of per pair")
	fs.StringVarP(&f.layout, "layout", "l", f.layout, "level strategy: topdown (default), leftright, timeline")
	fs.IntVar(&f.maxLevel, "max-level", f.maxLevel, "highest level used by the timeline strategy")
	fs.BoolVar(&f.demoteHubs, "demote-hubs", f.demoteHubs, "push high-degree nodes one level down")
	fs.IntVar(&f.hubThreshold, "hub-threshold", f.hubThreshold, "degree above which a node counts as a hub")
	fs.StringVar(&f.direction, "direction", f.direction, "layout direction: TB (default), LR")
	fs.BoolVar(&f.refresh, "refresh", f.refresh, "ignore cached results")
}

// options converts the flags into pipeline options. Values from the
// [defaults] table of the config file apply to flags left unset.
func (c *CLI) options(cmd *cobra.Command, f *flowFlags) (pipeline.Options, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return pipeline.Options{}, err
	}
	applyConfigDefaults(cmd, f, cfg)

	return pipeline.Options{
		Mode:         f.mode,
		Kinds:        f.kinds,
		AllKinds:     f.allKinds,
		MinValue:     f.minValue,
		PairMinimum:  f.pairMinimum,
		Search:       f.search,
		Focus:        f.focus,
		Counterparty: f.counterparty,
		Itemized:     f.itemized,
		Layout:       f.layout,
		MaxLevel:     f.maxLevel,
		DemoteHubs:   f.demoteHubs,
		HubThreshold: f.hubThreshold,
		Direction:    f.direction,
		Refresh:      f.refresh,
		Styles:       cfg.Table(),
		Logger:       c.Logger,
	}, nil
}

func applyConfigDefaults(cmd *cobra.Command, f *flowFlags, cfg *style.Config) {
	if cfg == nil {
		return
	}
	changed := func(name string) bool {
		fl := cmd.Flags().Lookup(name)
		return fl != nil && fl.Changed
	}
	d := cfg.Defaults
	if cfg.IsSet("defaults", "min_value") && !changed("min-value") {
		f.minValue = d.MinValue
	}
	if cfg.IsSet("defaults", "layout") && !changed("layout") {
		f.layout = d.Layout
	}
	if cfg.IsSet("defaults", "direction") && !changed("direction") {
		f.direction = d.Direction
	}
	if cfg.IsSet("defaults", "mode") && !changed("mode") {
		f.mode = d.Mode
	}
	if cfg.IsSet("defaults", "kinds") && !changed("kinds") {
		f.kinds = d.Kinds
	}
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// inputPath returns the optional dataset argument.
func inputPath(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
