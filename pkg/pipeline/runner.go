package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/flowtower/pkg/cache"
	"github.com/matzehuels/flowtower/pkg/flow"
	"github.com/matzehuels/flowtower/pkg/flow/layering"
	"github.com/matzehuels/flowtower/pkg/graph"
	"github.com/matzehuels/flowtower/pkg/identity"
	"github.com/matzehuels/flowtower/pkg/ledger"
	"github.com/matzehuels/flowtower/pkg/observability"
)

// Cache key types reported to the cache hooks.
const (
	keyTypeGraph  = "graph"
	keyTypeRender = "render"
)

// SourceUpload is the load source reported for in-memory datasets.
const SourceUpload = "upload"

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → build → layout → render pipeline with caching.
// Artifacts are rendered only when the graph is not empty.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	loadStart := time.Now()
	records, err := r.Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	loadTime := time.Since(loadStart)

	result, err := r.Run(ctx, records, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.LoadTime = loadTime
	if result.Status != StatusOK {
		r.Logger.Warn(result.Status.Message(), "rows", result.Stats.Rows)
		return result, nil
	}

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, result, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load reads the ledger named by opts. Data takes precedence over Path.
// With neither set Load returns no records and no error, which Run turns
// into StatusNoData.
func (r *Runner) Load(ctx context.Context, opts Options) ([]ledger.Record, error) {
	source := opts.Path
	if opts.Data != nil {
		source = SourceUpload
	}
	if source == "" {
		return nil, nil
	}

	observability.Pipeline().OnLoadStart(ctx, source)
	start := time.Now()

	var records []ledger.Record
	var err error
	if opts.Data != nil {
		records, err = ledger.ReadCSV(bytes.NewReader(opts.Data))
	} else {
		records, err = ledger.ReadFile(opts.Path)
	}

	observability.Pipeline().OnLoadComplete(ctx, source, len(records), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("loaded ledger", "source", source, "rows", len(records), "duration", time.Since(start))
	return records, nil
}

// cachedBuild is the cache representation of a built graph.
type cachedBuild struct {
	Status      Status        `json:"status"`
	Export      graph.Graph   `json:"graph"`
	Suggestions []identity.ID `json:"suggestions,omitempty"`
	Stats       Stats         `json:"stats"`
	Rows        int           `json:"rows"`
	Excluded    int           `json:"excluded"`
}

// Run builds and levels records with caching.
func (r *Runner) Run(ctx context.Context, records []ledger.Record, opts Options) (*Result, error) {
	result, _, err := r.RunWithCacheInfo(ctx, records, opts)
	return result, err
}

// RunWithCacheInfo builds and levels records with caching and returns cache hit info.
func (r *Runner) RunWithCacheInfo(ctx context.Context, records []ledger.Record, opts Options) (*Result, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	cacheKey := r.Keyer.GraphKey(DatasetHash(records), opts.GraphKeyOpts())
	if !opts.Refresh {
		if result, ok := r.cachedResult(ctx, cacheKey); ok {
			r.Logger.Debug("graph cache hit", "run", result.RunID, "nodes", len(result.Export.Nodes))
			return result, true, nil
		}
	}

	observability.Pipeline().OnBuildStart(ctx, len(records))
	result, err := Build(records, opts)
	if err != nil {
		observability.Pipeline().OnBuildComplete(ctx, 0, 0, 0, err)
		return nil, false, fmt.Errorf("build: %w", err)
	}
	observability.Pipeline().OnBuildComplete(ctx, result.Stats.Edges, result.Stats.Skipped, result.Stats.BuildTime, nil)
	if result.Status == StatusOK {
		observability.Pipeline().OnLayoutStart(ctx, opts.Layout, result.Stats.NodeCount)
		observability.Pipeline().OnLayoutComplete(ctx, opts.Layout, result.Stats.LayoutTime, nil)
	}

	result.RunID = uuid.NewString()
	r.finish(result)

	r.Logger.Info("built graph",
		"run", result.RunID,
		"status", result.Status,
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.Summaries,
		"skipped", result.Stats.Skipped,
		"duration", result.Stats.BuildTime+result.Stats.LayoutTime)

	data, err := json.Marshal(cachedBuild{
		Status:      result.Status,
		Export:      result.Export,
		Suggestions: result.Suggestions,
		Stats:       result.Stats,
		Rows:        result.Report.Rows,
		Excluded:    result.Report.Excluded,
	})
	if err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLGraph); err != nil {
			r.Logger.Warn("cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, keyTypeGraph, len(data))
		}
	}
	return result, false, nil
}

func (r *Runner) cachedResult(ctx context.Context, key string) (*Result, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyTypeGraph)
		return nil, false
	}

	var cb cachedBuild
	if err := json.Unmarshal(data, &cb); err != nil {
		observability.Cache().OnCacheMiss(ctx, keyTypeGraph)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyTypeGraph)

	result := &Result{
		RunID:       uuid.NewString(),
		Status:      cb.Status,
		Export:      cb.Export,
		Suggestions: cb.Suggestions,
		Stats:       cb.Stats,
		Report: flow.Report{
			Rows:     cb.Rows,
			Excluded: cb.Excluded,
			Edges:    cb.Stats.Edges,
		},
		CacheInfo: CacheInfo{GraphHit: true},
	}
	r.finish(result)
	return result, true
}

func (r *Runner) finish(result *Result) {
	if result.Export.Nodes == nil {
		result.Export.Nodes = []graph.Node{}
	}
	if result.Export.Edges == nil {
		result.Export.Edges = []graph.Edge{}
	}
	if data, err := graph.Marshal(result.Export); err == nil {
		result.GraphHash = cache.Hash(data)
	}
}

// RenderWithCacheInfo renders result.Export in every format of opts with
// caching and reports whether all artifacts came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, result *Result, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	allCached := true
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		key := r.Keyer.RenderKey(result.GraphHash, opts.RenderKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, keyTypeRender)
			artifacts[format] = data
			continue
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeRender)
		allCached = false
		break
	}
	if allCached && len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := Render(ctx, result.Export, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.RenderKey(result.GraphHash, opts.RenderKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLRender); err == nil {
			observability.Cache().OnCacheSet(ctx, keyTypeRender, len(data))
		}
	}
	return rendered, false, nil
}

// Compare levels records under several strategies concurrently.
// Results are not cached.
func (r *Runner) Compare(ctx context.Context, records []ledger.Record, opts Options, strategies []layering.Strategy) (*Comparison, error) {
	r.applyLogger(&opts)
	start := time.Now()
	cmp, err := Compare(ctx, records, opts, strategies)
	if err != nil {
		return nil, err
	}
	r.Logger.Info("compared strategies",
		"strategies", len(cmp.Levels),
		"nodes", len(cmp.Nodes),
		"duration", time.Since(start))
	return cmp, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil || opts.Logger == discard {
		opts.Logger = r.Logger
	}
}

// DatasetHash returns a content hash of records for cache keys.
func DatasetHash(records []ledger.Record) string {
	data, _ := json.Marshal(records)
	return cache.Hash(data)
}
