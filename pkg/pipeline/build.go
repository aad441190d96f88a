package pipeline

import (
	"slices"
	"time"

	"github.com/matzehuels/flowtower/pkg/flow"
	"github.com/matzehuels/flowtower/pkg/flow/layering"
	"github.com/matzehuels/flowtower/pkg/graph"
	"github.com/matzehuels/flowtower/pkg/identity"
	"github.com/matzehuels/flowtower/pkg/ledger"
)

// Build runs the build and layout stages on records.
//
// Build is a pure function of its arguments: the same records and options
// always produce the same graph. An empty dataset or a filter that removes
// every edge is reported through Result.Status with a nil error.
func Build(records []ledger.Record, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	start := time.Now()
	st := prepare(records, opts)
	result := &Result{
		Status:      st.status,
		Report:      st.report,
		Suggestions: st.suggestions,
		Stats: Stats{
			Rows:      st.report.Rows,
			Edges:     len(st.edges),
			Summaries: len(st.summaries),
			Skipped:   st.report.SkippedCount(),
		},
	}
	result.Stats.BuildTime = time.Since(start)
	if st.status != StatusOK {
		return result, nil
	}

	start = time.Now()
	assigner, err := layering.New(opts.layering)
	if err != nil {
		return nil, err
	}
	g := flow.New(st.summaries, st.edges, flow.WithSizeRange(opts.SizeRange))
	g = g.WithLevels(assigner.Assign(st.edges))
	result.Stats.LayoutTime = time.Since(start)

	result.Graph = g
	result.Export = graph.Export(g, graph.ExportOptions{
		Styles:       opts.Styles,
		Focus:        opts.focus,
		Counterparty: opts.counterparty,
		Itemized:     opts.Itemized,
		Direction:    opts.Direction,
		Layout:       opts.Layout,
		MinValue:     opts.MinValue,
	})
	result.Stats.NodeCount = g.NodeCount()
	return result, nil
}

// stage holds the filtered edge set shared by Build and Runner.Compare.
type stage struct {
	status      Status
	report      flow.Report
	edges       []flow.Edge
	summaries   []flow.EdgeSummary
	suggestions []identity.ID
}

// prepare turns records into filtered raw edges and their summaries.
// opts must be validated.
func prepare(records []ledger.Record, opts Options) stage {
	all, report := flow.BuildEdges(records, flow.BuildOptions{
		Mode:     opts.mode,
		Kinds:    opts.kinds,
		AllKinds: opts.AllKinds,
	})
	st := stage{report: report}
	if n := report.SkippedCount(); n > 0 {
		opts.Logger.Warn("skipped rows with malformed amounts", "skipped", n, "first", report.Skipped[0])
	}
	if n := len(report.DateWarnings); n > 0 {
		opts.Logger.Debug("kept rows without a usable date", "rows", n)
	}
	if len(all) == 0 {
		st.status = StatusNoData
		return st
	}

	edges := all
	if !opts.PairMinimum {
		edges = flow.Threshold(edges, opts.MinValue)
	}
	edges = flow.Search(edges, opts.Search)
	switch {
	case !opts.counterparty.IsZero():
		edges = flow.Between(edges, opts.focus, opts.counterparty)
	case !opts.focus.IsZero():
		edges = flow.Involving(edges, opts.focus)
	}

	var summaries []flow.EdgeSummary
	if opts.Itemized {
		summaries = flow.Itemize(edges)
	} else {
		summaries = flow.Aggregate(edges)
	}
	if opts.PairMinimum {
		summaries = flow.ThresholdSummaries(summaries, opts.MinValue)
		edges = withinPairs(edges, summaries)
	}

	if len(summaries) == 0 {
		st.status = StatusNoMatch
		st.suggestions = suggest(all, opts)
		return st
	}
	st.edges = edges
	st.summaries = summaries
	return st
}

// withinPairs keeps the edges whose (source, target) pair has a summary.
func withinPairs(edges []flow.Edge, summaries []flow.EdgeSummary) []flow.Edge {
	type pair struct{ source, target identity.ID }
	kept := make(map[pair]bool, len(summaries))
	for _, s := range summaries {
		kept[pair{s.Source, s.Target}] = true
	}
	return slices.DeleteFunc(slices.Clone(edges), func(e flow.Edge) bool {
		return !kept[pair{e.Source, e.Target}]
	})
}

// suggest offers entities close to the search term or focus when either
// matched nothing in the full edge set.
func suggest(all []flow.Edge, opts Options) []identity.ID {
	entities := flow.Entities(all)
	if opts.Search != "" && len(flow.Search(all, opts.Search)) == 0 {
		return flow.Suggest(entities, opts.Search, DefaultSuggestions)
	}
	if !opts.focus.IsZero() && !slices.Contains(entities, opts.focus) {
		return flow.Suggest(entities, opts.Focus, DefaultSuggestions)
	}
	return nil
}
