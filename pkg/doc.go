// Package pkg provides the core libraries for Flowtower money-flow graphs.
//
// # Overview
//
// Flowtower reads bank-transaction ledgers and turns them into a weighted
// directed graph of the money flowing between accounts or entities. Every
// node is assigned a level so the graph can be drawn in tiers. The pkg
// directory is organized into four areas:
//
//  1. Input: [ledger] and [identity] (rows, amounts, dates, node identity)
//  2. Domain: [flow] and [flow/layering] (edges, filters, levels)
//  3. Output: [graph], [style] and [render/nodelink] (export and drawing)
//  4. Orchestration: [pipeline] and [cache] (build, layout, render with caching)
//
// # Architecture
//
// The typical data flow through Flowtower:
//
//	ledger CSV
//	     ↓
//	[ledger] package (records, amount and date parsing)
//	     ↓
//	[flow] package (edges, threshold, search, aggregation)
//	     ↓
//	[flow/layering] package (level per node)
//	     ↓
//	[graph] package (export with styles)
//	     ↓
//	[render/nodelink] package (DOT, SVG, PNG)
//
// # Quick Start
//
//	records, _ := ledger.ReadFile("mutasi.csv")
//	result, _ := pipeline.Build(records, pipeline.Options{
//	    MinValue: 10_000_000,
//	    Layout:   "topdown",
//	})
//	if result.Status == pipeline.StatusOK {
//	    data, _ := graph.Marshal(result.Export)
//	    os.WriteFile("graph.json", data, 0o644)
//	}
//
// With caching, use a [pipeline.Runner]:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	result, _ := runner.Run(ctx, records, opts)
//	artifacts, _, _ := runner.RenderWithCacheInfo(ctx, result, opts)
//
// # Supporting Packages
//
// [errors] - Coded errors (INVALID_AMOUNT, NO_MATCH, ...) and input validators.
//
// [observability] - Hook interfaces for pipeline, cache and HTTP events.
//
// [buildinfo] - Version information set at build time.
//
// [ledger]: https://pkg.go.dev/github.com/matzehuels/flowtower/pkg/ledger
// [identity]: https://pkg.go.dev/github.com/matzehuels/flowtower/pkg/identity
// [flow]: https://pkg.go.dev/github.com/matzehuels/flowtower/pkg/flow
// [flow/layering]: https://pkg.go.dev/github.com/matzehuels/flowtower/pkg/flow/layering
// [graph]: https://pkg.go.dev/github.com/matzehuels/flowtower/pkg/graph
// [style]: https://pkg.go.dev/github.com/matzehuels/flowtower/pkg/style
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/flowtower/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/flowtower/pkg/pipeline
// [pipeline.Runner]: https://pkg.go.dev/github.com/matzehuels/flowtower/pkg/pipeline#Runner
// [cache]: https://pkg.go.dev/github.com/matzehuels/flowtower/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/flowtower/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/flowtower/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/flowtower/pkg/buildinfo
package pkg
