// Package graph provides the serialization types handed to renderers.
//
// This package defines the canonical wire format for flowtower's graph data,
// used for JSON files, API responses, caching and the DOT exporter.
//
// # Architecture
//
// The package sits at the serialization boundary:
//
//   - [flow.Graph]: internal representation (nodes derived from edges)
//   - [Graph]: display-ready representation (this package)
//
// Use [Export] to convert a leveled flow graph. Export resolves node styles,
// builds edge labels, scales edge widths and applies focus colouring.
//
// # Format
//
//	{
//	  "nodes": [{"id": "BCA|1", "label": "BCA|1", "size": 40, "color": "#2563eb", "shape": "dot", "level": 0}],
//	  "edges": [{"source": "BCA|1", "target": "CASH|KAS_BESAR", "label": "01/01/2024 | 1.00 Juta", "width": 15, "color": "rgba(200, 200, 200, 0.5)"}]
//	}
//
// Common operations:
//
//	out := graph.Export(g, graph.ExportOptions{Styles: table})
//	data, _ := graph.Marshal(out)
//	graph.WriteFile(out, "flows.json")
//	parsed, _ := graph.ReadFile("flows.json")
//
// # Labels
//
// Amounts are written in Indonesian style: values of at least one billion as
// "x.xx Miliar", at least one million as "x.xx Juta", smaller values as
// dot-grouped integers. Aggregated edges with more than one transaction get a
// " | Nx transaksi" suffix, and the latest transaction date is prefixed as
// dd/mm/yyyy.
//
// # Concurrency
//
// All functions are safe for concurrent use.
package graph
