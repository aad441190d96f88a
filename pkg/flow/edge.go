package flow

import (
	"time"

	"github.com/matzehuels/flowtower/pkg/identity"
	"github.com/matzehuels/flowtower/pkg/ledger"
)

// Edge is a single directed flow created from one ledger row.
type Edge struct {
	Source identity.ID
	Target identity.ID
	Value  float64
	Date   time.Time // zero when the row has no usable date
	Row    int       // ledger row the edge was built from
}

// HasDate reports whether the edge carries a transaction date.
func (e Edge) HasDate() bool { return !e.Date.IsZero() }

// EdgeSummary aggregates all edges sharing a (source, target) pair.
type EdgeSummary struct {
	Source     identity.ID
	Target     identity.ID
	TotalValue float64
	LastDate   time.Time // latest non-zero date in the group, zero if none
	Frequency  int       // number of contributing edges, 1 when itemized
}

// HasDate reports whether any contributing edge carried a date.
func (s EdgeSummary) HasDate() bool { return !s.LastDate.IsZero() }

// BuildOptions configures [BuildEdges].
type BuildOptions struct {
	// Mode selects account or entity identities.
	Mode identity.Mode
	// Kinds lists the transaction kinds that become edges.
	// Nil means [ledger.DefaultKinds].
	Kinds ledger.Kinds
	// AllKinds disables kind filtering entirely.
	AllKinds bool
}

// Report summarizes what happened to each input row during [BuildEdges].
type Report struct {
	Rows     int // rows read
	Excluded int // rows dropped because of their kind
	Edges    int // edges produced

	// Skipped holds rows excluded because their amount could not be parsed.
	Skipped []*ledger.RowError
	// DateWarnings holds rows kept without a date because their date
	// could not be parsed.
	DateWarnings []*ledger.RowError
}

// SkippedCount returns the number of rows skipped for data-quality reasons.
func (r Report) SkippedCount() int { return len(r.Skipped) }

// BuildEdges converts ledger rows into raw edges.
//
// Rows whose kind is not in the configured set are dropped silently.
// Rows with a malformed amount are skipped and recorded in the report.
// Rows with a malformed date keep their edge without a date.
func BuildEdges(records []ledger.Record, opts BuildOptions) ([]Edge, Report) {
	kinds := opts.Kinds
	if kinds == nil {
		kinds = ledger.DefaultKinds()
	}

	report := Report{Rows: len(records)}
	edges := make([]Edge, 0, len(records))
	for _, r := range records {
		if !opts.AllKinds && !kinds.Contains(r.Kind) {
			report.Excluded++
			continue
		}

		value, err := ledger.ParseAmount(r.AmountRaw)
		if err != nil {
			report.Skipped = append(report.Skipped, &ledger.RowError{
				Row: r.Row, Column: "MUTASI", Value: r.AmountRaw, Err: err,
			})
			continue
		}

		date, _, err := ledger.ParseDate(r.DateRaw)
		if err != nil {
			report.DateWarnings = append(report.DateWarnings, &ledger.RowError{
				Row: r.Row, Column: "TGL/TRANS", Value: r.DateRaw, Err: err,
			})
		}

		src, dst := endpoints(r, opts.Mode)
		edges = append(edges, Edge{
			Source: src,
			Target: dst,
			Value:  value,
			Date:   date,
			Row:    r.Row,
		})
	}
	report.Edges = len(edges)
	return edges, report
}

func endpoints(r ledger.Record, mode identity.Mode) (identity.ID, identity.ID) {
	if mode == identity.ModeEntity {
		return identity.ResolveEntity(r.OwnerName), identity.ResolveEntity(r.CounterpartyName)
	}
	return identity.Resolve(r.SourceBank, r.SourceAccount), identity.Resolve(r.TargetBank, r.TargetAccount)
}
