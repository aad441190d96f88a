// Package ledger reads bank-transaction ledger tables.
//
// A ledger is a semicolon-separated table with one row per transaction.
// Each row becomes an immutable [Record] holding the raw strings exactly as
// read; turning amounts and dates into values is done on demand by
// [ParseAmount] and [ParseDate], so a malformed cell only affects its own row.
//
// # Columns
//
// Columns are matched by header name, case- and whitespace-insensitively:
//
//	JENIS TRANSAKSI   transaction kind (required)
//	BANK, NO REK      bank code and account number of the ledger owner
//	BANK LAWAN        counterpart bank code
//	NO REK LAWAN      counterpart account number
//	PEMILIK REKENING  owner name
//	NAMA LAWAN        counterparty name
//	MUTASI            amount, locale formatted ("1.000.000,00") (required)
//	TGL/TRANS         transaction date, day first ("31/01/2024")
//
// English aliases (KIND, ACCOUNT, AMOUNT, DATE, ...) are accepted as well.
package ledger

import (
	"fmt"
	"slices"
	"strings"
)

// Record is one raw ledger row.
type Record struct {
	Row              int    // 1-based data row number (header excluded)
	Kind             string // transaction kind, e.g. "TRANSFER KELUAR"
	SourceBank       string
	SourceAccount    string
	TargetBank       string
	TargetAccount    string
	OwnerName        string
	CounterpartyName string
	AmountRaw        string
	DateRaw          string
}

// Kinds is a set of transaction kinds that produce graph edges.
// Keys are normalized (trimmed, uppercased).
type Kinds map[string]bool

// NewKinds builds a normalized kind set.
func NewKinds(kinds ...string) Kinds {
	k := make(Kinds, len(kinds))
	for _, s := range kinds {
		if s = normalizeKind(s); s != "" {
			k[s] = true
		}
	}
	return k
}

// DefaultKinds returns the outgoing-transfer kinds used when none are configured.
func DefaultKinds() Kinds {
	return NewKinds("TRANSFER KELUAR", "TRANSFER OUT", "PAYMENT")
}

// Contains reports whether kind is in the set.
func (k Kinds) Contains(kind string) bool {
	return k[normalizeKind(kind)]
}

// List returns the kinds in sorted order.
func (k Kinds) List() []string {
	out := make([]string, 0, len(k))
	for s := range k {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}

func normalizeKind(s string) string {
	return strings.Join(strings.Fields(strings.ToUpper(s)), " ")
}

// RowError describes a recoverable problem with a single ledger row.
// Rows with a RowError on a required cell are skipped and counted; they
// never abort a pipeline run.
type RowError struct {
	Row    int    // 1-based data row number
	Column string // logical column name, e.g. "MUTASI"
	Value  string // raw cell content
	Err    error
}

// Error implements the error interface.
func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %s %q: %v", e.Row, e.Column, e.Value, e.Err)
}

// Unwrap returns the underlying parse error.
func (e *RowError) Unwrap() error { return e.Err }
