package graph

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/matzehuels/flowtower/pkg/flow"
)

// Edge width bounds.
const (
	MinWidth = 2
	MaxWidth = 15
)

// DateFormat is the day-first layout used in labels.
const DateFormat = "02/01/2006"

var printer = message.NewPrinter(language.Indonesian)

// FormatAmount renders v as "x.xx Miliar" (|v| >= 1e9), "x.xx Juta"
// (|v| >= 1e6) or a dot-grouped integer.
func FormatAmount(v float64) string {
	switch abs := math.Abs(v); {
	case abs >= 1e9:
		return fmt.Sprintf("%.2f Miliar", v/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.2f Juta", v/1e6)
	default:
		return printer.Sprintf("%d", int64(math.Round(v)))
	}
}

// EdgeLabel builds the text shown on an edge: the latest date, the amount
// and, for aggregated edges, the number of transactions.
func EdgeLabel(s flow.EdgeSummary, itemized bool) string {
	parts := make([]string, 0, 3)
	if s.HasDate() {
		parts = append(parts, s.LastDate.Format(DateFormat))
	}
	parts = append(parts, FormatAmount(s.TotalValue))
	if !itemized && s.Frequency > 1 {
		parts = append(parts, fmt.Sprintf("%dx transaksi", s.Frequency))
	}
	return strings.Join(parts, " | ")
}

// EdgeWidth scales value linearly against max into [MinWidth, MaxWidth].
// Itemized edges and graphs without a positive maximum use MinWidth.
func EdgeWidth(value, max float64, itemized bool) float64 {
	if itemized || max <= 0 || math.IsNaN(value) {
		return MinWidth
	}
	w := value / max * MaxWidth
	return math.Min(MaxWidth, math.Max(MinWidth, w))
}
