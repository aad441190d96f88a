package ledger

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	errs "github.com/matzehuels/flowtower/pkg/errors"
)

// nullMarkers are textual missing values that parse as a zero amount.
var nullMarkers = map[string]bool{
	"":     true,
	"NAN":  true,
	"NULL": true,
	"NONE": true,
	"<NA>": true,
}

// ParseAmountDecimal converts a locale-formatted amount into an exact decimal.
//
// Thousands separators (".") are stripped and the decimal comma (",") becomes
// a point before parsing. Missing values return zero. Any other residue is an
// INVALID_AMOUNT error: "1,000,000.00", "12abc" and "1,2,3" all fail.
func ParseAmountDecimal(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if nullMarkers[strings.ToUpper(s)] {
		return decimal.Zero, nil
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	if strings.ContainsAny(s, "eE") {
		return decimal.Zero, errs.New(errs.ErrCodeInvalidAmount, "cannot parse amount %q", raw)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errs.Wrap(errs.ErrCodeInvalidAmount, err, "cannot parse amount %q", raw)
	}
	return d, nil
}

// ParseAmount is [ParseAmountDecimal] returning a float64.
func ParseAmount(raw string) (float64, error) {
	d, err := ParseAmountDecimal(raw)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}

// dateLayouts are tried in order. All are day-first.
var dateLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02-01-2006",
	"2-1-2006",
	"02.01.2006",
	"2006-01-02",
	"2006-01-02 15:04:05",
}

// ParseDate parses a day-first transaction date.
// A missing value returns ok=false with no error; an unparseable value
// returns an INVALID_DATE error.
func ParseDate(raw string) (t time.Time, ok bool, err error) {
	s := strings.TrimSpace(raw)
	if nullMarkers[strings.ToUpper(s)] || s == "-" {
		return time.Time{}, false, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true, nil
		}
	}
	return time.Time{}, false, errs.New(errs.ErrCodeInvalidDate, "cannot parse date %q", raw)
}
