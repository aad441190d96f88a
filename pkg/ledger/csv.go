package ledger

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	errs "github.com/matzehuels/flowtower/pkg/errors"
)

// column identifies a logical ledger column.
type column int

const (
	colKind column = iota
	colBank
	colAccount
	colTargetBank
	colTargetAccount
	colOwner
	colCounterparty
	colAmount
	colDate
	numColumns
)

// headerAliases maps normalized header names to logical columns.
var headerAliases = map[string]column{
	"JENIS TRANSAKSI":     colKind,
	"KIND":                colKind,
	"TRANSACTION KIND":    colKind,
	"TYPE":                colKind,
	"BANK":                colBank,
	"BANK CODE":           colBank,
	"NO REK":              colAccount,
	"ACCOUNT":             colAccount,
	"ACCOUNT NUMBER":      colAccount,
	"BANK LAWAN":          colTargetBank,
	"COUNTERPART BANK":    colTargetBank,
	"NO REK LAWAN":        colTargetAccount,
	"COUNTERPART ACCOUNT": colTargetAccount,
	"PEMILIK REKENING":    colOwner,
	"OWNER":               colOwner,
	"OWNER NAME":          colOwner,
	"NAMA LAWAN":          colCounterparty,
	"COUNTERPARTY":        colCounterparty,
	"COUNTERPARTY NAME":   colCounterparty,
	"MUTASI":              colAmount,
	"AMOUNT":              colAmount,
	"TGL/TRANS":           colDate,
	"DATE":                colDate,
	"TRANSACTION DATE":    colDate,
}

// ReadFile reads a ledger table from disk.
// A missing file is reported with code FILE_NOT_FOUND.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "ledger %s not found", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV reads a ledger table. The delimiter is ";" unless the header line
// contains no ";" and at least one ",". Rows shorter than the header are
// padded with empty cells. An empty input returns no records and no error.
func ReadCSV(r io.Reader) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = detectDelimiter(data)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "read ledger header")
	}
	index, err := mapHeader(header)
	if err != nil {
		return nil, err
	}

	var records []Record
	for row := 1; ; row++ {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "read ledger row %d", row)
		}
		if blank(fields) {
			continue
		}
		records = append(records, toRecord(row, fields, index))
	}
	return records, nil
}

func detectDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.IndexByte(line, ';') < 0 && bytes.IndexByte(line, ',') >= 0 {
		return ','
	}
	return ';'
}

func mapHeader(header []string) ([numColumns]int, error) {
	var index [numColumns]int
	for i := range index {
		index[i] = -1
	}
	for i, h := range header {
		name := strings.Join(strings.Fields(strings.ToUpper(h)), " ")
		if c, ok := headerAliases[name]; ok && index[c] < 0 {
			index[c] = i
		}
	}
	if index[colKind] < 0 {
		return index, errs.New(errs.ErrCodeInvalidInput, "ledger is missing the transaction kind column (JENIS TRANSAKSI)")
	}
	if index[colAmount] < 0 {
		return index, errs.New(errs.ErrCodeInvalidInput, "ledger is missing the amount column (MUTASI)")
	}
	return index, nil
}

func toRecord(row int, fields []string, index [numColumns]int) Record {
	cell := func(c column) string {
		i := index[c]
		if i < 0 || i >= len(fields) {
			return ""
		}
		return strings.TrimSpace(fields[i])
	}
	return Record{
		Row:              row,
		Kind:             cell(colKind),
		SourceBank:       cell(colBank),
		SourceAccount:    cell(colAccount),
		TargetBank:       cell(colTargetBank),
		TargetAccount:    cell(colTargetAccount),
		OwnerName:        cell(colOwner),
		CounterpartyName: cell(colCounterparty),
		AmountRaw:        cell(colAmount),
		DateRaw:          cell(colDate),
	}
}

func blank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
