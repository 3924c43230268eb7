package reconcile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/vouchrit/tally"
)

var ErrIIFMissingHeader = errors.New("iif: TRNS row before its !TRNS header")

// iifReader walks the tab separated rows of a QuickBooks IIF export. A row
// starting with '!' declares the column names of a record type.
type iifReader struct {
	r       *csv.Reader
	headers map[string][]string
}

func newIIFReader(r io.Reader) *iifReader {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	return &iifReader{r: cr, headers: map[string][]string{}}
}

// next returns the next data row of kind as a column map, registering the
// headers it passes on the way.
func (d *iifReader) next(kind string) (map[string]string, error) {
	for {
		row, err := d.r.Read()
		if err != nil {
			return nil, err
		}
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		typ := strings.TrimSpace(row[0])
		if strings.HasPrefix(typ, "!") {
			d.headers[typ[1:]] = trimColumns(row[1:])
			continue
		}
		if typ != kind {
			continue
		}
		cols, ok := d.headers[typ]
		if !ok {
			return nil, ErrIIFMissingHeader
		}
		m := make(map[string]string, len(cols))
		for i, c := range cols {
			if i+1 < len(row) {
				m[c] = strings.TrimSpace(row[i+1])
			}
		}
		return m, nil
	}
}

func trimColumns(cols []string) []string {
	for i, c := range cols {
		if strings.TrimSpace(c) == "" {
			return cols[:i]
		}
	}
	return cols
}

// ReadIIF reads the TRNS rows of an IIF file exported for a bank account.
// The TRNS row is the bank side, so its AMOUNT is already signed from the
// account's point of view; SPL rows are ignored. IIF dates are month first.
func ReadIIF(r io.Reader, dateLayout string) ([]Line, error) {
	if dateLayout == "" {
		dateLayout = "1/2/2006"
	}
	d := newIIFReader(r)
	var lines []Line
	for n := 1; ; n++ {
		row, err := d.next("TRNS")
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iif: %w", err)
		}
		date, err := parseDate(row["DATE"], dateLayout)
		if err != nil {
			return nil, fmt.Errorf("iif transaction %d: %w", n, err)
		}
		amount, err := tally.ParseAmount(row["AMOUNT"])
		if err != nil {
			return nil, fmt.Errorf("iif transaction %d: %w", n, err)
		}
		lines = append(lines, Line{
			Date:      date,
			Narration: strings.TrimSpace(row["NAME"] + " " + row["MEMO"]),
			Amount:    amount,
			Reference: row["DOCNUM"],
		})
	}
	if lines == nil {
		lines = []Line{}
	}
	return lines, nil
}
