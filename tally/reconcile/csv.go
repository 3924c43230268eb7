package reconcile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vouchrit/tally"
)

var ErrMissingColumns = errors.New("unable to find date, narration and amount columns from header field names")

// CSVOptions controls statement parsing.
type CSVOptions struct {
	// Comma is the field delimiter; zero means ','.
	Comma rune
	// DateLayout is a time layout; empty accepts any date ToTallyDate does.
	DateLayout string
	// Negate flips the sign of every amount, for banks that export debits as
	// positive numbers.
	Negate bool
}

type columns struct {
	date, narration, amount, debit, credit, reference int
}

// sniff finds the columns of interest from the header names.
func sniff(header []string) (columns, error) {
	c := columns{-1, -1, -1, -1, -1, -1}
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		switch {
		case strings.Contains(name, "date") && c.date < 0:
			c.date = i
		case strings.Contains(name, "description"),
			strings.Contains(name, "narration"),
			strings.Contains(name, "particulars"),
			strings.Contains(name, "payee"):
			c.narration = i
		case strings.Contains(name, "withdrawal"), strings.Contains(name, "debit"):
			c.debit = i
		case strings.Contains(name, "deposit"), strings.Contains(name, "credit"):
			c.credit = i
		case strings.Contains(name, "amount"):
			c.amount = i
		case strings.Contains(name, "ref"), strings.Contains(name, "chq"), strings.Contains(name, "cheque"):
			c.reference = i
		}
	}
	if c.date < 0 || c.narration < 0 || (c.amount < 0 && c.debit < 0 && c.credit < 0) {
		return c, ErrMissingColumns
	}
	return c, nil
}

// ReadCSV reads a bank statement with a header row. Either a signed amount
// column or separate withdrawal/deposit columns are accepted.
func ReadCSV(r io.Reader, opts CSVOptions) ([]Line, error) {
	cr := csv.NewReader(r)
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("statement: %w", err)
	}
	if len(records) == 0 {
		return []Line{}, nil
	}
	cols, err := sniff(records[0])
	if err != nil {
		return nil, err
	}

	lines := make([]Line, 0, len(records)-1)
	for n, rec := range records[1:] {
		row := n + 2
		if blank(rec) {
			continue
		}
		date, err := parseDate(field(rec, cols.date), opts.DateLayout)
		if err != nil {
			return nil, fmt.Errorf("statement row %d: %w", row, err)
		}
		amount, err := rowAmount(rec, cols)
		if err != nil {
			return nil, fmt.Errorf("statement row %d: %w", row, err)
		}
		if opts.Negate {
			amount = amount.Neg()
		}
		lines = append(lines, Line{
			Date:      date,
			Narration: field(rec, cols.narration),
			Amount:    amount,
			Reference: field(rec, cols.reference),
		})
	}
	return lines, nil
}

func rowAmount(rec []string, cols columns) (decimal.Decimal, error) {
	if cols.amount >= 0 && field(rec, cols.amount) != "" {
		return tally.ParseAmount(field(rec, cols.amount))
	}
	amount := decimal.Zero
	if v := field(rec, cols.credit); v != "" {
		credit, err := tally.ParseAmount(v)
		if err != nil {
			return decimal.Zero, err
		}
		amount = amount.Add(credit.Abs())
	}
	if v := field(rec, cols.debit); v != "" {
		debit, err := tally.ParseAmount(v)
		if err != nil {
			return decimal.Zero, err
		}
		amount = amount.Sub(debit.Abs())
	}
	return amount, nil
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
