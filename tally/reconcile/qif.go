package reconcile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/vouchrit/tally"
)

var ErrUnterminatedRecord = errors.New("qif: unexpected EOF while reading transaction")

// qifRecord is one non-investment QIF transaction. Only the fields a bank
// statement needs are kept.
type qifRecord struct {
	Type   string
	Date   string
	Amount string
	Num    string
	Payee  string
	Memo   string
}

type qifDecoder struct {
	r *bufio.Reader
}

func newQIFDecoder(r io.Reader) *qifDecoder {
	return &qifDecoder{r: bufio.NewReader(r)}
}

// decode reads every transaction. Lines outside a transaction other than the
// !Type header are ignored.
func (d *qifDecoder) decode() ([]qifRecord, error) {
	var (
		records []qifRecord
		kind    string
	)
	for {
		line, err := d.readLine()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "!Type:") {
			kind = strings.TrimSpace(line[len("!Type:"):])
			continue
		}
		if line[0] == 'D' {
			rec, err := d.decodeRecord(kind, line)
			if err != nil {
				return nil, err
			}
			records = append(records, rec)
		}
	}
}

// decodeRecord reads fields up to the '^' terminator; first is the D line.
func (d *qifDecoder) decodeRecord(kind, first string) (qifRecord, error) {
	rec := qifRecord{Type: kind}
	assign(&rec, first)
	for {
		line, err := d.readLine()
		if err == io.EOF {
			return rec, ErrUnterminatedRecord
		}
		if err != nil {
			return rec, err
		}
		if line == "" {
			continue
		}
		if line[0] == '^' {
			return rec, nil
		}
		assign(&rec, line)
	}
}

func assign(rec *qifRecord, line string) {
	value := strings.TrimSpace(line[1:])
	switch line[0] {
	case 'D':
		rec.Date = value
	case 'T', 'U':
		rec.Amount = value
	case 'N':
		rec.Num = value
	case 'P':
		rec.Payee = value
	case 'M':
		if rec.Memo == "" {
			rec.Memo = value
		} else {
			rec.Memo += " " + value
		}
	}
}

func (d *qifDecoder) readLine() (string, error) {
	line, err := d.r.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if err == io.EOF && line == "" {
		return "", io.EOF
	}
	return line, nil
}

// ReadQIF reads the transactions of a QIF bank export. QIF amounts are
// already signed from the account's point of view. The narration is the
// payee, followed by the memo when both are present. dateLayout may be empty
// to accept any date ToTallyDate does; the Quicken "1/15'24" year marker is
// understood either way.
func ReadQIF(r io.Reader, dateLayout string) ([]Line, error) {
	records, err := newQIFDecoder(r).decode()
	if err != nil {
		return nil, err
	}
	lines := make([]Line, 0, len(records))
	for i, rec := range records {
		date, err := parseDate(qifDate(rec.Date), dateLayout)
		if err != nil {
			return nil, fmt.Errorf("qif transaction %d: %w", i+1, err)
		}
		amount, err := tally.ParseAmount(rec.Amount)
		if err != nil {
			return nil, fmt.Errorf("qif transaction %d: %w", i+1, err)
		}
		narration := rec.Payee
		if rec.Memo != "" {
			narration = strings.TrimSpace(narration + " " + rec.Memo)
		}
		lines = append(lines, Line{
			Date:      date,
			Narration: narration,
			Amount:    amount,
			Reference: rec.Num,
		})
	}
	return lines, nil
}

func qifDate(s string) string {
	if i := strings.IndexByte(s, '\''); i >= 0 {
		year := strings.TrimSpace(s[i+1:])
		if len(year) == 2 {
			year = "20" + year
		}
		s = s[:i] + "/" + year
	}
	return strings.TrimSpace(s)
}
