// Package reconcile turns bank statement lines into banking vouchers ready
// for posting.
package reconcile

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vouchrit/tally"
)

// Line is one statement row. Amount is negative for money leaving the bank.
type Line struct {
	Date      time.Time       `json:"date"`
	Narration string          `json:"narration"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference,omitempty"`
}

// VoucherType is Payment for outflows and Receipt for inflows.
func (l Line) VoucherType() tally.VoucherType {
	if l.Amount.IsNegative() {
		return tally.VoucherPayment
	}
	return tally.VoucherReceipt
}

// Proposal is the banking voucher suggested for a statement line.
type Proposal struct {
	Line    Line                 `json:"line"`
	Request tally.BankingRequest `json:"request"`
	// Matched is false when the party fell back to the suspense ledger.
	Matched bool `json:"matched"`
}

// Mapping names the ledgers a statement is posted against.
type Mapping struct {
	Company        string
	BankLedger     string
	SuspenseLedger string
}

// Propose builds one banking request per non-zero line. The party ledger is
// the suggester's pick, or the suspense ledger when it has none.
func (m Mapping) Propose(lines []Line, s *Suggester) []Proposal {
	out := make([]Proposal, 0, len(lines))
	for _, l := range lines {
		if l.Amount.IsZero() {
			continue
		}
		party, ok := s.Suggest(l.Narration)
		if !ok {
			party = m.SuspenseLedger
		}
		out = append(out, Proposal{
			Line:    l,
			Matched: ok,
			Request: tally.BankingRequest{
				Company:     m.Company,
				VoucherType: l.VoucherType(),
				Date:        l.Date.Format(tally.TallyDateLayout),
				VoucherNo:   strings.TrimSpace(l.Reference),
				BankLedger:  m.BankLedger,
				PartyLedger: party,
				Amount:      l.Amount.Abs(),
				Narration:   strings.TrimSpace(l.Narration),
			},
		})
	}
	return out
}

// Requests extracts the banking requests of proposals, in order.
func Requests(proposals []Proposal) []tally.BankingRequest {
	out := make([]tally.BankingRequest, len(proposals))
	for i, p := range proposals {
		out[i] = p.Request
	}
	return out
}

func parseDate(s, layout string) (time.Time, error) {
	if layout != "" {
		return time.Parse(layout, strings.TrimSpace(s))
	}
	d, err := tally.ToTallyDate(s)
	if err != nil {
		return time.Time{}, err
	}
	return tally.FromTallyDate(d)
}
