package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hako/durafmt"
	"golang.org/x/term"

	"github.com/vouchrit/tally"
	"github.com/vouchrit/tally/tally/internal/fastcolor"
	"github.com/vouchrit/tally/tally/reconcile"
	"github.com/vouchrit/tally/tally/session"
)

const (
	newLine       = "\n"
	amountWidth   = 12
	rowDateFormat = "2006/01/02"
)

// outputWidth is the --columns value, or the terminal width with --wide.
func outputWidth(w io.Writer) int {
	if columnWidth == 80 && columnWide {
		columnWidth = 132
		if f, ok := w.(*os.File); ok {
			fd := int(f.Fd())
			if term.IsTerminal(fd) {
				tw, _, err := term.GetSize(fd)
				if err == nil {
					columnWidth = tw
				}
			}
		}
	}
	return columnWidth
}

func clampWidth(columns, min int) int {
	if columns < min {
		fmt.Fprintf(os.Stderr, "warning: `columns` too small, setting to %d\n", min)
		return min
	}
	return columns
}

// PrintCompanies prints one company per line with its id.
func PrintCompanies(w io.Writer, companies []tally.Company, columns int) {
	columns = clampWidth(columns, 20)
	idWidth := 14
	nameWidth := columns - idWidth - 1

	buf := bufio.NewWriter(w)
	for _, c := range companies {
		fastcolor.FgBlue.WriteStringFixed(buf, c.Name, nameWidth, false)
		buf.WriteString(" ")
		fastcolor.FgGray.WriteStringFixed(buf, c.ID, idWidth, true)
		buf.WriteString(newLine)
	}
	buf.Flush()
}

// PrintLedgers prints every ledger with the role its group gives it and, for
// tax ledgers, the configured rate.
func PrintLedgers(w io.Writer, cat tally.LedgerCatalog, columns int) {
	columns = clampWidth(columns, 30)
	roleWidth, rateWidth := 8, 8
	nameWidth := columns - roleWidth - rateWidth - 2

	roles := map[string]tally.Role{}
	for _, n := range cat.PartyLedgers {
		roles[n] = tally.RoleParty
	}
	for _, n := range cat.SalesLedgers {
		roles[n] = tally.RoleSales
	}
	for _, n := range cat.PurchaseLedgers {
		roles[n] = tally.RolePurchase
	}
	for _, n := range cat.BankLedgers {
		roles[n] = tally.RoleBank
	}
	for _, n := range cat.TaxLedgerNames() {
		roles[n] = tally.RoleTax
	}

	buf := bufio.NewWriter(w)
	for _, name := range cat.AllLedgers {
		role := roles[name]
		rate := ""
		if r, ok := cat.TaxRate(name); ok {
			rate = r.String() + "%"
		}
		fastcolor.FgBlue.WriteStringFixed(buf, name, nameWidth, false)
		buf.WriteString(" ")
		fastcolor.FgGray.WriteStringFixed(buf, string(role), roleWidth, false)
		buf.WriteString(" ")
		fastcolor.Reset.WriteStringFixed(buf, rate, rateWidth, true)
		buf.WriteString(newLine)
	}
	fmt.Fprintln(buf, strings.Repeat("-", columns))
	fmt.Fprintf(buf, "%d ledgers: %d party, %d sales, %d purchase, %d tax, %d bank\n",
		len(cat.AllLedgers), len(cat.PartyLedgers), len(cat.SalesLedgers),
		len(cat.PurchaseLedgers), len(cat.TaxLedgers), len(cat.BankLedgers))
	buf.Flush()
}

// PrintStockItems prints the stock item names, one per line.
func PrintStockItems(w io.Writer, items tally.StockItemCatalog, columns int) {
	buf := bufio.NewWriter(w)
	for _, name := range items {
		fastcolor.FgBlue.WriteStringFixed(buf, name, columns, false)
		buf.WriteString(newLine)
	}
	buf.Flush()
}

// PrintOutcome prints Tally's verdict on a single import.
func PrintOutcome(w io.Writer, o session.Outcome) {
	buf := bufio.NewWriter(w)
	if o.Success {
		fastcolor.FgGreen.WriteStringFixed(buf, "OK", 2, false)
		fmt.Fprintf(buf, " created %d, altered %d", o.Result.Created, o.Result.Altered)
		if o.Result.LastVchID != "" {
			fmt.Fprintf(buf, ", voucher id %s", o.Result.LastVchID)
		}
	} else {
		fastcolor.FgRed.WriteStringFixed(buf, "FAILED", 6, false)
		buf.WriteString(" ")
		buf.WriteString(o.Message)
	}
	buf.WriteString(newLine)
	buf.Flush()
}

// PrintProposals prints the vouchers a statement import would post. Lines
// that fell back to the suspense ledger are dimmed.
func PrintProposals(w io.Writer, props []reconcile.Proposal, columns int) {
	columns = clampWidth(columns, 60)
	typeWidth := 8
	remaining := columns - 10 - typeWidth - amountWidth - 4
	partyWidth := remaining / 2
	narrationWidth := remaining - partyWidth

	buf := bufio.NewWriter(w)
	for _, p := range props {
		partyColor := fastcolor.FgBlue
		if !p.Matched {
			partyColor = fastcolor.FgGray
		}
		amtColor := fastcolor.Reset
		if p.Line.Amount.IsNegative() {
			amtColor = fastcolor.FgRed
		}
		buf.WriteString(p.Line.Date.Format(rowDateFormat))
		buf.WriteString(" ")
		fastcolor.Bold.WriteStringFixed(buf, string(p.Request.VoucherType), typeWidth, false)
		buf.WriteString(" ")
		partyColor.WriteStringFixed(buf, p.Request.PartyLedger, partyWidth, false)
		buf.WriteString(" ")
		amtColor.WriteStringFixed(buf, p.Line.Amount.StringFixedBank(2), amountWidth, true)
		buf.WriteString(" ")
		fastcolor.Reset.WriteStringFixed(buf, p.Request.Narration, narrationWidth, false)
		buf.WriteString(newLine)
	}
	buf.Flush()
}

// PrintReport prints one line per voucher of a bulk run and a summary.
func PrintReport(w io.Writer, rep session.Report, columns int) {
	columns = clampWidth(columns, 50)
	idxWidth, vchWidth, statusWidth := 5, 12, 6
	remaining := columns - idxWidth - vchWidth - statusWidth - 3
	partyWidth := remaining / 2
	msgWidth := remaining - partyWidth

	buf := bufio.NewWriter(w)
	for _, item := range rep.Items {
		status, color := "OK", fastcolor.FgGreen
		if !item.Success {
			status, color = "FAILED", fastcolor.FgRed
		}
		fastcolor.FgGray.WriteStringFixed(buf, strconv.Itoa(item.Index+1), idxWidth, true)
		buf.WriteString(" ")
		fastcolor.Reset.WriteStringFixed(buf, item.VoucherNo, vchWidth, false)
		buf.WriteString(" ")
		fastcolor.FgBlue.WriteStringFixed(buf, item.Party, partyWidth, false)
		buf.WriteString(" ")
		color.WriteStringFixed(buf, status, statusWidth, false)
		if item.Message != "" && !item.Success {
			buf.WriteString(" ")
			buf.WriteString(truncate(item.Message, msgWidth))
		}
		buf.WriteString(newLine)
	}
	fmt.Fprintln(buf, strings.Repeat("-", columns))
	fmt.Fprintf(buf, "run %s: %d of %d posted, %d failed\n", rep.RunID, rep.Succeeded, rep.Total, rep.Failed)
	buf.Flush()
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "~"
}

// PrintProbe prints whether the proxy and Tally answered.
func PrintProbe(w io.Writer, endpoint string, companies []tally.Company, err error, timeout time.Duration) {
	buf := bufio.NewWriter(w)
	if err != nil {
		fastcolor.FgRed.WriteStringFixed(buf, "UNREACHABLE", 11, false)
		fmt.Fprintf(buf, " %s (%s)\n", endpoint, err)
	} else {
		fastcolor.FgGreen.WriteStringFixed(buf, "OK", 2, false)
		fmt.Fprintf(buf, " %s answered within %s, %d companies open\n", endpoint, humanDuration(timeout), len(companies))
	}
	buf.Flush()
}

func humanDuration(d time.Duration) string {
	return durafmt.Parse(d).String()
}
