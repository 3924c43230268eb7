package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/vouchrit/tally"
	"github.com/vouchrit/tally/tally/reconcile"
	"github.com/vouchrit/tally/tally/request"
	"github.com/vouchrit/tally/tally/snapshot"
)

var (
	bankReq       tally.BankingRequest
	bankType      string
	bankAmount    string
	bankDate      string
	suspense      string
	dateFormat    string
	fieldDelim    string
	negateAmount  bool
	postProposals bool
)

var bankCmd = &cobra.Command{
	Use:   "bank",
	Short: "Post bank payments and receipts",
}

var bankPostCmd = &cobra.Command{
	Use:   "post",
	Short: "Post one payment or receipt",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		req := bankReq
		req.Company = cfg.Company

		vt, err := tally.ParseVoucherType(bankType)
		if err != nil {
			return err
		}
		req.VoucherType = vt
		if req.Date, err = tally.ToTallyDate(bankDate); err != nil {
			return err
		}
		if req.Amount, err = tally.ParseAmount(bankAmount); err != nil {
			return err
		}

		if dryRun {
			body, err := request.BankingVoucher(req)
			if err != nil {
				return err
			}
			return printXML(cmd.OutOrStdout(), body)
		}

		s, done, err := newSession(cmd.Context())
		if err != nil {
			return err
		}
		defer done()
		o, err := s.PostBanking(cmd.Context(), req)
		if err != nil {
			return err
		}
		return reportOutcome(cmd, o)
	},
}

var bankImportCmd = &cobra.Command{
	Use:   "import <statement.csv|.qif|.iif>",
	Short: "Turn a bank statement into payments and receipts",
	Long: "Reads a CSV, QIF or IIF bank statement, suggests a party ledger for every line\n" +
		"from the company's ledgers and earlier postings, and prints the vouchers.\n" +
		"With --post they are posted one after another.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if bankReq.BankLedger == "" {
			return errors.New("--bank is required")
		}
		lines, err := readStatement(args[0])
		if err != nil {
			return err
		}

		s, done, err := newSession(cmd.Context())
		if err != nil {
			return err
		}
		defer done()

		snap, err := s.LoadCatalog(cmd.Context(), cfg.Company)
		if err != nil {
			return err
		}
		var history []snapshot.HistoryEntry
		if hs, closeHistory, err := historyStore(cmd.Context()); err == nil {
			history, err = hs.History(cmd.Context(), cfg.Company)
			closeHistory()
			if err != nil && !errors.Is(err, snapshot.ErrNotFound) {
				tally.LogError("cmd", "bank import", "load history", cfg.Company, err)
			}
		}

		m := reconcile.Mapping{
			Company:        cfg.Company,
			BankLedger:     bankReq.BankLedger,
			SuspenseLedger: suspense,
		}
		props := m.Propose(lines, reconcile.NewSuggester(snap.Ledgers.PartyLedgers, history))

		if !postProposals {
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), props)
			}
			PrintProposals(cmd.OutOrStdout(), props, outputWidth(cmd.OutOrStdout()))
			return nil
		}

		rep, err := s.BulkBanking(cmd.Context(), reconcile.Requests(props))
		if jsonOutput {
			if jerr := printJSON(cmd.OutOrStdout(), rep); jerr != nil {
				return jerr
			}
		} else {
			PrintReport(cmd.OutOrStdout(), rep, outputWidth(cmd.OutOrStdout()))
		}
		return err
	},
}

func readStatement(path string) ([]reconcile.Line, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".qif":
		return reconcile.ReadQIF(f, dateFormat)
	case ".iif":
		return reconcile.ReadIIF(f, dateFormat)
	}
	comma, _ := utf8.DecodeRuneInString(fieldDelim)
	return reconcile.ReadCSV(f, reconcile.CSVOptions{
		Comma:      comma,
		DateLayout: dateFormat,
		Negate:     negateAmount,
	})
}

func init() {
	bankPostCmd.Flags().StringVar(&bankType, "type", "payment", "Voucher type: payment or receipt.")
	bankPostCmd.Flags().StringVar(&bankDate, "date", "", "Voucher date (YYYYMMDD, YYYY-MM-DD or DD/MM/YYYY).")
	bankPostCmd.Flags().StringVar(&bankAmount, "amount", "", "Amount; arithmetic such as \"1200*3\" is evaluated.")
	bankPostCmd.Flags().StringVar(&bankReq.PartyLedger, "party", "", "Party ledger.")
	bankPostCmd.Flags().StringVar(&bankReq.VoucherNo, "voucher-no", "", "Voucher number.")
	bankPostCmd.Flags().StringVar(&bankReq.Narration, "narration", "", "Narration.")
	bankPostCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the request XML instead of posting it.")
	for _, name := range []string{"date", "amount", "party"} {
		_ = bankPostCmd.MarkFlagRequired(name)
	}

	bankImportCmd.Flags().StringVar(&suspense, "suspense", "Suspense A/c", "Ledger used when no party matches.")
	bankImportCmd.Flags().StringVar(&dateFormat, "date-format", "", "Statement date layout in Go notation; empty detects it.")
	bankImportCmd.Flags().StringVar(&fieldDelim, "delimiter", ",", "CSV field delimiter.")
	bankImportCmd.Flags().BoolVar(&negateAmount, "neg", false, "Negate amount column value.")
	bankImportCmd.Flags().BoolVar(&postProposals, "post", false, "Post the vouchers instead of only printing them.")

	for _, c := range []*cobra.Command{bankPostCmd, bankImportCmd} {
		c.Flags().StringVar(&bankReq.BankLedger, "bank", "", "Bank ledger.")
		bankCmd.AddCommand(c)
	}
	rootCmd.AddCommand(bankCmd)
}
