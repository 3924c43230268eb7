package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vouchrit/tally"
	"github.com/vouchrit/tally/tally/request"
	"github.com/vouchrit/tally/tally/session"
	"github.com/vouchrit/tally/tally/xmltree"
)

var (
	dryRun    bool
	fileID    string
	batchType string
)

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Post invoices as Tally vouchers",
}

var postSalesCmd = &cobra.Command{
	Use:   "sales <invoice.json>",
	Short: "Post a sales invoice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return postInvoice(cmd, args[0], tally.VoucherSales)
	},
}

var postPurchaseCmd = &cobra.Command{
	Use:   "purchase <invoice.json>",
	Short: "Post a purchase invoice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return postInvoice(cmd, args[0], tally.VoucherPurchase)
	},
}

var postBatchCmd = &cobra.Command{
	Use:   "batch <invoices.json>",
	Short: "Post a JSON array of invoices in one request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		vt, err := tally.ParseVoucherType(batchType)
		if err != nil {
			return err
		}
		var invoices []tally.Invoice
		if err := readJSON(cmd, args[0], &invoices); err != nil {
			return err
		}
		for i := range invoices {
			if invoices[i].Company == "" {
				invoices[i].Company = cfg.Company
			}
			invoices[i] = invoices[i].Recalculate()
		}

		if dryRun {
			body, err := request.BatchVouchers(invoices, vt)
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
		o, err := s.PostInvoiceBatch(cmd.Context(), invoices, vt)
		if err != nil {
			return err
		}
		return reportOutcome(cmd, o)
	},
}

func postInvoice(cmd *cobra.Command, path string, vt tally.VoucherType) error {
	var inv tally.Invoice
	if err := readJSON(cmd, path, &inv); err != nil {
		return err
	}
	if inv.Company == "" {
		inv.Company = cfg.Company
	}

	if dryRun {
		v, err := tally.NewVoucher(inv.Recalculate(), vt)
		if err != nil {
			return err
		}
		return printXML(cmd.OutOrStdout(), request.Voucher(v))
	}

	id := fileID
	if id == "" {
		id = filepath.Base(path)
	}
	s, done, err := newSession(cmd.Context())
	if err != nil {
		return err
	}
	defer done()
	o, err := s.PostInvoice(cmd.Context(), inv, vt, id)
	if err != nil {
		return err
	}
	return reportOutcome(cmd, o)
}

func reportOutcome(cmd *cobra.Command, o session.Outcome) error {
	if jsonOutput {
		if err := printJSON(cmd.OutOrStdout(), o); err != nil {
			return err
		}
	} else {
		PrintOutcome(cmd.OutOrStdout(), o)
	}
	if !o.Success {
		return fmt.Errorf("tally rejected the request")
	}
	return nil
}

// readJSON decodes a file, or standard input for "-".
func readJSON(cmd *cobra.Command, path string, v any) error {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func printXML(w io.Writer, body string) error {
	doc, err := xmltree.ParseString(body)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, xmltree.MarshalIndent(doc, "  "))
	return err
}

func init() {
	for _, c := range []*cobra.Command{postSalesCmd, postPurchaseCmd, postBatchCmd} {
		c.Flags().BoolVar(&dryRun, "dry-run", false, "Print the request XML instead of posting it.")
		postCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{postSalesCmd, postPurchaseCmd} {
		c.Flags().StringVar(&fileID, "file-id", "", "Id the accepted invoice is saved under (default the file name).")
	}
	postBatchCmd.Flags().StringVar(&batchType, "type", "sales", "Voucher type of the batch: sales or purchase.")
	rootCmd.AddCommand(postCmd)
}
