package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vouchrit/tally"
	"github.com/vouchrit/tally/tally/snapshot"
)

var refreshCatalog bool

var ledgersCmd = &cobra.Command{
	Use:   "ledgers",
	Short: "List the ledgers of the company with their roles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		snap, err := loadSnapshot(cmd)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), snap.Ledgers)
		}
		PrintLedgers(cmd.OutOrStdout(), snap.Ledgers, outputWidth(cmd.OutOrStdout()))
		return nil
	},
}

var stockCmd = &cobra.Command{
	Use:   "stock",
	Short: "List the stock items of the company",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		snap, err := loadSnapshot(cmd)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), snap.StockItems)
		}
		PrintStockItems(cmd.OutOrStdout(), snap.StockItems, outputWidth(cmd.OutOrStdout()))
		return nil
	},
}

var ledgerMaster tally.LedgerMaster

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Manage ledger masters",
}

var ledgerCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a ledger under a parent group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m := ledgerMaster
		m.Name = args[0]
		m.Company = cfg.Company

		s, done, err := newSession(cmd.Context())
		if err != nil {
			return err
		}
		defer done()

		o, err := s.CreateLedger(cmd.Context(), m)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), o)
		}
		PrintOutcome(cmd.OutOrStdout(), o)
		if !o.Success {
			return fmt.Errorf("ledger %q was not created", m.Name)
		}
		return nil
	},
}

func loadSnapshot(cmd *cobra.Command) (snapshot.Snapshot, error) {
	s, done, err := newSession(cmd.Context())
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	defer done()

	if refreshCatalog {
		s.Invalidate(cfg.Company)
		return s.FetchCatalog(cmd.Context(), cfg.Company)
	}
	return s.LoadCatalog(cmd.Context(), cfg.Company)
}

func init() {
	for _, c := range []*cobra.Command{ledgersCmd, stockCmd} {
		c.Flags().BoolVar(&refreshCatalog, "refresh", false, "Fetch from Tally even when a cached or prefetched catalog exists.")
		rootCmd.AddCommand(c)
	}

	ledgerCreateCmd.Flags().StringVar(&ledgerMaster.ParentGroup, "parent", "", "Parent group, e.g. \"Sundry Debtors\".")
	ledgerCreateCmd.Flags().StringVar(&ledgerMaster.State, "state", "", "State name for GST.")
	ledgerCreateCmd.Flags().StringVar(&ledgerMaster.GSTRegistrationType, "gst-type", "", "GST registration type, e.g. Regular.")
	ledgerCreateCmd.Flags().StringVar(&ledgerMaster.PartyGSTIN, "gstin", "", "Party GSTIN.")
	_ = ledgerCreateCmd.MarkFlagRequired("parent")
	ledgerCmd.AddCommand(ledgerCreateCmd)
	rootCmd.AddCommand(ledgerCmd)
}
