package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vouchrit/tally/tally/export"
	"github.com/vouchrit/tally/tally/snapshot"
)

var (
	exportFormat string
	exportOut    string
	exportBrotli bool
)

var exportCmd = &cobra.Command{
	Use:       "export <ledgers|stock|catalog|companies|history>",
	Short:     "Export company data as JSON, XML, Excel or PDF",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"ledgers", "stock", "catalog", "companies", "history"},
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := export.ParseFormat(exportFormat)
		if err != nil {
			return err
		}
		data, err := exportData(cmd, args[0])
		if err != nil {
			return err
		}

		opts := export.Options{Title: args[0] + " " + cfg.Company, Brotli: exportBrotli}
		if format == export.FormatPDF {
			if cfg.GotenbergURL == "" {
				return errors.New("pdf export needs gotenberg_url in the config")
			}
			opts.Renderer = export.NewGotenberg(cfg.GotenbergURL)
		}

		var w io.Writer = cmd.OutOrStdout()
		if exportOut != "" {
			f, err := os.Create(exportOut)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		if err := export.Write(cmd.Context(), w, format, data, opts); err != nil {
			return err
		}
		if exportOut != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", exportOut)
		}
		return nil
	},
}

func exportData(cmd *cobra.Command, what string) (any, error) {
	ctx := cmd.Context()
	switch what {
	case "companies":
		s, done, err := newSession(ctx)
		if err != nil {
			return nil, err
		}
		defer done()
		return s.Companies(ctx)
	case "history":
		hs, done, err := historyStore(ctx)
		if err != nil {
			return nil, err
		}
		defer done()
		entries, err := hs.History(ctx, cfg.Company)
		if errors.Is(err, snapshot.ErrNotFound) {
			return []snapshot.HistoryEntry{}, nil
		}
		return entries, err
	}

	snap, err := loadSnapshot(cmd)
	if err != nil {
		return nil, err
	}
	switch what {
	case "ledgers":
		return snap.Ledgers, nil
	case "stock":
		return snap.StockItems, nil
	}
	return snap, nil
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Output format: json, xml, xlsx or pdf.")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default standard output).")
	exportCmd.Flags().BoolVar(&exportBrotli, "brotli", false, "Compress the output with brotli.")
	exportCmd.Flags().BoolVar(&refreshCatalog, "refresh", false, "Fetch from Tally even when a cached or prefetched catalog exists.")
	rootCmd.AddCommand(exportCmd)
}
