// Package cmd is the tally command line: catalog listings, voucher posting,
// bank statement import and the local proxy.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	cc "github.com/ivanpirog/coloredcobra"
	"github.com/spf13/cobra"

	"github.com/vouchrit/tally"
	"github.com/vouchrit/tally/tally/config"
	"github.com/vouchrit/tally/tally/export"
	"github.com/vouchrit/tally/tally/internal/fastcolor"
	"github.com/vouchrit/tally/tally/session"
	"github.com/vouchrit/tally/tally/snapshot"
	"github.com/vouchrit/tally/tally/transport"
)

var (
	cfg *config.Config

	configPath   string
	endpointFlag string
	companyFlag  string
	userFlag     string
	jsonOutput   bool
	noColor      bool
	columnWidth  int
	columnWide   bool
)

var rootCmd = &cobra.Command{
	Use:           "tally",
	Short:         "Bridge invoices and bank statements into Tally Prime",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		c, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if endpointFlag != "" {
			c.Endpoint = endpointFlag
		}
		if companyFlag != "" {
			c.Company = companyFlag
		}
		if userFlag != "" {
			c.User = userFlag
		}
		logger, err := c.NewLogger(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		tally.SetLogger(logger)
		fastcolor.Enabled = !noColor && os.Getenv("NO_COLOR") == "" && config.IsTerminal(cmd.OutOrStdout())
		cfg = c
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/"+config.FileName+").")
	rootCmd.PersistentFlags().StringVar(&endpointFlag, "endpoint", "", "Tally proxy URL.")
	rootCmd.PersistentFlags().StringVarP(&companyFlag, "company", "c", "", "Tally company name; empty uses the open company.")
	rootCmd.PersistentFlags().StringVar(&userFlag, "user", "", "User the catalog cache and history belong to.")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print JSON instead of tables.")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable coloured output.")
	rootCmd.PersistentFlags().IntVar(&columnWidth, "columns", 80, "Set a column width for output.")
	rootCmd.PersistentFlags().BoolVar(&columnWide, "wide", false, "Wide output (use terminal width).")
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	cc.Init(&cc.Config{
		RootCmd:         rootCmd,
		Headings:        cc.HiCyan + cc.Bold + cc.Underline,
		Commands:        cc.HiYellow + cc.Bold,
		Example:         cc.Italic,
		ExecName:        cc.Bold,
		Flags:           cc.Bold,
		NoExtraNewlines: true,
		NoBottomNewline: true,
	})
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newClient() *transport.Client {
	return transport.New(cfg.Endpoint, cfg.TransportOptions()...)
}

// newSession wires a session with the configured stores. The returned func
// releases them.
func newSession(ctx context.Context) (*session.Session, func(), error) {
	opts := []session.Option{
		session.WithGroups(cfg.Groups),
		session.WithCache(snapshot.NewCache(cfg.CacheTTL)),
		session.WithPostInterval(cfg.PostInterval),
		session.WithLogger(tally.Logger()),
	}
	closer := func() {}

	if cfg.StoreDir != "" {
		fs, err := snapshot.NewFileStore(cfg.StoreDir)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts,
			session.WithCatalogStore(fs),
			session.WithInvoiceStore(fs),
			session.WithHistoryStore(fs),
		)
	}
	if cfg.RedisAddr != "" {
		client, err := snapshot.DialRedis(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		rs := snapshot.NewRedisStore(client, 0)
		opts = append(opts, session.WithCatalogStore(rs), session.WithHistoryStore(rs))
		closer = func() { _ = client.Close() }
	}
	return session.New(newClient(), cfg.User, opts...), closer, nil
}

// historyStore is the store banking history is read back from.
func historyStore(ctx context.Context) (snapshot.HistoryStore, func(), error) {
	if cfg.RedisAddr != "" {
		client, err := snapshot.DialRedis(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		return snapshot.NewRedisStore(client, 0), func() { _ = client.Close() }, nil
	}
	fs, err := snapshot.NewFileStore(cfg.StoreDir)
	if err != nil {
		return nil, nil, err
	}
	return fs, func() {}, nil
}

func printJSON(w io.Writer, v any) error {
	data, err := export.JSON(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
