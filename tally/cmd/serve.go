package cmd

import (
	"github.com/spf13/cobra"

	"github.com/vouchrit/tally"
	"github.com/vouchrit/tally/tally/proxy"
	"github.com/vouchrit/tally/tally/transport"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local proxy in front of Tally's XML port",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		addr := cfg.ListenAddr
		if listenAddr != "" {
			addr = listenAddr
		}
		upstream := transport.New(cfg.TallyURL, cfg.TransportOptions()...)
		srv := proxy.New(upstream, proxy.Options{
			RateLimit:     cfg.RateLimit,
			AllowedOrigin: cfg.AllowedOrigin,
			Logger:        tally.Logger(),
		})
		return srv.ListenAndServe(cmd.Context(), addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "Listen address (default from config, :8000).")
	rootCmd.AddCommand(serveCmd)
}
