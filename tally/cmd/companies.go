package cmd

import (
	"github.com/spf13/cobra"
)

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "List the companies open in Tally",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, done, err := newSession(cmd.Context())
		if err != nil {
			return err
		}
		defer done()

		companies, err := s.Companies(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), companies)
		}
		PrintCompanies(cmd.OutOrStdout(), companies, outputWidth(cmd.OutOrStdout()))
		return nil
	},
}

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check that the proxy and Tally answer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		companies, err := newClient().Probe(cmd.Context())
		PrintProbe(cmd.OutOrStdout(), cfg.Endpoint, companies, err, cfg.ProbeTimeout)
		return err
	},
}

func init() {
	rootCmd.AddCommand(companiesCmd)
	rootCmd.AddCommand(probeCmd)
}
