package main

import (
	"github.com/spf13/cobra"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vanityscan",
		Short: "Concurrent vanity phone-number scanner for the Nova inventory.",
		Long: `vanityscan repeatedly queries the Nova number inventory for available
phone numbers, classifies each against the configured desirability rules,
and pauses to present every match to the operator before scanning on.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is built-in defaults + VANITYSCAN_* env)")

	cmd.AddCommand(newScanCmd())
	cmd.AddCommand(newReserveCmd())

	return cmd
}
