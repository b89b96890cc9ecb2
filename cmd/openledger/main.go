package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "openledger",
		Short: "Multi-tenant double-entry accounting ledger",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newAccountCmd())
	rootCmd.AddCommand(newEntryCmd())
	rootCmd.AddCommand(newFiscalYearCmd())
	rootCmd.AddCommand(newPeriodCmd())
	rootCmd.AddCommand(newRecalcCmd())
	rootCmd.AddCommand(newBalancesCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
