package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "adyen-plugin",
	Short: "Adyen payment plugin service",
	Long:  "A payment plugin service for Adyen card flows: 3-D Secure reconciliation, notification ingestion, and transaction history.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
