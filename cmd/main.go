package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "deal-scout",
	Short: "Deal pipeline tracker services",
	Long: `deal-scout tracks acquisition targets through the deal pipeline.

Run the services from their own binaries:
  cmd/api-service   serve   HTTP API
  cmd/scan-service  serve   queued and scheduled discovery scans
  cmd/migrate       up|down database migrations`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your CLI '%s'", err)
		os.Exit(1)
	}
}
