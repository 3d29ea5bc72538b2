package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "finsight",
	Short: "FinSight - AI-driven stock recommendation pipeline",
	Long: `FinSight Unified CLI

Five-stage recommendation pipeline from raw market data to a
ranked report: fetch, process, analyze, rank, report.

Usage:
  go run ./cmd/finsight [command]

Examples:
  go run ./cmd/finsight api
  go run ./cmd/finsight analyze --symbols AAPL,MSFT,GOOGL
  go run ./cmd/finsight scheduler start`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
