package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	snapshotFile string
	outputFormat string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "riskdesk",
	Short: "Risk and performance analytics for a trading account",
	Long: `riskdesk Unified CLI

Pulls an account snapshot from the terminal bridge (or a snapshot file) and
computes performance ratios, VaR, drawdowns, a composite risk score and
threshold alerts.

Usage:
  go run ./cmd/riskdesk [command]

Examples:
  go run ./cmd/riskdesk analyze --snapshot testdata/account.yaml
  go run ./cmd/riskdesk var --output json
  go run ./cmd/riskdesk serve
  go run ./cmd/riskdesk test-db`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&snapshotFile, "snapshot", "", "snapshot file (.yaml/.json); default reads the terminal bridge")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "output format (text|json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
