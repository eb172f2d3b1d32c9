package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "riskctl",
	Short: "Portfolio risk engine CLI",
	Long: `riskctl - portfolio risk engine

Computes Value-at-Risk and potential future exposure from return series
and scenario P&L, simulates risk factor paths, and runs the HTTP API and
the report scheduler.

Usage:
  go run ./cmd/riskctl [command]

Examples:
  go run ./cmd/riskctl var --input returns.csv --method historical
  go run ./cmd/riskctl pfe --input pnls.csv --confidence 0.95
  go run ./cmd/riskctl simulate --model gbm --spot 100 --vol 0.2
  go run ./cmd/riskctl api
  go run ./cmd/riskctl scheduler start`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
