package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "propsim",
	Short: "A deterministic backtesting engine for prop-firm futures accounts",
	Long: `Propsim replays historical futures bars against trading strategies while
enforcing proprietary-trading-firm account rules.

It provides tools for:
  - Backtesting strategies against CSV or Parquet bar data
  - Enforcing daily-loss, trailing-drawdown, and session-close rules
  - Simulating fills for market, limit, stop, and bracket orders
  - Journaling trades and equity curves to CSV or SQLite
  - Converting bar data between CSV and Parquet`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
