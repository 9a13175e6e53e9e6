package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"propsim/data"
)

var convertCmd = &cobra.Command{
	Use:   "convert <input> <output.parquet>",
	Short: "Convert CSV bar data to Parquet",
	Long: `Convert reads an OHLCV CSV export and writes it as Parquet. Symbol and
timeframe are detected from the input filename unless overridden.

Example:
  propsim convert data/MES_1m.csv data/MES_1m.parquet`,
	Args: cobra.ExactArgs(2),
	RunE: runConvert,
}

var (
	cvSymbol    string
	cvTimeframe string
)

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVarP(&cvSymbol, "symbol", "i", "", "instrument symbol (detected from filename if empty)")
	convertCmd.Flags().StringVar(&cvTimeframe, "timeframe", "", "bar timeframe (detected from filename if empty)")
}

func runConvert(cmd *cobra.Command, args []string) error {
	series, err := data.Load(args[0], cvSymbol, cvTimeframe)
	if err != nil {
		return err
	}
	if err := data.WriteParquet(args[1], series); err != nil {
		return err
	}
	fmt.Printf("Wrote %d bars for %s (%s) to %s\n", series.Len(), series.Symbol, series.Timeframe, args[1])
	return nil
}
