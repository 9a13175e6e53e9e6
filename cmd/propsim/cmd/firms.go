package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"propsim/risk"
)

var firmsCmd = &cobra.Command{
	Use:   "firms",
	Short: "List the built-in prop-firm rule presets",
	Long: `Firms prints every built-in account preset with its balance, loss
limits, and drawdown mode. Preset names are accepted by the backtest
command's --firm flag.`,
	Run: runFirms,
}

func init() {
	rootCmd.AddCommand(firmsCmd)
}

func runFirms(cmd *cobra.Command, args []string) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tNAME\tBALANCE\tDAILY LOSS\tMAX LOSS\tDRAWDOWN\tCONTRACTS\tSESSION CLOSE")
	for _, key := range risk.FirmNames() {
		r := risk.Firms[key]
		daily := "-"
		if r.MaxDailyLoss > 0 {
			daily = fmt.Sprintf("$%.0f", r.MaxDailyLoss)
		}
		fmt.Fprintf(w, "%s\t%s\t$%.0f\t%s\t$%.0f\t%s\t%d\t%s\n",
			key, r.Name, r.InitialBalance, daily, r.MaxLoss,
			r.DrawdownMode, r.MaxContracts, r.SessionClose)
	}
	w.Flush()
}
