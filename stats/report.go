package stats

import (
	"fmt"
	"io"
	"math"
)

// Print renders a Summary as a plain-text report.
func Print(w io.Writer, s Summary) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Performance Summary")
	fmt.Fprintln(w, "==================================================")

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Trade Statistics")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Trades:        %d\n", s.TotalTrades)
	fmt.Fprintf(w, "Wins:          %d\n", s.WinningTrades)
	fmt.Fprintf(w, "Losses:        %d\n", s.LosingTrades)
	fmt.Fprintf(w, "Win Rate:      %.2f%%\n", s.WinRate*100)
	fmt.Fprintf(w, "Max Win Run:   %d\n", s.MaxConsecutiveWins)
	fmt.Fprintf(w, "Max Loss Run:  %d\n", s.MaxConsecutiveLosses)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Profit & Loss")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Gross Profit:  $%.2f\n", s.GrossProfit)
	fmt.Fprintf(w, "Gross Loss:    $%.2f\n", s.GrossLoss)
	fmt.Fprintf(w, "Net Profit:    $%.2f\n", s.NetProfit)
	fmt.Fprintf(w, "Commissions:   $%.2f\n", s.TotalCommission)
	fmt.Fprintf(w, "Total Return:  %.2f%%\n", s.TotalReturn*100)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Trade Metrics")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Avg Trade:     $%.2f\n", s.AvgTrade)
	fmt.Fprintf(w, "Avg Win:       $%.2f\n", s.AvgWin)
	fmt.Fprintf(w, "Avg Loss:      $%.2f\n", s.AvgLoss)
	if math.IsInf(s.ProfitFactor, 1) {
		fmt.Fprintf(w, "Profit Factor: inf\n")
	} else {
		fmt.Fprintf(w, "Profit Factor: %.2f\n", s.ProfitFactor)
	}
	fmt.Fprintf(w, "Expectancy:    $%.2f\n", s.Expectancy)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Risk")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Max Drawdown:  %.2f%% ($%.2f)\n", s.MaxDrawdown*100, s.MaxDrawdownDollar)
	fmt.Fprintf(w, "Sharpe Ratio:  %.2f\n", s.SharpeRatio)
	fmt.Fprintf(w, "Sortino Ratio: %.2f\n", s.SortinoRatio)
	fmt.Fprintf(w, "Calmar Ratio:  %.2f\n", s.CalmarRatio)

	if s.BestMonth != 0 || s.WorstMonth != 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Monthly")
		fmt.Fprintln(w, "--------------------------------------------------")
		fmt.Fprintf(w, "Best Month:    %.2f%%\n", s.BestMonth*100)
		fmt.Fprintf(w, "Worst Month:   %.2f%%\n", s.WorstMonth*100)
	}

	fmt.Fprintln(w)
}
