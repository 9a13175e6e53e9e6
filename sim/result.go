package sim

import "propsim/journal"

// Result accumulates the outputs of a run. Records are append-only and
// never mutated after creation.
type Result struct {
	Trades []journal.TradeRecord
	Equity []journal.EquitySample
}

// FinalEquity returns the last equity sample, or fallback when the curve
// is empty.
func (r *Result) FinalEquity(fallback float64) float64 {
	if len(r.Equity) == 0 {
		return fallback
	}
	return r.Equity[len(r.Equity)-1].Equity
}

// NetProfit sums net P&L over all closed trades.
func (r *Result) NetProfit() float64 {
	total := 0.0
	for _, t := range r.Trades {
		total += t.NetPnL()
	}
	return total
}
