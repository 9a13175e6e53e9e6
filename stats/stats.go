// Package stats derives performance metrics from a closed trade log and
// an equity curve. All calculations are pure functions of their inputs.
package stats

import (
	"math"
	"time"

	"propsim/journal"
)

// Summary is the full set of performance metrics for one run.
type Summary struct {
	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	WinRate       float64

	GrossProfit     float64
	GrossLoss       float64
	NetProfit       float64
	TotalCommission float64

	// ProfitFactor is +Inf when there are wins but no losses.
	ProfitFactor float64
	AvgTrade     float64
	AvgWin       float64
	AvgLoss      float64
	Expectancy   float64

	TotalReturn  float64 // fraction of initial equity
	SharpeRatio  float64 // annualized from daily returns
	SortinoRatio float64
	CalmarRatio  float64

	MaxDrawdown       float64 // fraction of peak
	MaxDrawdownDollar float64

	MaxConsecutiveWins   int
	MaxConsecutiveLosses int

	BestMonth  float64
	WorstMonth float64
}

const tradingDaysPerYear = 252

// Compute builds a Summary. With no trades or no equity samples it
// returns the zero Summary, profit factor included.
func Compute(trades []journal.TradeRecord, equity []journal.EquitySample, initialEquity float64) Summary {
	var s Summary
	if len(trades) == 0 || len(equity) == 0 {
		return s
	}

	s.TotalTrades = len(trades)
	var winSum, lossSum float64
	var streakW, streakL int
	for _, t := range trades {
		net := t.NetPnL()
		s.NetProfit += net
		s.TotalCommission += t.Commission
		switch {
		case net > 0:
			s.WinningTrades++
			winSum += net
			streakW++
			streakL = 0
		case net < 0:
			s.LosingTrades++
			lossSum += net
			streakL++
			streakW = 0
		default:
			streakW, streakL = 0, 0
		}
		if streakW > s.MaxConsecutiveWins {
			s.MaxConsecutiveWins = streakW
		}
		if streakL > s.MaxConsecutiveLosses {
			s.MaxConsecutiveLosses = streakL
		}
	}

	s.WinRate = float64(s.WinningTrades) / float64(s.TotalTrades)
	s.GrossProfit = winSum
	s.GrossLoss = lossSum
	if lossSum != 0 {
		s.ProfitFactor = math.Abs(winSum) / math.Abs(lossSum)
	} else {
		s.ProfitFactor = math.Inf(1)
	}

	s.AvgTrade = s.NetProfit / float64(s.TotalTrades)
	if s.WinningTrades > 0 {
		s.AvgWin = winSum / float64(s.WinningTrades)
	}
	if s.LosingTrades > 0 {
		s.AvgLoss = lossSum / float64(s.LosingTrades)
	}
	s.Expectancy = s.WinRate*s.AvgWin + (1-s.WinRate)*s.AvgLoss

	final := equity[len(equity)-1].Equity
	if initialEquity != 0 {
		s.TotalReturn = (final - initialEquity) / initialEquity
	}

	daily := resampleDaily(equity)
	returns := pctChange(daily)
	if len(returns) > 1 {
		mean, sd := meanStd(returns)
		if sd > 0 {
			s.SharpeRatio = mean / sd * math.Sqrt(tradingDaysPerYear)
		}
		var downside []float64
		for _, r := range returns {
			if r < 0 {
				downside = append(downside, r)
			}
		}
		if len(downside) > 1 {
			_, dsd := meanStd(downside)
			if dsd > 0 {
				s.SortinoRatio = mean / dsd * math.Sqrt(tradingDaysPerYear)
			}
		}
	}

	s.MaxDrawdown, s.MaxDrawdownDollar = maxDrawdown(equity)
	if s.MaxDrawdown > 0 {
		s.CalmarRatio = s.TotalReturn / s.MaxDrawdown
	}

	monthly := pctChange(resampleMonthly(equity))
	for i, r := range monthly {
		if i == 0 || r > s.BestMonth {
			s.BestMonth = r
		}
		if i == 0 || r < s.WorstMonth {
			s.WorstMonth = r
		}
	}

	return s
}

// maxDrawdown scans the equity curve against its running peak, returning
// the deepest fall as a fraction of the peak and in dollars.
func maxDrawdown(equity []journal.EquitySample) (pct, dollar float64) {
	peak := math.Inf(-1)
	for _, e := range equity {
		if e.Equity > peak {
			peak = e.Equity
		}
		dd := peak - e.Equity
		if dd > dollar {
			dollar = dd
		}
		if peak != 0 {
			if frac := dd / peak; frac > pct {
				pct = frac
			}
		}
	}
	return pct, dollar
}

// resampleDaily keeps the last equity value of each calendar day.
func resampleDaily(equity []journal.EquitySample) []float64 {
	return resample(equity, func(t time.Time) int {
		y, m, d := t.Date()
		return y*10000 + int(m)*100 + d
	})
}

// resampleMonthly keeps the last equity value of each calendar month.
func resampleMonthly(equity []journal.EquitySample) []float64 {
	return resample(equity, func(t time.Time) int {
		y, m, _ := t.Date()
		return y*100 + int(m)
	})
}

func resample(equity []journal.EquitySample, key func(time.Time) int) []float64 {
	var out []float64
	lastKey := -1
	for _, e := range equity {
		k := key(e.Time)
		if k != lastKey {
			out = append(out, e.Equity)
			lastKey = k
		} else {
			out[len(out)-1] = e.Equity
		}
	}
	return out
}

func pctChange(values []float64) []float64 {
	var out []float64
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			continue
		}
		out = append(out, (values[i]-values[i-1])/values[i-1])
	}
	return out
}

// meanStd returns the mean and sample standard deviation (n-1 divisor).
func meanStd(values []float64) (mean, sd float64) {
	n := float64(len(values))
	for _, v := range values {
		mean += v
	}
	mean /= n
	if len(values) < 2 {
		return mean, 0
	}
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / (n - 1))
}
