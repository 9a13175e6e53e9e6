package stats

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propsim/journal"
)

var statsT0 = time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC)

func trade(net float64) journal.TradeRecord {
	// GrossPnL carries the whole net amount; commission zero keeps the
	// arithmetic transparent.
	return journal.TradeRecord{Symbol: "MES", Side: "LONG", Size: 1, GrossPnL: net}
}

func equityCurve(start time.Time, values ...float64) []journal.EquitySample {
	out := make([]journal.EquitySample, len(values))
	for i, v := range values {
		out[i] = journal.EquitySample{Time: start.Add(time.Duration(i) * time.Minute), Equity: v}
	}
	return out
}

func TestComputeEmptyInputs(t *testing.T) {
	s := Compute(nil, nil, 50000)
	assert.Equal(t, 0, s.TotalTrades)
	assert.Equal(t, 0.0, s.ProfitFactor)
	assert.Equal(t, 0.0, s.WinRate)

	s = Compute([]journal.TradeRecord{trade(10)}, nil, 50000)
	assert.Equal(t, 0, s.TotalTrades)
}

func TestComputeTradeMetrics(t *testing.T) {
	trades := []journal.TradeRecord{trade(100), trade(-50), trade(200), trade(-25), trade(75)}
	equity := equityCurve(statsT0, 50000, 50100, 50050, 50250, 50225, 50300)

	s := Compute(trades, equity, 50000)

	assert.Equal(t, 5, s.TotalTrades)
	assert.Equal(t, 3, s.WinningTrades)
	assert.Equal(t, 2, s.LosingTrades)
	assert.InDelta(t, 0.6, s.WinRate, 1e-9)
	assert.InDelta(t, 375.0, s.GrossProfit, 1e-9)
	assert.InDelta(t, -75.0, s.GrossLoss, 1e-9)
	assert.InDelta(t, 300.0, s.NetProfit, 1e-9)
	assert.InDelta(t, 5.0, s.ProfitFactor, 1e-9)
	assert.InDelta(t, 60.0, s.AvgTrade, 1e-9)
	assert.InDelta(t, 125.0, s.AvgWin, 1e-9)
	assert.InDelta(t, -37.5, s.AvgLoss, 1e-9)
	assert.InDelta(t, 0.6*125-0.4*37.5, s.Expectancy, 1e-9)
	assert.InDelta(t, 0.006, s.TotalReturn, 1e-9)
}

func TestProfitFactorInfiniteWithNoLosses(t *testing.T) {
	trades := []journal.TradeRecord{trade(100), trade(50)}
	equity := equityCurve(statsT0, 50000, 50100, 50150)

	s := Compute(trades, equity, 50000)
	assert.True(t, math.IsInf(s.ProfitFactor, 1))
}

func TestMaxDrawdown(t *testing.T) {
	equity := equityCurve(statsT0, 50000, 51000, 49500, 50500, 50000)
	s := Compute([]journal.TradeRecord{trade(1)}, equity, 50000)

	assert.InDelta(t, 1500.0, s.MaxDrawdownDollar, 1e-9)
	assert.InDelta(t, 1500.0/51000.0, s.MaxDrawdown, 1e-9)
}

func TestConsecutiveStreaks(t *testing.T) {
	trades := []journal.TradeRecord{
		trade(10), trade(10), trade(10), trade(-5), trade(-5), trade(10),
	}
	equity := equityCurve(statsT0, 50000, 50030)
	s := Compute(trades, equity, 50000)

	assert.Equal(t, 3, s.MaxConsecutiveWins)
	assert.Equal(t, 2, s.MaxConsecutiveLosses)
}

func TestSharpeFromDailyReturns(t *testing.T) {
	// One sample per day so resampling is the identity.
	day := 24 * time.Hour
	equity := []journal.EquitySample{
		{Time: statsT0, Equity: 50000},
		{Time: statsT0.Add(day), Equity: 50500},
		{Time: statsT0.Add(2 * day), Equity: 50250},
		{Time: statsT0.Add(3 * day), Equity: 51000},
	}
	s := Compute([]journal.TradeRecord{trade(1)}, equity, 50000)

	// Returns: +1%, -0.495%, +1.493% give a positive annualized ratio.
	assert.Greater(t, s.SharpeRatio, 0.0)
}

func TestResampleDailyKeepsLastValue(t *testing.T) {
	equity := []journal.EquitySample{
		{Time: statsT0, Equity: 50000},
		{Time: statsT0.Add(time.Hour), Equity: 50100},
		{Time: statsT0.Add(24 * time.Hour), Equity: 50200},
	}
	daily := resampleDaily(equity)
	assert.Equal(t, []float64{50100, 50200}, daily)
}

func TestPrintDoesNotPanicOnInf(t *testing.T) {
	s := Compute([]journal.TradeRecord{trade(100)}, equityCurve(statsT0, 50000, 50100), 50000)
	var buf bytes.Buffer
	Print(&buf, s)
	require.Contains(t, buf.String(), "Profit Factor: inf")
}
