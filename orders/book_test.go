package orders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propsim/market"
)

var t0 = time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC)

func bar(open, high, low, close float64) market.Bar {
	return market.Bar{Time: t0, Open: open, High: high, Low: low, Close: close}
}

func barsFor(symbol string, b market.Bar) map[string]market.Bar {
	return map[string]market.Bar{symbol: b}
}

func order(side Side, size int, kind Kind) *Order {
	return &Order{Symbol: "MES", Side: side, Size: size, Kind: kind}
}

func TestMarketFillsAtOpen(t *testing.T) {
	b := NewBook()
	o := order(Buy, 1, Market{})
	_, err := b.Submit(o)
	require.NoError(t, err)

	fills := b.MatchPending(t0, barsFor("MES", bar(100, 101, 99, 100.5)))
	require.Len(t, fills, 1)
	assert.Equal(t, 100.0, fills[0].Price)
	assert.Equal(t, Filled, o.Status)
	assert.Equal(t, t0, o.FillTime)
}

func TestLimitFills(t *testing.T) {
	tests := []struct {
		name      string
		side      Side
		limit     float64
		bar       market.Bar
		wantFill  bool
		wantPrice float64
	}{
		{"buy touch below open", Buy, 99, bar(100, 101, 98.5, 100.5), true, 99},
		{"buy open through limit", Buy, 100, bar(99.5, 101, 99, 100.5), true, 99.5},
		{"buy open exactly at limit", Buy, 100, bar(100, 101, 99, 100.5), true, 100},
		{"buy no touch", Buy, 98, bar(100, 101, 98.5, 100.5), false, 0},
		{"sell touch above open", Sell, 101, bar(100, 101.5, 99, 100.5), true, 101},
		{"sell open through limit", Sell, 100, bar(100.5, 101, 99, 100.5), true, 100.5},
		{"sell no touch", Sell, 102, bar(100, 101.5, 99, 100.5), false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBook()
			o := order(tt.side, 1, Limit{Price: tt.limit})
			_, err := b.Submit(o)
			require.NoError(t, err)

			fills := b.MatchPending(t0, barsFor("MES", tt.bar))
			if !tt.wantFill {
				assert.Empty(t, fills)
				assert.Equal(t, Pending, o.Status)
				assert.Equal(t, 1, b.PendingCount())
				return
			}
			require.Len(t, fills, 1)
			assert.Equal(t, tt.wantPrice, fills[0].Price)
		})
	}
}

func TestStopFills(t *testing.T) {
	tests := []struct {
		name      string
		side      Side
		stop      float64
		bar       market.Bar
		wantFill  bool
		wantPrice float64
	}{
		{"buy triggered intrabar", Buy, 101, bar(100, 101.5, 99, 100.5), true, 101},
		{"buy gap through stop", Buy, 101, bar(102, 103, 101.5, 102.5), true, 102},
		{"buy not reached", Buy, 102, bar(100, 101.5, 99, 100.5), false, 0},
		{"sell triggered intrabar", Sell, 99, bar(100, 101, 98.5, 100.5), true, 99},
		{"sell gap through stop", Sell, 99, bar(98, 99.5, 97.5, 98.5), true, 98},
		{"sell not reached", Sell, 98, bar(100, 101, 98.5, 100.5), false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBook()
			o := order(tt.side, 1, Stop{StopPrice: tt.stop})
			_, err := b.Submit(o)
			require.NoError(t, err)

			fills := b.MatchPending(t0, barsFor("MES", tt.bar))
			if !tt.wantFill {
				assert.Empty(t, fills)
				return
			}
			require.Len(t, fills, 1)
			assert.Equal(t, tt.wantPrice, fills[0].Price)
		})
	}
}

func TestStopLimitArmsThenRestsAsLimit(t *testing.T) {
	b := NewBook()
	// Buy stop-limit: trigger at 101, but pay no more than 100.50.
	o := order(Buy, 1, StopLimit{StopPrice: 101, Price: 100.5})
	_, err := b.Submit(o)
	require.NoError(t, err)

	// Bar trades through the stop but only above the limit: arms, no fill.
	fills := b.MatchPending(t0, barsFor("MES", bar(100.75, 101.5, 100.6, 101.2)))
	assert.Empty(t, fills)
	assert.Equal(t, Pending, o.Status)

	// Armed order now behaves as a plain limit.
	fills = b.MatchPending(t0.Add(time.Minute), barsFor("MES", bar(101, 101.2, 100.25, 100.5)))
	require.Len(t, fills, 1)
	assert.Equal(t, 100.5, fills[0].Price)
}

func TestStopLimitFillsOnArmingBarWithinLimit(t *testing.T) {
	b := NewBook()
	o := order(Buy, 1, StopLimit{StopPrice: 101, Price: 101.5})
	_, err := b.Submit(o)
	require.NoError(t, err)

	// Stop candidate (101) respects the limit (101.5): fills immediately.
	fills := b.MatchPending(t0, barsFor("MES", bar(100, 102, 99.5, 101.8)))
	require.Len(t, fills, 1)
	assert.Equal(t, 101.0, fills[0].Price)
}

func TestNoBarLeavesOrderPending(t *testing.T) {
	b := NewBook()
	o := order(Buy, 1, Market{})
	_, err := b.Submit(o)
	require.NoError(t, err)

	fills := b.MatchPending(t0, map[string]market.Bar{"MNQ": bar(18000, 18010, 17990, 18005)})
	assert.Empty(t, fills)
	assert.Equal(t, 1, b.PendingCount())

	fills = b.MatchPending(t0.Add(time.Minute), barsFor("MES", bar(100, 101, 99, 100.5)))
	assert.Len(t, fills, 1)
}

func TestFilledOrderNeverMatchesAgain(t *testing.T) {
	b := NewBook()
	_, err := b.Submit(order(Buy, 1, Market{}))
	require.NoError(t, err)

	fills := b.MatchPending(t0, barsFor("MES", bar(100, 101, 99, 100.5)))
	require.Len(t, fills, 1)

	fills = b.MatchPending(t0.Add(time.Minute), barsFor("MES", bar(100, 101, 99, 100.5)))
	assert.Empty(t, fills)
	assert.Equal(t, 0, b.PendingCount())
}

func TestRejectsUnknownKind(t *testing.T) {
	b := NewBook()
	o := order(Buy, 1, nil)
	_, err := b.Submit(o)
	require.Error(t, err)
	assert.Equal(t, Rejected, o.Status)
	assert.Equal(t, 0, b.PendingCount())

	// Rejected orders never fill.
	fills := b.MatchPending(t0, barsFor("MES", bar(100, 101, 99, 100.5)))
	assert.Empty(t, fills)
}

func TestOCOFillCancelsSibling(t *testing.T) {
	b := NewBook()
	tp := order(Sell, 1, Limit{Price: 101})
	sl := order(Sell, 1, Stop{StopPrice: 99})
	_, _, err := b.SubmitOCOPair(tp, sl)
	require.NoError(t, err)

	// Bar touches both levels; submission order decides, and the fill
	// cancels the sibling in the same pass.
	fills := b.MatchPending(t0, barsFor("MES", bar(100, 101.5, 98.5, 100)))
	require.Len(t, fills, 1)
	assert.Same(t, tp, fills[0].Order)
	assert.Equal(t, Filled, tp.Status)
	assert.Equal(t, Cancelled, sl.Status)
	assert.Equal(t, 0, b.PendingCount())
}

func TestBracketChildrenActivateOnEntryFill(t *testing.T) {
	b := NewBook()
	entry := order(Buy, 1, Market{})
	entryID, tpID, slID, err := b.SubmitBracketTicks(entry, 20, 10, 0.25)
	require.NoError(t, err)

	// Children are visible as open orders but not matchable before the
	// entry fills.
	assert.Len(t, b.OpenOrders("MES"), 3)
	assert.Equal(t, 1, b.PendingCount())

	fills := b.MatchPending(t0, barsFor("MES", bar(5000, 5001, 4999, 5000.5)))
	require.Len(t, fills, 1)
	require.Equal(t, entryID, fills[0].Order.ID)
	assert.Equal(t, 5000.0, fills[0].Price)

	// Exit prices resolve from the actual entry fill.
	tp, _ := b.Get(tpID)
	sl, _ := b.Get(slID)
	assert.Equal(t, Limit{Price: 5005.0}, tp.Kind)
	assert.Equal(t, Stop{StopPrice: 4997.5}, sl.Kind)
	require.NotEmpty(t, tp.Group)
	assert.Equal(t, tp.Group, sl.Group)

	// Children joined pending after the snapshot: they match next pass.
	fills = b.MatchPending(t0.Add(time.Minute), barsFor("MES", bar(5002, 5006, 5001, 5005.5)))
	require.Len(t, fills, 1)
	assert.Equal(t, tpID, fills[0].Order.ID)
	assert.Equal(t, 5005.0, fills[0].Price)
	assert.Equal(t, Cancelled, sl.Status)
}

func TestBracketChildrenNotMatchableSamePass(t *testing.T) {
	b := NewBook()
	entry := order(Buy, 1, Market{})
	_, tpID, _, err := b.SubmitBracketTicks(entry, 4, 4, 0.25)
	require.NoError(t, err)

	// The bar would satisfy the take-profit too, but the child only
	// becomes matchable on the next pass.
	fills := b.MatchPending(t0, barsFor("MES", bar(5000, 5010, 4999, 5008)))
	require.Len(t, fills, 1)
	assert.Equal(t, entry.ID, fills[0].Order.ID)

	tp, _ := b.Get(tpID)
	assert.Equal(t, Pending, tp.Status)
}

func TestCancelCascadesThroughGroup(t *testing.T) {
	b := NewBook()
	a := order(Sell, 1, Limit{Price: 101})
	c := order(Sell, 1, Stop{StopPrice: 99})
	idA, _, err := b.SubmitOCOPair(a, c)
	require.NoError(t, err)

	assert.True(t, b.Cancel(idA, true))
	assert.Equal(t, Cancelled, a.Status)
	assert.Equal(t, Cancelled, c.Status)

	// Terminal orders cannot be cancelled again.
	assert.False(t, b.Cancel(idA, true))
}

func TestCancelAllIncludesInactiveChildren(t *testing.T) {
	b := NewBook()
	entry := order(Buy, 1, Limit{Price: 99})
	_, tpID, slID, err := b.SubmitBracketTicks(entry, 20, 10, 0.25)
	require.NoError(t, err)

	b.CancelAll("MES")
	for _, oid := range []ID{entry.ID, tpID, slID} {
		o, ok := b.Get(oid)
		require.True(t, ok)
		assert.Equal(t, Cancelled, o.Status)
	}

	// A cancelled entry can no longer spawn its exits.
	fills := b.MatchPending(t0, barsFor("MES", bar(98, 100, 97, 99)))
	assert.Empty(t, fills)
	assert.Equal(t, 0, b.PendingCount())
}

func TestMatchingOrderIsSubmissionOrder(t *testing.T) {
	b := NewBook()
	first := order(Buy, 1, Market{})
	second := order(Sell, 2, Market{})
	_, err := b.Submit(first)
	require.NoError(t, err)
	_, err = b.Submit(second)
	require.NoError(t, err)

	fills := b.MatchPending(t0, barsFor("MES", bar(100, 101, 99, 100.5)))
	require.Len(t, fills, 2)
	assert.Same(t, first, fills[0].Order)
	assert.Same(t, second, fills[1].Order)
}
