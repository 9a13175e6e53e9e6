package sim

import (
	"fmt"

	"propsim/market"
	"propsim/orders"
	"propsim/strategies"
)

// brokerHandle is the scoped surface handed into strategy callbacks. It
// gates exposure-increasing submissions through the risk rules before
// they reach the book; reducing and flattening orders always pass.
type brokerHandle struct {
	e *Engine
}

var _ strategies.Broker = brokerHandle{}

func (h brokerHandle) SubmitOrder(o *orders.Order) (orders.ID, error) {
	if err := h.gate(o); err != nil {
		return "", err
	}
	return h.e.book.Submit(o)
}

func (h brokerHandle) SubmitOCOPair(a, b *orders.Order) (orders.ID, orders.ID, error) {
	if err := h.gate(a); err != nil {
		return "", "", err
	}
	if err := h.gate(b); err != nil {
		return "", "", err
	}
	return h.e.book.SubmitOCOPair(a, b)
}

func (h brokerHandle) SubmitBracket(entry, takeProfit, stopLoss *orders.Order) (orders.ID, orders.ID, orders.ID, error) {
	// Only the entry is gated: the children reduce by construction.
	if err := h.gate(entry); err != nil {
		return "", "", "", err
	}
	return h.e.book.SubmitBracket(entry, takeProfit, stopLoss)
}

func (h brokerHandle) SubmitBracketTicks(entry *orders.Order, tpTicks, slTicks float64) (orders.ID, orders.ID, orders.ID, error) {
	in, ok := h.e.instruments[entry.Symbol]
	if !ok {
		return "", "", "", fmt.Errorf("sim: unknown instrument %q", entry.Symbol)
	}
	if err := h.gate(entry); err != nil {
		return "", "", "", err
	}
	return h.e.book.SubmitBracketTicks(entry, tpTicks, slTicks, in.TickSize)
}

func (h brokerHandle) CancelOrder(id orders.ID) bool {
	return h.e.book.Cancel(id, true)
}

func (h brokerHandle) CancelAll(symbol string) {
	h.e.book.CancelAll(symbol)
}

func (h brokerHandle) Position(symbol string) strategies.PositionView {
	pos, ok := h.e.positions[symbol]
	if !ok {
		return strategies.PositionView{Symbol: symbol}
	}
	return strategies.PositionView{
		Symbol:        symbol,
		Size:          pos.Size,
		AvgEntryPrice: pos.AvgEntryPrice,
	}
}

func (h brokerHandle) OpenOrders(symbol string) []*orders.Order {
	return h.e.book.OpenOrders(symbol)
}

func (h brokerHandle) CurrentBar(symbol string) (market.Bar, bool) {
	return h.e.step.Bar(symbol)
}

func (h brokerHandle) Symbols() []string {
	return h.e.feed.Symbols()
}

// gate rejects exposure-increasing orders when the risk rules forbid new
// entries. The order is marked rejected and never reaches the book.
func (h brokerHandle) gate(o *orders.Order) error {
	cur := 0
	if pos, ok := h.e.positions[o.Symbol]; ok {
		cur = pos.Size
	}
	if !increasesExposure(cur, o.SignedSize()) {
		return nil
	}
	ok, reason := h.e.riskMgr.CanOpenPosition(o.Symbol, o.Size, h.e.openSizes())
	if !ok {
		o.Status = orders.Rejected
		return fmt.Errorf("%w: %s", strategies.ErrRiskRejected, reason)
	}
	return nil
}

// increasesExposure reports whether applying delta to the current signed
// size moves the position further from flat.
func increasesExposure(cur, delta int) bool {
	if delta == 0 {
		return false
	}
	if cur == 0 || cur*delta > 0 {
		return true
	}
	return abs(cur+delta) > abs(cur)
}
