package strategies

import (
	"errors"
	"fmt"
	"strings"

	"propsim/market"
	"propsim/orders"
)

// ErrRiskRejected wraps submissions refused by the account's risk rules.
// Strategies that treat a refusal as "stand aside" rather than a failure
// match against it with errors.Is.
var ErrRiskRejected = errors.New("rejected by risk rules")

// PositionView is a read-only snapshot of a position, handed to strategy
// callbacks instead of the live ledger.
type PositionView struct {
	Symbol        string
	Size          int // signed: positive long, negative short
	AvgEntryPrice float64
}

func (p PositionView) IsLong() bool  { return p.Size > 0 }
func (p PositionView) IsShort() bool { return p.Size < 0 }
func (p PositionView) IsFlat() bool  { return p.Size == 0 }

// Broker is the scoped command and query surface the engine hands into
// every strategy callback. Strategies never hold a reference to the
// engine itself.
type Broker interface {
	// SubmitOrder queues an order for the next matching pass. Entries
	// that would breach the account's risk rules come back rejected
	// with an error describing the rule.
	SubmitOrder(o *orders.Order) (orders.ID, error)
	// SubmitOCOPair links two orders so that a fill on either cancels
	// the other.
	SubmitOCOPair(a, b *orders.Order) (orders.ID, orders.ID, error)
	// SubmitBracket submits entry now and holds the two exits until the
	// entry fills.
	SubmitBracket(entry, takeProfit, stopLoss *orders.Order) (orders.ID, orders.ID, orders.ID, error)
	// SubmitBracketTicks derives the exit pair from the entry fill
	// price in instrument ticks.
	SubmitBracketTicks(entry *orders.Order, tpTicks, slTicks float64) (orders.ID, orders.ID, orders.ID, error)
	CancelOrder(id orders.ID) bool
	CancelAll(symbol string)

	Position(symbol string) PositionView
	OpenOrders(symbol string) []*orders.Order
	// CurrentBar returns the as-of bar for the current step.
	CurrentBar(symbol string) (market.Bar, bool)
	Symbols() []string
}

// Strategy is the one mandatory callback. OnBar runs once per timeline
// step, only while the account is allowed to trade.
type Strategy interface {
	OnBar(b Broker, step market.Step) error
}

// Initializer is implemented by strategies that need one-time setup
// before the first step.
type Initializer interface {
	Initialize(b Broker) error
}

// OrderObserver is notified when an order fills.
type OrderObserver interface {
	OnOrderUpdate(o *orders.Order)
}

// TradeObserver is notified when a round-trip trade closes.
type TradeObserver interface {
	OnTradeClosed(symbol string, size int, entryPrice, exitPrice, pnl float64)
}

// Params carries the knobs shared by the built-in strategies.
type Params struct {
	Symbol    string
	Size      int
	SMAPeriod int
	TPTicks   float64
	SLTicks   float64
}

// ByName builds one of the built-in strategies.
func ByName(name string, p Params) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "noop", "none":
		return Noop{}, nil

	case "open-once":
		return &OpenOnce{Symbol: p.Symbol, Size: p.Size}, nil

	case "sma-cross", "smacross":
		return NewSMACross(p), nil

	default:
		return nil, fmt.Errorf("unknown strategy %q (supported: noop, open-once, sma-cross)", name)
	}
}
