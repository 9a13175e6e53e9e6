package sim

import (
	"fmt"
	"time"

	"propsim/internal/id"
	"propsim/journal"
	"propsim/market"
	"propsim/orders"
	"propsim/risk"
	"propsim/strategies"
)

// Config wires an Engine together.
type Config struct {
	Rules    risk.AccountRules
	Feed     *market.Feed
	Strategy strategies.Strategy
	Journal  journal.Journal // optional; Result always accumulates
}

// openTrade tracks an open round trip until the position returns to flat.
type openTrade struct {
	price      float64
	size       int // signed
	time       time.Time
	commission float64 // accumulated over the trade's fills
}

// Engine drives the event loop: risk evaluation, order matching, ledger
// updates, strategy callbacks, and equity accumulation — strictly in that
// order, single-threaded, one timeline step at a time. Given identical
// inputs, the fill sequence, trade log, and equity curve are identical
// across runs.
type Engine struct {
	rules    risk.AccountRules
	feed     *market.Feed
	book     *orders.Book
	riskMgr  *risk.Manager
	strategy strategies.Strategy
	journal  journal.Journal

	instruments map[string]market.Instrument
	symbols     []string

	cash   float64
	equity float64

	step         market.Step
	positions    map[string]*Position
	openTrades   map[string]openTrade
	liquidations map[string]orders.ID // symbol -> working forced-close order

	result *Result
}

// New validates the configuration and builds an Engine. Every feed symbol
// must resolve to a known instrument; an unknown symbol is a fatal
// configuration error, not a runtime condition.
func New(cfg Config) (*Engine, error) {
	if cfg.Feed == nil {
		return nil, fmt.Errorf("sim: Feed is required")
	}
	if cfg.Strategy == nil {
		return nil, fmt.Errorf("sim: Strategy is required")
	}

	symbols := cfg.Feed.Symbols()
	instruments := make(map[string]market.Instrument, len(symbols))
	for _, sym := range symbols {
		in, err := market.Get(sym)
		if err != nil {
			return nil, fmt.Errorf("sim: %w", err)
		}
		instruments[sym] = in
	}

	mgr, err := risk.NewManager(cfg.Rules)
	if err != nil {
		return nil, err
	}

	return &Engine{
		rules:        cfg.Rules,
		feed:         cfg.Feed,
		book:         orders.NewBook(),
		riskMgr:      mgr,
		strategy:     cfg.Strategy,
		journal:      cfg.Journal,
		instruments:  instruments,
		symbols:      symbols,
		cash:         cfg.Rules.InitialBalance,
		equity:       cfg.Rules.InitialBalance,
		positions:    make(map[string]*Position),
		openTrades:   make(map[string]openTrade),
		liquidations: make(map[string]orders.ID),
		result:       &Result{},
	}, nil
}

// Run executes the simulation until the timeline is exhausted. Risk
// violations liquidate and block new entries but never end the loop.
func (e *Engine) Run() (*Result, error) {
	it, err := e.feed.Iterator()
	if err != nil {
		return nil, err
	}

	h := brokerHandle{e}
	if init, ok := e.strategy.(strategies.Initializer); ok {
		if err := init.Initialize(h); err != nil {
			return nil, fmt.Errorf("sim: initialize: %w", err)
		}
	}

	for {
		step, ok := it.Next()
		if !ok {
			break
		}
		if err := e.runStep(step); err != nil {
			return nil, err
		}
	}

	return e.result, nil
}

func (e *Engine) runStep(step market.Step) error {
	e.step = step

	verdict := e.riskMgr.Evaluate(step.Time, e.equity)

	// Forced closes join the pending set before this bar's matching
	// pass, so they resolve against the same bar.
	if verdict.ClosePositions {
		e.submitLiquidations(step.Time)
	}

	// Matching runs even when trading is blocked: already-pending
	// orders must still resolve.
	fills := e.book.MatchPending(step.Time, step.Bars)
	for _, f := range fills {
		if err := e.processFill(f, step.Time); err != nil {
			return err
		}
	}

	if verdict.CanTrade {
		if err := e.strategy.OnBar(brokerHandle{e}, step); err != nil {
			return fmt.Errorf("sim: strategy: %w", err)
		}
	}

	return e.recordEquity(step)
}

// submitLiquidations synthesizes one market order per open position,
// opposite in side and equal in size. A symbol with a forced close still
// working is skipped so liquidation never doubles up.
func (e *Engine) submitLiquidations(ts time.Time) {
	for _, sym := range e.symbols {
		pos, ok := e.positions[sym]
		if !ok || pos.IsFlat() {
			continue
		}
		if oid, working := e.liquidations[sym]; working {
			if o, found := e.book.Get(oid); found && o.Active() {
				continue
			}
		}

		side := orders.Sell
		if pos.IsShort() {
			side = orders.Buy
		}
		o := &orders.Order{
			Symbol:    sym,
			Side:      side,
			Size:      abs(pos.Size),
			Kind:      orders.Market{},
			Submitted: ts,
		}
		// Bypasses the entry gate: liquidation must go through even
		// with risk flags set.
		oid, err := e.book.Submit(o)
		if err != nil {
			continue
		}
		e.liquidations[sym] = oid
	}
}

func (e *Engine) processFill(f orders.Fill, ts time.Time) error {
	o := f.Order
	sym := o.Symbol
	in := e.instruments[sym]

	pos := e.position(sym)
	prev := pos.Size
	prevAvg := pos.AvgEntryPrice
	signed := o.SignedSize()

	pos.Update(f.Price, signed, ts)

	commission := float64(abs(signed)) * e.rules.CommissionPerContract
	e.cash -= commission
	if ot, ok := e.openTrades[sym]; ok {
		ot.commission += commission
		e.openTrades[sym] = ot
	}

	// Realize P&L on the closed portion so cash and equity stay
	// coherent through partial closes and reversals.
	if prev != 0 && prev*signed < 0 {
		closed := min(abs(signed), abs(prev))
		signedClosed := closed
		if prev < 0 {
			signedClosed = -closed
		}
		e.cash += in.PnL(prevAvg, f.Price, signedClosed)
	}

	crossedZero := prev != 0 && (pos.Size == 0 || prev*pos.Size < 0)
	if crossedZero {
		if entry, ok := e.openTrades[sym]; ok {
			gross := in.PnL(entry.price, f.Price, entry.size)
			side := "LONG"
			if entry.size < 0 {
				side = "SHORT"
			}
			rec := journal.TradeRecord{
				TradeID:    id.New(),
				Symbol:     sym,
				Side:       side,
				Size:       abs(entry.size),
				EntryPrice: entry.price,
				ExitPrice:  f.Price,
				EntryTime:  entry.time,
				ExitTime:   ts,
				GrossPnL:   gross,
				Commission: entry.commission,
			}
			e.result.Trades = append(e.result.Trades, rec)
			if e.journal != nil {
				if err := e.journal.RecordTrade(rec); err != nil {
					return fmt.Errorf("sim: record trade: %w", err)
				}
			}
			if obs, ok := e.strategy.(strategies.TradeObserver); ok {
				obs.OnTradeClosed(sym, entry.size, entry.price, f.Price, gross)
			}
			delete(e.openTrades, sym)
		}
	}

	// A transition from flat, or the remainder of a reversal, opens a
	// new round trip at this fill's price.
	if pos.Size != 0 && (prev == 0 || crossedZero) {
		ot := openTrade{price: f.Price, size: pos.Size, time: ts}
		if prev == 0 {
			// A reversal fill's commission stays with the trade it closed.
			ot.commission = commission
		}
		e.openTrades[sym] = ot
	}

	if obs, ok := e.strategy.(strategies.OrderObserver); ok {
		obs.OnOrderUpdate(o)
	}

	return nil
}

func (e *Engine) recordEquity(step market.Step) error {
	positionsValue := 0.0
	for _, sym := range e.symbols {
		pos, ok := e.positions[sym]
		if !ok || pos.IsFlat() {
			continue
		}
		bar, ok := step.Bars[sym]
		if !ok {
			continue
		}
		in := e.instruments[sym]
		positionsValue += pos.UnrealizedPnL(bar.Close, in.TickValue, in.TickSize)
	}

	e.equity = e.cash + positionsValue
	sample := journal.EquitySample{
		Time:           step.Time,
		Equity:         e.equity,
		Cash:           e.cash,
		PositionsValue: positionsValue,
	}
	e.result.Equity = append(e.result.Equity, sample)
	if e.journal != nil {
		if err := e.journal.RecordEquity(sample); err != nil {
			return fmt.Errorf("sim: record equity: %w", err)
		}
	}
	return nil
}

func (e *Engine) position(sym string) *Position {
	pos, ok := e.positions[sym]
	if !ok {
		pos = &Position{Symbol: sym}
		e.positions[sym] = pos
	}
	return pos
}

// openSizes snapshots the signed size of every non-flat position.
func (e *Engine) openSizes() map[string]int {
	out := make(map[string]int)
	for sym, pos := range e.positions {
		if !pos.IsFlat() {
			out[sym] = pos.Size
		}
	}
	return out
}

// Cash returns the current cash balance.
func (e *Engine) Cash() float64 { return e.cash }

// Equity returns the equity as of the last recorded step.
func (e *Engine) Equity() float64 { return e.equity }

// RiskState snapshots the rule state machine.
func (e *Engine) RiskState() risk.State { return e.riskMgr.State() }

// Book exposes the order book for inspection.
func (e *Engine) Book() *orders.Book { return e.book }
