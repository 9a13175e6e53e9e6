package orders

import (
	"fmt"
	"time"

	"propsim/internal/id"
	"propsim/market"
)

// Fill pairs a filled order with its fill price.
type Fill struct {
	Order *Order
	Price float64
}

// bracket holds the two exit orders of a bracket entry while the entry is
// working. Children stay out of the pending set until the entry fills.
// When tpOffset/slOffset are non-zero the child prices are resolved from
// the entry fill price at activation time.
type bracket struct {
	tp, sl             *Order
	tpOffset, slOffset float64
}

// Book holds working orders and matches them against bars.
//
// The simulation owns the book exclusively and drives it from a single
// goroutine; the book itself does no locking. All iteration is over
// slices in submission order, so matching is deterministic.
type Book struct {
	orders   map[ID]*Order
	sequence []ID // every order ever submitted, in submission order
	pending  []ID // active orders eligible for matching, in submission order
	groups   map[GroupID][]ID
	brackets map[ID]*bracket // entry id -> inactive children
}

func NewBook() *Book {
	return &Book{
		orders:   make(map[ID]*Order),
		groups:   make(map[GroupID][]ID),
		brackets: make(map[ID]*bracket),
	}
}

// validKind reports whether the order carries one of the four recognized
// kind variants.
func validKind(k Kind) bool {
	switch k.(type) {
	case Market, Limit, Stop, StopLimit:
		return true
	}
	return false
}

// Submit adds an order to the pending set. An order with an unrecognized
// kind is marked Rejected, retained for history, and never enters the
// pending set.
func (b *Book) Submit(o *Order) (ID, error) {
	if o.ID == "" {
		o.ID = ID(id.New())
	}
	b.orders[o.ID] = o
	b.sequence = append(b.sequence, o.ID)

	if !validKind(o.Kind) {
		o.Status = Rejected
		return o.ID, fmt.Errorf("order %s: unrecognized kind %T", o.ID, o.Kind)
	}

	o.Status = Pending
	if o.Group != "" {
		b.groups[o.Group] = append(b.groups[o.Group], o.ID)
	}
	b.pending = append(b.pending, o.ID)
	return o.ID, nil
}

// SubmitOCOPair links two orders under a fresh OCO group and submits both.
func (b *Book) SubmitOCOPair(a, c *Order) (ID, ID, error) {
	if !validKind(a.Kind) || !validKind(c.Kind) {
		// Reject both; a half-submitted pair has no cancellation mate.
		a.Status, c.Status = Rejected, Rejected
		return "", "", fmt.Errorf("oco pair: unrecognized order kind")
	}

	g := GroupID(id.New())
	a.Group, c.Group = g, g

	idA, err := b.Submit(a)
	if err != nil {
		return "", "", err
	}
	idC, err := b.Submit(c)
	if err != nil {
		return "", "", err
	}
	return idA, idC, nil
}

// SubmitBracket submits the entry order and holds takeProfit and stopLoss
// inactive until the entry fills, at which point both children join the
// pending set as a fresh OCO pair.
func (b *Book) SubmitBracket(entry, takeProfit, stopLoss *Order) (ID, ID, ID, error) {
	return b.submitBracket(entry, takeProfit, stopLoss, 0, 0)
}

// SubmitBracketTicks builds the exit pair from the entry fill price:
// take-profit tpTicks in favor of the entry, stop-loss slTicks against it.
// Both tick counts must be positive.
func (b *Book) SubmitBracketTicks(entry *Order, tpTicks, slTicks float64, tickSize float64) (ID, ID, ID, error) {
	if tpTicks <= 0 || slTicks <= 0 {
		return "", "", "", fmt.Errorf("bracket: tick offsets must be positive")
	}
	if tickSize <= 0 {
		return "", "", "", fmt.Errorf("bracket: tick size must be positive")
	}

	exitSide := Sell
	sign := 1.0
	if entry.Side == Sell {
		exitSide = Buy
		sign = -1.0
	}

	// Prices are placeholders until the entry fill resolves them.
	tp := &Order{Symbol: entry.Symbol, Side: exitSide, Size: entry.Size, Kind: Limit{}}
	sl := &Order{Symbol: entry.Symbol, Side: exitSide, Size: entry.Size, Kind: Stop{}}

	return b.submitBracket(entry, tp, sl, sign*tpTicks*tickSize, -sign*slTicks*tickSize)
}

func (b *Book) submitBracket(entry, tp, sl *Order, tpOffset, slOffset float64) (ID, ID, ID, error) {
	if !validKind(entry.Kind) || !validKind(tp.Kind) || !validKind(sl.Kind) {
		entry.Status, tp.Status, sl.Status = Rejected, Rejected, Rejected
		return "", "", "", fmt.Errorf("bracket: unrecognized order kind")
	}

	entryID, err := b.Submit(entry)
	if err != nil {
		return "", "", "", err
	}

	for _, child := range []*Order{tp, sl} {
		if child.ID == "" {
			child.ID = ID(id.New())
		}
		child.Parent = entryID
		child.Status = Pending
		b.orders[child.ID] = child
		b.sequence = append(b.sequence, child.ID)
	}
	b.brackets[entryID] = &bracket{tp: tp, sl: sl, tpOffset: tpOffset, slOffset: slOffset}

	return entryID, tp.ID, sl.ID, nil
}

// Cancel marks an active order cancelled. With cascade, active OCO
// siblings are cancelled too. Returns false when the id is unknown or the
// order is already terminal.
func (b *Book) Cancel(oid ID, cascade bool) bool {
	o, ok := b.orders[oid]
	if !ok || !o.Active() {
		return false
	}
	o.Status = Cancelled
	if cascade && o.Group != "" {
		for _, sid := range b.groups[o.Group] {
			if s := b.orders[sid]; s.Active() {
				s.Status = Cancelled
			}
		}
	}
	return true
}

// CancelAll cancels every active order, optionally filtered by symbol.
// Pass the empty string for all symbols. Inactive bracket children are
// cancelled too, so their entries can no longer spawn exits.
func (b *Book) CancelAll(symbol string) {
	for _, oid := range b.sequence {
		o := b.orders[oid]
		if !o.Active() {
			continue
		}
		if symbol != "" && o.Symbol != symbol {
			continue
		}
		o.Status = Cancelled
	}
}

// Get returns an order by id.
func (b *Book) Get(oid ID) (*Order, bool) {
	o, ok := b.orders[oid]
	return o, ok
}

// OpenOrders returns all active orders in submission order, optionally
// filtered by symbol. Inactive bracket children are included: they are
// live from the caller's point of view, just not yet matchable.
func (b *Book) OpenOrders(symbol string) []*Order {
	var out []*Order
	for _, oid := range b.sequence {
		o := b.orders[oid]
		if !o.Active() {
			continue
		}
		if symbol != "" && o.Symbol != symbol {
			continue
		}
		out = append(out, o)
	}
	return out
}

// PendingCount returns the number of orders eligible for matching.
func (b *Book) PendingCount() int {
	n := 0
	for _, oid := range b.pending {
		if b.orders[oid].Active() {
			n++
		}
	}
	return n
}

// MatchPending matches all pending orders against the given bars, in
// submission order. Orders whose symbol has no bar stay pending. A fill
// activates bracket children (matchable from the next pass, since the
// snapshot for this pass is already taken) and cancels active OCO
// siblings within the same pass. No partial fills: an order resolves to
// filled-in-full or stays pending.
func (b *Book) MatchPending(ts time.Time, bars map[string]market.Bar) []Fill {
	queue := b.pending
	b.pending = nil

	var fills []Fill
	var still []ID

	for _, oid := range queue {
		o := b.orders[oid]
		if !o.Active() {
			// Cancelled earlier, possibly by an OCO sibling in this pass.
			continue
		}

		bar, ok := bars[o.Symbol]
		if !ok {
			still = append(still, oid)
			continue
		}

		price, hit := fillPrice(o, bar)
		if !hit {
			still = append(still, oid)
			continue
		}

		o.Status = Filled
		o.FillPrice = price
		o.FillTime = ts
		fills = append(fills, Fill{Order: o, Price: price})

		b.activateChildren(o)
		if o.Group != "" {
			b.cancelSiblings(o)
		}
	}

	// Children activated during the pass were appended to b.pending;
	// they sort after everything that was already working.
	b.pending = append(still, b.pending...)
	return fills
}

// fillPrice decides whether the order fills against the bar and at what
// price. The price is never better than the order's limit/stop level, but
// can be worse when the bar opens through it (gap slippage).
func fillPrice(o *Order, bar market.Bar) (float64, bool) {
	switch k := o.Kind.(type) {
	case Market:
		return bar.Open, true

	case Limit:
		return limitFill(o.Side, k.Price, bar)

	case Stop:
		return stopFill(o.Side, k.StopPrice, bar)

	case StopLimit:
		if !o.armed {
			candidate, hit := stopFill(o.Side, k.StopPrice, bar)
			if !hit {
				return 0, false
			}
			o.armed = true
			// The stop candidate stands only if it respects the limit.
			if (o.Side == Buy && candidate <= k.Price) ||
				(o.Side == Sell && candidate >= k.Price) {
				return candidate, true
			}
			return 0, false
		}
		return limitFill(o.Side, k.Price, bar)
	}
	return 0, false
}

func limitFill(side Side, price float64, bar market.Bar) (float64, bool) {
	if side == Buy {
		if bar.Low > price {
			return 0, false
		}
		if bar.Open <= price {
			return min(price, bar.Open), true
		}
		return price, true
	}
	if bar.High < price {
		return 0, false
	}
	if bar.Open >= price {
		return max(price, bar.Open), true
	}
	return price, true
}

func stopFill(side Side, stop float64, bar market.Bar) (float64, bool) {
	if side == Buy {
		if bar.High < stop {
			return 0, false
		}
		if bar.Open >= stop {
			return max(stop, bar.Open), true
		}
		return stop, true
	}
	if bar.Low > stop {
		return 0, false
	}
	if bar.Open <= stop {
		return min(stop, bar.Open), true
	}
	return stop, true
}

// activateChildren moves a filled bracket entry's exit pair into the
// pending set under a fresh OCO group, resolving tick-offset prices from
// the entry fill.
func (b *Book) activateChildren(entry *Order) {
	br, ok := b.brackets[entry.ID]
	if !ok {
		return
	}
	delete(b.brackets, entry.ID)

	if br.tpOffset != 0 {
		br.tp.Kind = Limit{Price: entry.FillPrice + br.tpOffset}
	}
	if br.slOffset != 0 {
		br.sl.Kind = Stop{StopPrice: entry.FillPrice + br.slOffset}
	}

	g := GroupID(id.New())
	for _, child := range []*Order{br.tp, br.sl} {
		if !child.Active() {
			// Cancelled while inactive; do not resurrect.
			continue
		}
		child.Group = g
		b.groups[g] = append(b.groups[g], child.ID)
		b.pending = append(b.pending, child.ID)
	}
}

// cancelSiblings cancels every other active member of the filled order's
// OCO group.
func (b *Book) cancelSiblings(filled *Order) {
	for _, sid := range b.groups[filled.Group] {
		if sid == filled.ID {
			continue
		}
		if s := b.orders[sid]; s.Active() {
			s.Status = Cancelled
		}
	}
}
