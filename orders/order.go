package orders

import (
	"fmt"
	"time"
)

// ID identifies a single order.
type ID string

// GroupID identifies an OCO group. A fill on any member cancels the rest.
type GroupID string

// Side is the order direction.
type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	}
	return fmt.Sprintf("Side(%d)", int(s))
}

// Status is the order lifecycle state. Transitions are one-way into a
// terminal state (Filled, Cancelled, Rejected).
type Status int

const (
	Pending Status = iota
	Open
	Filled
	Cancelled
	Rejected
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Open:
		return "open"
	case Filled:
		return "filled"
	case Cancelled:
		return "cancelled"
	case Rejected:
		return "rejected"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Terminal reports whether the status can no longer change.
func (s Status) Terminal() bool {
	return s == Filled || s == Cancelled || s == Rejected
}

// Kind is the order type variant. The four concrete kinds are Market,
// Limit, Stop and StopLimit; matching switches over them exhaustively and
// anything else is rejected at submission.
type Kind interface {
	kind() string
}

// Market fills at the bar open.
type Market struct{}

// Limit fills at Price or better.
type Limit struct {
	Price float64
}

// Stop becomes marketable once the bar trades through StopPrice. The fill
// is no better than the stop, and worse if the bar opened beyond it.
type Stop struct {
	StopPrice float64
}

// StopLimit arms at StopPrice and then fills only within Price.
type StopLimit struct {
	Price     float64
	StopPrice float64
}

func (Market) kind() string    { return "market" }
func (Limit) kind() string     { return "limit" }
func (Stop) kind() string      { return "stop" }
func (StopLimit) kind() string { return "stop_limit" }

// Order is a single order. Size is unsigned; direction comes from Side.
type Order struct {
	ID     ID
	Symbol string
	Side   Side
	Size   int
	Kind   Kind

	Group  GroupID // OCO group, empty if none
	Parent ID      // bracket entry order, empty if none

	Status    Status
	Submitted time.Time
	FillPrice float64
	FillTime  time.Time

	// armed marks a stop-limit whose stop level has traded.
	armed bool
}

// SignedSize is the position delta this order produces when filled.
func (o *Order) SignedSize() int {
	if o.Side == Sell {
		return -o.Size
	}
	return o.Size
}

// Active reports whether the order can still fill or be cancelled.
func (o *Order) Active() bool {
	return o.Status == Pending || o.Status == Open
}

func (o *Order) String() string {
	k := "market"
	switch v := o.Kind.(type) {
	case Limit:
		k = fmt.Sprintf("limit@%.2f", v.Price)
	case Stop:
		k = fmt.Sprintf("stop@%.2f", v.StopPrice)
	case StopLimit:
		k = fmt.Sprintf("stop-limit@%.2f/%.2f", v.StopPrice, v.Price)
	}
	return fmt.Sprintf("Order(%s: %s %d %s %s)", o.ID, o.Side, o.Size, o.Symbol, k)
}
