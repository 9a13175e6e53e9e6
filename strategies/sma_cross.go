package strategies

import (
	"errors"
	"time"

	"propsim/indicators"
	"propsim/market"
	"propsim/orders"
)

// SMACross enters long with a bracket when the close crosses above its
// SMA. Exits are left entirely to the bracket's take-profit/stop-loss
// pair.
type SMACross struct {
	Symbol    string
	Size      int
	SMAPeriod int
	TPTicks   float64
	SLTicks   float64

	sma       *indicators.RollingSMA
	prevClose float64
	prevSMA   float64
	warm      bool
	lastBar   time.Time
}

func NewSMACross(p Params) *SMACross {
	period := p.SMAPeriod
	if period <= 0 {
		period = 20
	}
	size := p.Size
	if size <= 0 {
		size = 1
	}
	tp, sl := p.TPTicks, p.SLTicks
	if tp <= 0 {
		tp = 20
	}
	if sl <= 0 {
		sl = 10
	}
	return &SMACross{
		Symbol:    p.Symbol,
		Size:      size,
		SMAPeriod: period,
		TPTicks:   tp,
		SLTicks:   sl,
		sma:       indicators.NewRollingSMA(period),
	}
}

func (s *SMACross) OnBar(b Broker, step market.Step) error {
	bar, ok := step.Bar(s.Symbol)
	if !ok {
		return nil
	}
	// The as-of join repeats the last bar on finer timeline steps; only
	// a fresh print advances the indicator.
	if !bar.Time.After(s.lastBar) {
		return nil
	}
	s.lastBar = bar.Time

	s.sma.Update(bar.Close)
	if !s.sma.Ready() {
		return nil
	}
	smaNow := s.sma.Value()
	defer func() {
		s.prevClose, s.prevSMA = bar.Close, smaNow
		s.warm = true
	}()

	if !s.warm {
		return nil
	}

	// One bracket at a time: stay out while a position or working
	// orders remain.
	if !b.Position(s.Symbol).IsFlat() || len(b.OpenOrders(s.Symbol)) > 0 {
		return nil
	}

	crossedUp := s.prevClose <= s.prevSMA && bar.Close > smaNow
	if !crossedUp {
		return nil
	}

	entry := &orders.Order{
		Symbol: s.Symbol,
		Side:   orders.Buy,
		Size:   s.Size,
		Kind:   orders.Market{},
	}
	_, _, _, err := b.SubmitBracketTicks(entry, s.TPTicks, s.SLTicks)
	if errors.Is(err, ErrRiskRejected) {
		return nil
	}
	return err
}
