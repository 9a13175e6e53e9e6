package strategies

import "propsim/market"

// Noop does nothing. Useful as a baseline: the equity curve of a noop run
// is flat at the initial balance.
type Noop struct{}

func (Noop) OnBar(b Broker, step market.Step) error {
	_ = b
	_ = step
	return nil
}
