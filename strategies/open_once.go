package strategies

import (
	"fmt"

	"propsim/market"
	"propsim/orders"
)

// OpenOnce submits a single market buy the first time its symbol prints a
// bar, then goes quiet.
type OpenOnce struct {
	Symbol string
	Size   int
	opened bool
}

func (s *OpenOnce) OnBar(b Broker, step market.Step) error {
	if s.opened {
		return nil
	}
	if _, ok := step.Bar(s.Symbol); !ok {
		return nil
	}
	if s.Size <= 0 {
		return fmt.Errorf("open-once: size must be positive")
	}

	_, err := b.SubmitOrder(&orders.Order{
		Symbol: s.Symbol,
		Side:   orders.Buy,
		Size:   s.Size,
		Kind:   orders.Market{},
	})
	if err != nil {
		return err
	}
	s.opened = true
	return nil
}
