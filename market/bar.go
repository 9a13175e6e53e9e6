package market

import "time"

// Bar represents one OHLCV observation for an instrument.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Step is one tick of the synchronized timeline: a timestamp plus the
// as-of bar for every symbol that has produced data by that time.
type Step struct {
	Time time.Time
	Bars map[string]Bar
}

// Bar returns the as-of bar for symbol at this step, if one exists.
func (s Step) Bar(symbol string) (Bar, bool) {
	b, ok := s.Bars[symbol]
	return b, ok
}
