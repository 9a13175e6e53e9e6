package journal

import "time"

// TradeRecord is one completed round-trip trade. Records are immutable
// once emitted by the simulation.
type TradeRecord struct {
	TradeID    string
	Symbol     string
	Side       string // "LONG" or "SHORT"
	Size       int
	EntryPrice float64
	ExitPrice  float64
	EntryTime  time.Time
	ExitTime   time.Time
	GrossPnL   float64
	Commission float64
}

// NetPnL is the trade's profit after commission.
func (t TradeRecord) NetPnL() float64 {
	return t.GrossPnL - t.Commission
}

// EquitySample is one point of the equity curve.
type EquitySample struct {
	Time           time.Time
	Equity         float64
	Cash           float64
	PositionsValue float64
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySample) error
	Close() error
}
