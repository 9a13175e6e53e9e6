package sim

import "time"

// FillEvent is one entry of a position's append-only fill history.
type FillEvent struct {
	Time          time.Time
	Price         float64
	Size          int // signed fill size
	PositionAfter int
}

// Position tracks signed size and volume-weighted average entry price for
// one instrument. The average price is meaningful only while Size != 0; a
// size transition through zero resets cost basis for any remainder in the
// new direction.
type Position struct {
	Symbol        string
	Size          int // positive long, negative short
	AvgEntryPrice float64
	Fills         []FillEvent
}

// Update applies a fill to the position and appends it to the history.
func (p *Position) Update(fillPrice float64, fillSize int, ts time.Time) {
	switch {
	case p.Size == 0:
		p.Size = fillSize
		p.AvgEntryPrice = fillPrice

	case p.Size*fillSize > 0:
		// Adding in the same direction: blend the average.
		totalValue := float64(p.Size)*p.AvgEntryPrice + float64(fillSize)*fillPrice
		p.Size += fillSize
		p.AvgEntryPrice = totalValue / float64(p.Size)

	default:
		if abs(fillSize) < abs(p.Size) {
			// Partial close; cost basis unchanged.
			p.Size += fillSize
		} else {
			// Full close or reversal.
			remaining := fillSize + p.Size
			p.Size = remaining
			if remaining != 0 {
				p.AvgEntryPrice = fillPrice
			} else {
				p.AvgEntryPrice = 0
			}
		}
	}

	p.Fills = append(p.Fills, FillEvent{
		Time:          ts,
		Price:         fillPrice,
		Size:          fillSize,
		PositionAfter: p.Size,
	})
}

// UnrealizedPnL values the open position against the current price.
func (p *Position) UnrealizedPnL(currentPrice, tickValue, tickSize float64) float64 {
	if p.Size == 0 {
		return 0
	}
	ticks := (currentPrice - p.AvgEntryPrice) / tickSize
	return ticks * tickValue * float64(p.Size)
}

func (p *Position) IsLong() bool  { return p.Size > 0 }
func (p *Position) IsShort() bool { return p.Size < 0 }
func (p *Position) IsFlat() bool  { return p.Size == 0 }

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
