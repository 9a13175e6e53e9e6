package market

import (
	"fmt"
	"sort"
	"strings"
)

// Instrument is a futures contract specification.
type Instrument struct {
	Symbol          string
	Name            string
	TickSize        float64 // minimum price increment
	TickValue       float64 // $ per tick per contract
	PointValue      float64 // $ per full point per contract
	MarginDay       float64 // intraday margin estimate
	MarginOvernight float64 // overnight margin estimate
	SessionClose    string  // daily session end, ET wall clock
}

// PnL returns the dollar profit or loss of a price move on this contract.
// contracts is signed: positive for long, negative for short.
func (in Instrument) PnL(entry, exit float64, contracts int) float64 {
	ticks := (exit - entry) / in.TickSize
	return ticks * in.TickValue * float64(contracts)
}

// TicksAway returns price offset by n ticks. Negative n moves down.
func (in Instrument) TicksAway(price float64, n float64) float64 {
	return price + n*in.TickSize
}

// Micro futures registry.
var Instruments = map[string]Instrument{
	"MES": {
		Symbol:          "MES",
		Name:            "Micro E-mini S&P 500",
		TickSize:        0.25,
		TickValue:       1.25,
		PointValue:      5.0,
		MarginDay:       200.0,
		MarginOvernight: 1100.0,
		SessionClose:    "17:00",
	},
	"MNQ": {
		Symbol:          "MNQ",
		Name:            "Micro E-mini Nasdaq-100",
		TickSize:        0.25,
		TickValue:       0.50,
		PointValue:      2.0,
		MarginDay:       100.0,
		MarginOvernight: 660.0,
		SessionClose:    "17:00",
	},
	"MGC": {
		Symbol:          "MGC",
		Name:            "Micro Gold",
		TickSize:        0.10,
		TickValue:       1.00,
		PointValue:      10.0,
		MarginDay:       250.0,
		MarginOvernight: 1100.0,
		SessionClose:    "17:00",
	},
	"MYM": {
		Symbol:          "MYM",
		Name:            "Micro E-mini Dow",
		TickSize:        1.00,
		TickValue:       0.50,
		PointValue:      0.50,
		MarginDay:       100.0,
		MarginOvernight: 880.0,
		SessionClose:    "17:00",
	},
}

// Get looks up an instrument by symbol (case-insensitive).
func Get(symbol string) (Instrument, error) {
	in, ok := Instruments[strings.ToUpper(symbol)]
	if !ok {
		return Instrument{}, fmt.Errorf("unknown instrument %q (available: %s)",
			symbol, strings.Join(Symbols(), ", "))
	}
	return in, nil
}

// Symbols returns all registered symbols in sorted order.
func Symbols() []string {
	out := make([]string, 0, len(Instruments))
	for s := range Instruments {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
