package risk

import (
	"fmt"
	"sort"
	"strings"
)

// DrawdownMode selects the reference point the max-loss limit trails.
type DrawdownMode int

const (
	// Static measures drawdown from a fixed reference value.
	Static DrawdownMode = iota
	// EODTrailing measures drawdown from the all-time equity high.
	EODTrailing
	// IntradayTrailing measures drawdown from the intraday equity high.
	IntradayTrailing
)

func (m DrawdownMode) String() string {
	switch m {
	case Static:
		return "static"
	case EODTrailing:
		return "eod_trailing"
	case IntradayTrailing:
		return "intraday_trailing"
	}
	return fmt.Sprintf("DrawdownMode(%d)", int(m))
}

// ParseDrawdownMode parses the string form used in configs and presets.
func ParseDrawdownMode(s string) (DrawdownMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "static":
		return Static, nil
	case "eod_trailing", "eod-trailing", "eod":
		return EODTrailing, nil
	case "intraday_trailing", "intraday-trailing", "intraday":
		return IntradayTrailing, nil
	}
	return 0, fmt.Errorf("unknown drawdown mode %q", s)
}

// AccountRules is a prop-firm account rule set.
type AccountRules struct {
	Name string

	InitialBalance float64
	MaxDailyLoss   float64
	MaxLoss        float64

	DrawdownMode      DrawdownMode
	DrawdownReference float64 // static mode: the fixed reference value

	// SessionClose is the wall-clock time (ET convention, "HH:MM") at
	// which all positions must be flat.
	SessionClose string

	AllowOvernight bool
	MaxContracts   int // 0 means uncapped

	// Evaluation bookkeeping, carried for reporting only.
	ProfitTarget   float64
	MinTradingDays int

	CommissionPerContract float64
}

// Prop firm presets. Commission defaults to $2.50 per contract per side;
// override per run as needed.

var Topstep50K = AccountRules{
	Name:                  "Topstep 50K",
	InitialBalance:        50000,
	MaxDailyLoss:          1000,
	MaxLoss:               2000,
	DrawdownMode:          EODTrailing,
	DrawdownReference:     50000,
	SessionClose:          "16:00",
	MaxContracts:          5,
	ProfitTarget:          3000,
	MinTradingDays:        4,
	CommissionPerContract: 2.50,
}

var Topstep100K = AccountRules{
	Name:                  "Topstep 100K",
	InitialBalance:        100000,
	MaxDailyLoss:          2000,
	MaxLoss:               3000,
	DrawdownMode:          EODTrailing,
	DrawdownReference:     100000,
	SessionClose:          "16:00",
	MaxContracts:          10,
	ProfitTarget:          6000,
	MinTradingDays:        4,
	CommissionPerContract: 2.50,
}

var Topstep150K = AccountRules{
	Name:                  "Topstep 150K",
	InitialBalance:        150000,
	MaxDailyLoss:          3000,
	MaxLoss:               4500,
	DrawdownMode:          EODTrailing,
	DrawdownReference:     150000,
	SessionClose:          "16:00",
	MaxContracts:          15,
	ProfitTarget:          9000,
	MinTradingDays:        4,
	CommissionPerContract: 2.50,
}

var Lucid50K = AccountRules{
	Name:                  "Lucid 50K",
	InitialBalance:        50000,
	MaxDailyLoss:          1000,
	MaxLoss:               2500,
	DrawdownMode:          IntradayTrailing,
	DrawdownReference:     50000,
	SessionClose:          "17:00",
	MaxContracts:          5,
	ProfitTarget:          2500,
	MinTradingDays:        3,
	CommissionPerContract: 2.50,
}

var Lucid100K = AccountRules{
	Name:                  "Lucid 100K",
	InitialBalance:        100000,
	MaxDailyLoss:          2000,
	MaxLoss:               3500,
	DrawdownMode:          IntradayTrailing,
	DrawdownReference:     100000,
	SessionClose:          "17:00",
	MaxContracts:          10,
	ProfitTarget:          5000,
	MinTradingDays:        3,
	CommissionPerContract: 2.50,
}

var TakeProfit50K = AccountRules{
	Name:                  "Take Profit Trader 50K",
	InitialBalance:        50000,
	MaxDailyLoss:          1250,
	MaxLoss:               2500,
	DrawdownMode:          IntradayTrailing,
	DrawdownReference:     50000,
	SessionClose:          "17:00",
	MaxContracts:          5,
	ProfitTarget:          3000,
	MinTradingDays:        3,
	CommissionPerContract: 2.50,
}

var TakeProfit100K = AccountRules{
	Name:                  "Take Profit Trader 100K",
	InitialBalance:        100000,
	MaxDailyLoss:          2500,
	MaxLoss:               3500,
	DrawdownMode:          IntradayTrailing,
	DrawdownReference:     100000,
	SessionClose:          "17:00",
	MaxContracts:          10,
	ProfitTarget:          6000,
	MinTradingDays:        3,
	CommissionPerContract: 2.50,
}

// Firms registers the presets by config key.
var Firms = map[string]AccountRules{
	"topstep_50k":      Topstep50K,
	"topstep_100k":     Topstep100K,
	"topstep_150k":     Topstep150K,
	"lucid_50k":        Lucid50K,
	"lucid_100k":       Lucid100K,
	"take_profit_50k":  TakeProfit50K,
	"take_profit_100k": TakeProfit100K,
}

// FirmByName looks up a preset by key, tolerating spaces and case.
func FirmByName(name string) (AccountRules, error) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "_"))
	r, ok := Firms[key]
	if !ok {
		return AccountRules{}, fmt.Errorf("unknown prop firm %q (available: %s)",
			name, strings.Join(FirmNames(), ", "))
	}
	return r, nil
}

// FirmNames returns the preset keys in sorted order.
func FirmNames() []string {
	out := make([]string, 0, len(Firms))
	for k := range Firms {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
