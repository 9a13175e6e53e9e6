package risk

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Verdict is the per-step output of the rule state machine.
type Verdict struct {
	CanTrade       bool
	ClosePositions bool
	Reason         string
}

// Manager enforces a prop-firm rule set over the life of a simulation.
//
// The daily-loss flag clears on day rollover; the max-loss flag is sticky
// and never clears. That mirrors the permanent-disqualification reading of
// prop-firm max-loss rules.
type Manager struct {
	rules AccountRules

	day            time.Time // current trading day (date only)
	haveDay        bool
	dayStartEquity float64
	intradayHigh   float64
	allTimeHigh    float64

	dailyLossHit bool
	maxLossHit   bool

	closeMinute int // session close as minutes since midnight
}

// NewManager builds a Manager for the given rules. The session close time
// must be "HH:MM" or "HH"; anything else is a configuration error.
func NewManager(rules AccountRules) (*Manager, error) {
	cm, err := parseClockMinute(rules.SessionClose)
	if err != nil {
		return nil, fmt.Errorf("risk: session close time: %w", err)
	}
	return &Manager{
		rules:          rules,
		dayStartEquity: rules.InitialBalance,
		intradayHigh:   rules.InitialBalance,
		allTimeHigh:    rules.InitialBalance,
		closeMinute:    cm,
	}, nil
}

func parseClockMinute(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty time")
	}
	hh, mm := s, "0"
	if i := strings.IndexByte(s, ':'); i >= 0 {
		hh, mm = s[:i], s[i+1:]
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("bad hour in %q", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("bad minute in %q", s)
	}
	return h*60 + m, nil
}

// Evaluate advances the state machine one step. Checks run in a fixed
// order: day rollover, high-water marks, session close, daily loss, max
// loss. Violations request liquidation but never end the run; the loop
// keeps stepping to resolve already-pending orders.
func (m *Manager) Evaluate(ts time.Time, equity float64) Verdict {
	y, mo, d := ts.Date()
	day := time.Date(y, mo, d, 0, 0, 0, 0, ts.Location())
	if !m.haveDay || !m.day.Equal(day) {
		m.haveDay = true
		m.day = day
		m.dayStartEquity = equity
		m.intradayHigh = equity
		m.dailyLossHit = false
		// maxLossHit survives rollover.
	}

	if equity > m.intradayHigh {
		m.intradayHigh = equity
	}
	if equity > m.allTimeHigh {
		m.allTimeHigh = equity
	}

	// Set flags keep blocking even if equity recovers: max loss forever,
	// daily loss until the next rollover.
	if m.maxLossHit {
		return Verdict{CanTrade: false, ClosePositions: true, Reason: "max loss hit"}
	}
	if m.dailyLossHit {
		return Verdict{CanTrade: false, ClosePositions: true, Reason: "daily loss limit hit"}
	}

	if ts.Hour()*60+ts.Minute() >= m.closeMinute {
		return Verdict{CanTrade: false, ClosePositions: true,
			Reason: fmt.Sprintf("session close (%s)", m.rules.SessionClose)}
	}

	dailyPnL := equity - m.dayStartEquity
	if dailyPnL <= -m.rules.MaxDailyLoss {
		m.dailyLossHit = true
		return Verdict{CanTrade: false, ClosePositions: true,
			Reason: fmt.Sprintf("daily loss limit ($%.2f)", -dailyPnL)}
	}

	if dd := m.drawdown(equity); dd >= m.rules.MaxLoss {
		m.maxLossHit = true
		return Verdict{CanTrade: false, ClosePositions: true,
			Reason: fmt.Sprintf("max loss ($%.2f drawdown)", dd)}
	}

	return Verdict{CanTrade: true}
}

func (m *Manager) drawdown(equity float64) float64 {
	switch m.rules.DrawdownMode {
	case Static:
		return m.rules.DrawdownReference - equity
	case EODTrailing:
		return m.allTimeHigh - equity
	case IntradayTrailing:
		return m.intradayHigh - equity
	}
	return 0
}

// CanOpenPosition gates a new entry of requestedSize contracts on symbol.
// openPositions maps symbol to signed position size.
func (m *Manager) CanOpenPosition(symbol string, requestedSize int, openPositions map[string]int) (bool, string) {
	if m.dailyLossHit {
		return false, "daily loss limit hit"
	}
	if m.maxLossHit {
		return false, "max loss hit"
	}
	if m.rules.MaxContracts > 0 {
		total := 0
		for _, size := range openPositions {
			total += abs(size)
		}
		if total+abs(requestedSize) > m.rules.MaxContracts {
			return false, fmt.Sprintf("max contracts exceeded (%d)", m.rules.MaxContracts)
		}
	}
	_ = symbol
	return true, ""
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// State is a snapshot of the rule machine, for reporting.
type State struct {
	DayStartEquity float64
	IntradayHigh   float64
	AllTimeHigh    float64
	DailyLossHit   bool
	MaxLossHit     bool
}

func (m *Manager) State() State {
	return State{
		DayStartEquity: m.dayStartEquity,
		IntradayHigh:   m.intradayHigh,
		AllTimeHigh:    m.allTimeHigh,
		DailyLossHit:   m.dailyLossHit,
		MaxLossHit:     m.maxLossHit,
	}
}

// Rules returns the rule set the manager enforces.
func (m *Manager) Rules() AccountRules { return m.rules }
