package indicators

import "fmt"

// RollingSMA is a streaming Simple Moving Average over the last period
// values.
type RollingSMA struct {
	period int
	window []float64
	sum    float64
}

func NewRollingSMA(period int) *RollingSMA {
	return &RollingSMA{
		period: period,
		window: make([]float64, 0, period),
	}
}

func (m *RollingSMA) Name() string {
	return fmt.Sprintf("SMA(%d)", m.period)
}

func (m *RollingSMA) Warmup() int { return m.period }

func (m *RollingSMA) Reset() {
	m.window = m.window[:0]
	m.sum = 0
}

func (m *RollingSMA) Update(v float64) {
	m.window = append(m.window, v)
	m.sum += v
	if len(m.window) > m.period {
		m.sum -= m.window[0]
		m.window = m.window[1:]
	}
}

func (m *RollingSMA) Ready() bool {
	return len(m.window) >= m.period
}

func (m *RollingSMA) Value() float64 {
	if !m.Ready() {
		return 0
	}
	return m.sum / float64(len(m.window))
}

// RollingEMA is a streaming Exponential Moving Average, seeded with the
// SMA of the first period values.
type RollingEMA struct {
	period     int
	multiplier float64
	ema        float64
	count      int
	warmupSum  float64
}

func NewRollingEMA(period int) *RollingEMA {
	return &RollingEMA{
		period:     period,
		multiplier: 2.0 / float64(period+1),
	}
}

func (e *RollingEMA) Name() string {
	return fmt.Sprintf("EMA(%d)", e.period)
}

func (e *RollingEMA) Warmup() int { return e.period }

func (e *RollingEMA) Reset() {
	e.ema = 0
	e.count = 0
	e.warmupSum = 0
}

func (e *RollingEMA) Update(v float64) {
	if e.count < e.period {
		e.warmupSum += v
		e.count++
		if e.count == e.period {
			e.ema = e.warmupSum / float64(e.period)
		}
		return
	}
	e.ema = (v-e.ema)*e.multiplier + e.ema
	e.count++
}

func (e *RollingEMA) Ready() bool {
	return e.count >= e.period
}

func (e *RollingEMA) Value() float64 {
	if !e.Ready() {
		return 0
	}
	return e.ema
}
