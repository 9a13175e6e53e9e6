package market

import (
	"fmt"
	"sort"
	"time"
)

// Series holds the bar history for a single instrument, sorted by time.
type Series struct {
	Symbol    string
	Timeframe string
	Bars      []Bar
}

// NewSeries builds a Series, sorting bars by time. The sort is stable so
// duplicate timestamps keep their input order.
func NewSeries(symbol, timeframe string, bars []Bar) *Series {
	s := &Series{Symbol: symbol, Timeframe: timeframe, Bars: bars}
	sort.SliceStable(s.Bars, func(i, j int) bool {
		return s.Bars[i].Time.Before(s.Bars[j].Time)
	})
	return s
}

func (s *Series) Len() int { return len(s.Bars) }

// Start and End bound the series in time. Zero time when empty.
func (s *Series) Start() time.Time {
	if len(s.Bars) == 0 {
		return time.Time{}
	}
	return s.Bars[0].Time
}

func (s *Series) End() time.Time {
	if len(s.Bars) == 0 {
		return time.Time{}
	}
	return s.Bars[len(s.Bars)-1].Time
}

// Feed synchronizes multiple instrument series onto one timeline. The
// timeline spans the union of all series, stepped at BaseStep; each step
// reports the most recent bar at or before the step time per symbol
// (as-of join, never a future bar).
type Feed struct {
	// BaseStep is the timeline granularity. Defaults to one minute,
	// matching the finest timeframe the loaders emit.
	BaseStep time.Duration

	series  map[string]*Series
	symbols []string // sorted, for deterministic iteration
}

func NewFeed() *Feed {
	return &Feed{
		BaseStep: time.Minute,
		series:   make(map[string]*Series),
	}
}

// Add registers a series. Adding the same symbol twice is an error.
func (f *Feed) Add(s *Series) error {
	if s == nil || s.Symbol == "" {
		return fmt.Errorf("feed: series must have a symbol")
	}
	if s.Len() == 0 {
		return fmt.Errorf("feed: series %q has no bars", s.Symbol)
	}
	if _, dup := f.series[s.Symbol]; dup {
		return fmt.Errorf("feed: duplicate series for %q", s.Symbol)
	}
	f.series[s.Symbol] = s
	f.symbols = append(f.symbols, s.Symbol)
	sort.Strings(f.symbols)
	return nil
}

// Symbols returns the registered symbols in sorted order.
func (f *Feed) Symbols() []string {
	out := make([]string, len(f.symbols))
	copy(out, f.symbols)
	return out
}

// Series returns the series for a symbol.
func (f *Feed) Series(symbol string) (*Series, bool) {
	s, ok := f.series[symbol]
	return s, ok
}

// Iterator walks the synchronized timeline. Cursors only move forward, so
// a full pass is linear in the total number of bars plus steps.
type Iterator struct {
	feed    *Feed
	now     time.Time
	end     time.Time
	cursors map[string]int // index of last bar at or before now, -1 before first
	started bool
}

// Iterator returns a fresh timeline iterator. Returns an error when the
// feed is empty.
func (f *Feed) Iterator() (*Iterator, error) {
	if len(f.symbols) == 0 {
		return nil, fmt.Errorf("feed: no series added")
	}

	var start, end time.Time
	for _, sym := range f.symbols {
		s := f.series[sym]
		if start.IsZero() || s.Start().Before(start) {
			start = s.Start()
		}
		if end.IsZero() || s.End().After(end) {
			end = s.End()
		}
	}

	step := f.BaseStep
	if step <= 0 {
		step = time.Minute
	}

	cursors := make(map[string]int, len(f.symbols))
	for _, sym := range f.symbols {
		cursors[sym] = -1
	}

	return &Iterator{
		feed:    f,
		now:     start,
		end:     end,
		cursors: cursors,
	}, nil
}

// Next yields the next timeline step. ok is false once the timeline is
// exhausted.
func (it *Iterator) Next() (Step, bool) {
	step := it.feed.BaseStep
	if step <= 0 {
		step = time.Minute
	}

	for {
		if it.started {
			it.now = it.now.Add(step)
		}
		it.started = true
		if it.now.After(it.end) {
			return Step{}, false
		}

		bars := make(map[string]Bar, len(it.feed.symbols))
		for _, sym := range it.feed.symbols {
			s := it.feed.series[sym]
			i := it.cursors[sym]
			for i+1 < len(s.Bars) && !s.Bars[i+1].Time.After(it.now) {
				i++
			}
			it.cursors[sym] = i
			if i >= 0 {
				bars[sym] = s.Bars[i]
			}
		}

		// A step with no observed bar yet carries no information.
		if len(bars) > 0 {
			return Step{Time: it.now, Bars: bars}, true
		}
	}
}
