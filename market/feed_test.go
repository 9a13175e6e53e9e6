package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var feedT0 = time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC)

func minuteBars(start time.Time, closes ...float64) []Bar {
	out := make([]Bar, len(closes))
	for i, c := range closes {
		ts := start.Add(time.Duration(i) * time.Minute)
		out[i] = Bar{Time: ts, Open: c, High: c, Low: c, Close: c}
	}
	return out
}

func TestNewSeriesSortsByTime(t *testing.T) {
	bars := []Bar{
		{Time: feedT0.Add(2 * time.Minute), Close: 3},
		{Time: feedT0, Close: 1},
		{Time: feedT0.Add(time.Minute), Close: 2},
	}
	s := NewSeries("MES", "1min", bars)
	assert.Equal(t, 1.0, s.Bars[0].Close)
	assert.Equal(t, 3.0, s.Bars[2].Close)
	assert.Equal(t, feedT0, s.Start())
	assert.Equal(t, feedT0.Add(2*time.Minute), s.End())
}

func TestFeedRejectsDuplicateAndEmpty(t *testing.T) {
	f := NewFeed()
	require.NoError(t, f.Add(NewSeries("MES", "1min", minuteBars(feedT0, 1))))
	assert.Error(t, f.Add(NewSeries("MES", "1min", minuteBars(feedT0, 1))))
	assert.Error(t, f.Add(NewSeries("MNQ", "1min", nil)))
	assert.Error(t, f.Add(nil))
}

func TestIteratorWalksSingleSeries(t *testing.T) {
	f := NewFeed()
	require.NoError(t, f.Add(NewSeries("MES", "1min", minuteBars(feedT0, 1, 2, 3))))

	it, err := f.Iterator()
	require.NoError(t, err)

	var closes []float64
	for {
		step, ok := it.Next()
		if !ok {
			break
		}
		bar, ok := step.Bar("MES")
		require.True(t, ok)
		closes = append(closes, bar.Close)
	}
	assert.Equal(t, []float64{1, 2, 3}, closes)
}

func TestIteratorAsOfJoinNeverYieldsFutureBar(t *testing.T) {
	f := NewFeed()
	// MES prints every minute; MGC only every five.
	require.NoError(t, f.Add(NewSeries("MES", "1min", minuteBars(feedT0, 1, 2, 3, 4, 5, 6))))
	require.NoError(t, f.Add(NewSeries("MGC", "5min", []Bar{
		{Time: feedT0, Open: 10, High: 10, Low: 10, Close: 10},
		{Time: feedT0.Add(5 * time.Minute), Open: 20, High: 20, Low: 20, Close: 20},
	})))

	it, err := f.Iterator()
	require.NoError(t, err)

	for {
		step, ok := it.Next()
		if !ok {
			break
		}
		mgc, ok := step.Bar("MGC")
		require.True(t, ok)
		assert.False(t, mgc.Time.After(step.Time), "as-of bar must not come from the future")
		if step.Time.Before(feedT0.Add(5 * time.Minute)) {
			assert.Equal(t, 10.0, mgc.Close)
		} else {
			assert.Equal(t, 20.0, mgc.Close)
		}
	}
}

func TestIteratorSpansUnionOfSeries(t *testing.T) {
	f := NewFeed()
	// MNQ starts two minutes after MES and ends later.
	require.NoError(t, f.Add(NewSeries("MES", "1min", minuteBars(feedT0, 1, 2))))
	require.NoError(t, f.Add(NewSeries("MNQ", "1min", minuteBars(feedT0.Add(2*time.Minute), 10, 11))))

	it, err := f.Iterator()
	require.NoError(t, err)

	var times []time.Time
	for {
		step, ok := it.Next()
		if !ok {
			break
		}
		times = append(times, step.Time)
	}
	require.Len(t, times, 4)
	assert.Equal(t, feedT0, times[0])
	assert.Equal(t, feedT0.Add(3*time.Minute), times[3])
}

func TestIteratorSkipsStepsBeforeFirstBar(t *testing.T) {
	f := NewFeed()
	require.NoError(t, f.Add(NewSeries("MES", "1min", minuteBars(feedT0, 1))))
	require.NoError(t, f.Add(NewSeries("MNQ", "1min", minuteBars(feedT0.Add(10*time.Minute), 2))))

	it, err := f.Iterator()
	require.NoError(t, err)

	// First step carries only MES; MNQ appears once it has printed.
	step, ok := it.Next()
	require.True(t, ok)
	_, hasMES := step.Bar("MES")
	_, hasMNQ := step.Bar("MNQ")
	assert.True(t, hasMES)
	assert.False(t, hasMNQ)
}

func TestIteratorEmptyFeed(t *testing.T) {
	_, err := NewFeed().Iterator()
	assert.Error(t, err)
}
