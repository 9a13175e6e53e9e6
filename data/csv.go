// Package data loads bar series from CSV and Parquet files.
package data

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"propsim/market"
)

var (
	symbolPattern    = regexp.MustCompile(`(MES|MNQ|MGC|MYM|ES|NQ|GC|YM)[12]?!?`)
	timeframePattern = []struct {
		re *regexp.Regexp
		tf string
	}{
		{regexp.MustCompile(`15M(?:[^A]|$)`), "15min"},
		{regexp.MustCompile(`30M(?:[^A]|$)`), "30min"},
		{regexp.MustCompile(`5M(?:[^A]|$)`), "5min"},
		{regexp.MustCompile(`1M(?:[^A]|$)`), "1min"},
		{regexp.MustCompile(`4H`), "4h"},
		{regexp.MustCompile(`1H`), "1h"},
		{regexp.MustCompile(`D(?:[^A]|$)`), "1d"},
	}
)

// DetectSymbol pulls a known futures symbol out of a filename, longest
// ticker first so MES never matches as ES.
func DetectSymbol(filename string) string {
	m := symbolPattern.FindStringSubmatch(strings.ToUpper(filename))
	if m == nil {
		return ""
	}
	return m[1]
}

// DetectTimeframe guesses the bar timeframe from a filename, defaulting
// to 1min.
func DetectTimeframe(filename string) string {
	upper := strings.ToUpper(filename)
	for _, p := range timeframePattern {
		if p.re.MatchString(upper) {
			return p.tf
		}
	}
	return "1min"
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04",
	"01/02/2006",
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	// Epoch seconds, as exported by some charting platforms.
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && n > 1e9 {
		return time.Unix(n, 0).UTC(), nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("data: unrecognized time %q", s)
}

// columnIndexes maps header names to bar fields. Accepts the common
// exports: time/datetime/date/timestamp and o/h/l/c/v abbreviations.
type columnIndexes struct {
	time, open, high, low, close, volume int
}

func mapHeader(header []string) (columnIndexes, error) {
	idx := columnIndexes{time: -1, open: -1, high: -1, low: -1, close: -1, volume: -1}
	for i, raw := range header {
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "time", "datetime", "date", "timestamp":
			if idx.time == -1 {
				idx.time = i
			}
		case "open", "o":
			idx.open = i
		case "high", "h":
			idx.high = i
		case "low", "l":
			idx.low = i
		case "close", "c", "last":
			idx.close = i
		case "volume", "vol", "v", "qty":
			if idx.volume == -1 {
				idx.volume = i
			}
		}
	}
	if idx.time == -1 {
		return idx, fmt.Errorf("data: no time column in header %v", header)
	}
	required := []struct {
		name string
		i    int
	}{{"open", idx.open}, {"high", idx.high}, {"low", idx.low}, {"close", idx.close}}
	for _, c := range required {
		if c.i == -1 {
			return idx, fmt.Errorf("data: missing %s column", c.name)
		}
	}
	return idx, nil
}

// LoadCSV reads one OHLCV series from a CSV export. Symbol and timeframe
// are detected from the filename when left empty. Rows are sorted by
// time and high/low are widened to contain open and close.
func LoadCSV(path, symbol, timeframe string) (*market.Series, error) {
	if symbol == "" {
		symbol = DetectSymbol(filepath.Base(path))
		if symbol == "" {
			return nil, fmt.Errorf("data: cannot detect symbol from %q", path)
		}
	}
	if timeframe == "" {
		timeframe = DetectTimeframe(filepath.Base(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("data: %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("data: %s: no data rows", path)
	}

	idx, err := mapHeader(rows[0])
	if err != nil {
		return nil, fmt.Errorf("data: %s: %w", path, err)
	}

	bars := make([]market.Bar, 0, len(rows)-1)
	for n, row := range rows[1:] {
		b, err := parseRow(row, idx)
		if err != nil {
			return nil, fmt.Errorf("data: %s row %d: %w", path, n+2, err)
		}
		bars = append(bars, b)
	}

	return market.NewSeries(symbol, timeframe, bars), nil
}

func parseRow(row []string, idx columnIndexes) (market.Bar, error) {
	var b market.Bar
	ts, err := parseTime(row[idx.time])
	if err != nil {
		return b, err
	}
	b.Time = ts

	fields := []struct {
		i   int
		dst *float64
	}{
		{idx.open, &b.Open},
		{idx.high, &b.High},
		{idx.low, &b.Low},
		{idx.close, &b.Close},
	}
	for _, f := range fields {
		if f.i >= len(row) {
			return b, fmt.Errorf("short row")
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(row[f.i]), 64)
		if err != nil {
			return b, err
		}
		*f.dst = v
	}
	if idx.volume != -1 && idx.volume < len(row) {
		// Volume is best-effort; a blank or NaN cell means zero.
		if v, err := strconv.ParseFloat(strings.TrimSpace(row[idx.volume]), 64); err == nil {
			b.Volume = v
		}
	}

	// Widen high/low so the bar always contains its open and close.
	b.High = max(b.High, max(b.Open, b.Close))
	b.Low = min(b.Low, min(b.Open, b.Close))
	return b, nil
}

// Load dispatches on file extension: .csv, .parquet, or .pq.
func Load(path, symbol, timeframe string) (*market.Series, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return LoadCSV(path, symbol, timeframe)
	case ".parquet", ".pq":
		return LoadParquet(path, symbol, timeframe)
	default:
		return nil, fmt.Errorf("data: unsupported format %q", filepath.Ext(path))
	}
}
