package data

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/parquet-go/parquet-go"

	"propsim/market"
)

// BarRecord is the on-disk Parquet schema for bar data.
type BarRecord struct {
	Symbol    string  `parquet:"symbol"`
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Open      float64 `parquet:"open"`
	High      float64 `parquet:"high"`
	Low       float64 `parquet:"low"`
	Close     float64 `parquet:"close"`
	Volume    float64 `parquet:"volume"`
}

// LoadParquet reads one OHLCV series from a Parquet file. Symbol falls
// back to the file's own records, then the filename.
func LoadParquet(path, symbol, timeframe string) (*market.Series, error) {
	records, err := parquet.ReadFile[BarRecord](path)
	if err != nil {
		return nil, fmt.Errorf("data: %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("data: %s: no rows", path)
	}

	if symbol == "" {
		symbol = records[0].Symbol
	}
	if symbol == "" {
		symbol = DetectSymbol(filepath.Base(path))
	}
	if symbol == "" {
		return nil, fmt.Errorf("data: cannot determine symbol for %q", path)
	}
	if timeframe == "" {
		timeframe = DetectTimeframe(filepath.Base(path))
	}

	bars := make([]market.Bar, 0, len(records))
	for _, r := range records {
		bars = append(bars, market.Bar{
			Time:   time.UnixMilli(r.Timestamp).UTC(),
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Volume: r.Volume,
		})
	}
	return market.NewSeries(symbol, timeframe, bars), nil
}

// WriteParquet writes a series to a Parquet file, creating parent
// directories as needed. Records are written in time order.
func WriteParquet(path string, s *market.Series) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	records := make([]BarRecord, 0, len(s.Bars))
	for _, b := range s.Bars {
		records = append(records, BarRecord{
			Symbol:    s.Symbol,
			Timestamp: b.Time.UnixMilli(),
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    b.Volume,
		})
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp < records[j].Timestamp
	})
	return parquet.WriteFile(path, records)
}
