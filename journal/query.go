package journal

import (
	"database/sql"
	"fmt"
	"time"
)

// GetTrade returns a single trade record by ID.
func (j *SQLite) GetTrade(tradeID string) (TradeRecord, error) {
	var rec TradeRecord

	row := j.db.QueryRow(`
		SELECT trade_id, symbol, side, size, entry_price, exit_price, entry_time, exit_time, gross_pnl, commission
		FROM trades
		WHERE trade_id = ?`, tradeID)

	err := scanTrade(row.Scan, &rec)
	if err != nil {
		if err == sql.ErrNoRows {
			return TradeRecord{}, fmt.Errorf("trade %q not found", tradeID)
		}
		return TradeRecord{}, err
	}
	return rec, nil
}

// ListTradesClosedBetween returns trades whose exit_time is within [start, end).
func (j *SQLite) ListTradesClosedBetween(start, end time.Time) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, symbol, side, size, entry_price, exit_price, entry_time, exit_time, gross_pnl, commission
		FROM trades
		WHERE exit_time >= ? AND exit_time < ?
		ORDER BY exit_time ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var rec TradeRecord
		if err := scanTrade(rows.Scan, &rec); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListEquityBetween returns equity samples within [start, end), oldest first.
func (j *SQLite) ListEquityBetween(start, end time.Time) ([]EquitySample, error) {
	rows, err := j.db.Query(`
		SELECT time, equity, cash, positions_value
		FROM equity
		WHERE time >= ? AND time < ?
		ORDER BY time ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySample
	for rows.Next() {
		var e EquitySample
		if err := rows.Scan(&e.Time, &e.Equity, &e.Cash, &e.PositionsValue); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanTrade(scan func(...any) error, rec *TradeRecord) error {
	return scan(
		&rec.TradeID,
		&rec.Symbol,
		&rec.Side,
		&rec.Size,
		&rec.EntryPrice,
		&rec.ExitPrice,
		&rec.EntryTime,
		&rec.ExitTime,
		&rec.GrossPnL,
		&rec.Commission,
	)
}
