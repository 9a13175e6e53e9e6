package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, symbol, side, size, entry_price, exit_price, entry_time, exit_time, gross_pnl, commission)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.Symbol, t.Side, t.Size, t.EntryPrice,
		t.ExitPrice, t.EntryTime, t.ExitTime, t.GrossPnL, t.Commission,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquitySample) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(time, equity, cash, positions_value)
		VALUES (?, ?, ?, ?)`,
		e.Time, e.Equity, e.Cash, e.PositionsValue,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
