package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite persists trade records and summary snapshots in a SQLite file.
// Money columns are TEXT so decimal values round-trip exactly.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, slot, symbol, quantity, average_price, exit_price, spend, realized_pnl, reason, closed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.Slot, t.Symbol, t.Quantity,
		t.AveragePrice.String(), t.ExitPrice.String(),
		t.Spend.String(), t.RealizedPnL.String(),
		t.Reason, t.ClosedAt,
	)
	return err
}

func (j *SQLite) RecordSummary(s SummarySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO summaries
		(time, starting_capital, deployed_capital, available_capital, total_pnl)
		VALUES (?, ?, ?, ?, ?)`,
		s.Time,
		s.StartingCapital.String(), s.DeployedCapital.String(),
		s.AvailableCapital.String(), s.TotalPnL.String(),
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
