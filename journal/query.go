package journal

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const tradeColumns = `trade_id, slot, symbol, quantity, average_price, exit_price, spend, realized_pnl, reason, closed_at`

func scanTrade(row interface{ Scan(...any) error }) (TradeRecord, error) {
	var (
		rec                        TradeRecord
		avg, exit, spend, realized string
	)

	err := row.Scan(
		&rec.TradeID,
		&rec.Slot,
		&rec.Symbol,
		&rec.Quantity,
		&avg,
		&exit,
		&spend,
		&realized,
		&rec.Reason,
		&rec.ClosedAt,
	)
	if err != nil {
		return TradeRecord{}, err
	}

	if rec.AveragePrice, err = decimal.NewFromString(avg); err != nil {
		return TradeRecord{}, fmt.Errorf("trade %s: bad average_price: %w", rec.TradeID, err)
	}
	if rec.ExitPrice, err = decimal.NewFromString(exit); err != nil {
		return TradeRecord{}, fmt.Errorf("trade %s: bad exit_price: %w", rec.TradeID, err)
	}
	if rec.Spend, err = decimal.NewFromString(spend); err != nil {
		return TradeRecord{}, fmt.Errorf("trade %s: bad spend: %w", rec.TradeID, err)
	}
	if rec.RealizedPnL, err = decimal.NewFromString(realized); err != nil {
		return TradeRecord{}, fmt.Errorf("trade %s: bad realized_pnl: %w", rec.TradeID, err)
	}
	return rec, nil
}

// GetTrade returns a single trade record by ID.
func (j *SQLite) GetTrade(tradeID string) (TradeRecord, error) {
	row := j.db.QueryRow(`
		SELECT `+tradeColumns+`
		FROM trades
		WHERE trade_id = ?`, tradeID)

	rec, err := scanTrade(row)
	if err == sql.ErrNoRows {
		return TradeRecord{}, fmt.Errorf("trade %q not found", tradeID)
	}
	return rec, err
}

// ListTradesClosedBetween returns trades whose closed_at is within
// [start, end), oldest first.
func (j *SQLite) ListTradesClosedBetween(start, end time.Time) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT `+tradeColumns+`
		FROM trades
		WHERE closed_at >= ? AND closed_at < ?
		ORDER BY closed_at ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		rec, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
