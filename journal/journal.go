// Package journal records the engine's terminal exits and aggregate
// snapshots for later review. Every stop and every full sell appends an
// immutable TradeRecord; summary snapshots trace deployed capital and
// total P&L over the session, the equity curve of the book.
package journal

import (
	"time"

	"github.com/shopspring/decimal"
)

// Exit reasons recorded with a trade.
const (
	ReasonStop = "StopLoss"
	ReasonSell = "Sell"
)

// TradeRecord is one completed exit from a position slot.
type TradeRecord struct {
	TradeID      string
	Slot         int
	Symbol       string
	Quantity     int64
	AveragePrice decimal.Decimal
	ExitPrice    decimal.Decimal
	Spend        decimal.Decimal
	RealizedPnL  decimal.Decimal
	Reason       string
	ClosedAt     time.Time
}

// SummarySnapshot is the book's aggregate view at a point in time.
type SummarySnapshot struct {
	Time             time.Time
	StartingCapital  decimal.Decimal
	DeployedCapital  decimal.Decimal
	AvailableCapital decimal.Decimal
	TotalPnL         decimal.Decimal
}

// Journal is the recording sink. Implementations: SQLite and CSV.
type Journal interface {
	RecordTrade(TradeRecord) error
	RecordSummary(SummarySnapshot) error
	Close() error
}

// Nop is a Journal that discards everything. Used when the operator
// runs without a journal configured.
type Nop struct{}

func (Nop) RecordTrade(TradeRecord) error       { return nil }
func (Nop) RecordSummary(SummarySnapshot) error { return nil }
func (Nop) Close() error                        { return nil }
