package book

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/slotbook/money"
)

// Config is the trading configuration shared by every slot in the book.
// It is set once per session by Initialize; changing it is a full-book
// re-initialization that discards all positions.
type Config struct {
	// StartingCapital is the total capital pool.
	StartingCapital decimal.Decimal `json:"starting_capital"`

	// TotalPositions is the fixed slot count.
	TotalPositions int `json:"total_positions"`

	// PortionsPerPosition is how many discrete fills compose one position.
	PortionsPerPosition int `json:"portions_per_position"`

	// StopLossBudget is the fixed dollar loss tolerated per position,
	// independent of price and share count.
	StopLossBudget decimal.Decimal `json:"stop_loss_budget"`
}

// Validate checks the configuration invariants.
func (c Config) Validate() error {
	if !c.StartingCapital.IsPositive() {
		return fmt.Errorf("%w: starting capital must be positive", ErrInvalidInput)
	}
	if c.TotalPositions < 1 {
		return fmt.Errorf("%w: total positions must be >= 1", ErrInvalidInput)
	}
	if c.PortionsPerPosition < 1 {
		return fmt.Errorf("%w: portions per position must be >= 1", ErrInvalidInput)
	}
	if !c.StopLossBudget.IsPositive() {
		return fmt.Errorf("%w: stop loss budget must be positive", ErrInvalidInput)
	}
	return nil
}

// CapitalPerPosition is the slice of the pool funding one slot.
func (c Config) CapitalPerPosition() decimal.Decimal {
	return money.PerShare(c.StartingCapital, int64(c.TotalPositions))
}

// CapitalPerPortion is the hard cap on the cost of a single fill.
func (c Config) CapitalPerPortion() decimal.Decimal {
	return money.PerShare(c.CapitalPerPosition(), int64(c.PortionsPerPosition))
}
