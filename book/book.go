// Package book implements the position and capital-allocation engine:
// a fixed number of trading slots funded from a shared capital pool,
// filled in discrete capital-capped portions, with weighted-average cost
// basis, fixed-dollar-risk stop prices, and partial/full liquidation.
//
// The engine is synchronous and single-operator. Every mutation reads
// the target slot, computes a new Position value, and replaces it; on
// error the slot is untouched. Serialization of the whole Book is the
// snapshot handed to the persistence sink after each mutation.
package book

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Book owns the shared configuration and the fixed-size slot array.
// Its exported fields form the JSON snapshot.
type Book struct {
	SessionID string     `json:"session_id"`
	CreatedAt time.Time  `json:"created_at"`
	Config    Config     `json:"config"`
	Positions []Position `json:"positions"`
}

// Summary is the aggregate view consumed by reports and the dashboard.
type Summary struct {
	StartingCapital  decimal.Decimal `json:"starting_capital"`
	DeployedCapital  decimal.Decimal `json:"deployed_capital"`
	AvailableCapital decimal.Decimal `json:"available_capital"`
	TotalPnL         decimal.Decimal `json:"total_pnl"`
}

// New validates the configuration and builds a book with every slot
// available and empty. Re-initialization replaces the whole book.
func New(cfg Config) (*Book, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	positions := make([]Position, cfg.TotalPositions)
	for i := range positions {
		positions[i] = NewPosition(i+1, cfg.PortionsPerPosition)
	}

	return &Book{
		SessionID: uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		Config:    cfg,
		Positions: positions,
	}, nil
}

// index resolves a 1-based slot number.
func (b *Book) index(slot int) (int, error) {
	if slot < 1 || slot > len(b.Positions) {
		return 0, fmt.Errorf("%w: slot %d of %d", ErrUnknownSlot, slot, len(b.Positions))
	}
	return slot - 1, nil
}

// Position returns a copy of the slot's current state.
func (b *Book) Position(slot int) (Position, error) {
	i, err := b.index(slot)
	if err != nil {
		return Position{}, err
	}
	return b.Positions[i], nil
}

// Fill buys the next portion of the slot.
func (b *Book) Fill(slot int, symbol string, price decimal.Decimal, quantity int64) (Position, error) {
	i, err := b.index(slot)
	if err != nil {
		return Position{}, err
	}
	next, err := b.Positions[i].Fill(b.Config, symbol, price, quantity)
	if err != nil {
		return Position{}, err
	}
	b.Positions[i] = next
	return next, nil
}

// UpdatePrice records an observed price on the slot. The boolean reports
// a stop-loss breach; the caller decides whether to execute the stop.
func (b *Book) UpdatePrice(slot int, price decimal.Decimal) (Position, bool, error) {
	i, err := b.index(slot)
	if err != nil {
		return Position{}, false, err
	}
	next, breached, err := b.Positions[i].UpdatePrice(price)
	if err != nil {
		return Position{}, false, err
	}
	b.Positions[i] = next
	return next, breached, nil
}

// Stop executes the slot's stop at the derived stop price.
func (b *Book) Stop(slot int) (Position, error) {
	i, err := b.index(slot)
	if err != nil {
		return Position{}, err
	}
	next, err := b.Positions[i].Stop()
	if err != nil {
		return Position{}, err
	}
	b.Positions[i] = next
	return next, nil
}

// Sell executes a sell order against the slot.
func (b *Book) Sell(slot int, order SellOrder) (Position, error) {
	i, err := b.index(slot)
	if err != nil {
		return Position{}, err
	}
	next, err := b.Positions[i].Sell(b.Config, order)
	if err != nil {
		return Position{}, err
	}
	b.Positions[i] = next
	return next, nil
}

// Reset returns the slot to available from any state.
func (b *Book) Reset(slot int) (Position, error) {
	i, err := b.index(slot)
	if err != nil {
		return Position{}, err
	}
	b.Positions[i] = b.Positions[i].Reset()
	return b.Positions[i], nil
}

// SetGrade toggles the slot's operator grade.
func (b *Book) SetGrade(slot, grade int) (Position, error) {
	i, err := b.index(slot)
	if err != nil {
		return Position{}, err
	}
	next, err := b.Positions[i].SetGrade(grade)
	if err != nil {
		return Position{}, err
	}
	b.Positions[i] = next
	return next, nil
}

// SetNotes replaces the slot's operator notes.
func (b *Book) SetNotes(slot int, notes string) (Position, error) {
	i, err := b.index(slot)
	if err != nil {
		return Position{}, err
	}
	b.Positions[i] = b.Positions[i].SetNotes(notes)
	return b.Positions[i], nil
}

// Summary recomputes the aggregate view from the slots.
func (b *Book) Summary() Summary {
	deployed := decimal.Zero
	pnl := decimal.Zero
	for i := range b.Positions {
		deployed = deployed.Add(b.Positions[i].SpendToDate)
		pnl = pnl.Add(b.Positions[i].PnL)
	}
	return Summary{
		StartingCapital:  b.Config.StartingCapital,
		DeployedCapital:  deployed,
		AvailableCapital: b.Config.StartingCapital.Sub(deployed),
		TotalPnL:         pnl,
	}
}
