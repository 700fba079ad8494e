package book

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/slotbook/money"
)

// Status is a position slot's lifecycle state.
type Status string

const (
	StatusAvailable Status = "available"
	StatusActive    Status = "active"
	StatusStopped   Status = "stopped"
	StatusClosed    Status = "closed"
)

// Portion is one discrete, capital-capped purchase that partially fills
// a position. Immutable once filled except by a full position reset.
type Portion struct {
	Filled   bool            `json:"filled"`
	Price    decimal.Decimal `json:"price"`
	Quantity int64           `json:"quantity"`
}

// ClosedSnapshot is the immutable record of the most recent full exit.
type ClosedSnapshot struct {
	Symbol       string          `json:"symbol"`
	AveragePrice decimal.Decimal `json:"average_price"`
	ExitPrice    decimal.Decimal `json:"exit_price"`
	Quantity     int64           `json:"quantity"`
	Spend        decimal.Decimal `json:"spend"`
	PnL          decimal.Decimal `json:"pnl"`
}

// SellOrder is the command object for a sell: the caller gathers
// quantity and price through its own input flow, then hands the engine
// a complete order.
type SellOrder struct {
	Quantity int64           `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Position is one trading slot. All transition methods take the position
// by value and return a new one; the book replaces the slot atomically,
// so a failed operation never leaves partial state behind.
//
// AveragePrice and StopPrice are meaningful only while Quantity > 0;
// outside that they hold what the UI still displays (the
// stale average after a full sell, zero after a stop or reset).
type Position struct {
	Slot         int             `json:"slot"`
	Status       Status          `json:"status"`
	Symbol       string          `json:"symbol"`
	Portions     []Portion       `json:"portions"`
	Quantity     int64           `json:"quantity"`
	AveragePrice decimal.Decimal `json:"average_price"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	StopPrice    decimal.Decimal `json:"stop_price"`
	PnL          decimal.Decimal `json:"pnl"`
	SpendToDate  decimal.Decimal `json:"spend_to_date"`
	Closed       *ClosedSnapshot `json:"closed,omitempty"`
	Grade        int             `json:"grade,omitempty"`
	Notes        string          `json:"notes,omitempty"`
}

// NewPosition returns an empty available slot with the given number of
// portion slots.
func NewPosition(slot, portions int) Position {
	return Position{
		Slot:         slot,
		Status:       StatusAvailable,
		Portions:     make([]Portion, portions),
		AveragePrice: decimal.Zero,
		CurrentPrice: decimal.Zero,
		StopPrice:    decimal.Zero,
		PnL:          decimal.Zero,
		SpendToDate:  decimal.Zero,
	}
}

func (p Position) clonePortions() []Portion {
	out := make([]Portion, len(p.Portions))
	copy(out, p.Portions)
	return out
}

// Fill marks the next empty portion filled at price × quantity and
// recomputes the derived fields. The fill price becomes the latest
// observed price, so P&L is zero immediately after a fill.
func (p Position) Fill(cfg Config, symbol string, price decimal.Decimal, quantity int64) (Position, error) {
	if symbol == "" {
		return p, fmt.Errorf("%w: symbol is required", ErrInvalidInput)
	}
	if !price.IsPositive() {
		return p, fmt.Errorf("%w: price must be positive", ErrInvalidInput)
	}
	if quantity <= 0 {
		return p, fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}

	cost := money.Cost(price, quantity)
	if cost.GreaterThan(cfg.CapitalPerPortion()) {
		return p, fmt.Errorf("%w: cost %s exceeds per-portion cap %s",
			ErrPortionBudgetExceeded, cost.StringFixed(2), cfg.CapitalPerPortion().StringFixed(2))
	}

	next := -1
	for i := range p.Portions {
		if !p.Portions[i].Filled {
			next = i
			break
		}
	}
	if next < 0 {
		return p, fmt.Errorf("%w: all %d portions filled", ErrNoPortionsRemaining, len(p.Portions))
	}

	out := p
	out.Portions = p.clonePortions()
	out.Portions[next] = Portion{Filled: true, Price: price, Quantity: quantity}

	// Incremental weighted mean over currently held shares. Equals the
	// mean over all filled portions unless a partial sell intervened, in
	// which case the held-share cost basis is the correct one.
	out.AveragePrice = money.WeightedAverage(p.AveragePrice, p.Quantity, price, quantity)
	out.Quantity = p.Quantity + quantity
	out.Symbol = symbol
	out.Status = StatusActive
	out.CurrentPrice = price
	out.StopPrice = out.AveragePrice.Sub(money.PerShare(cfg.StopLossBudget, out.Quantity))
	out.SpendToDate = money.Cost(out.AveragePrice, out.Quantity)
	out.PnL = money.Cost(out.CurrentPrice.Sub(out.AveragePrice), out.Quantity)

	return out, nil
}

// UpdatePrice records a new observed market price and recomputes
// unrealized P&L. The boolean reports a stop-loss breach on an active
// position; it is a signal to the operator, not a state change; the
// stop fires only on an explicit Stop call.
func (p Position) UpdatePrice(price decimal.Decimal) (Position, bool, error) {
	if !price.IsPositive() {
		return p, false, fmt.Errorf("%w: price must be positive", ErrInvalidInput)
	}

	out := p
	out.CurrentPrice = price
	if out.Quantity > 0 {
		out.PnL = money.Cost(price.Sub(out.AveragePrice), out.Quantity)
	}

	breached := out.Status == StatusActive && out.Quantity > 0 && price.LessThanOrEqual(out.StopPrice)
	return out, breached, nil
}

// Stop executes the exit at the previously derived stop price, not the
// live market price. Because the stop is averagePrice − budget/quantity,
// the realized loss equals the configured per-position risk budget
// regardless of share count.
func (p Position) Stop() (Position, error) {
	if p.Quantity == 0 {
		return p, fmt.Errorf("%w: nothing to stop", ErrNoOpenQuantity)
	}

	out := p
	out.PnL = money.Cost(p.StopPrice.Sub(p.AveragePrice), p.Quantity)
	out.Status = StatusStopped
	out.CurrentPrice = p.StopPrice
	out.Quantity = 0
	out.AveragePrice = decimal.Zero
	out.StopPrice = decimal.Zero
	out.SpendToDate = decimal.Zero
	out.Portions = make([]Portion, len(p.Portions))

	return out, nil
}

// Sell realizes P&L on the sold lot against the weighted-average cost
// basis. A partial sell keeps the average and redistributes the fixed
// dollar risk over the remaining shares; a full sell closes the slot and
// writes the snapshot.
//
// The reported P&L after a partial sell is the realized gain on the sold
// lot plus the unrealized gain on the remainder, as a running total.
// Downstream display depends on that exact convention.
func (p Position) Sell(cfg Config, order SellOrder) (Position, error) {
	if order.Quantity <= 0 {
		return p, fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}
	if !order.Price.IsPositive() {
		return p, fmt.Errorf("%w: price must be positive", ErrInvalidInput)
	}
	if p.Quantity == 0 {
		return p, fmt.Errorf("%w: nothing to sell", ErrNoOpenQuantity)
	}
	if order.Quantity > p.Quantity {
		return p, fmt.Errorf("%w: requested %d, held %d", ErrInsufficientShares, order.Quantity, p.Quantity)
	}

	tradePnL := money.Cost(order.Price.Sub(p.AveragePrice), order.Quantity)
	remaining := p.Quantity - order.Quantity

	out := p

	if remaining > 0 {
		out.Quantity = remaining
		out.SpendToDate = money.Cost(p.AveragePrice, remaining)
		out.StopPrice = p.AveragePrice.Sub(money.PerShare(cfg.StopLossBudget, remaining))
		out.PnL = tradePnL.Add(money.Cost(p.CurrentPrice.Sub(p.AveragePrice), remaining))
		return out, nil
	}

	out.Closed = &ClosedSnapshot{
		Symbol:       p.Symbol,
		AveragePrice: p.AveragePrice,
		ExitPrice:    order.Price,
		Quantity:     p.Quantity,
		Spend:        p.SpendToDate,
		PnL:          tradePnL,
	}
	out.Status = StatusClosed
	out.Quantity = 0
	out.SpendToDate = decimal.Zero
	out.StopPrice = decimal.Zero
	out.CurrentPrice = order.Price
	out.PnL = tradePnL
	out.Portions = make([]Portion, len(p.Portions))
	// Symbol and AveragePrice are kept for display even though flat.

	return out, nil
}

// Reset returns the slot to available, discarding everything including
// the closed snapshot and annotations. Valid from any state.
func (p Position) Reset() Position {
	return NewPosition(p.Slot, len(p.Portions))
}

// SetGrade toggles the 1..5 operator grade: setting the current grade
// again clears it. No effect on numeric state.
func (p Position) SetGrade(grade int) (Position, error) {
	if grade < 1 || grade > 5 {
		return p, fmt.Errorf("%w: grade must be 1..5", ErrInvalidInput)
	}
	out := p
	if p.Grade == grade {
		out.Grade = 0
	} else {
		out.Grade = grade
	}
	return out, nil
}

// SetNotes replaces the operator notes.
func (p Position) SetNotes(notes string) Position {
	out := p
	out.Notes = notes
	return out
}

// FilledPortions counts the portions currently marked filled.
func (p Position) FilledPortions() int {
	n := 0
	for i := range p.Portions {
		if p.Portions[i].Filled {
			n++
		}
	}
	return n
}
