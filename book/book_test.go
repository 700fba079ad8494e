package book

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBook(t *testing.T) *Book {
	t.Helper()
	b, err := New(testConfig())
	require.NoError(t, err)
	return b
}

func TestNewBook(t *testing.T) {
	t.Parallel()

	b := newTestBook(t)

	assert.NotEmpty(t, b.SessionID)
	assert.Len(t, b.Positions, 5)
	for i, p := range b.Positions {
		assert.Equal(t, i+1, p.Slot)
		assert.Equal(t, StatusAvailable, p.Status)
		assert.Len(t, p.Portions, 5)
	}

	s := b.Summary()
	assertMoney(t, 25000, s.StartingCapital)
	assert.True(t, s.DeployedCapital.IsZero())
	assertMoney(t, 25000, s.AvailableCapital)
	assert.True(t, s.TotalPnL.IsZero())
}

func TestNewBookInvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestBookUnknownSlot(t *testing.T) {
	t.Parallel()

	b := newTestBook(t)

	_, err := b.Fill(0, "NVDA", d(50), 10)
	assert.ErrorIs(t, err, ErrUnknownSlot)
	_, err = b.Fill(6, "NVDA", d(50), 10)
	assert.ErrorIs(t, err, ErrUnknownSlot)
	_, err = b.Stop(-1)
	assert.ErrorIs(t, err, ErrUnknownSlot)
	_, err = b.Position(99)
	assert.ErrorIs(t, err, ErrUnknownSlot)
}

func TestBookAggregates(t *testing.T) {
	t.Parallel()

	b := newTestBook(t)

	_, err := b.Fill(1, "NVDA", d(50), 15)
	require.NoError(t, err)
	_, err = b.Fill(1, "NVDA", d(60), 10)
	require.NoError(t, err)
	_, err = b.Fill(2, "AMD", d(100), 8)
	require.NoError(t, err)

	s := b.Summary()
	assertMoney(t, 1350+800, s.DeployedCapital)
	assertMoney(t, 25000-2150, s.AvailableCapital)
	assert.True(t, s.TotalPnL.IsZero()) // fills carry zero P&L

	_, _, err = b.UpdatePrice(1, d(40))
	require.NoError(t, err)
	s = b.Summary()
	assertMoney(t, -350, s.TotalPnL)

	// Slots are independent: slot 2 is untouched by slot 1 updates.
	p2, err := b.Position(2)
	require.NoError(t, err)
	assertMoney(t, 100, p2.CurrentPrice)
	assert.True(t, p2.PnL.IsZero())
}

func TestBookOperationsAreAtomicPerSlot(t *testing.T) {
	t.Parallel()

	b := newTestBook(t)
	_, err := b.Fill(1, "NVDA", d(50), 15)
	require.NoError(t, err)

	// A rejected fill must not have touched the slot.
	_, err = b.Fill(1, "NVDA", d(500), 15)
	assert.ErrorIs(t, err, ErrPortionBudgetExceeded)

	p, err := b.Position(1)
	require.NoError(t, err)
	assert.Equal(t, int64(15), p.Quantity)
	assert.Equal(t, 1, p.FilledPortions())
}

func TestBookStopThenRefill(t *testing.T) {
	t.Parallel()

	b := newTestBook(t)
	_, err := b.Fill(1, "NVDA", d(50), 15)
	require.NoError(t, err)
	_, err = b.Stop(1)
	require.NoError(t, err)

	// A stopped slot has no deployed capital but retains the loss.
	s := b.Summary()
	assert.True(t, s.DeployedCapital.IsZero())
	assertMoney(t, -500, s.TotalPnL)

	// Filling again starts a fresh holding in the same slot.
	p, err := b.Fill(1, "AMD", d(40), 20)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, p.Status)
	assert.Equal(t, "AMD", p.Symbol)
	assertMoney(t, 40, p.AveragePrice)
	assert.True(t, p.PnL.IsZero())
}

func TestBookSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	b := newTestBook(t)
	_, err := b.Fill(1, "NVDA", d(50), 15)
	require.NoError(t, err)
	_, err = b.Sell(1, SellOrder{Quantity: 15, Price: d(55)})
	require.NoError(t, err)
	_, err = b.SetNotes(2, "watching")
	require.NoError(t, err)

	data, err := json.Marshal(b)
	require.NoError(t, err)

	var got Book
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Equal(t, b.SessionID, got.SessionID)
	assert.Equal(t, b.Config.TotalPositions, got.Config.TotalPositions)
	require.Len(t, got.Positions, 5)

	p := got.Positions[0]
	assert.Equal(t, StatusClosed, p.Status)
	require.NotNil(t, p.Closed)
	assert.True(t, p.Closed.PnL.Equal(decimal.NewFromInt(75)))
	assert.Equal(t, "watching", got.Positions[1].Notes)

	// Aggregates recompute identically from the restored snapshot.
	assert.True(t, b.Summary().TotalPnL.Equal(got.Summary().TotalPnL))
}
