package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/slotbook/book"
	"github.com/rustyeddy/slotbook/sizer"
)

func testBook(t *testing.T) *book.Book {
	t.Helper()
	b, err := book.New(book.Config{
		StartingCapital:     decimal.NewFromInt(25000),
		TotalPositions:      5,
		PortionsPerPosition: 5,
		StopLossBudget:      decimal.NewFromInt(500),
	})
	require.NoError(t, err)
	_, err = b.Fill(1, "NVDA", decimal.NewFromInt(50), 15)
	require.NoError(t, err)
	return b
}

// Both embedded backends satisfy the same contract; run the suite
// against each.
func stores(t *testing.T) map[string]Store {
	t.Helper()

	sq, err := NewSQLite(filepath.Join(t.TempDir(), "snapshots.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sq.Close() })

	return map[string]Store{
		"memory": NewMemory(),
		"sqlite": sq,
	}
}

func TestBookRoundTrip(t *testing.T) {
	t.Parallel()

	for name, s := range stores(t) {
		s := s
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			b := testBook(t)
			key := DayKey(time.Now())

			require.NoError(t, s.SaveBook(ctx, key, b))

			got, err := s.LoadBook(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, b.SessionID, got.SessionID)
			require.Len(t, got.Positions, 5)
			assert.Equal(t, int64(15), got.Positions[0].Quantity)
			assert.True(t, got.Positions[0].AveragePrice.Equal(decimal.NewFromInt(50)))
		})
	}
}

func TestLoadMissingBook(t *testing.T) {
	t.Parallel()

	for name, s := range stores(t) {
		s := s
		t.Run(name, func(t *testing.T) {
			_, err := s.LoadBook(context.Background(), "book:1970-01-01")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestSaveOverwrites(t *testing.T) {
	t.Parallel()

	for name, s := range stores(t) {
		s := s
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			b := testBook(t)
			key := DayKey(time.Now())

			require.NoError(t, s.SaveBook(ctx, key, b))
			_, err := b.Fill(1, "NVDA", decimal.NewFromInt(60), 10)
			require.NoError(t, err)
			require.NoError(t, s.SaveBook(ctx, key, b))

			got, err := s.LoadBook(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, int64(25), got.Positions[0].Quantity)
		})
	}
}

func TestSizerRoundTrip(t *testing.T) {
	t.Parallel()

	for name, s := range stores(t) {
		s := s
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := s.LoadSizer(ctx)
			assert.ErrorIs(t, err, ErrNotFound)

			in := sizer.Inputs{
				Capital:    decimal.NewFromInt(10000),
				RiskBudget: decimal.NewFromInt(500),
				EntryPrice: decimal.NewFromInt(50),
				StopPrice:  decimal.NewFromInt(45),
			}
			require.NoError(t, s.SaveSizer(ctx, in))

			got, err := s.LoadSizer(ctx)
			require.NoError(t, err)
			assert.True(t, got.Capital.Equal(in.Capital))
			assert.True(t, got.StopPrice.Equal(in.StopPrice))
		})
	}
}

func TestDayKey(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 8, 23, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, "book:2026-08-23", DayKey(ts))
}
