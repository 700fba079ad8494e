package session

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/slotbook/book"
	"github.com/rustyeddy/slotbook/journal"
	"github.com/rustyeddy/slotbook/store"
)

func testConfig() book.Config {
	return book.Config{
		StartingCapital:     decimal.NewFromInt(25000),
		TotalPositions:      5,
		PortionsPerPosition: 5,
		StopLossBudget:      decimal.NewFromInt(500),
	}
}

func d(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

// recordingJournal captures journal calls in memory.
type recordingJournal struct {
	mu        sync.Mutex
	trades    []journal.TradeRecord
	summaries []journal.SummarySnapshot
}

func (j *recordingJournal) RecordTrade(t journal.TradeRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.trades = append(j.trades, t)
	return nil
}

func (j *recordingJournal) RecordSummary(s journal.SummarySnapshot) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.summaries = append(j.summaries, s)
	return nil
}

func (j *recordingJournal) Close() error { return nil }

// recordingNotifier captures change notifications.
type recordingNotifier struct {
	mu       sync.Mutex
	changes  int
	breaches []book.Position
}

func (n *recordingNotifier) BookChanged(book.Book) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes++
}

func (n *recordingNotifier) StopBreached(p book.Position) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.breaches = append(n.breaches, p)
}

func TestLoadInitializesFreshBook(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := store.NewMemory()
	key := store.DayKey(time.Now())

	s, err := Load(ctx, st, key, testConfig())
	require.NoError(t, err)

	b := s.Book()
	assert.Len(t, b.Positions, 5)

	// The fresh book was persisted immediately.
	saved, err := st.LoadBook(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, b.SessionID, saved.SessionID)
}

func TestLoadRestoresPriorSnapshot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := store.NewMemory()
	key := store.DayKey(time.Now())

	first, err := Load(ctx, st, key, testConfig())
	require.NoError(t, err)
	_, err = first.Fill(ctx, 1, "NVDA", d(50), 15)
	require.NoError(t, err)

	second, err := Load(ctx, st, key, testConfig())
	require.NoError(t, err)

	b := second.Book()
	assert.Equal(t, first.Book().SessionID, b.SessionID)
	assert.Equal(t, int64(15), b.Positions[0].Quantity)
}

func TestMutationsPersistSnapshots(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := store.NewMemory()
	key := store.DayKey(time.Now())

	s, err := Load(ctx, st, key, testConfig())
	require.NoError(t, err)

	_, err = s.Fill(ctx, 1, "NVDA", d(50), 15)
	require.NoError(t, err)
	_, _, err = s.UpdatePrice(ctx, 1, d(55))
	require.NoError(t, err)

	saved, err := st.LoadBook(ctx, key)
	require.NoError(t, err)
	assert.True(t, saved.Positions[0].CurrentPrice.Equal(d(55)))
}

func TestFailedMutationPersistsNothing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := store.NewMemory()
	key := store.DayKey(time.Now())

	s, err := Load(ctx, st, key, testConfig())
	require.NoError(t, err)

	_, err = s.Fill(ctx, 1, "NVDA", d(500), 15) // exceeds portion cap
	assert.ErrorIs(t, err, book.ErrPortionBudgetExceeded)

	saved, err := st.LoadBook(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, book.StatusAvailable, saved.Positions[0].Status)
}

func TestStopJournalsRealizedLoss(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	j := &recordingJournal{}
	s, err := Load(ctx, store.NewMemory(), "book:test", testConfig(), WithJournal(j))
	require.NoError(t, err)

	_, err = s.Fill(ctx, 1, "NVDA", d(50), 15)
	require.NoError(t, err)
	_, err = s.Fill(ctx, 1, "NVDA", d(60), 10)
	require.NoError(t, err)
	_, err = s.Stop(ctx, 1)
	require.NoError(t, err)

	require.Len(t, j.trades, 1)
	rec := j.trades[0]
	assert.Equal(t, journal.ReasonStop, rec.Reason)
	assert.Equal(t, "NVDA", rec.Symbol)
	assert.Equal(t, int64(25), rec.Quantity)
	assert.True(t, rec.ExitPrice.Equal(d(34)))
	assert.True(t, rec.RealizedPnL.Equal(d(-500)))
	assert.NotEmpty(t, rec.TradeID)
}

func TestFullSellJournalsTrade(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	j := &recordingJournal{}
	s, err := Load(ctx, store.NewMemory(), "book:test", testConfig(), WithJournal(j))
	require.NoError(t, err)

	_, err = s.Fill(ctx, 1, "NVDA", d(50), 15)
	require.NoError(t, err)

	// Partial sell: no trade record yet.
	_, err = s.Sell(ctx, 1, book.SellOrder{Quantity: 5, Price: d(55)})
	require.NoError(t, err)
	assert.Empty(t, j.trades)

	_, err = s.Sell(ctx, 1, book.SellOrder{Quantity: 10, Price: d(58)})
	require.NoError(t, err)

	require.Len(t, j.trades, 1)
	rec := j.trades[0]
	assert.Equal(t, journal.ReasonSell, rec.Reason)
	assert.Equal(t, int64(10), rec.Quantity)
	assert.True(t, rec.ExitPrice.Equal(d(58)))
	assert.True(t, rec.RealizedPnL.Equal(d(80))) // (58-50)*10
}

func TestStopBreachNotification(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	n := &recordingNotifier{}
	s, err := Load(ctx, store.NewMemory(), "book:test", testConfig(), WithNotifier(n))
	require.NoError(t, err)

	_, err = s.Fill(ctx, 1, "NVDA", d(50), 15)
	require.NoError(t, err)
	// stop ≈ 16.67

	_, breached, err := s.UpdatePrice(ctx, 1, d(20))
	require.NoError(t, err)
	assert.False(t, breached)
	assert.Empty(t, n.breaches)

	p, breached, err := s.UpdatePrice(ctx, 1, d(16))
	require.NoError(t, err)
	assert.True(t, breached)
	require.Len(t, n.breaches, 1)
	assert.Equal(t, 1, n.breaches[0].Slot)

	// Breach does not change state; operator must stop explicitly.
	assert.Equal(t, book.StatusActive, p.Status)
}

func TestBookChangedNotifications(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	n := &recordingNotifier{}
	s, err := Load(ctx, store.NewMemory(), "book:test", testConfig(), WithNotifier(n))
	require.NoError(t, err)

	_, err = s.Fill(ctx, 1, "NVDA", d(50), 15)
	require.NoError(t, err)
	_, _, err = s.UpdatePrice(ctx, 1, d(55))
	require.NoError(t, err)
	_, err = s.Reset(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, 3, n.changes)
}

// snapshotNotifier keeps every snapshot it was handed, so tests can
// check them against later book state.
type snapshotNotifier struct {
	mu    sync.Mutex
	books []book.Book
}

func (n *snapshotNotifier) BookChanged(b book.Book) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.books = append(n.books, b)
}

func (n *snapshotNotifier) StopBreached(book.Position) {}

func TestNotifiedSnapshotUnaffectedByLaterMutations(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	n := &snapshotNotifier{}
	s, err := Load(ctx, store.NewMemory(), "book:test", testConfig(), WithNotifier(n))
	require.NoError(t, err)

	_, err = s.Fill(ctx, 1, "NVDA", d(50), 15)
	require.NoError(t, err)
	_, err = s.Reset(ctx, 1)
	require.NoError(t, err)

	// The snapshot handed out for the fill must still show the fill,
	// even though the live slot has since been reset.
	require.Len(t, n.books, 2)
	assert.Equal(t, book.StatusActive, n.books[0].Positions[0].Status)
	assert.Equal(t, int64(15), n.books[0].Positions[0].Quantity)
	assert.Equal(t, book.StatusAvailable, n.books[1].Positions[0].Status)
}

func TestBookCopyUnaffectedByLaterMutations(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, err := Load(ctx, store.NewMemory(), "book:test", testConfig())
	require.NoError(t, err)

	before := s.Book()
	_, err = s.Fill(ctx, 1, "NVDA", d(50), 15)
	require.NoError(t, err)

	assert.Equal(t, book.StatusAvailable, before.Positions[0].Status)
	assert.Zero(t, before.Positions[0].Quantity)
}

func TestConcurrentMutationsWithMarshalingNotifier(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, err := Load(ctx, store.NewMemory(), "book:test", testConfig(),
		WithNotifier(marshalingNotifier{}))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for slot := 1; slot <= 2; slot++ {
		slot := slot
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				if _, err := s.Fill(ctx, slot, "NVDA", d(50), 10); err != nil {
					continue
				}
				s.Reset(ctx, slot)
			}
		}()
	}
	wg.Wait()
}

// marshalingNotifier serializes the snapshot the way the websocket hub
// does, reading every position field outside the session lock.
type marshalingNotifier struct{}

func (marshalingNotifier) BookChanged(b book.Book) {
	if _, err := json.Marshal(b); err != nil {
		panic(err)
	}
}

func (marshalingNotifier) StopBreached(book.Position) {}

func TestInitializeReplacesBook(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, err := Load(ctx, store.NewMemory(), "book:test", testConfig())
	require.NoError(t, err)

	_, err = s.Fill(ctx, 1, "NVDA", d(50), 15)
	require.NoError(t, err)
	oldID := s.Book().SessionID

	cfg := testConfig()
	cfg.TotalPositions = 3
	b, err := s.Initialize(ctx, cfg)
	require.NoError(t, err)

	assert.Len(t, b.Positions, 3)
	assert.NotEqual(t, oldID, b.SessionID)
	for _, p := range b.Positions {
		assert.Equal(t, book.StatusAvailable, p.Status)
	}
}

func TestSizerPersistsIndependently(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, err := Load(ctx, store.NewMemory(), "book:test", testConfig())
	require.NoError(t, err)

	in, err := s.LoadSizer(ctx)
	require.NoError(t, err)
	assert.True(t, in.Capital.IsZero())

	in.Capital = d(10000)
	in.RiskBudget = d(500)
	require.NoError(t, s.SaveSizer(ctx, in))

	got, err := s.LoadSizer(ctx)
	require.NoError(t, err)
	assert.True(t, got.Capital.Equal(d(10000)))
}
