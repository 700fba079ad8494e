// Package session wires the position book to its collaborators: the
// snapshot store, the trade journal, and an optional change notifier.
// Every successful mutation persists the full book snapshot; terminal
// exits (stop, full sell) additionally append a journal record. The
// engine itself stays pure; all side effects live here.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/slotbook/book"
	"github.com/rustyeddy/slotbook/journal"
	"github.com/rustyeddy/slotbook/pkg/id"
	"github.com/rustyeddy/slotbook/sizer"
	"github.com/rustyeddy/slotbook/store"
)

// Notifier receives change signals after the lock is released, so a
// slow consumer (websocket hub, UI) never blocks a mutation.
type Notifier interface {
	BookChanged(b book.Book)
	StopBreached(p book.Position)
}

// Session owns one operator's book for one trading day. The mutex
// serializes mutations: operations on the same slot are strictly
// ordered and a re-initialization never interleaves with per-slot
// operations.
type Session struct {
	mu       sync.Mutex
	book     *book.Book
	store    store.Store
	journal  journal.Journal
	notifier Notifier
	key      string
}

// Option configures a Session.
type Option func(*Session)

// WithJournal attaches a trade journal. Without it, exits are not
// recorded beyond the snapshot.
func WithJournal(j journal.Journal) Option {
	return func(s *Session) { s.journal = j }
}

// WithNotifier attaches a change notifier.
func WithNotifier(n Notifier) Option {
	return func(s *Session) { s.notifier = n }
}

// Load restores the session keyed by key from the store, falling back
// to a fresh book built from defaultCfg when no snapshot exists or the
// prior one cannot be decoded.
func Load(ctx context.Context, st store.Store, key string, defaultCfg book.Config, opts ...Option) (*Session, error) {
	s := &Session{
		store:   st,
		journal: journal.Nop{},
		key:     key,
	}
	for _, opt := range opts {
		opt(s)
	}

	b, err := st.LoadBook(ctx, key)
	if err != nil {
		if err != store.ErrNotFound {
			slog.Warn("discarding unreadable snapshot", "key", key, "err", err)
		}
		b, err = book.New(defaultCfg)
		if err != nil {
			return nil, err
		}
		if err := st.SaveBook(ctx, key, b); err != nil {
			return nil, fmt.Errorf("persist initial snapshot: %w", err)
		}
	}

	s.book = b
	return s, nil
}

// Initialize replaces the whole book with a fresh one built from cfg,
// discarding every position. Exclusive with all per-slot operations.
func (s *Session) Initialize(ctx context.Context, cfg book.Config) (book.Book, error) {
	s.mu.Lock()

	b, err := book.New(cfg)
	if err != nil {
		s.mu.Unlock()
		return book.Book{}, err
	}
	s.book = b

	return s.persistLocked(ctx)
}

// snapshotLocked copies the book with its own positions array, so the
// copy stays stable after the lock is released while later mutations
// write into the live slots. Position values are safe to share: every
// transition builds a new value and clones its portions.
func (s *Session) snapshotLocked() book.Book {
	snap := *s.book
	snap.Positions = make([]book.Position, len(s.book.Positions))
	copy(snap.Positions, s.book.Positions)
	return snap
}

// Book returns a copy of the current snapshot.
func (s *Session) Book() book.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Summary returns the current aggregate view.
func (s *Session) Summary() book.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.Summary()
}

// Fill buys the next portion of a slot.
func (s *Session) Fill(ctx context.Context, slot int, symbol string, price decimal.Decimal, quantity int64) (book.Position, error) {
	s.mu.Lock()

	p, err := s.book.Fill(slot, symbol, price, quantity)
	if err != nil {
		s.mu.Unlock()
		return book.Position{}, err
	}

	if _, err := s.persistLocked(ctx); err != nil {
		return book.Position{}, err
	}
	return p, nil
}

// UpdatePrice records an observed price. A stop breach is forwarded to
// the notifier; it never changes state by itself.
func (s *Session) UpdatePrice(ctx context.Context, slot int, price decimal.Decimal) (book.Position, bool, error) {
	s.mu.Lock()

	p, breached, err := s.book.UpdatePrice(slot, price)
	if err != nil {
		s.mu.Unlock()
		return book.Position{}, false, err
	}

	if _, err := s.persistLocked(ctx); err != nil {
		return book.Position{}, false, err
	}

	if breached && s.notifier != nil {
		s.notifier.StopBreached(p)
	}
	return p, breached, nil
}

// Stop executes a slot's stop and journals the realized loss.
func (s *Session) Stop(ctx context.Context, slot int) (book.Position, error) {
	s.mu.Lock()

	prior, err := s.book.Position(slot)
	if err != nil {
		s.mu.Unlock()
		return book.Position{}, err
	}

	p, err := s.book.Stop(slot)
	if err != nil {
		s.mu.Unlock()
		return book.Position{}, err
	}

	s.recordExit(journal.TradeRecord{
		TradeID:      id.New(),
		Slot:         slot,
		Symbol:       prior.Symbol,
		Quantity:     prior.Quantity,
		AveragePrice: prior.AveragePrice,
		ExitPrice:    p.CurrentPrice, // the derived stop price
		Spend:        prior.SpendToDate,
		RealizedPnL:  p.PnL,
		Reason:       journal.ReasonStop,
		ClosedAt:     time.Now().UTC(),
	})

	if _, err := s.persistLocked(ctx); err != nil {
		return book.Position{}, err
	}
	return p, nil
}

// Sell executes a sell order; a full sell is journaled from the closed
// snapshot.
func (s *Session) Sell(ctx context.Context, slot int, order book.SellOrder) (book.Position, error) {
	s.mu.Lock()

	p, err := s.book.Sell(slot, order)
	if err != nil {
		s.mu.Unlock()
		return book.Position{}, err
	}

	if p.Status == book.StatusClosed && p.Closed != nil {
		s.recordExit(journal.TradeRecord{
			TradeID:      id.New(),
			Slot:         slot,
			Symbol:       p.Closed.Symbol,
			Quantity:     p.Closed.Quantity,
			AveragePrice: p.Closed.AveragePrice,
			ExitPrice:    p.Closed.ExitPrice,
			Spend:        p.Closed.Spend,
			RealizedPnL:  p.Closed.PnL,
			Reason:       journal.ReasonSell,
			ClosedAt:     time.Now().UTC(),
		})
	}

	if _, err := s.persistLocked(ctx); err != nil {
		return book.Position{}, err
	}
	return p, nil
}

// Reset returns a slot to available.
func (s *Session) Reset(ctx context.Context, slot int) (book.Position, error) {
	s.mu.Lock()

	p, err := s.book.Reset(slot)
	if err != nil {
		s.mu.Unlock()
		return book.Position{}, err
	}

	if _, err := s.persistLocked(ctx); err != nil {
		return book.Position{}, err
	}
	return p, nil
}

// SetGrade toggles a slot's operator grade.
func (s *Session) SetGrade(ctx context.Context, slot, grade int) (book.Position, error) {
	s.mu.Lock()

	p, err := s.book.SetGrade(slot, grade)
	if err != nil {
		s.mu.Unlock()
		return book.Position{}, err
	}

	if _, err := s.persistLocked(ctx); err != nil {
		return book.Position{}, err
	}
	return p, nil
}

// SetNotes replaces a slot's notes.
func (s *Session) SetNotes(ctx context.Context, slot int, notes string) (book.Position, error) {
	s.mu.Lock()

	p, err := s.book.SetNotes(slot, notes)
	if err != nil {
		s.mu.Unlock()
		return book.Position{}, err
	}

	if _, err := s.persistLocked(ctx); err != nil {
		return book.Position{}, err
	}
	return p, nil
}

// recordExit journals a terminal exit. Journal failures do not undo the
// mutation; they are logged and the snapshot remains the source of truth.
func (s *Session) recordExit(rec journal.TradeRecord) {
	if err := s.journal.RecordTrade(rec); err != nil {
		slog.Error("journal trade failed", "trade_id", rec.TradeID, "err", err)
	}
}

// persistLocked saves the snapshot, journals the aggregate summary, and
// releases the lock before notifying. Must be called with the lock held;
// always unlocks.
func (s *Session) persistLocked(ctx context.Context) (book.Book, error) {
	snapshot := s.snapshotLocked()
	summary := s.book.Summary()

	if err := s.store.SaveBook(ctx, s.key, s.book); err != nil {
		s.mu.Unlock()
		return book.Book{}, fmt.Errorf("persist snapshot: %w", err)
	}

	if err := s.journal.RecordSummary(journal.SummarySnapshot{
		Time:             time.Now().UTC(),
		StartingCapital:  summary.StartingCapital,
		DeployedCapital:  summary.DeployedCapital,
		AvailableCapital: summary.AvailableCapital,
		TotalPnL:         summary.TotalPnL,
	}); err != nil {
		slog.Error("journal summary failed", "err", err)
	}

	notifier := s.notifier
	s.mu.Unlock()

	if notifier != nil {
		notifier.BookChanged(snapshot)
	}
	return snapshot, nil
}

// SaveSizer persists the stand-alone calculator inputs, independent of
// the book.
func (s *Session) SaveSizer(ctx context.Context, in sizer.Inputs) error {
	return s.store.SaveSizer(ctx, in)
}

// LoadSizer restores the calculator inputs; zero inputs when none saved.
func (s *Session) LoadSizer(ctx context.Context) (sizer.Inputs, error) {
	in, err := s.store.LoadSizer(ctx)
	if err == store.ErrNotFound {
		return sizer.Inputs{}, nil
	}
	return in, err
}
