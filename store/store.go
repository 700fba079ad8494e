// Package store is the persistence sink for engine snapshots. The whole
// book is serialized as JSON after every mutation and written under a
// per-day session key; on startup the caller loads the prior snapshot
// and falls back to a fresh book when none exists.
//
// Sizer inputs persist independently of the book; they are an
// unrelated scratch calculation.
//
// Implementations: SQLite (default, embedded), Redis, and in-memory
// (tests/dev).
package store

import (
	"context"
	"errors"
	"time"

	"github.com/rustyeddy/slotbook/book"
	"github.com/rustyeddy/slotbook/sizer"
)

// ErrNotFound reports that no snapshot exists under the requested key.
// Callers treat it as "start a fresh session", never as a failure.
var ErrNotFound = errors.New("snapshot not found")

// Store is the persistence port.
type Store interface {
	SaveBook(ctx context.Context, key string, b *book.Book) error
	LoadBook(ctx context.Context, key string) (*book.Book, error)

	SaveSizer(ctx context.Context, in sizer.Inputs) error
	LoadSizer(ctx context.Context) (sizer.Inputs, error)

	Close() error
}

// sizerKey is the fixed key for the sizer scratch state.
const sizerKey = "sizer:inputs"

// DayKey returns the book snapshot key for the session containing t.
func DayKey(t time.Time) string {
	return "book:" + t.Format("2006-01-02")
}
