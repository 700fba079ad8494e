// Package id mints the identifiers that key journal rows.
package id

import "github.com/oklog/ulid/v2"

// New returns a fresh ULID. ULIDs embed the creation time in their
// high bits, so trade rows keyed by them come back in exit order
// without a secondary index. The library's default entropy source is
// monotonic within a millisecond and safe for concurrent use.
func New() string {
	return ulid.Make().String()
}
