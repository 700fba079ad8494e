package book

import "errors"

// Engine errors. All are local, synchronous, and recoverable: an
// operation either fully succeeds or fails with one of these and leaves
// the position untouched. Presentation is the caller's job; the engine
// never logs.
var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrPortionBudgetExceeded = errors.New("portion budget exceeded")
	ErrNoPortionsRemaining   = errors.New("no portions remaining")
	ErrNoOpenQuantity        = errors.New("no open quantity")
	ErrInsufficientShares    = errors.New("insufficient shares")
	ErrUnknownSlot           = errors.New("unknown slot")
)
