package mango

import (
	"github.com/pkg/errors"
)

// Error kinds callers can branch on with errors.Is. Everything else that
// comes out of this package wraps a transport or collaborator failure.
var (
	// ErrInvalidOrder marks caller-input failures caught before any
	// network activity.
	ErrInvalidOrder = errors.New("invalid order")

	// ErrMarketNotFound means the symbol matches no configured market.
	ErrMarketNotFound = errors.New("market not found")

	// ErrEmptyBook means a market order found no resting orders to price
	// against. Distinct from upstream failures so callers can tell "no
	// price available" from a broken read.
	ErrEmptyBook = errors.New("order book is empty")
)

func invalidOrderf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidOrder, format, args...)
}
