package orderbook

import "github.com/go-faster/errors"

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrNotOwner      = errors.New("order belongs to another user")
	ErrRejected      = errors.New("order rejected")
	// ErrInvariantViolation means the book reached a state matching must
	// never produce. The operation that hit it is aborted.
	ErrInvariantViolation = errors.New("order book invariant violated")
)

// RejectedError carries the reason an order was refused. It matches
// ErrRejected.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	return "order rejected: " + e.Reason
}

func (e *RejectedError) Is(target error) bool {
	return target == ErrRejected
}

func reject(reason string) error {
	return &RejectedError{Reason: reason}
}
