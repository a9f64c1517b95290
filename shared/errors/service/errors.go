package service

import "errors"

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrNotOrderOwner       = errors.New("order belongs to another user")
	ErrInvalidOrder        = errors.New("invalid order")
	ErrOrderRejected       = errors.New("order rejected")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrAssetNotAvailable   = errors.New("asset is not available for trading")
	ErrRateLimitExceeded   = errors.New("order rate limit exceeded")
	ErrAccountNotFound     = errors.New("account not found")
	ErrTransferNotFound    = errors.New("transfer not found")
	ErrTransferExists      = errors.New("transfer already exists")
	ErrInvalidTransfer     = errors.New("invalid transfer")
	ErrPublicationNotFound = errors.New("publication not found")
	ErrLedgerUnavailable   = errors.New("ledger unavailable")
)
