package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gridcert/exchange/exchangeService/internal/domain/product"
)

// Asset is a deposited certificate lot.
type Asset struct {
	ID             uuid.UUID
	Address        string
	TokenID        string
	DeviceID       string
	GenerationFrom time.Time
	GenerationTo   time.Time
	DeviceType     []string
	Location       []string
	GridOperator   []string
	DeviceVintage  *product.Vintage
}

// Product is the descriptor asks on this lot are published with. An unset
// generation bound stays open.
func (a Asset) Product() product.Product {
	return product.Product{
		DeviceType:     a.DeviceType,
		Location:       a.Location,
		DeviceVintage:  a.DeviceVintage,
		GenerationFrom: timeOrNil(a.GenerationFrom),
		GenerationTo:   timeOrNil(a.GenerationTo),
		GridOperator:   a.GridOperator,
	}
}

// GenerationWindowValid reports false when both bounds are set and the
// window ends before it starts.
func (a Asset) GenerationWindowValid() bool {
	if a.GenerationFrom.IsZero() || a.GenerationTo.IsZero() {
		return true
	}
	return !a.GenerationFrom.After(a.GenerationTo)
}

func timeOrNil(value time.Time) *time.Time {
	if value.IsZero() {
		return nil
	}
	return &value
}

type TransferStatus uint8

const (
	TransferUnknown TransferStatus = iota
	TransferAccepted
	TransferUnconfirmed
	TransferConfirmed
	TransferError
)

func (s TransferStatus) String() string {
	switch s {
	case TransferAccepted:
		return "Accepted"
	case TransferUnconfirmed:
		return "Unconfirmed"
	case TransferConfirmed:
		return "Confirmed"
	case TransferError:
		return "Error"
	default:
		return "Unknown"
	}
}

// CanMoveTo reports whether the transfer may go from s to next.
// Confirmed and Error are final.
func (s TransferStatus) CanMoveTo(next TransferStatus) bool {
	if s == TransferConfirmed || s == TransferError {
		return false
	}
	if next == TransferError {
		return true
	}
	return next > s && next <= TransferConfirmed
}

type TransferDirection uint8

const (
	DirectionDeposit TransferDirection = iota
	DirectionWithdrawal
)

func (d TransferDirection) String() string {
	if d == DirectionWithdrawal {
		return "Withdrawal"
	}
	return "Deposit"
}

type Transfer struct {
	ID                uuid.UUID
	UserID            uuid.UUID
	Asset             Asset
	Amount            decimal.Decimal
	TransactionHash   string
	Address           string
	Status            TransferStatus
	ConfirmationBlock int64
	Direction         TransferDirection
	CreatedAt         time.Time
}

type Account struct {
	UserID    uuid.UUID
	Address   string
	CreatedAt time.Time
}

// Position is a user's holding of one asset, kept as running totals.
type Position struct {
	UserID    uuid.UUID
	AssetID   uuid.UUID
	Deposited decimal.Decimal
	Withdrawn decimal.Decimal
	Bought    decimal.Decimal
	Sold      decimal.Decimal
	Reserved  decimal.Decimal
}

// Owned is what the user holds, including volume reserved by open asks.
func (p Position) Owned() decimal.Decimal {
	return p.Deposited.Add(p.Bought).Sub(p.Sold).Sub(p.Withdrawn)
}

func (p Position) Available() decimal.Decimal {
	return p.Owned().Sub(p.Reserved)
}

// PositionChange is a signed delta applied to one position.
type PositionChange struct {
	UserID    uuid.UUID
	AssetID   uuid.UUID
	Deposited decimal.Decimal
	Withdrawn decimal.Decimal
	Bought    decimal.Decimal
	Sold      decimal.Decimal
	Reserved  decimal.Decimal
}

func (p Position) Apply(change PositionChange) Position {
	p.Deposited = p.Deposited.Add(change.Deposited)
	p.Withdrawn = p.Withdrawn.Add(change.Withdrawn)
	p.Bought = p.Bought.Add(change.Bought)
	p.Sold = p.Sold.Add(change.Sold)
	p.Reserved = p.Reserved.Add(change.Reserved)
	return p
}

// Valid reports whether no total or the available balance went negative.
func (p Position) Valid() bool {
	for _, value := range []decimal.Decimal{p.Deposited, p.Withdrawn, p.Bought, p.Sold, p.Reserved, p.Available()} {
		if value.IsNegative() {
			return false
		}
	}
	return true
}

type Balance struct {
	Asset  Asset
	Amount decimal.Decimal
}
