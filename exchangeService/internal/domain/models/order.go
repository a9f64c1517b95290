package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gridcert/exchange/exchangeService/internal/domain/product"
)

type Side uint8

const (
	SideAsk Side = iota
	SideBid
)

func (s Side) String() string {
	if s == SideBid {
		return "bid"
	}
	return "ask"
}

type Status uint8

const (
	StatusActive Status = iota
	StatusPendingActivation
	StatusFilled
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusPendingActivation:
		return "PendingActivation"
	case StatusFilled:
		return "Filled"
	case StatusCancelled:
		return "Cancelled"
	default:
		return "Active"
	}
}

// Terminal orders never re-enter the book.
func (s Status) Terminal() bool {
	return s == StatusFilled || s == StatusCancelled
}

type Order struct {
	ID            uuid.UUID
	Side          Side
	Price         int64
	StartVolume   decimal.Decimal
	CurrentVolume decimal.Decimal
	Product       product.Product
	ValidFrom     time.Time
	UserID        uuid.UUID
	// AssetID is set on asks only.
	AssetID uuid.UUID
	// DirectBuyID restricts a bid to a single ask.
	DirectBuyID uuid.UUID
	Status      Status
	Sequence    uint64
	CreatedAt   time.Time
}

func (o Order) IsDirectBuy() bool {
	return o.DirectBuyID != uuid.Nil
}

// Filled is the volume matched so far.
func (o Order) Filled() decimal.Decimal {
	return o.StartVolume.Sub(o.CurrentVolume)
}
