package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PublicationState uint8

const (
	PublicationIdle PublicationState = iota
	PublicationSubmitting
	PublicationAwaitingConfirmation
	PublicationSettled
	PublicationFailed
)

func (s PublicationState) String() string {
	switch s {
	case PublicationSubmitting:
		return "Submitting"
	case PublicationAwaitingConfirmation:
		return "AwaitingConfirmation"
	case PublicationSettled:
		return "Settled"
	case PublicationFailed:
		return "Failed"
	default:
		return "Idle"
	}
}

func (s PublicationState) Final() bool {
	return s == PublicationSettled || s == PublicationFailed
}

// Publication tracks putting a deposited lot up for sale: the deposit
// identified by TransactionHash must confirm before the ask is created.
type Publication struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	TransactionHash string
	Volume          decimal.Decimal
	Price           int64
	State           PublicationState
	AskID           uuid.UUID
	Reason          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
