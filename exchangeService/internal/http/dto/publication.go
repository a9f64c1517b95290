package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gridcert/exchange/exchangeService/internal/domain/models"
	"github.com/gridcert/exchange/exchangeService/internal/services/publication"
)

type CreatePublication struct {
	TransactionHash string          `json:"transactionHash"`
	Volume          decimal.Decimal `json:"volume"`
	Price           int64           `json:"price"`
}

func (r CreatePublication) Validate() error {
	if r.TransactionHash == "" {
		return errHashRequired
	}
	return validateAmounts(r.Price, r.Volume)
}

func (r CreatePublication) ToDomain(userID uuid.UUID) publication.Request {
	return publication.Request{
		UserID:          userID,
		TransactionHash: r.TransactionHash,
		Volume:          r.Volume,
		Price:           r.Price,
	}
}

type Publication struct {
	ID              uuid.UUID       `json:"id"`
	TransactionHash string          `json:"transactionHash"`
	Volume          decimal.Decimal `json:"volume"`
	Price           int64           `json:"price"`
	State           string          `json:"state"`
	AskID           *uuid.UUID      `json:"askId,omitempty"`
	Reason          string          `json:"reason,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func PublicationFromDomain(p models.Publication) Publication {
	return Publication{
		ID:              p.ID,
		TransactionHash: p.TransactionHash,
		Volume:          p.Volume,
		Price:           p.Price,
		State:           p.State.String(),
		AskID:           optionalID(p.AskID),
		Reason:          p.Reason,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}
