package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Trade struct {
	ID       uuid.UUID
	Created  time.Time
	Volume   decimal.Decimal
	Price    int64
	BidID    uuid.UUID
	AskID    uuid.UUID
	AssetID  uuid.UUID
	BuyerID  uuid.UUID
	SellerID uuid.UUID
}
