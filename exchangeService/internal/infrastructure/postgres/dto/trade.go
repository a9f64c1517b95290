package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/gridcert/exchange/exchangeService/internal/domain/models"
)

type Trade struct {
	ID        uuid.UUID      `db:"id"`
	CreatedAt time.Time      `db:"created_at"`
	Volume    pgtype.Numeric `db:"volume"`
	Price     int64          `db:"price"`
	BidID     uuid.UUID      `db:"bid_id"`
	AskID     uuid.UUID      `db:"ask_id"`
	AssetID   uuid.UUID      `db:"asset_id"`
	BuyerID   uuid.UUID      `db:"buyer_id"`
	SellerID  uuid.UUID      `db:"seller_id"`
}

func (t Trade) ToDomain() models.Trade {
	return models.Trade{
		ID:       t.ID,
		Created:  t.CreatedAt.UTC(),
		Volume:   decimalFromNumeric(t.Volume),
		Price:    t.Price,
		BidID:    t.BidID,
		AskID:    t.AskID,
		AssetID:  t.AssetID,
		BuyerID:  t.BuyerID,
		SellerID: t.SellerID,
	}
}

func TradeFromDomain(trade models.Trade) Trade {
	return Trade{
		ID:        trade.ID,
		CreatedAt: trade.Created,
		Volume:    numericFromDecimal(trade.Volume),
		Price:     trade.Price,
		BidID:     trade.BidID,
		AskID:     trade.AskID,
		AssetID:   trade.AssetID,
		BuyerID:   trade.BuyerID,
		SellerID:  trade.SellerID,
	}
}
