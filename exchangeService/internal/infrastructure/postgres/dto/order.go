package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/gridcert/exchange/exchangeService/internal/domain/models"
	"github.com/gridcert/exchange/exchangeService/internal/domain/product"
)

type Order struct {
	ID            uuid.UUID       `db:"id"`
	Side          int16           `db:"side"`
	Price         int64           `db:"price"`
	StartVolume   pgtype.Numeric  `db:"start_volume"`
	CurrentVolume pgtype.Numeric  `db:"current_volume"`
	Product       product.Product `db:"product"`
	ValidFrom     time.Time       `db:"valid_from"`
	UserID        uuid.UUID       `db:"user_id"`
	AssetID       uuid.UUID       `db:"asset_id"`
	DirectBuyID   uuid.UUID       `db:"direct_buy_id"`
	Status        int16           `db:"status"`
	Sequence      int64           `db:"sequence"`
	CreatedAt     time.Time       `db:"created_at"`
}

func (o Order) ToDomain() models.Order {
	return models.Order{
		ID:            o.ID,
		Side:          models.Side(o.Side),
		Price:         o.Price,
		StartVolume:   decimalFromNumeric(o.StartVolume),
		CurrentVolume: decimalFromNumeric(o.CurrentVolume),
		Product:       o.Product,
		ValidFrom:     o.ValidFrom.UTC(),
		UserID:        o.UserID,
		AssetID:       o.AssetID,
		DirectBuyID:   o.DirectBuyID,
		Status:        models.Status(o.Status),
		Sequence:      uint64(o.Sequence),
		CreatedAt:     o.CreatedAt.UTC(),
	}
}

func OrderFromDomain(order models.Order) Order {
	return Order{
		ID:            order.ID,
		Side:          int16(order.Side),
		Price:         order.Price,
		StartVolume:   numericFromDecimal(order.StartVolume),
		CurrentVolume: numericFromDecimal(order.CurrentVolume),
		Product:       order.Product,
		ValidFrom:     order.ValidFrom,
		UserID:        order.UserID,
		AssetID:       order.AssetID,
		DirectBuyID:   order.DirectBuyID,
		Status:        int16(order.Status),
		Sequence:      int64(order.Sequence),
		CreatedAt:     order.CreatedAt,
	}
}
