package dto

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gridcert/exchange/exchangeService/internal/domain/models"
	"github.com/gridcert/exchange/exchangeService/internal/domain/product"
)

type Order struct {
	ID            uuid.UUID       `json:"id"`
	Side          uint8           `json:"side"`
	Price         int64           `json:"price"`
	StartVolume   string          `json:"startVolume"`
	CurrentVolume string          `json:"currentVolume"`
	Product       product.Product `json:"product"`
	ValidFrom     time.Time       `json:"validFrom"`
	UserID        uuid.UUID       `json:"userId"`
	AssetID       uuid.UUID       `json:"assetId"`
	DirectBuyID   uuid.UUID       `json:"directBuyId"`
	Status        uint8           `json:"status"`
	Sequence      uint64          `json:"sequence"`
	CreatedAt     time.Time       `json:"createdAt"`
}

func (o Order) ToDomain() (models.Order, error) {
	startVolume, err := decimal.NewFromString(o.StartVolume)
	if err != nil {
		return models.Order{}, fmt.Errorf("start volume: %w", err)
	}
	currentVolume, err := decimal.NewFromString(o.CurrentVolume)
	if err != nil {
		return models.Order{}, fmt.Errorf("current volume: %w", err)
	}

	return models.Order{
		ID:            o.ID,
		Side:          models.Side(o.Side),
		Price:         o.Price,
		StartVolume:   startVolume,
		CurrentVolume: currentVolume,
		Product:       o.Product,
		ValidFrom:     o.ValidFrom,
		UserID:        o.UserID,
		AssetID:       o.AssetID,
		DirectBuyID:   o.DirectBuyID,
		Status:        models.Status(o.Status),
		Sequence:      o.Sequence,
		CreatedAt:     o.CreatedAt,
	}, nil
}

func FromDomain(order models.Order) Order {
	return Order{
		ID:            order.ID,
		Side:          uint8(order.Side),
		Price:         order.Price,
		StartVolume:   order.StartVolume.String(),
		CurrentVolume: order.CurrentVolume.String(),
		Product:       order.Product,
		ValidFrom:     order.ValidFrom,
		UserID:        order.UserID,
		AssetID:       order.AssetID,
		DirectBuyID:   order.DirectBuyID,
		Status:        uint8(order.Status),
		Sequence:      order.Sequence,
		CreatedAt:     order.CreatedAt,
	}
}
