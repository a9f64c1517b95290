package dto

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gridcert/exchange/exchangeService/internal/domain/models"
	"github.com/gridcert/exchange/exchangeService/internal/orderbook"
)

var (
	errPriceRequired  = errors.New("price must be > 0")
	errVolumeRequired = errors.New("volume must be > 0")
	errAssetRequired  = errors.New("assetId is required")
	errAskRequired    = errors.New("askId is required")
)

type CreateAsk struct {
	AssetID   uuid.UUID       `json:"assetId"`
	Volume    decimal.Decimal `json:"volume"`
	Price     int64           `json:"price"`
	ValidFrom *time.Time      `json:"validFrom,omitempty"`
}

func (r CreateAsk) Validate() error {
	if r.AssetID == uuid.Nil {
		return errAssetRequired
	}
	return validateAmounts(r.Price, r.Volume)
}

type CreateBid struct {
	Volume    decimal.Decimal `json:"volume"`
	Price     int64           `json:"price"`
	ValidFrom *time.Time      `json:"validFrom,omitempty"`
	Product   Product         `json:"product"`
}

func (r CreateBid) Validate() error {
	return validateAmounts(r.Price, r.Volume)
}

type DirectBuy struct {
	AskID  uuid.UUID       `json:"askId"`
	Volume decimal.Decimal `json:"volume"`
	Price  int64           `json:"price"`
}

func (r DirectBuy) Validate() error {
	if r.AskID == uuid.Nil {
		return errAskRequired
	}
	return validateAmounts(r.Price, r.Volume)
}

func validateAmounts(price int64, volume decimal.Decimal) error {
	if price <= 0 {
		return errPriceRequired
	}
	if !volume.IsPositive() {
		return errVolumeRequired
	}
	return nil
}

// ValidFrom returns the requested activation instant or the zero time,
// which the book reads as "now".
func ValidFrom(validFrom *time.Time) time.Time {
	if validFrom == nil {
		return time.Time{}
	}
	return validFrom.UTC()
}

type Order struct {
	ID            uuid.UUID       `json:"id"`
	Side          string          `json:"side"`
	Status        string          `json:"status"`
	ValidFrom     time.Time       `json:"validFrom"`
	Product       Product         `json:"product"`
	Price         int64           `json:"price"`
	StartVolume   decimal.Decimal `json:"startVolume"`
	CurrentVolume decimal.Decimal `json:"currentVolume"`
	DirectBuyID   *uuid.UUID      `json:"directBuyId,omitempty"`
	AssetID       *uuid.UUID      `json:"assetId,omitempty"`
	UserID        uuid.UUID       `json:"userId"`
}

func OrderFromDomain(order models.Order) Order {
	return Order{
		ID:            order.ID,
		Side:          order.Side.String(),
		Status:        order.Status.String(),
		ValidFrom:     order.ValidFrom,
		Product:       ProductFromDomain(order.Product),
		Price:         order.Price,
		StartVolume:   order.StartVolume,
		CurrentVolume: order.CurrentVolume,
		DirectBuyID:   optionalID(order.DirectBuyID),
		AssetID:       optionalID(order.AssetID),
		UserID:        order.UserID,
	}
}

func OrdersFromDomain(orders []models.Order) []Order {
	result := make([]Order, 0, len(orders))
	for _, order := range orders {
		result = append(result, OrderFromDomain(order))
	}
	return result
}

// BookOrder is the public view of a resting order.
type BookOrder struct {
	ID      uuid.UUID       `json:"id"`
	Price   int64           `json:"price"`
	Volume  decimal.Decimal `json:"volume"`
	Product Product         `json:"product"`
	UserID  uuid.UUID       `json:"userId"`
	AssetID *uuid.UUID      `json:"assetId,omitempty"`
}

type OrderBook struct {
	Asks []BookOrder `json:"asks"`
	Bids []BookOrder `json:"bids"`
}

func OrderBookFromSnapshot(snapshot orderbook.Snapshot) OrderBook {
	return OrderBook{
		Asks: bookOrders(snapshot.Asks),
		Bids: bookOrders(snapshot.Bids),
	}
}

func bookOrders(orders []models.Order) []BookOrder {
	result := make([]BookOrder, 0, len(orders))
	for _, order := range orders {
		result = append(result, BookOrder{
			ID:      order.ID,
			Price:   order.Price,
			Volume:  order.CurrentVolume,
			Product: ProductFromDomain(order.Product),
			UserID:  order.UserID,
			AssetID: optionalID(order.AssetID),
		})
	}
	return result
}

type Trade struct {
	ID      uuid.UUID       `json:"id"`
	Created time.Time       `json:"created"`
	Volume  decimal.Decimal `json:"volume"`
	Price   int64           `json:"price"`
	BidID   uuid.UUID       `json:"bidId"`
	AskID   uuid.UUID       `json:"askId"`
	AssetID uuid.UUID       `json:"assetId"`
}

func TradeFromDomain(trade models.Trade) Trade {
	return Trade{
		ID:      trade.ID,
		Created: trade.Created,
		Volume:  trade.Volume,
		Price:   trade.Price,
		BidID:   trade.BidID,
		AskID:   trade.AskID,
		AssetID: trade.AssetID,
	}
}

func TradesFromDomain(trades []models.Trade) []Trade {
	result := make([]Trade, 0, len(trades))
	for _, trade := range trades {
		result = append(result, TradeFromDomain(trade))
	}
	return result
}

// OrderResult is returned by the order creating endpoints.
type OrderResult struct {
	Order  Order   `json:"order"`
	Trades []Trade `json:"trades"`
}

func optionalID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
