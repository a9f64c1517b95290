package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gridcert/exchange/exchangeService/internal/domain/models"
	"github.com/gridcert/exchange/exchangeService/internal/domain/product"
	"github.com/gridcert/exchange/exchangeService/internal/http/dto"
	"github.com/gridcert/exchange/exchangeService/internal/orderbook"
	"github.com/gridcert/exchange/exchangeService/internal/services/order"
)

type OrderService interface {
	CreateAsk(ctx context.Context, request order.AskRequest) (models.Order, []models.Trade, error)
	CreateBid(ctx context.Context, request order.BidRequest) (models.Order, []models.Trade, error)
	DirectBuy(ctx context.Context, request order.DirectBuyRequest) (models.Order, []models.Trade, error)
	CancelOrder(ctx context.Context, orderID, userID uuid.UUID) (models.Order, error)
	GetOrder(ctx context.Context, orderID, userID uuid.UUID) (models.Order, error)
	UserOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	UserTrades(ctx context.Context, userID uuid.UUID) ([]models.Trade, error)
	Search(ctx context.Context, filter product.Filter) orderbook.Snapshot
}

type OrderHandler struct {
	orders OrderService
}

func NewOrderHandler(orders OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

func (h *OrderHandler) CreateAsk(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var request dto.CreateAsk
	if !bindJSON(c, &request, false) {
		return
	}
	if err := request.Validate(); err != nil {
		writeBadRequest(c, err)
		return
	}

	placed, trades, err := h.orders.CreateAsk(c.Request.Context(), order.AskRequest{
		UserID:    userID,
		AssetID:   request.AssetID,
		Price:     request.Price,
		Volume:    request.Volume,
		ValidFrom: dto.ValidFrom(request.ValidFrom),
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OrderResult{Order: dto.OrderFromDomain(placed), Trades: dto.TradesFromDomain(trades)})
}

func (h *OrderHandler) CreateBid(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var request dto.CreateBid
	if !bindJSON(c, &request, false) {
		return
	}
	if err := request.Validate(); err != nil {
		writeBadRequest(c, err)
		return
	}

	placed, trades, err := h.orders.CreateBid(c.Request.Context(), order.BidRequest{
		UserID:    userID,
		Price:     request.Price,
		Volume:    request.Volume,
		Product:   request.Product.ToDomain(),
		ValidFrom: dto.ValidFrom(request.ValidFrom),
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OrderResult{Order: dto.OrderFromDomain(placed), Trades: dto.TradesFromDomain(trades)})
}

func (h *OrderHandler) DirectBuy(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var request dto.DirectBuy
	if !bindJSON(c, &request, false) {
		return
	}
	if err := request.Validate(); err != nil {
		writeBadRequest(c, err)
		return
	}

	placed, trades, err := h.orders.DirectBuy(c.Request.Context(), order.DirectBuyRequest{
		UserID: userID,
		AskID:  request.AskID,
		Price:  request.Price,
		Volume: request.Volume,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OrderResult{Order: dto.OrderFromDomain(placed), Trades: dto.TradesFromDomain(trades)})
}

func (h *OrderHandler) Cancel(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c)
	if !ok {
		return
	}

	cancelled, err := h.orders.CancelOrder(c.Request.Context(), orderID, userID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OrderFromDomain(cancelled))
}

func (h *OrderHandler) Get(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c)
	if !ok {
		return
	}

	found, err := h.orders.GetOrder(c.Request.Context(), orderID, userID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OrderFromDomain(found))
}

func (h *OrderHandler) List(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	orders, err := h.orders.UserOrders(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OrdersFromDomain(orders))
}

func (h *OrderHandler) Trades(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	trades, err := h.orders.UserTrades(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TradesFromDomain(trades))
}

// Search serves POST /orderbook/search. An empty body is the all-All filter.
func (h *OrderHandler) Search(c *gin.Context) {
	var request dto.ProductFilter
	if !bindJSON(c, &request, true) {
		return
	}

	filter, err := request.Validate()
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OrderBookFromSnapshot(h.orders.Search(c.Request.Context(), filter)))
}
