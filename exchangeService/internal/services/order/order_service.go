package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/gridcert/exchange/exchangeService/internal/domain/models"
	"github.com/gridcert/exchange/exchangeService/internal/domain/product"
	"github.com/gridcert/exchange/exchangeService/internal/orderbook"
	serviceErrors "github.com/gridcert/exchange/shared/errors/service"
	zapLogger "github.com/gridcert/exchange/shared/logger/zap"
)

type AskRequest struct {
	UserID    uuid.UUID
	AssetID   uuid.UUID
	Price     int64
	Volume    decimal.Decimal
	ValidFrom time.Time
}

type BidRequest struct {
	UserID    uuid.UUID
	Price     int64
	Volume    decimal.Decimal
	Product   product.Product
	ValidFrom time.Time
}

type DirectBuyRequest struct {
	UserID uuid.UUID
	AskID  uuid.UUID
	Price  int64
	Volume decimal.Decimal
}

// CreateAsk offers volume of a deposited asset. The volume is reserved in
// the ledger before the ask reaches the book and released if it never does.
func (s *Service) CreateAsk(ctx context.Context, request AskRequest) (models.Order, []models.Trade, error) {
	const op = "Service.CreateAsk"

	ctx, span := s.tracer.Start(ctx, op)
	defer span.End()
	span.SetAttributes(attribute.String("asset_id", request.AssetID.String()))

	ctx, cancel := context.WithTimeout(ctx, s.createTimeout)
	defer cancel()

	if err := s.checkRateLimit(ctx, s.createRateLimiter, request.UserID); err != nil {
		return models.Order{}, nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := validateAmounts(request.Price, request.Volume); err != nil {
		s.metrics.OrdersRejected.WithLabelValues(models.SideAsk.String(), "invalid").Inc()
		return models.Order{}, nil, fmt.Errorf("%s: %w", op, err)
	}

	asset, err := s.ledger.GetAsset(ctx, request.AssetID)
	if err != nil {
		return models.Order{}, nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.checkBalance(ctx, request.UserID, request.AssetID, request.Volume); err != nil {
		s.metrics.OrdersRejected.WithLabelValues(models.SideAsk.String(), "balance").Inc()
		return models.Order{}, nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.ledger.Reserve(ctx, request.UserID, request.AssetID, request.Volume); err != nil {
		return models.Order{}, nil, fmt.Errorf("%s: %w", op, err)
	}

	placed, trades, err := s.submit(ctx, models.Order{
		Side:        models.SideAsk,
		Price:       request.Price,
		StartVolume: request.Volume,
		Product:     asset.Product(),
		ValidFrom:   request.ValidFrom,
		UserID:      request.UserID,
		AssetID:     request.AssetID,
	})
	if err != nil {
		unplaced := request.Volume
		if placed.ID != uuid.Nil {
			unplaced = placed.CurrentVolume
		}
		if releaseErr := s.ledger.Release(ctx, request.UserID, request.AssetID, unplaced); releaseErr != nil {
			err = errors.Join(err, releaseErr)
		}
		return placed, trades, fmt.Errorf("%s: %w", op, err)
	}

	return placed, trades, nil
}

// CreateBid places a bid for any lot whose product satisfies request.Product.
func (s *Service) CreateBid(ctx context.Context, request BidRequest) (models.Order, []models.Trade, error) {
	const op = "Service.CreateBid"

	ctx, span := s.tracer.Start(ctx, op)
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, s.createTimeout)
	defer cancel()

	if err := s.checkRateLimit(ctx, s.createRateLimiter, request.UserID); err != nil {
		return models.Order{}, nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := validateAmounts(request.Price, request.Volume); err != nil {
		s.metrics.OrdersRejected.WithLabelValues(models.SideBid.String(), "invalid").Inc()
		return models.Order{}, nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := product.ValidateProduct(request.Product); err != nil {
		s.metrics.OrdersRejected.WithLabelValues(models.SideBid.String(), "invalid").Inc()
		return models.Order{}, nil, fmt.Errorf("%s: %w", op, err)
	}

	placed, trades, err := s.submit(ctx, models.Order{
		Side:        models.SideBid,
		Price:       request.Price,
		StartVolume: request.Volume,
		Product:     request.Product,
		ValidFrom:   request.ValidFrom,
		UserID:      request.UserID,
	})
	if err != nil {
		return placed, trades, fmt.Errorf("%s: %w", op, err)
	}

	return placed, trades, nil
}

// DirectBuy takes volume from one specific ask. Whatever does not fill right
// away is cancelled rather than rested.
func (s *Service) DirectBuy(ctx context.Context, request DirectBuyRequest) (models.Order, []models.Trade, error) {
	const op = "Service.DirectBuy"

	ctx, span := s.tracer.Start(ctx, op)
	defer span.End()
	span.SetAttributes(attribute.String("ask_id", request.AskID.String()))

	ctx, cancel := context.WithTimeout(ctx, s.createTimeout)
	defer cancel()

	if err := s.checkRateLimit(ctx, s.createRateLimiter, request.UserID); err != nil {
		return models.Order{}, nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := validateAmounts(request.Price, request.Volume); err != nil {
		s.metrics.OrdersRejected.WithLabelValues(models.SideBid.String(), "invalid").Inc()
		return models.Order{}, nil, fmt.Errorf("%s: %w", op, err)
	}

	ask, err := s.book.Get(ctx, request.AskID)
	if err != nil {
		return models.Order{}, nil, fmt.Errorf("%s: %w", op, translateBookError(err))
	}
	if ask.Side != models.SideAsk {
		return models.Order{}, nil, fmt.Errorf("%s: %w", op, serviceErrors.ErrOrderNotFound)
	}

	placed, trades, err := s.submit(ctx, models.Order{
		Side:        models.SideBid,
		Price:       request.Price,
		StartVolume: request.Volume,
		Product:     ask.Product,
		UserID:      request.UserID,
		DirectBuyID: request.AskID,
	})
	if err != nil {
		return placed, trades, fmt.Errorf("%s: %w", op, err)
	}

	return placed, trades, nil
}

// CancelOrder removes the caller's order from the book. Volume still
// reserved by a cancelled ask goes back to the seller.
func (s *Service) CancelOrder(ctx context.Context, orderID, userID uuid.UUID) (models.Order, error) {
	const op = "Service.CancelOrder"

	ctx, span := s.tracer.Start(ctx, op)
	defer span.End()

	if err := s.checkRateLimit(ctx, s.cancelRateLimiter, userID); err != nil {
		return models.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	cancelled, err := s.book.Cancel(ctx, orderID, userID)
	if err != nil {
		return models.Order{}, fmt.Errorf("%s: %w", op, translateBookError(err))
	}
	s.metrics.OrdersCancelled.Inc()
	s.observeDepth()

	if cancelled.Side == models.SideAsk {
		if err := s.ledger.Release(ctx, cancelled.UserID, cancelled.AssetID, cancelled.CurrentVolume); err != nil {
			return cancelled, fmt.Errorf("%s: %w", op, err)
		}
	}

	zapLogger.Info(ctx, "order cancelled",
		zap.String("order_id", orderID.String()),
		zap.String("side", cancelled.Side.String()),
	)

	return cancelled, nil
}

// GetOrder returns one of the caller's orders. Orders of other users are
// reported as not found.
func (s *Service) GetOrder(ctx context.Context, orderID, userID uuid.UUID) (models.Order, error) {
	const op = "Service.GetOrder"

	order, err := s.book.Get(ctx, orderID)
	if err != nil {
		return models.Order{}, fmt.Errorf("%s: %w", op, translateBookError(err))
	}
	if order.UserID != userID {
		return models.Order{}, fmt.Errorf("%s: %w", op, serviceErrors.ErrOrderNotFound)
	}

	return order, nil
}

func (s *Service) UserOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	const op = "Service.UserOrders"

	orders, err := s.book.UserOrders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return orders, nil
}

func (s *Service) Search(ctx context.Context, filter product.Filter) orderbook.Snapshot {
	_, span := s.tracer.Start(ctx, "Service.Search")
	defer span.End()

	return s.book.Search(filter)
}

func (s *Service) submit(ctx context.Context, order models.Order) (models.Order, []models.Trade, error) {
	started := time.Now()
	placed, trades, err := s.book.Submit(ctx, order)
	s.metrics.MatchDuration.Observe(time.Since(started).Seconds())

	if err != nil && len(trades) == 0 {
		if errors.Is(err, orderbook.ErrRejected) {
			s.metrics.OrdersRejected.WithLabelValues(order.Side.String(), "book").Inc()
		}
		return placed, nil, translateBookError(err)
	}

	s.metrics.OrdersSubmitted.WithLabelValues(order.Side.String()).Inc()

	settleErr := s.processTrades(ctx, trades)
	s.observeDepth()

	if err != nil {
		zapLogger.Error(ctx, "order partially executed",
			zap.String("order_id", placed.ID.String()),
			zap.Int("trades", len(trades)),
			zap.Error(err),
		)
		return placed, trades, errors.Join(translateBookError(err), settleErr)
	}
	if settleErr != nil {
		return placed, trades, settleErr
	}

	zapLogger.Info(ctx, "order placed",
		zap.String("order_id", placed.ID.String()),
		zap.String("side", placed.Side.String()),
		zap.String("status", placed.Status.String()),
		zap.Int("trades", len(trades)),
	)

	return placed, trades, nil
}

func (s *Service) checkRateLimit(ctx context.Context, limiter RateLimiter, userID uuid.UUID) error {
	allowed, err := limiter.Allow(ctx, userID)
	if err != nil {
		return err
	}
	if !allowed {
		return serviceErrors.ErrRateLimitExceeded
	}

	return nil
}

func (s *Service) checkBalance(ctx context.Context, userID, assetID uuid.UUID, volume decimal.Decimal) error {
	balance, err := s.balances.ConfirmedBalance(ctx, userID, assetID)
	if err != nil {
		return err
	}
	if balance.LessThan(volume) {
		return serviceErrors.ErrInsufficientBalance
	}

	return nil
}

func validateAmounts(price int64, volume decimal.Decimal) error {
	if price <= 0 {
		return fmt.Errorf("%w: price must be positive", serviceErrors.ErrInvalidOrder)
	}
	if !volume.IsPositive() {
		return fmt.Errorf("%w: volume must be positive", serviceErrors.ErrInvalidOrder)
	}

	return nil
}

func translateBookError(err error) error {
	switch {
	case errors.Is(err, orderbook.ErrOrderNotFound):
		return serviceErrors.ErrOrderNotFound
	case errors.Is(err, orderbook.ErrNotOwner):
		return serviceErrors.ErrNotOrderOwner
	}

	var rejected *orderbook.RejectedError
	if errors.As(err, &rejected) {
		return fmt.Errorf("%w: %s", serviceErrors.ErrOrderRejected, rejected.Reason)
	}

	return err
}
