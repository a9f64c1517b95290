package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gridcert/exchange/exchangeService/internal/domain/models"
	zapLogger "github.com/gridcert/exchange/shared/logger/zap"
)

// processTrades settles every trade in the ledger and stores it, then hands
// the batch to the publisher. Publishing is best effort and only logged.
func (s *Service) processTrades(ctx context.Context, trades []models.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	var errs []error
	for _, trade := range trades {
		if err := s.ledger.Settle(ctx, trade); err != nil {
			zapLogger.Error(ctx, "trade settlement failed",
				zap.String("trade_id", trade.ID.String()),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("settle %s: %w", trade.ID, err))
			continue
		}
		if err := s.trades.SaveTrade(ctx, trade); err != nil {
			zapLogger.Error(ctx, "saving trade failed",
				zap.String("trade_id", trade.ID.String()),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("save %s: %w", trade.ID, err))
			continue
		}

		s.metrics.Trades.Inc()
		s.metrics.TradedVolume.Add(trade.Volume.InexactFloat64())
	}

	if err := s.publisher.PublishTrades(ctx, trades); err != nil {
		zapLogger.Warn(ctx, "trade publication failed", zap.Error(err))
	}

	return errors.Join(errs...)
}

func (s *Service) UserTrades(ctx context.Context, userID uuid.UUID) ([]models.Trade, error) {
	const op = "Service.UserTrades"

	trades, err := s.trades.UserTrades(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return trades, nil
}

// ActivatePending moves orders whose validFrom has passed into the book and
// processes whatever they matched.
func (s *Service) ActivatePending(ctx context.Context) (int, error) {
	const op = "Service.ActivatePending"

	activated, trades, err := s.book.Activate(ctx, s.now().UTC())
	settleErr := s.processTrades(ctx, trades)
	if err != nil {
		err = errors.Join(err, s.releaseAbandoned(ctx, activated))
	}
	if len(activated) > 0 {
		s.observeDepth()
		zapLogger.Info(ctx, "pending orders activated",
			zap.Int("orders", len(activated)),
			zap.Int("trades", len(trades)),
		)
	}

	if err = errors.Join(err, settleErr); err != nil {
		return len(activated), fmt.Errorf("%s: %w", op, err)
	}

	return len(activated), nil
}

// releaseAbandoned frees the reservation of asks the book cancelled because
// it could not finish matching them.
func (s *Service) releaseAbandoned(ctx context.Context, orders []models.Order) error {
	var errs []error
	for _, order := range orders {
		if order.Side != models.SideAsk || order.Status != models.StatusCancelled {
			continue
		}
		if err := s.ledger.Release(ctx, order.UserID, order.AssetID, order.CurrentVolume); err != nil {
			errs = append(errs, fmt.Errorf("release %s: %w", order.ID, err))
		}
	}
	return errors.Join(errs...)
}

// PurgeTerminal drops filled and cancelled orders older than the retention.
func (s *Service) PurgeTerminal(ctx context.Context) (int, error) {
	const op = "Service.PurgeTerminal"

	purged, err := s.book.Purge(ctx, s.now().UTC().Add(-s.retention))
	if err != nil {
		return purged, fmt.Errorf("%s: %w", op, err)
	}
	if purged > 0 {
		zapLogger.Info(ctx, "terminal orders purged", zap.Int("orders", purged))
	}

	return purged, nil
}

func (s *Service) observeDepth() {
	depth := s.book.Depth()

	s.metrics.BookOrders.WithLabelValues(models.SideAsk.String()).Set(float64(depth.AskOrders))
	s.metrics.BookOrders.WithLabelValues(models.SideBid.String()).Set(float64(depth.BidOrders))
	s.metrics.BookLevels.WithLabelValues(models.SideAsk.String()).Set(float64(depth.AskLevels))
	s.metrics.BookLevels.WithLabelValues(models.SideBid.String()).Set(float64(depth.BidLevels))
	s.metrics.PendingOrders.Set(float64(depth.Pending))
}
