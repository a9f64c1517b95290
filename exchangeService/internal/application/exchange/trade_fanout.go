package exchange

import (
	"context"
	"errors"

	"github.com/gridcert/exchange/exchangeService/internal/domain/models"
	svcOrder "github.com/gridcert/exchange/exchangeService/internal/services/order"
)

// tradeFanOut hands every batch to each publisher and reports all failures.
type tradeFanOut []svcOrder.TradePublisher

func (f tradeFanOut) PublishTrades(ctx context.Context, trades []models.Trade) error {
	var errs []error
	for _, publisher := range f {
		if err := publisher.PublishTrades(ctx, trades); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
