package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/gridcert/exchange/shared/config"
	serviceErrors "github.com/gridcert/exchange/shared/errors/service"
	zapLogger "github.com/gridcert/exchange/shared/logger/zap"
)

type BalanceSource interface {
	ConfirmedBalance(ctx context.Context, userID, assetID uuid.UUID) (decimal.Decimal, error)
}

// Client guards balance lookups with a timeout and a circuit breaker so a
// struggling ledger fails ask submission fast instead of piling up requests.
type Client struct {
	source         BalanceSource
	timeout        time.Duration
	circuitBreaker *gobreaker.CircuitBreaker[decimal.Decimal]
}

func New(source BalanceSource, cfg config.CircuitBreakerConfig, timeout time.Duration) *Client {
	circuitBreaker := gobreaker.NewCircuitBreaker[decimal.Decimal](gobreaker.Settings{
		Name:        "ledger",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			zapLogger.Warn(context.Background(), "circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Client{
		source:         source,
		timeout:        timeout,
		circuitBreaker: circuitBreaker,
	}
}

func (c *Client) ConfirmedBalance(ctx context.Context, userID, assetID uuid.UUID) (decimal.Decimal, error) {
	balance, err := c.circuitBreaker.Execute(func() (decimal.Decimal, error) {
		ctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		balance, err := c.source.ConfirmedBalance(ctx, userID, assetID)
		if err != nil {
			zapLogger.Error(ctx, "ConfirmedBalance failed", zap.Error(err))

			return decimal.Zero, err
		}

		return balance, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return decimal.Zero, fmt.Errorf("circuit breaker: %w", serviceErrors.ErrLedgerUnavailable)
		}

		return decimal.Zero, fmt.Errorf("circuit breaker: %w", err)
	}

	return balance, nil
}
