package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/gridcert/exchange/exchangeService/internal/domain/models"
	"github.com/gridcert/exchange/exchangeService/internal/domain/product"
	"github.com/gridcert/exchange/exchangeService/internal/metrics"
	"github.com/gridcert/exchange/exchangeService/internal/orderbook"
)

type Service struct {
	book      Book
	ledger    Ledger
	balances  BalanceChecker
	trades    TradeStore
	publisher TradePublisher

	createRateLimiter RateLimiter
	cancelRateLimiter RateLimiter
	createTimeout     time.Duration
	retention         time.Duration

	metrics *metrics.Metrics
	tracer  trace.Tracer
	now     func() time.Time
}

type Book interface {
	Submit(ctx context.Context, order models.Order) (models.Order, []models.Trade, error)
	Cancel(ctx context.Context, orderID, userID uuid.UUID) (models.Order, error)
	Get(ctx context.Context, orderID uuid.UUID) (models.Order, error)
	UserOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	Search(filter product.Filter) orderbook.Snapshot
	Activate(ctx context.Context, now time.Time) ([]models.Order, []models.Trade, error)
	Purge(ctx context.Context, cutoff time.Time) (int, error)
	Depth() orderbook.Depth
}

type Ledger interface {
	GetAsset(ctx context.Context, assetID uuid.UUID) (models.Asset, error)
	Reserve(ctx context.Context, userID, assetID uuid.UUID, volume decimal.Decimal) error
	Release(ctx context.Context, userID, assetID uuid.UUID, volume decimal.Decimal) error
	Settle(ctx context.Context, trade models.Trade) error
}

type BalanceChecker interface {
	ConfirmedBalance(ctx context.Context, userID, assetID uuid.UUID) (decimal.Decimal, error)
}

type TradeStore interface {
	SaveTrade(ctx context.Context, trade models.Trade) error
	UserTrades(ctx context.Context, userID uuid.UUID) ([]models.Trade, error)
}

type TradePublisher interface {
	PublishTrades(ctx context.Context, trades []models.Trade) error
}

type RateLimiter interface {
	Allow(ctx context.Context, userID uuid.UUID) (bool, error)
}

type Config struct {
	CreateTimeout time.Duration
	// Retention is how long terminal orders are kept before Purge drops them.
	Retention time.Duration
}

type RateLimiters struct {
	Create RateLimiter
	Cancel RateLimiter
}

func NewService(
	book Book,
	ledger Ledger,
	balances BalanceChecker,
	trades TradeStore,
	publisher TradePublisher,
	limiters RateLimiters,
	m *metrics.Metrics,
	cfg Config,
) *Service {
	return &Service{
		book:              book,
		ledger:            ledger,
		balances:          balances,
		trades:            trades,
		publisher:         publisher,
		createRateLimiter: limiters.Create,
		cancelRateLimiter: limiters.Cancel,
		createTimeout:     cfg.CreateTimeout,
		retention:         cfg.Retention,
		metrics:           m,
		tracer:            otel.Tracer("github.com/gridcert/exchange/exchangeService/internal/services/order"),
		now:               time.Now,
	}
}
