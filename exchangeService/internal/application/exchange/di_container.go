package exchange

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	clientLedger "github.com/gridcert/exchange/exchangeService/internal/client/ledger"
	"github.com/gridcert/exchange/exchangeService/internal/http/feed"
	"github.com/gridcert/exchange/exchangeService/internal/http/handlers"
	"github.com/gridcert/exchange/exchangeService/internal/http/router"
	"github.com/gridcert/exchange/exchangeService/internal/infrastructure/kafka"
	"github.com/gridcert/exchange/exchangeService/internal/infrastructure/postgres"
	infraRedis "github.com/gridcert/exchange/exchangeService/internal/infrastructure/redis"
	"github.com/gridcert/exchange/exchangeService/internal/metrics"
	"github.com/gridcert/exchange/exchangeService/internal/orderbook"
	svcLedger "github.com/gridcert/exchange/exchangeService/internal/services/ledger"
	svcOrder "github.com/gridcert/exchange/exchangeService/internal/services/order"
	svcPublication "github.com/gridcert/exchange/exchangeService/internal/services/publication"
	"github.com/gridcert/exchange/exchangeService/internal/storage/memory"
	"github.com/gridcert/exchange/shared/config"
)

const metricsNamespace = "exchange"

type ledgerStore interface {
	svcLedger.AccountStore
	svcLedger.AssetStore
	svcLedger.TransferStore
	svcLedger.PositionStore
}

// DiContainer builds the exchange services lazily. A nil dbPool keeps the
// ledger and trades in memory, a nil counter falls back to in-process rate
// limiting and a nil kafka publisher leaves trades on the websocket feed only.
type DiContainer struct {
	cfg       config.ExchangeConfig
	dbPool    *pgxpool.Pool
	counter   infraRedis.Counter
	bookStore orderbook.Store
	kafka     *kafka.TradePublisher

	metrics     *metrics.Metrics
	metricsOnce sync.Once

	book     *orderbook.Book
	bookOnce sync.Once

	ledgerService     *svcLedger.Service
	ledgerServiceOnce sync.Once

	tradeStore     svcOrder.TradeStore
	tradeStoreOnce sync.Once

	tradeFeed     *feed.Hub
	tradeFeedOnce sync.Once

	rateLimiters     svcOrder.RateLimiters
	rateLimitersOnce sync.Once

	orderService     *svcOrder.Service
	orderServiceOnce sync.Once

	publicationService     *svcPublication.Service
	publicationServiceOnce sync.Once
}

func NewDIContainer(
	cfg config.ExchangeConfig,
	dbPool *pgxpool.Pool,
	counter infraRedis.Counter,
	bookStore orderbook.Store,
	kafkaPublisher *kafka.TradePublisher,
) *DiContainer {
	if bookStore == nil {
		panic("bookStore is nil")
	}

	return &DiContainer{
		cfg:       cfg,
		dbPool:    dbPool,
		counter:   counter,
		bookStore: bookStore,
		kafka:     kafkaPublisher,
	}
}

func (d *DiContainer) Metrics() *metrics.Metrics {
	d.metricsOnce.Do(func() {
		d.metrics = metrics.PrometheusMetrics(metricsNamespace)
	})

	return d.metrics
}

func (d *DiContainer) Book() *orderbook.Book {
	d.bookOnce.Do(func() {
		d.book = orderbook.NewBook(d.bookStore)
	})

	return d.book
}

func (d *DiContainer) LedgerService() *svcLedger.Service {
	d.ledgerServiceOnce.Do(func() {
		var store ledgerStore
		if d.dbPool != nil {
			store = postgres.NewLedgerStore(d.dbPool)
		} else {
			store = memory.NewLedgerStore()
		}
		d.ledgerService = svcLedger.NewService(store, store, store, store)
	})

	return d.ledgerService
}

func (d *DiContainer) TradeStore() svcOrder.TradeStore {
	d.tradeStoreOnce.Do(func() {
		if d.dbPool != nil {
			d.tradeStore = postgres.NewTradeStore(d.dbPool)
		} else {
			d.tradeStore = memory.NewTradeStore()
		}
	})

	return d.tradeStore
}

func (d *DiContainer) TradeFeed() *feed.Hub {
	d.tradeFeedOnce.Do(func() {
		d.tradeFeed = feed.NewHub()
	})

	return d.tradeFeed
}

func (d *DiContainer) TradePublisher() svcOrder.TradePublisher {
	publishers := tradeFanOut{d.TradeFeed()}
	if d.kafka != nil {
		publishers = append(publishers, d.kafka)
	}

	return publishers
}

func (d *DiContainer) RateLimiters() svcOrder.RateLimiters {
	d.rateLimitersOnce.Do(func() {
		limits := d.cfg.RateLimiter

		if d.counter == nil {
			d.rateLimiters = svcOrder.RateLimiters{
				Create: memory.NewRateLimiter(limits.CreateOrder, limits.Window),
				Cancel: memory.NewRateLimiter(limits.CancelOrder, limits.Window),
			}
			return
		}

		d.rateLimiters = svcOrder.RateLimiters{
			Create: infraRedis.NewOrderRateLimiter(d.counter, limits.CreateOrder, limits.Window, limits.KeyPrefix+"create:"),
			Cancel: infraRedis.NewOrderRateLimiter(d.counter, limits.CancelOrder, limits.Window, limits.KeyPrefix+"cancel:"),
		}
	})

	return d.rateLimiters
}

func (d *DiContainer) OrderService(_ context.Context) *svcOrder.Service {
	d.orderServiceOnce.Do(func() {
		ledgerService := d.LedgerService()

		d.orderService = svcOrder.NewService(
			d.Book(),
			ledgerService,
			clientLedger.New(ledgerService, d.cfg.CircuitBreaker, d.cfg.CheckTimeout),
			d.TradeStore(),
			d.TradePublisher(),
			d.RateLimiters(),
			d.Metrics(),
			svcOrder.Config{
				CreateTimeout: d.cfg.CreateTimeout,
				Retention:     d.cfg.OrderRetention,
			},
		)
	})

	return d.orderService
}

func (d *DiContainer) PublicationService(ctx context.Context) *svcPublication.Service {
	d.publicationServiceOnce.Do(func() {
		d.publicationService = svcPublication.NewService(
			d.LedgerService(),
			d.OrderService(ctx),
			svcPublication.Config{
				PollInterval: d.cfg.Publication.PollInterval,
				Timeout:      d.cfg.Publication.Timeout,
				Retention:    d.cfg.Publication.Retention,
			},
		)
	})

	return d.publicationService
}

func (d *DiContainer) RouterConfig(ctx context.Context) *router.Config {
	return &router.Config{
		OrderHandler:       handlers.NewOrderHandler(d.OrderService(ctx)),
		LedgerHandler:      handlers.NewLedgerHandler(d.LedgerService()),
		PublicationHandler: handlers.NewPublicationHandler(d.PublicationService(ctx)),
		TradeFeed:          d.TradeFeed().Serve,
		Metrics:            d.Metrics().Handler(),
	}
}

// Close stops background publications and disconnects feed subscribers.
func (d *DiContainer) Close() {
	if d.publicationService != nil {
		d.publicationService.Close()
	}
	if d.tradeFeed != nil {
		d.tradeFeed.Close()
	}
}
