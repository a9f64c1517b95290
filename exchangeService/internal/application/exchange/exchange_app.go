package exchange

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	grpcRecovery "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/gridcert/exchange/exchangeService/internal/http/router"
	"github.com/gridcert/exchange/exchangeService/internal/infrastructure/kafka"
	"github.com/gridcert/exchange/exchangeService/internal/infrastructure/postgres"
	"github.com/gridcert/exchange/exchangeService/internal/orderbook"
	"github.com/gridcert/exchange/exchangeService/internal/storage/memory"
	"github.com/gridcert/exchange/exchangeService/internal/storage/pebble"
	"github.com/gridcert/exchange/exchangeService/migrations"
	"github.com/gridcert/exchange/shared/config"
	"github.com/gridcert/exchange/shared/infra/db"
	"github.com/gridcert/exchange/shared/infra/health"
	sharedRedis "github.com/gridcert/exchange/shared/infra/redis"
	"github.com/gridcert/exchange/shared/infra/tracing"
	zapLogger "github.com/gridcert/exchange/shared/logger/zap"
)

const readHeaderTimeout = 5 * time.Second

func Run(ctx context.Context, cfg config.ExchangeConfig) {
	app := fx.New(
		fx.Provide(
			func() context.Context {
				return ctx
			},
			func() config.ExchangeConfig {
				return cfg
			}),
		fx.Provide(
			provideDBPool,
			provideRedisClient,
			provideBookStore,
			provideKafkaPublisher,
			provideContainer,
			provideHTTPServer,
			provideHealthServer,
		),
		fx.Invoke(
			registerLogger,
			registerTracing,
			restoreBook,
			startJobs,
			startHTTPServer,
			startHealthServer,
		),
	)

	app.Run()
}

func registerLogger(lifeCycle fx.Lifecycle, cfg config.ExchangeConfig) error {
	if err := zapLogger.Init(cfg.LogLevel, cfg.LogFormat == "json"); err != nil {
		return err
	}

	lifeCycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			zapLogger.Sync()

			return nil
		},
	})

	return nil
}

func registerTracing(ctx context.Context, lifeCycle fx.Lifecycle, cfg config.ExchangeConfig) error {
	provider, err := tracing.Setup(ctx, cfg.Tracing)
	if err != nil {
		return fmt.Errorf("tracing.Setup: %w", err)
	}

	lifeCycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return provider.Shutdown(ctx)
		},
	})

	return nil
}

// provideDBPool returns nil when no database is configured.
func provideDBPool(
	ctx context.Context,
	lifeCycle fx.Lifecycle,
	cfg config.ExchangeConfig,
) (*pgxpool.Pool, error) {
	if cfg.DBURI == "" {
		return nil, nil
	}

	pool, err := db.SetupDB(ctx, cfg.DBURI, migrations.Migrations)
	if err != nil {
		return nil, fmt.Errorf("db.SetupDB: %w", err)
	}

	lifeCycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			pool.Close()
			return nil
		},
	})

	return pool, nil
}

// provideRedisClient returns nil when redis is disabled.
func provideRedisClient(lifeCycle fx.Lifecycle, cfg config.ExchangeConfig) sharedRedis.RedisClient {
	if !cfg.Redis.Enabled {
		return nil
	}

	client := sharedRedis.NewClient(cfg.Redis, zapLogger.Named("redis"))

	lifeCycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx); err != nil {
				return fmt.Errorf("redis ping %s: %w", cfg.Redis.Address(), err)
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return client
}

func provideBookStore(
	lifeCycle fx.Lifecycle,
	cfg config.ExchangeConfig,
	pool *pgxpool.Pool,
) (orderbook.Store, error) {
	switch cfg.BookStore {
	case config.BookStorePebble:
		store, err := pebble.Open(cfg.PebbleDir)
		if err != nil {
			return nil, err
		}

		lifeCycle.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return store.Close()
			},
		})

		return store, nil
	case config.BookStorePostgres:
		if pool == nil {
			return nil, errors.New("postgres book store requires db_uri")
		}
		return postgres.NewOrderStore(pool), nil
	default:
		return memory.NewOrderStore(), nil
	}
}

// provideKafkaPublisher returns nil when kafka is disabled.
func provideKafkaPublisher(lifeCycle fx.Lifecycle, cfg config.ExchangeConfig) (*kafka.TradePublisher, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}

	publisher, err := kafka.New(cfg.Kafka.Brokers, cfg.Kafka.TradesTopic)
	if err != nil {
		return nil, fmt.Errorf("kafka.New: %w", err)
	}

	lifeCycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return publisher.Close()
		},
	})

	return publisher, nil
}

func provideContainer(
	lifeCycle fx.Lifecycle,
	cfg config.ExchangeConfig,
	pool *pgxpool.Pool,
	redisClient sharedRedis.RedisClient,
	bookStore orderbook.Store,
	kafkaPublisher *kafka.TradePublisher,
) *DiContainer {
	container := NewDIContainer(cfg, pool, redisClient, bookStore, kafkaPublisher)

	lifeCycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			container.Close()
			return nil
		},
	})

	return container
}

func provideHTTPServer(
	ctx context.Context,
	lifeCycle fx.Lifecycle,
	cfg config.ExchangeConfig,
	container *DiContainer,
) *http.Server {
	server := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           router.NewRouter(container.RouterConfig(ctx)),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	lifeCycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return server.Shutdown(ctx)
		},
	})

	return server
}

func provideHealthServer(
	lifeCycle fx.Lifecycle,
	pool *pgxpool.Pool,
	redisClient sharedRedis.RedisClient,
) *grpc.Server {
	probes := map[string]health.Probe{}
	if pool != nil {
		probes["postgres"] = pool.Ping
	}
	if redisClient != nil {
		probes["redis"] = redisClient.Ping
	}

	recoverer := grpcRecovery.WithRecoveryHandlerContext(func(ctx context.Context, p any) error {
		zapLogger.Error(ctx, "panic in gRPC handler", zap.Any("panic", p))
		return status.Error(codes.Internal, "internal error")
	})

	server := grpc.NewServer(
		grpc.ChainUnaryInterceptor(grpcRecovery.UnaryServerInterceptor(recoverer)),
		grpc.ChainStreamInterceptor(grpcRecovery.StreamServerInterceptor(recoverer)),
	)
	reflection.Register(server)
	health.RegisterService(server, probes)

	lifeCycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			server.GracefulStop()
			return nil
		},
	})

	return server
}

// restoreBook reloads resting and pending orders before the servers start.
func restoreBook(lifeCycle fx.Lifecycle, container *DiContainer) {
	lifeCycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			restored, err := container.Book().Restore(ctx)
			if err != nil {
				return fmt.Errorf("orderbook.Restore: %w", err)
			}

			zapLogger.Info(ctx, "order book restored", zap.Int("orders", restored))
			return nil
		},
	})
}

func startJobs(
	ctx context.Context,
	lifeCycle fx.Lifecycle,
	cfg config.ExchangeConfig,
	container *DiContainer,
) {
	orders := container.OrderService(ctx)
	publications := container.PublicationService(ctx)
	runner := newJobRunner(
		job{name: "activate pending orders", interval: cfg.ActivationInterval, fn: orders.ActivatePending},
		job{name: "purge terminal orders", interval: cfg.PurgeInterval, fn: orders.PurgeTerminal},
		job{name: "purge final publications", interval: cfg.PurgeInterval, fn: publications.Purge},
	)

	lifeCycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			runner.Start(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			runner.Stop()
			return nil
		},
	})
}

func startHTTPServer(lifeCycle fx.Lifecycle, server *http.Server) {
	lifeCycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			listener, err := net.Listen("tcp", server.Addr)
			if err != nil {
				return fmt.Errorf("net.Listen: %w", err)
			}

			zapLogger.Info(ctx, fmt.Sprintf("Starting HTTP exchange server on %s", listener.Addr()))
			go func() {
				if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
					zapLogger.Error(context.Background(), "HTTP exchange server error", zap.Error(err))
				}
			}()

			return nil
		},
	})
}

func startHealthServer(lifeCycle fx.Lifecycle, cfg config.ExchangeConfig, server *grpc.Server) {
	lifeCycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			listener, err := net.Listen("tcp", cfg.HealthAddress)
			if err != nil {
				return fmt.Errorf("net.Listen: %w", err)
			}

			zapLogger.Info(ctx, fmt.Sprintf("Starting gRPC health server on %s", listener.Addr()))
			go func() {
				if err := server.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
					zapLogger.Error(context.Background(), "gRPC health server error", zap.Error(err))
				}
			}()

			return nil
		},
	})
}
