//go:build integration

package suite

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	pgContainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/gridcert/exchange/exchangeService/internal/domain/models"
	"github.com/gridcert/exchange/exchangeService/internal/http/feed"
	"github.com/gridcert/exchange/exchangeService/internal/http/handlers"
	"github.com/gridcert/exchange/exchangeService/internal/http/router"
	"github.com/gridcert/exchange/exchangeService/internal/infrastructure/postgres"
	"github.com/gridcert/exchange/exchangeService/internal/metrics"
	"github.com/gridcert/exchange/exchangeService/internal/orderbook"
	svcLedger "github.com/gridcert/exchange/exchangeService/internal/services/ledger"
	svcOrder "github.com/gridcert/exchange/exchangeService/internal/services/order"
	svcPublication "github.com/gridcert/exchange/exchangeService/internal/services/publication"
	"github.com/gridcert/exchange/exchangeService/internal/storage/memory"
	"github.com/gridcert/exchange/exchangeService/migrations"
	"github.com/gridcert/exchange/shared/infra/db/migrator"
	"github.com/gridcert/exchange/shared/middleware/userid"
)

const (
	dbUser     = "test_user"
	dbPassword = "test_password"
	dbName     = "exchange_test_db"

	DefaultCreateTimeout = 5 * time.Second
	LongTimeout          = 2 * time.Minute
	StartupTimeout       = 30 * time.Second
)

type Suite struct {
	Test      *testing.T
	Pool      *pgxpool.Pool
	Server    *httptest.Server
	Ledger    *svcLedger.Service
	Orders    *svcOrder.Service
	BookStore *postgres.OrderStore
}

// New starts postgres, applies migrations and serves the exchange API
// backed by the pgx stores.
func New(test *testing.T) (context.Context, *Suite) {
	test.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), LongTimeout)
	test.Cleanup(cancel)

	container, err := pgContainer.Run(ctx,
		"postgres:17.0-alpine3.20",
		pgContainer.WithDatabase(dbName),
		pgContainer.WithUsername(dbUser),
		pgContainer.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(StartupTimeout),
		),
	)
	if err != nil {
		test.Fatalf("failed to start postgres container: %v", err)
	}
	test.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			test.Logf("failed to terminate postgres container: %v", err)
		}
	})

	connection, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		test.Fatalf("failed to get connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connection)
	if err != nil {
		test.Fatalf("failed to create pgxpool: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		test.Fatalf("failed to ping postgres: %v", err)
	}
	test.Cleanup(pool.Close)

	sqlDB := stdlib.OpenDBFromPool(pool)
	test.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := migrator.NewMigrator(sqlDB, migrations.Migrations).Up(ctx); err != nil {
		test.Fatalf("failed to run migrations: %v", err)
	}

	st := &Suite{
		Test:      test,
		Pool:      pool,
		BookStore: postgres.NewOrderStore(pool),
	}
	st.serve()

	return ctx, st
}

// Restart rebuilds the services over the same database, as a process
// restart would, and returns how many orders the book reloaded.
func (s *Suite) Restart(ctx context.Context) int {
	s.Test.Helper()

	s.Server.Close()
	restored := s.serve()

	count, err := restored.Restore(ctx)
	if err != nil {
		s.Test.Fatalf("failed to restore book: %v", err)
	}

	return count
}

func (s *Suite) serve() *orderbook.Book {
	gin.SetMode(gin.TestMode)

	ledgerStore := postgres.NewLedgerStore(s.Pool)
	s.Ledger = svcLedger.NewService(ledgerStore, ledgerStore, ledgerStore, ledgerStore)

	book := orderbook.NewBook(s.BookStore)
	hub := feed.NewHub()
	limiter := memory.NewRateLimiter(1000, time.Second)

	s.Orders = svcOrder.NewService(
		book,
		s.Ledger,
		s.Ledger,
		postgres.NewTradeStore(s.Pool),
		hub,
		svcOrder.RateLimiters{Create: limiter, Cancel: limiter},
		metrics.NopMetrics(),
		svcOrder.Config{CreateTimeout: DefaultCreateTimeout, Retention: time.Hour},
	)

	publications := svcPublication.NewService(s.Ledger, s.Orders, svcPublication.Config{
		PollInterval: 20 * time.Millisecond,
		Timeout:      10 * time.Second,
	})

	s.Server = httptest.NewServer(router.NewRouter(&router.Config{
		OrderHandler:       handlers.NewOrderHandler(s.Orders),
		LedgerHandler:      handlers.NewLedgerHandler(s.Ledger),
		PublicationHandler: handlers.NewPublicationHandler(publications),
		TradeFeed:          hub.Serve,
	}))
	s.Test.Cleanup(func() {
		publications.Close()
		hub.Close()
		s.Server.Close()
	})

	return book
}

// Do sends body as JSON on behalf of userID and decodes the response into out
// when out is not nil. It returns the status code.
func (s *Suite) Do(method, path string, userID uuid.UUID, body, out any) int {
	s.Test.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			s.Test.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	request, err := http.NewRequest(method, s.Server.URL+path, reader)
	if err != nil {
		s.Test.Fatalf("failed to build request: %v", err)
	}
	request.Header.Set("Content-Type", "application/json")
	if userID != uuid.Nil {
		request.Header.Set(userid.HeaderKey, userID.String())
	}

	response, err := s.Server.Client().Do(request)
	if err != nil {
		s.Test.Fatalf("request %s %s failed: %v", method, path, err)
	}
	defer response.Body.Close()

	if out != nil && response.StatusCode < http.StatusBadRequest {
		if err := json.NewDecoder(response.Body).Decode(out); err != nil {
			s.Test.Fatalf("failed to decode %s %s: %v", method, path, err)
		}
	}

	return response.StatusCode
}

// DepositConfirmed credits userID with amount of a fresh asset through the
// ledger and returns the asset.
func (s *Suite) DepositConfirmed(ctx context.Context, userID uuid.UUID, amount int64) models.Asset {
	s.Test.Helper()

	account, err := s.Ledger.GetOrCreateAccount(ctx, userID)
	if err != nil {
		s.Test.Fatalf("failed to create account: %v", err)
	}

	hash := gofakeit.HexUint256()
	transfer, err := s.Ledger.CreateDeposit(ctx, svcLedger.DepositRequest{
		Address:         account.Address,
		TransactionHash: hash,
		Amount:          decimal.NewFromInt(amount),
		Asset:           NewAsset(),
	})
	if err != nil {
		s.Test.Fatalf("failed to create deposit: %v", err)
	}

	if _, err := s.Ledger.ConfirmTransfer(ctx, hash, int64(gofakeit.Uint32())); err != nil {
		s.Test.Fatalf("failed to confirm deposit: %v", err)
	}

	return transfer.Asset
}

func (s *Suite) ClearTables(ctx context.Context) {
	s.Test.Helper()

	if _, err := s.Pool.Exec(ctx,
		"TRUNCATE trades, orders, positions, transfers, assets, accounts",
	); err != nil {
		s.Test.Fatalf("failed to clear tables: %v", err)
	}
}

func (s *Suite) CountOrders(ctx context.Context) int {
	s.Test.Helper()

	var count int
	if err := s.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM orders").Scan(&count); err != nil {
		s.Test.Fatalf("failed to count orders: %v", err)
	}

	return count
}

func (s *Suite) CountTrades(ctx context.Context) int {
	s.Test.Helper()

	var count int
	if err := s.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM trades").Scan(&count); err != nil {
		s.Test.Fatalf("failed to count trades: %v", err)
	}

	return count
}

func (s *Suite) OrderExistsInDB(ctx context.Context, orderID uuid.UUID) bool {
	s.Test.Helper()

	var exists bool
	err := s.Pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)", orderID,
	).Scan(&exists)

	if err != nil {
		s.Test.Fatalf("failed to check order existence: %v", err)
	}

	return exists
}

func NewAsset() models.Asset {
	from := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

	return models.Asset{
		Address:        gofakeit.HexUint128(),
		TokenID:        gofakeit.Numerify("###"),
		DeviceID:       gofakeit.UUID(),
		GenerationFrom: from,
		GenerationTo:   from.AddDate(0, 1, 0),
		DeviceType:     []string{"Solar;Photovoltaic"},
		Location:       []string{"Thailand;Central"},
	}
}
