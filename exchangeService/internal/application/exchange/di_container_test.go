package exchange

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridcert/exchange/exchangeService/internal/domain/models"
	infraRedis "github.com/gridcert/exchange/exchangeService/internal/infrastructure/redis"
	svcOrder "github.com/gridcert/exchange/exchangeService/internal/services/order"
	"github.com/gridcert/exchange/exchangeService/internal/storage/memory"
	"github.com/gridcert/exchange/shared/config"
)

func testConfig() config.ExchangeConfig {
	return config.ExchangeConfig{
		CreateTimeout:  time.Second,
		CheckTimeout:   time.Second,
		OrderRetention: time.Hour,
		RateLimiter: config.RateLimiterConfig{
			CreateOrder: 5,
			CancelOrder: 5,
			Window:      time.Minute,
			KeyPrefix:   "rate:order:",
		},
		CircuitBreaker: config.CircuitBreakerConfig{
			MaxRequests: 1,
			Interval:    time.Second,
			Timeout:     time.Second,
			MaxFailures: 3,
		},
		Publication: config.PublicationConfig{
			PollInterval: 10 * time.Millisecond,
			Timeout:      time.Second,
		},
	}
}

type countingCounter struct {
	calls atomic.Int64
}

func (c *countingCounter) Incr(_ context.Context, _ string) (int64, error) {
	return c.calls.Add(1), nil
}

func (c *countingCounter) Expire(_ context.Context, _ string, _ time.Duration) error {
	return nil
}

type recordingPublisher struct {
	batches int
	err     error
}

func (p *recordingPublisher) PublishTrades(_ context.Context, _ []models.Trade) error {
	p.batches++
	return p.err
}

func TestDiContainer(t *testing.T) {
	t.Run("сервисы создаются один раз", func(t *testing.T) {
		container := NewDIContainer(testConfig(), nil, nil, memory.NewOrderStore(), nil)
		t.Cleanup(container.Close)

		ctx := context.Background()
		assert.Same(t, container.OrderService(ctx), container.OrderService(ctx))
		assert.Same(t, container.LedgerService(), container.LedgerService())
		assert.Same(t, container.PublicationService(ctx), container.PublicationService(ctx))
		assert.Same(t, container.Book(), container.Book())
		assert.IsType(t, &memory.TradeStore{}, container.TradeStore())
	})

	t.Run("без redis используется локальный лимитер", func(t *testing.T) {
		container := NewDIContainer(testConfig(), nil, nil, memory.NewOrderStore(), nil)

		limiters := container.RateLimiters()
		assert.IsType(t, &memory.RateLimiter{}, limiters.Create)
		assert.IsType(t, &memory.RateLimiter{}, limiters.Cancel)
	})

	t.Run("с redis используется счетчик", func(t *testing.T) {
		counter := &countingCounter{}
		container := NewDIContainer(testConfig(), nil, counter, memory.NewOrderStore(), nil)

		limiters := container.RateLimiters()
		require.IsType(t, &infraRedis.OrderRateLimiter{}, limiters.Create)

		allowed, err := limiters.Create.Allow(context.Background(), uuid.New())
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.EqualValues(t, 1, counter.calls.Load())
	})

	t.Run("ошибка - без хранилища стакана", func(t *testing.T) {
		assert.Panics(t, func() {
			NewDIContainer(testConfig(), nil, nil, nil, nil)
		})
	})

	t.Run("сделки уходят в ленту", func(t *testing.T) {
		container := NewDIContainer(testConfig(), nil, nil, memory.NewOrderStore(), nil)
		t.Cleanup(container.Close)

		fanOut, ok := container.TradePublisher().(tradeFanOut)
		require.True(t, ok)
		require.Len(t, fanOut, 1)
		assert.Same(t, container.TradeFeed(), fanOut[0])
	})
}

func TestTradeFanOut(t *testing.T) {
	first := &recordingPublisher{err: errors.New("broker unavailable")}
	second := &recordingPublisher{}

	err := tradeFanOut{first, second}.PublishTrades(context.Background(), []models.Trade{{ID: uuid.New()}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker unavailable")
	assert.Equal(t, 1, first.batches)
	assert.Equal(t, 1, second.batches)
}

func TestJobRunner(t *testing.T) {
	var runs atomic.Int64
	var failures atomic.Int64

	runner := newJobRunner(
		job{name: "count", interval: 5 * time.Millisecond, fn: func(context.Context) (int, error) {
			return int(runs.Add(1)), nil
		}},
		job{name: "fail", interval: 5 * time.Millisecond, fn: func(context.Context) (int, error) {
			failures.Add(1)
			return 0, errors.New("store offline")
		}},
		job{name: "disabled", fn: func(context.Context) (int, error) {
			t.Error("disabled job must not run")
			return 0, nil
		}},
	)

	runner.Start(context.Background())

	require.Eventually(t, func() bool {
		return runs.Load() >= 3 && failures.Load() >= 3
	}, time.Second, 5*time.Millisecond)

	runner.Stop()
	stopped := runs.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, runs.Load())
}

var _ svcOrder.TradePublisher = tradeFanOut{}
