package order

import (
	"context"
	"errors"
	"testing"
	"time"

	fakeValue "github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gridcert/exchange/exchangeService/internal/domain/models"
	"github.com/gridcert/exchange/exchangeService/internal/domain/product"
	"github.com/gridcert/exchange/exchangeService/internal/metrics"
	"github.com/gridcert/exchange/exchangeService/internal/orderbook"
	"github.com/gridcert/exchange/exchangeService/internal/services/mocks"
	serviceErrors "github.com/gridcert/exchange/shared/errors/service"
)

type orderMocks struct {
	book      *mocks.MockBook
	ledger    *mocks.MockLedger
	balances  *mocks.MockBalanceChecker
	trades    *mocks.MockTradeStore
	publisher *mocks.MockTradePublisher
	create    *mocks.MockRateLimiter
	cancel    *mocks.MockRateLimiter
}

func newOrderMocks() orderMocks {
	m := orderMocks{
		book:      new(mocks.MockBook),
		ledger:    new(mocks.MockLedger),
		balances:  new(mocks.MockBalanceChecker),
		trades:    new(mocks.MockTradeStore),
		publisher: new(mocks.MockTradePublisher),
		create:    new(mocks.MockRateLimiter),
		cancel:    new(mocks.MockRateLimiter),
	}
	m.book.On("Depth").Return(orderbook.Depth{}).Maybe()

	return m
}

func (m orderMocks) service() *Service {
	return NewService(
		m.book,
		m.ledger,
		m.balances,
		m.trades,
		m.publisher,
		RateLimiters{Create: m.create, Cancel: m.cancel},
		metrics.NopMetrics(),
		Config{CreateTimeout: time.Second, Retention: 24 * time.Hour},
	)
}

func (m orderMocks) assertExpectations(t *testing.T) {
	m.book.AssertExpectations(t)
	m.ledger.AssertExpectations(t)
	m.balances.AssertExpectations(t)
	m.trades.AssertExpectations(t)
	m.publisher.AssertExpectations(t)
	m.create.AssertExpectations(t)
	m.cancel.AssertExpectations(t)
}

func checkErr(t *testing.T, err, expectedErr error, expectedErrMsg string) {
	t.Helper()

	if expectedErr != nil || expectedErrMsg != "" {
		require.Error(t, err)

		if expectedErr != nil {
			assert.ErrorIs(t, err, expectedErr)
		}
		if expectedErrMsg != "" {
			assert.ErrorContains(t, err, expectedErrMsg)
		}
		return
	}

	require.NoError(t, err)
}

func TestCreateAsk(t *testing.T) {
	fakeValue.Seed(time.Now().UnixNano())

	userID := uuid.New()
	buyerID := uuid.New()
	asset := models.Asset{
		ID:             uuid.New(),
		Address:        "0x" + fakeValue.LetterN(40),
		TokenID:        fakeValue.Numerify("###"),
		GenerationFrom: time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
		GenerationTo:   time.Date(2020, time.January, 31, 0, 0, 0, 0, time.UTC),
		DeviceType:     []string{"Solar"},
	}
	price := int64(fakeValue.IntRange(1, 10_000))
	volume := decimal.NewFromInt(int64(fakeValue.IntRange(10, 1000)))

	request := AskRequest{
		UserID:  userID,
		AssetID: asset.ID,
		Price:   price,
		Volume:  volume,
	}
	placed := models.Order{
		ID:            uuid.New(),
		Side:          models.SideAsk,
		Price:         price,
		StartVolume:   volume,
		CurrentVolume: volume,
		Product:       asset.Product(),
		UserID:        userID,
		AssetID:       asset.ID,
		Status:        models.StatusActive,
	}
	trade := models.Trade{
		ID:       uuid.New(),
		Volume:   decimal.NewFromInt(5),
		Price:    price,
		AskID:    placed.ID,
		BidID:    uuid.New(),
		AssetID:  asset.ID,
		BuyerID:  buyerID,
		SellerID: userID,
	}

	acceptedUpToBook := func(m orderMocks) {
		m.create.On("Allow", mock.Anything, userID).Return(true, nil)
		m.ledger.On("GetAsset", mock.Anything, asset.ID).Return(asset, nil)
		m.balances.On("ConfirmedBalance", mock.Anything, userID, asset.ID).Return(volume, nil)
		m.ledger.On("Reserve", mock.Anything, userID, asset.ID, volume).Return(nil)
	}
	isAsk := mock.MatchedBy(func(order models.Order) bool {
		return order.Side == models.SideAsk &&
			order.AssetID == asset.ID &&
			order.UserID == userID &&
			order.StartVolume.Equal(volume) &&
			len(order.Product.DeviceType) == 1 && order.Product.DeviceType[0] == "Solar"
	})

	tests := []struct {
		name           string
		request        AskRequest
		setupMocks     func(m orderMocks)
		expectedErr    error
		expectedErrMsg string
		checkResult    func(t *testing.T, order models.Order, trades []models.Trade)
	}{
		{
			name:    "успешное создание ордера на продажу",
			request: request,
			setupMocks: func(m orderMocks) {
				acceptedUpToBook(m)
				m.book.On("Submit", mock.Anything, isAsk).Return(placed, nil, nil)
			},
			checkResult: func(t *testing.T, order models.Order, trades []models.Trade) {
				assert.Equal(t, placed.ID, order.ID)
				assert.Empty(t, trades)
			},
		},
		{
			name:    "встречная сделка рассчитывается и публикуется",
			request: request,
			setupMocks: func(m orderMocks) {
				acceptedUpToBook(m)
				m.book.On("Submit", mock.Anything, isAsk).Return(placed, []models.Trade{trade}, nil)
				m.ledger.On("Settle", mock.Anything, trade).Return(nil)
				m.trades.On("SaveTrade", mock.Anything, trade).Return(nil)
				m.publisher.On("PublishTrades", mock.Anything, []models.Trade{trade}).Return(nil)
			},
			checkResult: func(t *testing.T, order models.Order, trades []models.Trade) {
				require.Len(t, trades, 1)
				assert.Equal(t, trade.ID, trades[0].ID)
			},
		},
		{
			name:    "ошибка публикации не прерывает создание",
			request: request,
			setupMocks: func(m orderMocks) {
				acceptedUpToBook(m)
				m.book.On("Submit", mock.Anything, isAsk).Return(placed, []models.Trade{trade}, nil)
				m.ledger.On("Settle", mock.Anything, trade).Return(nil)
				m.trades.On("SaveTrade", mock.Anything, trade).Return(nil)
				m.publisher.On("PublishTrades", mock.Anything, []models.Trade{trade}).
					Return(errors.New("broker unavailable"))
			},
		},
		{
			name:    "ошибка - расчет сделки не удался",
			request: request,
			setupMocks: func(m orderMocks) {
				acceptedUpToBook(m)
				m.book.On("Submit", mock.Anything, isAsk).Return(placed, []models.Trade{trade}, nil)
				m.ledger.On("Settle", mock.Anything, trade).Return(errors.New("deadlock detected"))
				m.publisher.On("PublishTrades", mock.Anything, []models.Trade{trade}).Return(nil)
			},
			expectedErrMsg: "deadlock detected",
			checkResult: func(t *testing.T, order models.Order, trades []models.Trade) {
				assert.Equal(t, placed.ID, order.ID)
				assert.Len(t, trades, 1)
			},
		},
		{
			name:    "ошибка - превышен лимит запросов",
			request: request,
			setupMocks: func(m orderMocks) {
				m.create.On("Allow", mock.Anything, userID).Return(false, nil)
			},
			expectedErr: serviceErrors.ErrRateLimitExceeded,
		},
		{
			name:    "ошибка - лимитер недоступен",
			request: request,
			setupMocks: func(m orderMocks) {
				m.create.On("Allow", mock.Anything, userID).Return(false, errors.New("redis timeout"))
			},
			expectedErrMsg: "Service.CreateAsk: redis timeout",
		},
		{
			name: "ошибка - нулевой объем",
			request: AskRequest{
				UserID:  userID,
				AssetID: asset.ID,
				Price:   price,
				Volume:  decimal.Zero,
			},
			setupMocks: func(m orderMocks) {
				m.create.On("Allow", mock.Anything, userID).Return(true, nil)
			},
			expectedErr: serviceErrors.ErrInvalidOrder,
		},
		{
			name: "ошибка - неположительная цена",
			request: AskRequest{
				UserID:  userID,
				AssetID: asset.ID,
				Price:   0,
				Volume:  volume,
			},
			setupMocks: func(m orderMocks) {
				m.create.On("Allow", mock.Anything, userID).Return(true, nil)
			},
			expectedErr: serviceErrors.ErrInvalidOrder,
		},
		{
			name:    "ошибка - актив не депонирован",
			request: request,
			setupMocks: func(m orderMocks) {
				m.create.On("Allow", mock.Anything, userID).Return(true, nil)
				m.ledger.On("GetAsset", mock.Anything, asset.ID).
					Return(models.Asset{}, serviceErrors.ErrAssetNotAvailable)
			},
			expectedErr: serviceErrors.ErrAssetNotAvailable,
		},
		{
			name:    "ошибка - недостаточно подтвержденного баланса",
			request: request,
			setupMocks: func(m orderMocks) {
				m.create.On("Allow", mock.Anything, userID).Return(true, nil)
				m.ledger.On("GetAsset", mock.Anything, asset.ID).Return(asset, nil)
				m.balances.On("ConfirmedBalance", mock.Anything, userID, asset.ID).
					Return(volume.Sub(decimal.NewFromInt(1)), nil)
			},
			expectedErr: serviceErrors.ErrInsufficientBalance,
		},
		{
			name:    "ошибка - реестр недоступен",
			request: request,
			setupMocks: func(m orderMocks) {
				m.create.On("Allow", mock.Anything, userID).Return(true, nil)
				m.ledger.On("GetAsset", mock.Anything, asset.ID).Return(asset, nil)
				m.balances.On("ConfirmedBalance", mock.Anything, userID, asset.ID).
					Return(decimal.Zero, serviceErrors.ErrLedgerUnavailable)
			},
			expectedErr: serviceErrors.ErrLedgerUnavailable,
		},
		{
			name:    "ошибка - книга отклонила ордер, резерв снимается",
			request: request,
			setupMocks: func(m orderMocks) {
				acceptedUpToBook(m)
				m.book.On("Submit", mock.Anything, isAsk).
					Return(models.Order{}, nil, &orderbook.RejectedError{Reason: "duplicate order id"})
				m.ledger.On("Release", mock.Anything, userID, asset.ID, volume).Return(nil)
			},
			expectedErr:    serviceErrors.ErrOrderRejected,
			expectedErrMsg: "duplicate order id",
		},
		{
			name:    "ошибка - хранилище отказало посреди исполнения, остаток освобождается",
			request: request,
			setupMocks: func(m orderMocks) {
				acceptedUpToBook(m)
				abandoned := placed
				abandoned.CurrentVolume = volume.Sub(trade.Volume)
				abandoned.Status = models.StatusCancelled
				m.book.On("Submit", mock.Anything, isAsk).
					Return(abandoned, []models.Trade{trade}, errors.New("store is down"))
				m.ledger.On("Settle", mock.Anything, trade).Return(nil)
				m.trades.On("SaveTrade", mock.Anything, trade).Return(nil)
				m.publisher.On("PublishTrades", mock.Anything, []models.Trade{trade}).Return(nil)
				m.ledger.On("Release", mock.Anything, userID, asset.ID, volume.Sub(trade.Volume)).Return(nil)
			},
			expectedErrMsg: "store is down",
			checkResult: func(t *testing.T, order models.Order, trades []models.Trade) {
				assert.Equal(t, models.StatusCancelled, order.Status)
				assert.Len(t, trades, 1)
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m := newOrderMocks()
			test.setupMocks(m)

			order, trades, err := m.service().CreateAsk(context.Background(), test.request)

			checkErr(t, err, test.expectedErr, test.expectedErrMsg)
			if test.checkResult != nil {
				test.checkResult(t, order, trades)
			}

			m.assertExpectations(t)
		})
	}
}

func TestCreateBid(t *testing.T) {
	userID := uuid.New()
	volume := decimal.NewFromInt(int64(fakeValue.IntRange(1, 1000)))
	wanted := product.Product{DeviceType: []string{"Wind"}, Location: []string{"Thailand"}}

	tests := []struct {
		name           string
		request        BidRequest
		setupMocks     func(m orderMocks)
		expectedErr    error
		invalidProduct bool
	}{
		{
			name: "успешное создание ордера на покупку",
			request: BidRequest{
				UserID:  userID,
				Price:   100,
				Volume:  volume,
				Product: wanted,
			},
			setupMocks: func(m orderMocks) {
				m.create.On("Allow", mock.Anything, userID).Return(true, nil)
				m.book.On("Submit", mock.Anything, mock.MatchedBy(func(order models.Order) bool {
					return order.Side == models.SideBid && order.Product.DeviceType[0] == "Wind"
				})).Return(models.Order{ID: uuid.New(), Side: models.SideBid}, nil, nil)
			},
		},
		{
			name: "ошибка - неизвестный тип устройства",
			request: BidRequest{
				UserID:  userID,
				Price:   100,
				Volume:  volume,
				Product: product.Product{DeviceType: []string{"LOL"}},
			},
			setupMocks: func(m orderMocks) {
				m.create.On("Allow", mock.Anything, userID).Return(true, nil)
			},
			invalidProduct: true,
		},
		{
			name: "ошибка - отрицательный объем",
			request: BidRequest{
				UserID: userID,
				Price:  100,
				Volume: decimal.NewFromInt(-1),
			},
			setupMocks: func(m orderMocks) {
				m.create.On("Allow", mock.Anything, userID).Return(true, nil)
			},
			expectedErr: serviceErrors.ErrInvalidOrder,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m := newOrderMocks()
			test.setupMocks(m)

			_, _, err := m.service().CreateBid(context.Background(), test.request)

			if test.invalidProduct {
				var validationErr *product.ValidationError
				assert.ErrorAs(t, err, &validationErr)
			} else {
				checkErr(t, err, test.expectedErr, "")
			}

			m.assertExpectations(t)
		})
	}
}

func TestDirectBuy(t *testing.T) {
	userID := uuid.New()
	askID := uuid.New()
	askProduct := product.Product{DeviceType: []string{"Hydro"}}

	tests := []struct {
		name        string
		setupMocks  func(m orderMocks)
		expectedErr error
	}{
		{
			name: "успешная прямая покупка",
			setupMocks: func(m orderMocks) {
				m.create.On("Allow", mock.Anything, userID).Return(true, nil)
				m.book.On("Get", mock.Anything, askID).
					Return(models.Order{ID: askID, Side: models.SideAsk, Product: askProduct}, nil)
				m.book.On("Submit", mock.Anything, mock.MatchedBy(func(order models.Order) bool {
					return order.DirectBuyID == askID && order.Side == models.SideBid &&
						order.Product.DeviceType[0] == "Hydro"
				})).Return(models.Order{ID: uuid.New(), Status: models.StatusFilled}, nil, nil)
			},
		},
		{
			name: "ошибка - ордер на продажу не найден",
			setupMocks: func(m orderMocks) {
				m.create.On("Allow", mock.Anything, userID).Return(true, nil)
				m.book.On("Get", mock.Anything, askID).Return(models.Order{}, orderbook.ErrOrderNotFound)
			},
			expectedErr: serviceErrors.ErrOrderNotFound,
		},
		{
			name: "ошибка - цель является ордером на покупку",
			setupMocks: func(m orderMocks) {
				m.create.On("Allow", mock.Anything, userID).Return(true, nil)
				m.book.On("Get", mock.Anything, askID).
					Return(models.Order{ID: askID, Side: models.SideBid}, nil)
			},
			expectedErr: serviceErrors.ErrOrderNotFound,
		},
		{
			name: "ошибка - цена ниже цены продажи",
			setupMocks: func(m orderMocks) {
				m.create.On("Allow", mock.Anything, userID).Return(true, nil)
				m.book.On("Get", mock.Anything, askID).
					Return(models.Order{ID: askID, Side: models.SideAsk, Product: askProduct}, nil)
				m.book.On("Submit", mock.Anything, mock.Anything).
					Return(models.Order{}, nil, &orderbook.RejectedError{Reason: "direct buy price is below the ask price"})
			},
			expectedErr: serviceErrors.ErrOrderRejected,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m := newOrderMocks()
			test.setupMocks(m)

			_, _, err := m.service().DirectBuy(context.Background(), DirectBuyRequest{
				UserID: userID,
				AskID:  askID,
				Price:  100,
				Volume: decimal.NewFromInt(1),
			})

			checkErr(t, err, test.expectedErr, "")
			m.assertExpectations(t)
		})
	}
}

func TestCancelOrder(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()
	assetID := uuid.New()
	remaining := decimal.NewFromInt(7)

	tests := []struct {
		name        string
		setupMocks  func(m orderMocks)
		expectedErr error
	}{
		{
			name: "отмена продажи возвращает резерв",
			setupMocks: func(m orderMocks) {
				m.cancel.On("Allow", mock.Anything, userID).Return(true, nil)
				m.book.On("Cancel", mock.Anything, orderID, userID).Return(models.Order{
					ID:            orderID,
					Side:          models.SideAsk,
					UserID:        userID,
					AssetID:       assetID,
					CurrentVolume: remaining,
					Status:        models.StatusCancelled,
				}, nil)
				m.ledger.On("Release", mock.Anything, userID, assetID, remaining).Return(nil)
			},
		},
		{
			name: "отмена покупки не трогает реестр",
			setupMocks: func(m orderMocks) {
				m.cancel.On("Allow", mock.Anything, userID).Return(true, nil)
				m.book.On("Cancel", mock.Anything, orderID, userID).Return(models.Order{
					ID:     orderID,
					Side:   models.SideBid,
					UserID: userID,
					Status: models.StatusCancelled,
				}, nil)
			},
		},
		{
			name: "ошибка - ордер не найден",
			setupMocks: func(m orderMocks) {
				m.cancel.On("Allow", mock.Anything, userID).Return(true, nil)
				m.book.On("Cancel", mock.Anything, orderID, userID).
					Return(models.Order{}, orderbook.ErrOrderNotFound)
			},
			expectedErr: serviceErrors.ErrOrderNotFound,
		},
		{
			name: "ошибка - чужой ордер",
			setupMocks: func(m orderMocks) {
				m.cancel.On("Allow", mock.Anything, userID).Return(true, nil)
				m.book.On("Cancel", mock.Anything, orderID, userID).
					Return(models.Order{}, orderbook.ErrNotOwner)
			},
			expectedErr: serviceErrors.ErrNotOrderOwner,
		},
		{
			name: "ошибка - превышен лимит отмен",
			setupMocks: func(m orderMocks) {
				m.cancel.On("Allow", mock.Anything, userID).Return(false, nil)
			},
			expectedErr: serviceErrors.ErrRateLimitExceeded,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m := newOrderMocks()
			test.setupMocks(m)

			_, err := m.service().CancelOrder(context.Background(), orderID, userID)

			checkErr(t, err, test.expectedErr, "")
			m.assertExpectations(t)
		})
	}
}

func TestGetOrder(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()

	t.Run("успешное получение своего ордера", func(t *testing.T) {
		m := newOrderMocks()
		m.book.On("Get", mock.Anything, orderID).
			Return(models.Order{ID: orderID, UserID: userID, Status: models.StatusFilled}, nil)

		order, err := m.service().GetOrder(context.Background(), orderID, userID)

		require.NoError(t, err)
		assert.Equal(t, models.StatusFilled, order.Status)
	})

	t.Run("ошибка - чужой ордер не раскрывается", func(t *testing.T) {
		m := newOrderMocks()
		m.book.On("Get", mock.Anything, orderID).
			Return(models.Order{ID: orderID, UserID: uuid.New()}, nil)

		_, err := m.service().GetOrder(context.Background(), orderID, userID)

		assert.ErrorIs(t, err, serviceErrors.ErrOrderNotFound)
	})

	t.Run("ошибка - хранилище недоступно", func(t *testing.T) {
		m := newOrderMocks()
		m.book.On("Get", mock.Anything, orderID).Return(models.Order{}, errors.New("internal error"))

		_, err := m.service().GetOrder(context.Background(), orderID, userID)

		assert.ErrorContains(t, err, "Service.GetOrder: internal error")
	})
}

func TestActivatePending(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	trade := models.Trade{ID: uuid.New(), Volume: decimal.NewFromInt(3), Price: 10}

	m := newOrderMocks()
	m.book.On("Activate", mock.Anything, now).
		Return([]models.Order{{ID: uuid.New()}}, []models.Trade{trade}, nil)
	m.ledger.On("Settle", mock.Anything, trade).Return(nil)
	m.trades.On("SaveTrade", mock.Anything, trade).Return(nil)
	m.publisher.On("PublishTrades", mock.Anything, []models.Trade{trade}).Return(nil)

	service := m.service()
	service.now = func() time.Time { return now }

	activated, err := service.ActivatePending(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, activated)
	m.assertExpectations(t)
}

func TestActivatePendingStoreFailure(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	seller, buyer, assetID := uuid.New(), uuid.New(), uuid.New()
	trade := models.Trade{ID: uuid.New(), Volume: decimal.NewFromInt(3), Price: 10}
	abandoned := []models.Order{
		{
			ID:            uuid.New(),
			Side:          models.SideAsk,
			UserID:        seller,
			AssetID:       assetID,
			CurrentVolume: decimal.NewFromInt(7),
			Status:        models.StatusCancelled,
		},
		{
			ID:            uuid.New(),
			Side:          models.SideBid,
			UserID:        buyer,
			CurrentVolume: decimal.NewFromInt(2),
			Status:        models.StatusCancelled,
		},
	}

	m := newOrderMocks()
	m.book.On("Activate", mock.Anything, now).
		Return(abandoned, []models.Trade{trade}, errors.New("store is down"))
	m.ledger.On("Settle", mock.Anything, trade).Return(nil)
	m.trades.On("SaveTrade", mock.Anything, trade).Return(nil)
	m.publisher.On("PublishTrades", mock.Anything, []models.Trade{trade}).Return(nil)
	m.ledger.On("Release", mock.Anything, seller, assetID, decimal.NewFromInt(7)).Return(nil).Once()

	service := m.service()
	service.now = func() time.Time { return now }

	activated, err := service.ActivatePending(context.Background())

	assert.ErrorContains(t, err, "Service.ActivatePending: store is down")
	assert.Equal(t, 2, activated)
	m.assertExpectations(t)
}

func TestPurgeTerminal(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	m := newOrderMocks()
	m.book.On("Purge", mock.Anything, now.Add(-24*time.Hour)).Return(4, nil)

	service := m.service()
	service.now = func() time.Time { return now }

	purged, err := service.PurgeTerminal(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 4, purged)
	m.assertExpectations(t)
}
