package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	fakeValue "github.com/brianvoe/gofakeit/v6"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gridcert/exchange/exchangeService/internal/domain/models"
	"github.com/gridcert/exchange/exchangeService/internal/domain/product"
	"github.com/gridcert/exchange/exchangeService/internal/http/mocks"
	"github.com/gridcert/exchange/exchangeService/internal/orderbook"
	"github.com/gridcert/exchange/exchangeService/internal/services/order"
	serviceErrors "github.com/gridcert/exchange/shared/errors/service"
	"github.com/gridcert/exchange/shared/middleware/userid"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newOrderEngine(service *mocks.MockOrderService) *gin.Engine {
	handler := NewOrderHandler(service)

	engine := gin.New()
	engine.POST("/orderbook/search", handler.Search)

	authorized := engine.Group("/", userid.Required())
	authorized.POST("/orders/ask", handler.CreateAsk)
	authorized.POST("/orders/bid", handler.CreateBid)
	authorized.POST("/orders/ask/buy", handler.DirectBuy)
	authorized.POST("/orders/:id/cancel", handler.Cancel)
	authorized.GET("/orders/:id", handler.Get)
	authorized.GET("/orders", handler.List)
	authorized.GET("/trades", handler.Trades)

	return engine
}

func perform(engine http.Handler, method, path string, userID uuid.UUID, body string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	request.Header.Set("Content-Type", "application/json")
	if userID != uuid.Nil {
		request.Header.Set(userid.HeaderKey, userID.String())
	}

	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, request)
	return recorder
}

func TestSearch(t *testing.T) {
	solarAsk := models.Order{
		ID:            uuid.New(),
		Side:          models.SideAsk,
		Price:         100,
		CurrentVolume: decimal.NewFromInt(100),
		Product:       product.Product{DeviceType: []string{"Solar"}},
		AssetID:       uuid.New(),
	}

	tests := []struct {
		name           string
		body           string
		setupMocks     func(service *mocks.MockOrderService)
		expectedStatus int
		expectedAsks   int
	}{
		{
			name: "успешный поиск с пустым телом",
			setupMocks: func(service *mocks.MockOrderService) {
				service.On("Search", mock.Anything, product.MatchAll()).
					Return(orderbook.Snapshot{Asks: []models.Order{solarAsk}, Bids: []models.Order{}})
			},
			expectedStatus: http.StatusOK,
			expectedAsks:   1,
		},
		{
			name: "успешный поиск по типу устройства",
			body: `{"deviceTypeFilter":"Specific","deviceType":["Solar"],"locationFilter":"All",` +
				`"deviceVintageFilter":0,"generationTimeFilter":"All","gridOperatorFilter":"All"}`,
			setupMocks: func(service *mocks.MockOrderService) {
				service.On("Search", mock.Anything, mock.MatchedBy(func(filter product.Filter) bool {
					return filter.DeviceTypeFilter == product.Specific && filter.DeviceType[0] == "Solar"
				})).Return(orderbook.Snapshot{Asks: []models.Order{solarAsk}, Bids: []models.Order{}})
			},
			expectedStatus: http.StatusOK,
			expectedAsks:   1,
		},
		{
			name:           "ошибка - Specific без значений",
			body:           `{"deviceTypeFilter":"Specific"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "ошибка - период генерации только с началом",
			body:           `{"generationTimeFilter":"Specific","generationFrom":"2020-01-01T00:00:00Z"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "ошибка - неизвестный тип устройства",
			body:           `{"deviceTypeFilter":"Specific","deviceType":["LOL"]}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "ошибка - неизвестное значение переключателя",
			body:           `{"deviceVintageFilter":"LOL"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "ошибка - некорректный JSON",
			body:           `{"deviceTypeFilter":`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			service := new(mocks.MockOrderService)
			if test.setupMocks != nil {
				test.setupMocks(service)
			}

			recorder := perform(newOrderEngine(service), http.MethodPost, "/orderbook/search", uuid.Nil, test.body)

			require.Equal(t, test.expectedStatus, recorder.Code, recorder.Body.String())
			if test.expectedStatus == http.StatusOK {
				var book struct {
					Asks []map[string]any `json:"asks"`
					Bids []map[string]any `json:"bids"`
				}
				require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &book))
				assert.Len(t, book.Asks, test.expectedAsks)
				assert.NotNil(t, book.Bids)
			}

			service.AssertExpectations(t)
		})
	}
}

func TestCreateAsk(t *testing.T) {
	userID := uuid.New()
	assetID := uuid.New()
	price := int64(fakeValue.IntRange(1, 10_000))
	body := fmt.Sprintf(`{"assetId":%q,"volume":"100","price":%d}`, assetID, price)

	isRequest := mock.MatchedBy(func(request order.AskRequest) bool {
		return request.UserID == userID && request.AssetID == assetID &&
			request.Price == price && request.Volume.Equal(decimal.NewFromInt(100))
	})

	tests := []struct {
		name           string
		userID         uuid.UUID
		body           string
		setupMocks     func(service *mocks.MockOrderService)
		expectedStatus int
	}{
		{
			name:   "успешное создание ордера на продажу",
			userID: userID,
			body:   body,
			setupMocks: func(service *mocks.MockOrderService) {
				service.On("CreateAsk", mock.Anything, isRequest).
					Return(models.Order{ID: uuid.New(), UserID: userID, AssetID: assetID}, nil, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "ошибка - нет идентификатора пользователя",
			body:           body,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "ошибка - нулевая цена",
			userID:         userID,
			body:           fmt.Sprintf(`{"assetId":%q,"volume":"100","price":0}`, assetID),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "ошибка - без актива",
			userID:         userID,
			body:           `{"volume":"100","price":10}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "ошибка - недостаточно баланса",
			userID: userID,
			body:   body,
			setupMocks: func(service *mocks.MockOrderService) {
				service.On("CreateAsk", mock.Anything, isRequest).
					Return(models.Order{}, nil, fmt.Errorf("Service.CreateAsk: %w", serviceErrors.ErrInsufficientBalance))
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "ошибка - превышен лимит",
			userID: userID,
			body:   body,
			setupMocks: func(service *mocks.MockOrderService) {
				service.On("CreateAsk", mock.Anything, isRequest).
					Return(models.Order{}, nil, serviceErrors.ErrRateLimitExceeded)
			},
			expectedStatus: http.StatusTooManyRequests,
		},
		{
			name:   "ошибка - реестр недоступен",
			userID: userID,
			body:   body,
			setupMocks: func(service *mocks.MockOrderService) {
				service.On("CreateAsk", mock.Anything, isRequest).
					Return(models.Order{}, nil, serviceErrors.ErrLedgerUnavailable)
			},
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name:   "ошибка - внутренняя ошибка",
			userID: userID,
			body:   body,
			setupMocks: func(service *mocks.MockOrderService) {
				service.On("CreateAsk", mock.Anything, isRequest).
					Return(models.Order{}, nil, errors.New("invariant violation"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			service := new(mocks.MockOrderService)
			if test.setupMocks != nil {
				test.setupMocks(service)
			}

			recorder := perform(newOrderEngine(service), http.MethodPost, "/orders/ask", test.userID, test.body)

			assert.Equal(t, test.expectedStatus, recorder.Code, recorder.Body.String())
			service.AssertExpectations(t)
		})
	}
}

func TestCreateBidAndDirectBuy(t *testing.T) {
	userID := uuid.New()
	askID := uuid.New()

	t.Run("успешное создание ордера на покупку", func(t *testing.T) {
		service := new(mocks.MockOrderService)
		service.On("CreateBid", mock.Anything, mock.MatchedBy(func(request order.BidRequest) bool {
			return request.UserID == userID && request.Product.DeviceType[0] == "Wind"
		})).Return(models.Order{ID: uuid.New(), Side: models.SideBid}, nil, nil)

		recorder := perform(newOrderEngine(service), http.MethodPost, "/orders/bid", userID,
			`{"volume":"5","price":60,"product":{"deviceType":["Wind"]}}`)

		assert.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
		service.AssertExpectations(t)
	})

	t.Run("ошибка - неизвестный тип устройства в продукте", func(t *testing.T) {
		service := new(mocks.MockOrderService)
		service.On("CreateBid", mock.Anything, mock.Anything).
			Return(models.Order{}, nil, &product.ValidationError{Dimension: product.DimensionDeviceType, Reason: "unknown"})

		recorder := perform(newOrderEngine(service), http.MethodPost, "/orders/bid", userID,
			`{"volume":"5","price":60,"product":{"deviceType":["LOL"]}}`)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Contains(t, recorder.Body.String(), product.DimensionDeviceType)
	})

	t.Run("успешная прямая покупка", func(t *testing.T) {
		trade := models.Trade{ID: uuid.New(), AskID: askID, Volume: decimal.NewFromInt(2), Price: 90}
		service := new(mocks.MockOrderService)
		service.On("DirectBuy", mock.Anything, mock.MatchedBy(func(request order.DirectBuyRequest) bool {
			return request.UserID == userID && request.AskID == askID &&
				request.Price == 90 && request.Volume.Equal(decimal.NewFromInt(2))
		})).Return(models.Order{ID: uuid.New(), Status: models.StatusFilled}, []models.Trade{trade}, nil)

		recorder := perform(newOrderEngine(service), http.MethodPost, "/orders/ask/buy", userID,
			fmt.Sprintf(`{"askId":%q,"volume":"2","price":90}`, askID))

		require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

		var result struct {
			Order  map[string]any   `json:"order"`
			Trades []map[string]any `json:"trades"`
		}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
		assert.Equal(t, "Filled", result.Order["status"])
		require.Len(t, result.Trades, 1)
		assert.Equal(t, askID.String(), result.Trades[0]["askId"])
	})

	t.Run("ошибка - прямая покупка ниже цены", func(t *testing.T) {
		service := new(mocks.MockOrderService)
		service.On("DirectBuy", mock.Anything, mock.Anything).
			Return(models.Order{}, nil, fmt.Errorf("Service.DirectBuy: %w: direct buy price is below the ask price", serviceErrors.ErrOrderRejected))

		recorder := perform(newOrderEngine(service), http.MethodPost, "/orders/ask/buy", userID,
			fmt.Sprintf(`{"askId":%q,"volume":"2","price":1}`, askID))

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "order rejected: direct buy price is below the ask price")
		assert.NotContains(t, recorder.Body.String(), "Service.DirectBuy")
	})
}

func TestCancelOrder(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()

	tests := []struct {
		name           string
		path           string
		setupMocks     func(service *mocks.MockOrderService)
		expectedStatus int
	}{
		{
			name: "успешная отмена",
			path: "/orders/" + orderID.String() + "/cancel",
			setupMocks: func(service *mocks.MockOrderService) {
				service.On("CancelOrder", mock.Anything, orderID, userID).
					Return(models.Order{ID: orderID, Status: models.StatusCancelled}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "ошибка - ордер не найден",
			path: "/orders/" + orderID.String() + "/cancel",
			setupMocks: func(service *mocks.MockOrderService) {
				service.On("CancelOrder", mock.Anything, orderID, userID).
					Return(models.Order{}, serviceErrors.ErrOrderNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "ошибка - чужой ордер",
			path: "/orders/" + orderID.String() + "/cancel",
			setupMocks: func(service *mocks.MockOrderService) {
				service.On("CancelOrder", mock.Anything, orderID, userID).
					Return(models.Order{}, serviceErrors.ErrNotOrderOwner)
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "ошибка - некорректный идентификатор",
			path:           "/orders/not-a-uuid/cancel",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			service := new(mocks.MockOrderService)
			if test.setupMocks != nil {
				test.setupMocks(service)
			}

			recorder := perform(newOrderEngine(service), http.MethodPost, test.path, userID, "")

			assert.Equal(t, test.expectedStatus, recorder.Code, recorder.Body.String())
			service.AssertExpectations(t)
		})
	}
}

func TestListings(t *testing.T) {
	userID := uuid.New()

	service := new(mocks.MockOrderService)
	service.On("UserOrders", mock.Anything, userID).Return([]models.Order{
		{ID: uuid.New(), Status: models.StatusActive},
		{ID: uuid.New(), Status: models.StatusFilled},
	}, nil)
	service.On("UserTrades", mock.Anything, userID).Return(nil, nil)
	service.On("GetOrder", mock.Anything, mock.Anything, userID).Return(models.Order{}, serviceErrors.ErrOrderNotFound)

	engine := newOrderEngine(service)

	orders := perform(engine, http.MethodGet, "/orders", userID, "")
	require.Equal(t, http.StatusOK, orders.Code)
	var listed []map[string]any
	require.NoError(t, json.Unmarshal(orders.Body.Bytes(), &listed))
	assert.Len(t, listed, 2)

	trades := perform(engine, http.MethodGet, "/trades", userID, "")
	require.Equal(t, http.StatusOK, trades.Code)
	assert.JSONEq(t, `[]`, trades.Body.String())

	missing := perform(engine, http.MethodGet, "/orders/"+uuid.NewString(), userID, "")
	assert.Equal(t, http.StatusNotFound, missing.Code)

	service.AssertExpectations(t)
}
