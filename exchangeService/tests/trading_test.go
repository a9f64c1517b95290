//go:build integration

package tests

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridcert/exchange/exchangeService/internal/http/dto"
	"github.com/gridcert/exchange/exchangeService/tests/suite"
)

func TestAskMatchesBidHappyPath(test *testing.T) {
	ctx, st := suite.New(test)
	st.ClearTables(ctx)

	sellerID := uuid.New()
	buyerID := uuid.New()
	asset := st.DepositConfirmed(ctx, sellerID, 100)

	var ask dto.OrderResult
	status := st.Do(http.MethodPost, "/orders/ask", sellerID, map[string]any{
		"assetId": asset.ID,
		"volume":  "60",
		"price":   150,
	}, &ask)
	require.Equal(test, http.StatusOK, status)
	assert.Empty(test, ask.Trades)
	assert.True(test, st.OrderExistsInDB(ctx, ask.Order.ID))

	var bid dto.OrderResult
	status = st.Do(http.MethodPost, "/orders/bid", buyerID, map[string]any{
		"volume":  "25",
		"price":   200,
		"product": map[string]any{"deviceType": []string{"Solar"}, "location": []string{"Thailand"}},
	}, &bid)
	require.Equal(test, http.StatusOK, status)
	require.Len(test, bid.Trades, 1)
	assert.EqualValues(test, 150, bid.Trades[0].Price)
	assert.True(test, decimal.NewFromInt(25).Equal(bid.Trades[0].Volume))
	assert.Equal(test, "Filled", bid.Order.Status)
	assert.Equal(test, 1, st.CountTrades(ctx))

	var buyer dto.Account
	require.Equal(test, http.StatusOK, st.Do(http.MethodGet, "/account", buyerID, nil, &buyer))
	require.Len(test, buyer.Balances.Available, 1)
	assert.True(test, decimal.NewFromInt(25).Equal(buyer.Balances.Available[0].Amount))

	var seller dto.Account
	require.Equal(test, http.StatusOK, st.Do(http.MethodGet, "/account", sellerID, nil, &seller))
	require.Len(test, seller.Balances.Available, 1)
	assert.True(test, decimal.NewFromInt(40).Equal(seller.Balances.Available[0].Amount))

	var trades []dto.Trade
	require.Equal(test, http.StatusOK, st.Do(http.MethodGet, "/trades", sellerID, nil, &trades))
	assert.Len(test, trades, 1)
}

func TestAskOverBalanceRejected(test *testing.T) {
	ctx, st := suite.New(test)
	st.ClearTables(ctx)

	sellerID := uuid.New()
	asset := st.DepositConfirmed(ctx, sellerID, 10)

	status := st.Do(http.MethodPost, "/orders/ask", sellerID, map[string]any{
		"assetId": asset.ID,
		"volume":  "11",
		"price":   100,
	}, nil)

	assert.Equal(test, http.StatusBadRequest, status)
	assert.Equal(test, 0, st.CountOrders(ctx))
}

func TestCancelReleasesReservation(test *testing.T) {
	ctx, st := suite.New(test)
	st.ClearTables(ctx)

	sellerID := uuid.New()
	asset := st.DepositConfirmed(ctx, sellerID, 50)

	var ask dto.OrderResult
	require.Equal(test, http.StatusOK, st.Do(http.MethodPost, "/orders/ask", sellerID, map[string]any{
		"assetId": asset.ID,
		"volume":  "50",
		"price":   120,
	}, &ask))

	var account dto.Account
	require.Equal(test, http.StatusOK, st.Do(http.MethodGet, "/account", sellerID, nil, &account))
	assert.Empty(test, account.Balances.Available)

	tests := []struct {
		name           string
		userID         uuid.UUID
		expectedStatus int
	}{
		{
			name:           "ошибка - чужой ордер",
			userID:         uuid.New(),
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "успешная отмена",
			userID:         sellerID,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "ошибка - повторная отмена",
			userID:         sellerID,
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		test.Run(tt.name, func(t *testing.T) {
			status := st.Do(http.MethodPost, "/orders/"+ask.Order.ID.String()+"/cancel", tt.userID, nil, nil)
			assert.Equal(t, tt.expectedStatus, status)
		})
	}

	require.Equal(test, http.StatusOK, st.Do(http.MethodGet, "/account", sellerID, nil, &account))
	require.Len(test, account.Balances.Available, 1)
	assert.True(test, decimal.NewFromInt(50).Equal(account.Balances.Available[0].Amount))

	var order dto.Order
	require.Equal(test, http.StatusOK, st.Do(http.MethodGet, "/orders/"+ask.Order.ID.String(), sellerID, nil, &order))
	assert.Equal(test, "Cancelled", order.Status)
}

func TestRestoreAfterRestart(test *testing.T) {
	ctx, st := suite.New(test)
	st.ClearTables(ctx)

	sellerID := uuid.New()
	asset := st.DepositConfirmed(ctx, sellerID, 100)

	for _, price := range []int{100, 150} {
		require.Equal(test, http.StatusOK, st.Do(http.MethodPost, "/orders/ask", sellerID, map[string]any{
			"assetId": asset.ID,
			"volume":  "30",
			"price":   price,
		}, nil))
	}
	require.Equal(test, http.StatusOK, st.Do(http.MethodPost, "/orders/bid", uuid.New(), map[string]any{
		"volume":  "5",
		"price":   50,
		"product": map[string]any{"deviceType": []string{"Wind"}},
	}, nil))

	restored := st.Restart(ctx)
	assert.Equal(test, 3, restored)

	var book dto.OrderBook
	require.Equal(test, http.StatusOK, st.Do(http.MethodPost, "/orderbook/search", uuid.Nil, nil, &book))
	require.Len(test, book.Asks, 2)
	require.Len(test, book.Bids, 1)
	assert.EqualValues(test, 100, book.Asks[0].Price)
	assert.EqualValues(test, 150, book.Asks[1].Price)

	var bid dto.OrderResult
	require.Equal(test, http.StatusOK, st.Do(http.MethodPost, "/orders/bid", uuid.New(), map[string]any{
		"volume":  "40",
		"price":   150,
		"product": map[string]any{"deviceType": []string{"Solar"}},
	}, &bid))
	require.Len(test, bid.Trades, 2)
	assert.EqualValues(test, 100, bid.Trades[0].Price)
	assert.EqualValues(test, 150, bid.Trades[1].Price)
}
