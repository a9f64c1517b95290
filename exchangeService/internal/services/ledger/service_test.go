package ledger

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
	"github.com/gridcert/exchange/exchangeService/internal/services/mocks"
	"github.com/gridcert/exchange/exchangeService/internal/storage/memory"
	repositoryErrors "github.com/gridcert/exchange/shared/errors/repository"
	serviceErrors "github.com/gridcert/exchange/shared/errors/service"
)

type ledgerMocks struct {
	accounts  *mocks.MockAccountStore
	assets    *mocks.MockAssetStore
	transfers *mocks.MockTransferStore
	positions *mocks.MockPositionStore
}

func newLedgerMocks() ledgerMocks {
	return ledgerMocks{
		accounts:  new(mocks.MockAccountStore),
		assets:    new(mocks.MockAssetStore),
		transfers: new(mocks.MockTransferStore),
		positions: new(mocks.MockPositionStore),
	}
}

func (m ledgerMocks) service() *Service {
	return NewService(m.accounts, m.assets, m.transfers, m.positions)
}

func (m ledgerMocks) assertExpectations(t *testing.T) {
	m.accounts.AssertExpectations(t)
	m.assets.AssertExpectations(t)
	m.transfers.AssertExpectations(t)
	m.positions.AssertExpectations(t)
}

func TestGetOrCreateAccount(t *testing.T) {
	userID := uuid.New()
	existing := models.Account{UserID: userID, Address: "0x" + fakeValue.LetterN(40)}

	tests := []struct {
		name           string
		setupMocks     func(m ledgerMocks)
		expectedErr    error
		expectedErrMsg string
		checkResult    func(t *testing.T, account models.Account)
	}{
		{
			name: "успешное получение существующего аккаунта",
			setupMocks: func(m ledgerMocks) {
				m.accounts.On("GetAccount", mock.Anything, userID).Return(existing, nil)
			},
			checkResult: func(t *testing.T, account models.Account) {
				assert.Equal(t, existing, account)
			},
		},
		{
			name: "успешное создание аккаунта",
			setupMocks: func(m ledgerMocks) {
				m.accounts.On("GetAccount", mock.Anything, userID).
					Return(models.Account{}, repositoryErrors.ErrAccountNotFound)
				m.accounts.On("CreateAccount", mock.Anything, mock.AnythingOfType("models.Account")).
					Return(nil)
			},
			checkResult: func(t *testing.T, account models.Account) {
				assert.Equal(t, userID, account.UserID)
				assert.Len(t, account.Address, 42)
				assert.Equal(t, "0x", account.Address[:2])
			},
		},
		{
			name: "гонка при создании - возвращается аккаунт конкурента",
			setupMocks: func(m ledgerMocks) {
				m.accounts.On("GetAccount", mock.Anything, userID).
					Return(models.Account{}, repositoryErrors.ErrAccountNotFound).Once()
				m.accounts.On("CreateAccount", mock.Anything, mock.AnythingOfType("models.Account")).
					Return(repositoryErrors.ErrAccountAlreadyExists)
				m.accounts.On("GetAccount", mock.Anything, userID).Return(existing, nil).Once()
			},
			checkResult: func(t *testing.T, account models.Account) {
				assert.Equal(t, existing, account)
			},
		},
		{
			name: "ошибка - недоступность хранилища",
			setupMocks: func(m ledgerMocks) {
				m.accounts.On("GetAccount", mock.Anything, userID).
					Return(models.Account{}, errors.New("connection refused"))
			},
			expectedErrMsg: "Service.GetOrCreateAccount: connection refused",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m := newLedgerMocks()
			test.setupMocks(m)

			account, err := m.service().GetOrCreateAccount(context.Background(), userID)

			if test.expectedErr != nil || test.expectedErrMsg != "" {
				require.Error(t, err)
				if test.expectedErr != nil {
					assert.ErrorIs(t, err, test.expectedErr)
				}
				if test.expectedErrMsg != "" {
					assert.ErrorContains(t, err, test.expectedErrMsg)
				}
			} else {
				require.NoError(t, err)
			}

			if test.checkResult != nil {
				test.checkResult(t, account)
			}

			m.assertExpectations(t)
		})
	}
}

func TestReserve(t *testing.T) {
	userID := uuid.New()
	assetID := uuid.New()
	volume := decimal.NewFromInt(int64(fakeValue.IntRange(1, 1000)))

	tests := []struct {
		name        string
		setupMocks  func(m ledgerMocks)
		expectedErr error
	}{
		{
			name: "успешное резервирование",
			setupMocks: func(m ledgerMocks) {
				m.positions.On("ApplyPositions", mock.Anything, []models.PositionChange{{
					UserID:   userID,
					AssetID:  assetID,
					Reserved: volume,
				}}).Return(nil)
			},
		},
		{
			name: "ошибка - недостаточно средств",
			setupMocks: func(m ledgerMocks) {
				m.positions.On("ApplyPositions", mock.Anything, mock.Anything).
					Return(repositoryErrors.ErrInsufficientBalance)
			},
			expectedErr: serviceErrors.ErrInsufficientBalance,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m := newLedgerMocks()
			test.setupMocks(m)

			err := m.service().Reserve(context.Background(), userID, assetID, volume)

			if test.expectedErr != nil {
				assert.ErrorIs(t, err, test.expectedErr)
			} else {
				require.NoError(t, err)
			}

			m.assertExpectations(t)
		})
	}
}

func TestGetAsset(t *testing.T) {
	assetID := uuid.New()

	m := newLedgerMocks()
	m.assets.On("GetAsset", mock.Anything, assetID).
		Return(models.Asset{}, repositoryErrors.ErrAssetNotFound)

	_, err := m.service().GetAsset(context.Background(), assetID)

	assert.ErrorIs(t, err, serviceErrors.ErrAssetNotAvailable)
	m.assertExpectations(t)
}

func TestReleaseIgnoresZeroVolume(t *testing.T) {
	m := newLedgerMocks()

	err := m.service().Release(context.Background(), uuid.New(), uuid.New(), decimal.Zero)

	require.NoError(t, err)
	m.positions.AssertNotCalled(t, "ApplyPositions", mock.Anything, mock.Anything)
}

func newMemoryService() *Service {
	store := memory.NewLedgerStore()
	return NewService(store, store, store, store)
}

func depositAsset() models.Asset {
	return models.Asset{
		Address:        "0x" + fakeValue.LetterN(40),
		TokenID:        fakeValue.Numerify("####"),
		DeviceID:       fakeValue.UUID(),
		GenerationFrom: time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
		GenerationTo:   time.Date(2020, time.January, 31, 0, 0, 0, 0, time.UTC),
		DeviceType:     []string{"Solar;Photovoltaic"},
		Location:       []string{"Thailand;Central;Nakhon Pathom"},
	}
}

func deposit(t *testing.T, service *Service, userID uuid.UUID, amount int64, confirm bool) models.Transfer {
	t.Helper()
	ctx := context.Background()

	account, err := service.GetOrCreateAccount(ctx, userID)
	require.NoError(t, err)

	transfer, err := service.CreateDeposit(ctx, DepositRequest{
		Address:         account.Address,
		TransactionHash: "0x" + fakeValue.LetterN(64),
		Amount:          decimal.NewFromInt(amount),
		Asset:           depositAsset(),
	})
	require.NoError(t, err)

	if confirm {
		transfer, err = service.ConfirmTransfer(ctx, transfer.TransactionHash, int64(fakeValue.IntRange(1, 1_000_000)))
		require.NoError(t, err)
	}

	return transfer
}

func TestConfirmedBalance(t *testing.T) {
	ctx := context.Background()
	service := newMemoryService()
	userID := uuid.New()

	unconfirmed := deposit(t, service, userID, 500, false)

	balance, err := service.ConfirmedBalance(ctx, userID, unconfirmed.Asset.ID)
	require.NoError(t, err)
	assert.True(t, balance.IsZero(), "unconfirmed deposit must not count")

	_, err = service.ConfirmTransfer(ctx, unconfirmed.TransactionHash, 42)
	require.NoError(t, err)

	balance, err = service.ConfirmedBalance(ctx, userID, unconfirmed.Asset.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(500)))

	require.NoError(t, service.Reserve(ctx, userID, unconfirmed.Asset.ID, decimal.NewFromInt(200)))

	balance, err = service.ConfirmedBalance(ctx, userID, unconfirmed.Asset.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(300)))

	err = service.Reserve(ctx, userID, unconfirmed.Asset.ID, decimal.NewFromInt(301))
	assert.ErrorIs(t, err, serviceErrors.ErrInsufficientBalance)
}

func TestSettleMovesVolumeToBuyer(t *testing.T) {
	ctx := context.Background()
	service := newMemoryService()
	sellerID := uuid.New()
	buyerID := uuid.New()

	transfer := deposit(t, service, sellerID, 1000, true)
	assetID := transfer.Asset.ID
	require.NoError(t, service.Reserve(ctx, sellerID, assetID, decimal.NewFromInt(400)))

	err := service.Settle(ctx, models.Trade{
		ID:       uuid.New(),
		Volume:   decimal.NewFromInt(150),
		Price:    1000,
		AssetID:  assetID,
		BuyerID:  buyerID,
		SellerID: sellerID,
	})
	require.NoError(t, err)

	sellerBalances, err := service.Balances(ctx, sellerID)
	require.NoError(t, err)
	require.Len(t, sellerBalances.Available, 1)
	require.Len(t, sellerBalances.Locked, 1)
	assert.True(t, sellerBalances.Available[0].Amount.Equal(decimal.NewFromInt(600)))
	assert.True(t, sellerBalances.Locked[0].Amount.Equal(decimal.NewFromInt(250)))

	buyerBalance, err := service.ConfirmedBalance(ctx, buyerID, assetID)
	require.NoError(t, err)
	assert.True(t, buyerBalance.Equal(decimal.NewFromInt(150)))

	require.NoError(t, service.Release(ctx, sellerID, assetID, decimal.NewFromInt(250)))

	sellerBalance, err := service.ConfirmedBalance(ctx, sellerID, assetID)
	require.NoError(t, err)
	assert.True(t, sellerBalance.Equal(decimal.NewFromInt(850)))
}

func TestTransfers(t *testing.T) {
	ctx := context.Background()

	t.Run("депозит на неизвестный адрес", func(t *testing.T) {
		service := newMemoryService()

		_, err := service.CreateDeposit(ctx, DepositRequest{
			Address:         "0x" + fakeValue.LetterN(40),
			TransactionHash: "0x" + fakeValue.LetterN(64),
			Amount:          decimal.NewFromInt(10),
			Asset:           depositAsset(),
		})

		assert.ErrorIs(t, err, serviceErrors.ErrAccountNotFound)
	})

	t.Run("повторный депозит с тем же хешем", func(t *testing.T) {
		service := newMemoryService()
		userID := uuid.New()
		first := deposit(t, service, userID, 10, false)

		_, err := service.CreateDeposit(ctx, DepositRequest{
			Address:         first.Address,
			TransactionHash: first.TransactionHash,
			Amount:          decimal.NewFromInt(10),
			Asset:           first.Asset,
		})

		assert.ErrorIs(t, err, serviceErrors.ErrTransferExists)
	})

	t.Run("тот же лот переиспользуется", func(t *testing.T) {
		service := newMemoryService()
		userID := uuid.New()
		first := deposit(t, service, userID, 10, true)

		second, err := service.CreateDeposit(ctx, DepositRequest{
			Address:         first.Address,
			TransactionHash: "0x" + fakeValue.LetterN(64),
			Amount:          decimal.NewFromInt(5),
			Asset:           first.Asset,
		})
		require.NoError(t, err)

		assert.Equal(t, first.Asset.ID, second.Asset.ID)
	})

	t.Run("подтвержденный перевод нельзя подтвердить повторно", func(t *testing.T) {
		service := newMemoryService()
		transfer := deposit(t, service, uuid.New(), 10, true)

		_, err := service.ConfirmTransfer(ctx, transfer.TransactionHash, 7)
		assert.ErrorIs(t, err, serviceErrors.ErrInvalidTransfer)

		_, err = service.FailTransfer(ctx, transfer.TransactionHash)
		assert.ErrorIs(t, err, serviceErrors.ErrInvalidTransfer)
	})

	t.Run("ошибка - период генерации заканчивается раньше начала", func(t *testing.T) {
		service := newMemoryService()
		account, err := service.GetOrCreateAccount(ctx, uuid.New())
		require.NoError(t, err)

		asset := depositAsset()
		asset.GenerationFrom, asset.GenerationTo = asset.GenerationTo, asset.GenerationFrom

		_, err = service.CreateDeposit(ctx, DepositRequest{
			Address:         account.Address,
			TransactionHash: "0x" + fakeValue.LetterN(64),
			Amount:          decimal.NewFromInt(10),
			Asset:           asset,
		})
		assert.ErrorIs(t, err, serviceErrors.ErrInvalidTransfer)
	})

	t.Run("неизвестный хеш", func(t *testing.T) {
		service := newMemoryService()

		_, err := service.ConfirmTransfer(ctx, "0xdeadbeef", 1)
		assert.ErrorIs(t, err, serviceErrors.ErrTransferNotFound)
	})

	t.Run("вывод списывает доступный баланс и возвращается при ошибке", func(t *testing.T) {
		service := newMemoryService()
		userID := uuid.New()
		transfer := deposit(t, service, userID, 100, true)
		assetID := transfer.Asset.ID

		_, err := service.RequestWithdrawal(ctx, WithdrawalRequest{
			UserID:  userID,
			AssetID: assetID,
			Amount:  decimal.NewFromInt(101),
			Address: "0x" + fakeValue.LetterN(40),
		})
		assert.ErrorIs(t, err, serviceErrors.ErrInsufficientBalance)

		withdrawal, err := service.RequestWithdrawal(ctx, WithdrawalRequest{
			UserID:  userID,
			AssetID: assetID,
			Amount:  decimal.NewFromInt(60),
			Address: "0x" + fakeValue.LetterN(40),
		})
		require.NoError(t, err)
		assert.Equal(t, models.TransferAccepted, withdrawal.Status)
		assert.Equal(t, models.DirectionWithdrawal, withdrawal.Direction)

		balance, err := service.ConfirmedBalance(ctx, userID, assetID)
		require.NoError(t, err)
		assert.True(t, balance.Equal(decimal.NewFromInt(40)))

		failed, err := service.FailTransfer(ctx, withdrawal.TransactionHash)
		require.NoError(t, err)
		assert.Equal(t, models.TransferError, failed.Status)

		balance, err = service.ConfirmedBalance(ctx, userID, assetID)
		require.NoError(t, err)
		assert.True(t, balance.Equal(decimal.NewFromInt(100)))

		transfers, err := service.UserTransfers(ctx, userID)
		require.NoError(t, err)
		assert.Len(t, transfers, 2)
	})

	t.Run("вывод неизвестного актива", func(t *testing.T) {
		service := newMemoryService()

		_, err := service.RequestWithdrawal(ctx, WithdrawalRequest{
			UserID:  uuid.New(),
			AssetID: uuid.New(),
			Amount:  decimal.NewFromInt(1),
			Address: "0x" + fakeValue.LetterN(40),
		})

		assert.ErrorIs(t, err, serviceErrors.ErrAssetNotAvailable)
	})
}
