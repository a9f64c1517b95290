package ledger

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/gridcert/exchange/exchangeService/internal/domain/models"
	repositoryErrors "github.com/gridcert/exchange/shared/errors/repository"
	serviceErrors "github.com/gridcert/exchange/shared/errors/service"
	zapLogger "github.com/gridcert/exchange/shared/logger/zap"
)

type Service struct {
	accounts  AccountStore
	assets    AssetStore
	transfers TransferStore
	positions PositionStore
}

type AccountStore interface {
	GetAccount(ctx context.Context, userID uuid.UUID) (models.Account, error)
	GetAccountByAddress(ctx context.Context, address string) (models.Account, error)
	CreateAccount(ctx context.Context, account models.Account) error
}

type AssetStore interface {
	GetAsset(ctx context.Context, id uuid.UUID) (models.Asset, error)
	FindAsset(ctx context.Context, address, tokenID string) (models.Asset, error)
	SaveAsset(ctx context.Context, asset models.Asset) error
}

// TransferStore applies the position changes passed along with a transfer in
// the same atomic step as the transfer write.
type TransferStore interface {
	SaveTransfer(ctx context.Context, transfer models.Transfer, changes ...models.PositionChange) error
	UpdateTransfer(ctx context.Context, transfer models.Transfer, changes ...models.PositionChange) error
	GetTransferByHash(ctx context.Context, transactionHash string) (models.Transfer, error)
	UserTransfers(ctx context.Context, userID uuid.UUID) ([]models.Transfer, error)
}

// PositionStore returns a zero position for pairs it has never seen.
// ApplyPositions is all-or-nothing and fails with
// repository.ErrInsufficientBalance when a position would turn invalid.
type PositionStore interface {
	Position(ctx context.Context, userID, assetID uuid.UUID) (models.Position, error)
	UserPositions(ctx context.Context, userID uuid.UUID) ([]models.Position, error)
	ApplyPositions(ctx context.Context, changes ...models.PositionChange) error
}

func NewService(accounts AccountStore, assets AssetStore, transfers TransferStore, positions PositionStore) *Service {
	return &Service{
		accounts:  accounts,
		assets:    assets,
		transfers: transfers,
		positions: positions,
	}
}

func (service *Service) GetOrCreateAccount(ctx context.Context, userID uuid.UUID) (models.Account, error) {
	const op = "Service.GetOrCreateAccount"

	account, err := service.accounts.GetAccount(ctx, userID)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, repositoryErrors.ErrAccountNotFound) {
		return models.Account{}, fmt.Errorf("%s: %w", op, err)
	}

	address, err := newDepositAddress()
	if err != nil {
		return models.Account{}, fmt.Errorf("%s: %w", op, err)
	}

	account = models.Account{
		UserID:    userID,
		Address:   address,
		CreatedAt: time.Now().UTC(),
	}
	if err := service.accounts.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, repositoryErrors.ErrAccountAlreadyExists) {
			return service.accounts.GetAccount(ctx, userID)
		}
		return models.Account{}, fmt.Errorf("%s: %w", op, err)
	}

	zapLogger.Info(ctx, "account created", zap.String("address", address))

	return account, nil
}

type AccountBalances struct {
	Account   models.Account
	Available []models.Balance
	Locked    []models.Balance
}

func (service *Service) Balances(ctx context.Context, userID uuid.UUID) (AccountBalances, error) {
	const op = "Service.Balances"

	account, err := service.GetOrCreateAccount(ctx, userID)
	if err != nil {
		return AccountBalances{}, fmt.Errorf("%s: %w", op, err)
	}

	positions, err := service.positions.UserPositions(ctx, userID)
	if err != nil {
		return AccountBalances{}, fmt.Errorf("%s: %w", op, err)
	}

	result := AccountBalances{
		Account:   account,
		Available: make([]models.Balance, 0, len(positions)),
		Locked:    make([]models.Balance, 0),
	}
	for _, position := range positions {
		asset, err := service.assets.GetAsset(ctx, position.AssetID)
		if err != nil {
			return AccountBalances{}, fmt.Errorf("%s: %w", op, err)
		}

		if available := position.Available(); available.IsPositive() {
			result.Available = append(result.Available, models.Balance{Asset: asset, Amount: available})
		}
		if position.Reserved.IsPositive() {
			result.Locked = append(result.Locked, models.Balance{Asset: asset, Amount: position.Reserved})
		}
	}

	return result, nil
}

// ConfirmedBalance is the volume of assetID the user may still offer: only
// confirmed deposits count and volume locked by open asks is excluded.
func (service *Service) ConfirmedBalance(ctx context.Context, userID, assetID uuid.UUID) (decimal.Decimal, error) {
	const op = "Service.ConfirmedBalance"

	position, err := service.positions.Position(ctx, userID, assetID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", op, err)
	}

	return position.Available(), nil
}

func (service *Service) GetAsset(ctx context.Context, assetID uuid.UUID) (models.Asset, error) {
	const op = "Service.GetAsset"

	asset, err := service.assets.GetAsset(ctx, assetID)
	if err != nil {
		if errors.Is(err, repositoryErrors.ErrAssetNotFound) {
			return models.Asset{}, fmt.Errorf("%s: %w", op, serviceErrors.ErrAssetNotAvailable)
		}
		return models.Asset{}, fmt.Errorf("%s: %w", op, err)
	}

	return asset, nil
}

func (service *Service) Reserve(ctx context.Context, userID, assetID uuid.UUID, volume decimal.Decimal) error {
	const op = "Service.Reserve"

	err := service.positions.ApplyPositions(ctx, models.PositionChange{
		UserID:   userID,
		AssetID:  assetID,
		Reserved: volume,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, translate(err))
	}

	return nil
}

func (service *Service) Release(ctx context.Context, userID, assetID uuid.UUID, volume decimal.Decimal) error {
	const op = "Service.Release"

	if !volume.IsPositive() {
		return nil
	}

	err := service.positions.ApplyPositions(ctx, models.PositionChange{
		UserID:   userID,
		AssetID:  assetID,
		Reserved: volume.Neg(),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, translate(err))
	}

	return nil
}

// Settle moves traded volume from the seller's reservation to the buyer.
func (service *Service) Settle(ctx context.Context, trade models.Trade) error {
	const op = "Service.Settle"

	err := service.positions.ApplyPositions(ctx,
		models.PositionChange{
			UserID:   trade.SellerID,
			AssetID:  trade.AssetID,
			Reserved: trade.Volume.Neg(),
			Sold:     trade.Volume,
		},
		models.PositionChange{
			UserID:  trade.BuyerID,
			AssetID: trade.AssetID,
			Bought:  trade.Volume,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, translate(err))
	}

	return nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, repositoryErrors.ErrInsufficientBalance):
		return serviceErrors.ErrInsufficientBalance
	case errors.Is(err, repositoryErrors.ErrAccountNotFound):
		return serviceErrors.ErrAccountNotFound
	case errors.Is(err, repositoryErrors.ErrAssetNotFound):
		return serviceErrors.ErrAssetNotAvailable
	case errors.Is(err, repositoryErrors.ErrTransferNotFound):
		return serviceErrors.ErrTransferNotFound
	case errors.Is(err, repositoryErrors.ErrTransferAlreadyExists):
		return serviceErrors.ErrTransferExists
	}
	return err
}

func newDepositAddress() (string, error) {
	raw := make([]byte, 20)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("rand.Read: %w", err)
	}
	return "0x" + hex.EncodeToString(raw), nil
}

func normalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
