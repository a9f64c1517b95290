package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/gridcert/exchange/exchangeService/internal/domain/models"
	repositoryErrors "github.com/gridcert/exchange/shared/errors/repository"
	serviceErrors "github.com/gridcert/exchange/shared/errors/service"
	zapLogger "github.com/gridcert/exchange/shared/logger/zap"
)

// DepositRequest is reported by the chain watcher when certificates arrive
// at a deposit address.
type DepositRequest struct {
	Address         string
	TransactionHash string
	Amount          decimal.Decimal
	Asset           models.Asset
}

func (service *Service) CreateDeposit(ctx context.Context, request DepositRequest) (models.Transfer, error) {
	const op = "Service.CreateDeposit"

	if request.TransactionHash == "" || !request.Amount.IsPositive() {
		return models.Transfer{}, fmt.Errorf("%s: %w", op, serviceErrors.ErrInvalidTransfer)
	}
	if request.Asset.Address == "" || request.Asset.TokenID == "" {
		return models.Transfer{}, fmt.Errorf("%s: %w", op, serviceErrors.ErrInvalidTransfer)
	}
	if !request.Asset.GenerationWindowValid() {
		return models.Transfer{}, fmt.Errorf("%s: %w: generation window ends before it starts", op, serviceErrors.ErrInvalidTransfer)
	}

	account, err := service.accounts.GetAccountByAddress(ctx, normalizeAddress(request.Address))
	if err != nil {
		return models.Transfer{}, fmt.Errorf("%s: %w", op, translate(err))
	}

	asset, err := service.findOrCreateAsset(ctx, request.Asset)
	if err != nil {
		return models.Transfer{}, fmt.Errorf("%s: %w", op, err)
	}

	transfer := models.Transfer{
		ID:              uuid.New(),
		UserID:          account.UserID,
		Asset:           asset,
		Amount:          request.Amount,
		TransactionHash: request.TransactionHash,
		Address:         account.Address,
		Status:          models.TransferUnconfirmed,
		Direction:       models.DirectionDeposit,
		CreatedAt:       time.Now().UTC(),
	}
	if err := service.transfers.SaveTransfer(ctx, transfer); err != nil {
		return models.Transfer{}, fmt.Errorf("%s: %w", op, translate(err))
	}

	zapLogger.Info(ctx, "deposit registered",
		zap.String("transaction_hash", transfer.TransactionHash),
		zap.String("amount", transfer.Amount.String()),
	)

	return transfer, nil
}

func (service *Service) findOrCreateAsset(ctx context.Context, candidate models.Asset) (models.Asset, error) {
	asset, err := service.assets.FindAsset(ctx, candidate.Address, candidate.TokenID)
	if err == nil {
		return asset, nil
	}
	if !errors.Is(err, repositoryErrors.ErrAssetNotFound) {
		return models.Asset{}, err
	}

	candidate.ID = uuid.New()
	if err := service.assets.SaveAsset(ctx, candidate); err != nil {
		return models.Asset{}, err
	}

	return candidate, nil
}

// ConfirmTransfer marks a transfer confirmed at blockNumber. A confirmed
// deposit becomes tradable balance.
func (service *Service) ConfirmTransfer(ctx context.Context, transactionHash string, blockNumber int64) (models.Transfer, error) {
	const op = "Service.ConfirmTransfer"

	transfer, err := service.transfers.GetTransferByHash(ctx, transactionHash)
	if err != nil {
		return models.Transfer{}, fmt.Errorf("%s: %w", op, translate(err))
	}
	if !transfer.Status.CanMoveTo(models.TransferConfirmed) {
		return models.Transfer{}, fmt.Errorf("%s: %w", op, serviceErrors.ErrInvalidTransfer)
	}

	transfer.Status = models.TransferConfirmed
	transfer.ConfirmationBlock = blockNumber

	var changes []models.PositionChange
	if transfer.Direction == models.DirectionDeposit {
		changes = append(changes, models.PositionChange{
			UserID:    transfer.UserID,
			AssetID:   transfer.Asset.ID,
			Deposited: transfer.Amount,
		})
	}

	if err := service.transfers.UpdateTransfer(ctx, transfer, changes...); err != nil {
		return models.Transfer{}, fmt.Errorf("%s: %w", op, translate(err))
	}

	zapLogger.Info(ctx, "transfer confirmed",
		zap.String("transaction_hash", transactionHash),
		zap.String("direction", transfer.Direction.String()),
		zap.Int64("block", blockNumber),
	)

	return transfer, nil
}

// FailTransfer moves a transfer to Error. A failed withdrawal gives the
// volume back.
func (service *Service) FailTransfer(ctx context.Context, transactionHash string) (models.Transfer, error) {
	const op = "Service.FailTransfer"

	transfer, err := service.transfers.GetTransferByHash(ctx, transactionHash)
	if err != nil {
		return models.Transfer{}, fmt.Errorf("%s: %w", op, translate(err))
	}
	if !transfer.Status.CanMoveTo(models.TransferError) {
		return models.Transfer{}, fmt.Errorf("%s: %w", op, serviceErrors.ErrInvalidTransfer)
	}

	transfer.Status = models.TransferError

	var changes []models.PositionChange
	if transfer.Direction == models.DirectionWithdrawal {
		changes = append(changes, models.PositionChange{
			UserID:    transfer.UserID,
			AssetID:   transfer.Asset.ID,
			Withdrawn: transfer.Amount.Neg(),
		})
	}

	if err := service.transfers.UpdateTransfer(ctx, transfer, changes...); err != nil {
		return models.Transfer{}, fmt.Errorf("%s: %w", op, translate(err))
	}

	zapLogger.Warn(ctx, "transfer failed", zap.String("transaction_hash", transactionHash))

	return transfer, nil
}

type WithdrawalRequest struct {
	UserID  uuid.UUID
	AssetID uuid.UUID
	Amount  decimal.Decimal
	Address string
}

// RequestWithdrawal debits available balance right away. The transfer id
// stands in for the transaction hash until the chain reports one.
func (service *Service) RequestWithdrawal(ctx context.Context, request WithdrawalRequest) (models.Transfer, error) {
	const op = "Service.RequestWithdrawal"

	if !request.Amount.IsPositive() || request.Address == "" {
		return models.Transfer{}, fmt.Errorf("%s: %w", op, serviceErrors.ErrInvalidTransfer)
	}

	asset, err := service.GetAsset(ctx, request.AssetID)
	if err != nil {
		return models.Transfer{}, fmt.Errorf("%s: %w", op, err)
	}

	id := uuid.New()
	transfer := models.Transfer{
		ID:              id,
		UserID:          request.UserID,
		Asset:           asset,
		Amount:          request.Amount,
		TransactionHash: id.String(),
		Address:         normalizeAddress(request.Address),
		Status:          models.TransferAccepted,
		Direction:       models.DirectionWithdrawal,
		CreatedAt:       time.Now().UTC(),
	}

	err = service.transfers.SaveTransfer(ctx, transfer, models.PositionChange{
		UserID:    request.UserID,
		AssetID:   request.AssetID,
		Withdrawn: request.Amount,
	})
	if err != nil {
		return models.Transfer{}, fmt.Errorf("%s: %w", op, translate(err))
	}

	zapLogger.Info(ctx, "withdrawal requested",
		zap.String("asset_id", request.AssetID.String()),
		zap.String("amount", request.Amount.String()),
	)

	return transfer, nil
}

func (service *Service) UserTransfers(ctx context.Context, userID uuid.UUID) ([]models.Transfer, error) {
	const op = "Service.UserTransfers"

	transfers, err := service.transfers.UserTransfers(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return transfers, nil
}

// TransferByHash is used by the publication workflow to wait for a deposit.
func (service *Service) TransferByHash(ctx context.Context, transactionHash string) (models.Transfer, error) {
	const op = "Service.TransferByHash"

	transfer, err := service.transfers.GetTransferByHash(ctx, transactionHash)
	if err != nil {
		return models.Transfer{}, fmt.Errorf("%s: %w", op, translate(err))
	}

	return transfer, nil
}
