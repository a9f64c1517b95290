package dto

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gridcert/exchange/exchangeService/internal/domain/models"
	"github.com/gridcert/exchange/exchangeService/internal/services/ledger"
)

var (
	errHashRequired    = errors.New("transactionHash is required")
	errAddressRequired = errors.New("address is required")
	errAmountRequired  = errors.New("amount must be > 0")
	errTokenRequired   = errors.New("asset address and tokenId are required")
	errBlockRequired   = errors.New("blockNumber must be > 0")
	errGenerationOrder = errors.New("asset generationFrom must not be after generationTo")
)

type Asset struct {
	ID             uuid.UUID `json:"id"`
	Address        string    `json:"address"`
	TokenID        string    `json:"tokenId"`
	DeviceID       string    `json:"deviceId"`
	GenerationFrom time.Time `json:"generationFrom"`
	GenerationTo   time.Time `json:"generationTo"`
	DeviceType     []string  `json:"deviceType,omitempty"`
	Location       []string  `json:"location,omitempty"`
	GridOperator   []string  `json:"gridOperator,omitempty"`
	DeviceVintage  *Vintage  `json:"deviceVintage,omitempty"`
}

func (a Asset) ToDomain() models.Asset {
	return models.Asset{
		ID:             a.ID,
		Address:        a.Address,
		TokenID:        a.TokenID,
		DeviceID:       a.DeviceID,
		GenerationFrom: a.GenerationFrom.UTC(),
		GenerationTo:   a.GenerationTo.UTC(),
		DeviceType:     a.DeviceType,
		Location:       a.Location,
		GridOperator:   a.GridOperator,
		DeviceVintage:  a.DeviceVintage.toDomain(),
	}
}

func AssetFromDomain(asset models.Asset) Asset {
	return Asset{
		ID:             asset.ID,
		Address:        asset.Address,
		TokenID:        asset.TokenID,
		DeviceID:       asset.DeviceID,
		GenerationFrom: asset.GenerationFrom,
		GenerationTo:   asset.GenerationTo,
		DeviceType:     asset.DeviceType,
		Location:       asset.Location,
		GridOperator:   asset.GridOperator,
		DeviceVintage:  vintageFromDomain(asset.DeviceVintage),
	}
}

type AccountAsset struct {
	Asset  Asset           `json:"asset"`
	Amount decimal.Decimal `json:"amount"`
}

type AccountBalance struct {
	Available []AccountAsset `json:"available"`
	Locked    []AccountAsset `json:"locked"`
}

type Account struct {
	Address  string         `json:"address"`
	Balances AccountBalance `json:"balances"`
}

func AccountFromDomain(balances ledger.AccountBalances) Account {
	return Account{
		Address: balances.Account.Address,
		Balances: AccountBalance{
			Available: accountAssets(balances.Available),
			Locked:    accountAssets(balances.Locked),
		},
	}
}

func accountAssets(balances []models.Balance) []AccountAsset {
	result := make([]AccountAsset, 0, len(balances))
	for _, balance := range balances {
		result = append(result, AccountAsset{Asset: AssetFromDomain(balance.Asset), Amount: balance.Amount})
	}
	return result
}

type Transfer struct {
	ID                uuid.UUID       `json:"id"`
	UserID            uuid.UUID       `json:"userId"`
	Asset             Asset           `json:"asset"`
	Amount            decimal.Decimal `json:"amount"`
	TransactionHash   string          `json:"transactionHash"`
	Address           string          `json:"address"`
	Status            string          `json:"status"`
	ConfirmationBlock int64           `json:"confirmationBlock,omitempty"`
	Direction         string          `json:"direction"`
	CreatedAt         time.Time       `json:"createdAt"`
}

func TransferFromDomain(transfer models.Transfer) Transfer {
	return Transfer{
		ID:                transfer.ID,
		UserID:            transfer.UserID,
		Asset:             AssetFromDomain(transfer.Asset),
		Amount:            transfer.Amount,
		TransactionHash:   transfer.TransactionHash,
		Address:           transfer.Address,
		Status:            transfer.Status.String(),
		ConfirmationBlock: transfer.ConfirmationBlock,
		Direction:         transfer.Direction.String(),
		CreatedAt:         transfer.CreatedAt,
	}
}

func TransfersFromDomain(transfers []models.Transfer) []Transfer {
	result := make([]Transfer, 0, len(transfers))
	for _, transfer := range transfers {
		result = append(result, TransferFromDomain(transfer))
	}
	return result
}

type CreateDeposit struct {
	Address         string          `json:"address"`
	TransactionHash string          `json:"transactionHash"`
	Amount          decimal.Decimal `json:"amount"`
	Asset           Asset           `json:"asset"`
}

func (r CreateDeposit) Validate() error {
	switch {
	case r.Address == "":
		return errAddressRequired
	case r.TransactionHash == "":
		return errHashRequired
	case !r.Amount.IsPositive():
		return errAmountRequired
	case r.Asset.Address == "" || r.Asset.TokenID == "":
		return errTokenRequired
	case !r.Asset.ToDomain().GenerationWindowValid():
		return errGenerationOrder
	}
	return nil
}

func (r CreateDeposit) ToDomain() ledger.DepositRequest {
	return ledger.DepositRequest{
		Address:         r.Address,
		TransactionHash: r.TransactionHash,
		Amount:          r.Amount,
		Asset:           r.Asset.ToDomain(),
	}
}

type ConfirmTransfer struct {
	TransactionHash string `json:"transactionHash"`
	BlockNumber     int64  `json:"blockNumber"`
}

func (r ConfirmTransfer) Validate() error {
	if r.TransactionHash == "" {
		return errHashRequired
	}
	if r.BlockNumber <= 0 {
		return errBlockRequired
	}
	return nil
}

type FailTransfer struct {
	TransactionHash string `json:"transactionHash"`
}

func (r FailTransfer) Validate() error {
	if r.TransactionHash == "" {
		return errHashRequired
	}
	return nil
}

type CreateWithdrawal struct {
	AssetID uuid.UUID       `json:"assetId"`
	Amount  decimal.Decimal `json:"amount"`
	Address string          `json:"address"`
}

func (r CreateWithdrawal) Validate() error {
	switch {
	case r.AssetID == uuid.Nil:
		return errAssetRequired
	case !r.Amount.IsPositive():
		return errAmountRequired
	case r.Address == "":
		return errAddressRequired
	}
	return nil
}

func (r CreateWithdrawal) ToDomain(userID uuid.UUID) ledger.WithdrawalRequest {
	return ledger.WithdrawalRequest{
		UserID:  userID,
		AssetID: r.AssetID,
		Amount:  r.Amount,
		Address: r.Address,
	}
}
