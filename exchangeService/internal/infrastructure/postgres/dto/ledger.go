package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/gridcert/exchange/exchangeService/internal/domain/models"
	"github.com/gridcert/exchange/exchangeService/internal/domain/product"
)

type Account struct {
	UserID    uuid.UUID `db:"user_id"`
	Address   string    `db:"address"`
	CreatedAt time.Time `db:"created_at"`
}

func (a Account) ToDomain() models.Account {
	return models.Account{
		UserID:    a.UserID,
		Address:   a.Address,
		CreatedAt: a.CreatedAt.UTC(),
	}
}

type Asset struct {
	ID              uuid.UUID `db:"id"`
	Address         string    `db:"address"`
	TokenID         string    `db:"token_id"`
	DeviceID        string    `db:"device_id"`
	GenerationFrom  time.Time `db:"generation_from"`
	GenerationTo    time.Time `db:"generation_to"`
	DeviceType      []string  `db:"device_type"`
	Location        []string  `db:"location"`
	GridOperator    []string  `db:"grid_operator"`
	VintageYear     *int32    `db:"vintage_year"`
	VintageOperator *string   `db:"vintage_operator"`
}

func (a Asset) ToDomain() models.Asset {
	asset := models.Asset{
		ID:             a.ID,
		Address:        a.Address,
		TokenID:        a.TokenID,
		DeviceID:       a.DeviceID,
		GenerationFrom: a.GenerationFrom.UTC(),
		GenerationTo:   a.GenerationTo.UTC(),
		DeviceType:     a.DeviceType,
		Location:       a.Location,
		GridOperator:   a.GridOperator,
	}
	if a.VintageYear != nil {
		vintage := &product.Vintage{Year: int(*a.VintageYear), Operator: product.OperatorEqual}
		if a.VintageOperator != nil {
			vintage.Operator = product.Operator(*a.VintageOperator)
		}
		asset.DeviceVintage = vintage
	}

	return asset
}

func AssetFromDomain(asset models.Asset) Asset {
	result := Asset{
		ID:             asset.ID,
		Address:        asset.Address,
		TokenID:        asset.TokenID,
		DeviceID:       asset.DeviceID,
		GenerationFrom: asset.GenerationFrom,
		GenerationTo:   asset.GenerationTo,
		DeviceType:     nonNil(asset.DeviceType),
		Location:       nonNil(asset.Location),
		GridOperator:   nonNil(asset.GridOperator),
	}
	if asset.DeviceVintage != nil {
		year := int32(asset.DeviceVintage.Year)
		operator := string(asset.DeviceVintage.Operator)
		result.VintageYear = &year
		result.VintageOperator = &operator
	}

	return result
}

// Transfer is a transfers row joined with its asset. Asset columns are
// selected with an asset_ prefix.
type Transfer struct {
	ID                uuid.UUID      `db:"id"`
	UserID            uuid.UUID      `db:"user_id"`
	Amount            pgtype.Numeric `db:"amount"`
	TransactionHash   string         `db:"transaction_hash"`
	Address           string         `db:"address"`
	Status            int16          `db:"status"`
	ConfirmationBlock int64          `db:"confirmation_block"`
	Direction         int16          `db:"direction"`
	CreatedAt         time.Time      `db:"created_at"`

	AssetID              uuid.UUID `db:"asset_id"`
	AssetAddress         string    `db:"asset_address"`
	AssetTokenID         string    `db:"asset_token_id"`
	AssetDeviceID        string    `db:"asset_device_id"`
	AssetGenerationFrom  time.Time `db:"asset_generation_from"`
	AssetGenerationTo    time.Time `db:"asset_generation_to"`
	AssetDeviceType      []string  `db:"asset_device_type"`
	AssetLocation        []string  `db:"asset_location"`
	AssetGridOperator    []string  `db:"asset_grid_operator"`
	AssetVintageYear     *int32    `db:"asset_vintage_year"`
	AssetVintageOperator *string   `db:"asset_vintage_operator"`
}

func (t Transfer) ToDomain() models.Transfer {
	asset := Asset{
		ID:              t.AssetID,
		Address:         t.AssetAddress,
		TokenID:         t.AssetTokenID,
		DeviceID:        t.AssetDeviceID,
		GenerationFrom:  t.AssetGenerationFrom,
		GenerationTo:    t.AssetGenerationTo,
		DeviceType:      t.AssetDeviceType,
		Location:        t.AssetLocation,
		GridOperator:    t.AssetGridOperator,
		VintageYear:     t.AssetVintageYear,
		VintageOperator: t.AssetVintageOperator,
	}

	return models.Transfer{
		ID:                t.ID,
		UserID:            t.UserID,
		Asset:             asset.ToDomain(),
		Amount:            decimalFromNumeric(t.Amount),
		TransactionHash:   t.TransactionHash,
		Address:           t.Address,
		Status:            models.TransferStatus(t.Status),
		ConfirmationBlock: t.ConfirmationBlock,
		Direction:         models.TransferDirection(t.Direction),
		CreatedAt:         t.CreatedAt.UTC(),
	}
}

type Position struct {
	UserID    uuid.UUID      `db:"user_id"`
	AssetID   uuid.UUID      `db:"asset_id"`
	Deposited pgtype.Numeric `db:"deposited"`
	Withdrawn pgtype.Numeric `db:"withdrawn"`
	Bought    pgtype.Numeric `db:"bought"`
	Sold      pgtype.Numeric `db:"sold"`
	Reserved  pgtype.Numeric `db:"reserved"`
}

func (p Position) ToDomain() models.Position {
	return models.Position{
		UserID:    p.UserID,
		AssetID:   p.AssetID,
		Deposited: decimalFromNumeric(p.Deposited),
		Withdrawn: decimalFromNumeric(p.Withdrawn),
		Bought:    decimalFromNumeric(p.Bought),
		Sold:      decimalFromNumeric(p.Sold),
		Reserved:  decimalFromNumeric(p.Reserved),
	}
}

func PositionFromDomain(position models.Position) Position {
	return Position{
		UserID:    position.UserID,
		AssetID:   position.AssetID,
		Deposited: numericFromDecimal(position.Deposited),
		Withdrawn: numericFromDecimal(position.Withdrawn),
		Bought:    numericFromDecimal(position.Bought),
		Sold:      numericFromDecimal(position.Sold),
		Reserved:  numericFromDecimal(position.Reserved),
	}
}

func AmountFromDomain(transfer models.Transfer) pgtype.Numeric {
	return numericFromDecimal(transfer.Amount)
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
