package repository

import "errors"

var (
	ErrOrderNotFound         = errors.New("order not found")
	ErrOrderAlreadyExists    = errors.New("order already exists")
	ErrTradeAlreadyExists    = errors.New("trade already exists")
	ErrAccountNotFound       = errors.New("account not found")
	ErrAccountAlreadyExists  = errors.New("account already exists")
	ErrAssetNotFound         = errors.New("asset not found")
	ErrTransferNotFound      = errors.New("transfer not found")
	ErrTransferAlreadyExists = errors.New("transfer already exists")
	ErrInsufficientBalance   = errors.New("insufficient balance")
)
