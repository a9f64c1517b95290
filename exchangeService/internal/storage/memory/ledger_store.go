package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/gridcert/exchange/exchangeService/internal/domain/models"
	repositoryErrors "github.com/gridcert/exchange/shared/errors/repository"
)

type positionKey struct {
	userID  uuid.UUID
	assetID uuid.UUID
}

// LedgerStore keeps accounts, assets, transfers and positions behind one
// mutex so position changes apply atomically with the transfer they belong to.
type LedgerStore struct {
	mu sync.Mutex

	accounts          map[uuid.UUID]models.Account
	accountsByAddress map[string]uuid.UUID
	assets            map[uuid.UUID]models.Asset
	transfers         map[string]models.Transfer
	positions         map[positionKey]models.Position
}

func NewLedgerStore() *LedgerStore {
	return &LedgerStore{
		accounts:          make(map[uuid.UUID]models.Account),
		accountsByAddress: make(map[string]uuid.UUID),
		assets:            make(map[uuid.UUID]models.Asset),
		transfers:         make(map[string]models.Transfer),
		positions:         make(map[positionKey]models.Position),
	}
}

func (s *LedgerStore) GetAccount(_ context.Context, userID uuid.UUID) (models.Account, error) {
	const op = "storage.LedgerStore.GetAccount"

	s.mu.Lock()
	defer s.mu.Unlock()

	account, found := s.accounts[userID]
	if !found {
		return models.Account{}, fmt.Errorf("%s: %w", op, repositoryErrors.ErrAccountNotFound)
	}

	return account, nil
}

func (s *LedgerStore) GetAccountByAddress(_ context.Context, address string) (models.Account, error) {
	const op = "storage.LedgerStore.GetAccountByAddress"

	s.mu.Lock()
	defer s.mu.Unlock()

	userID, found := s.accountsByAddress[address]
	if !found {
		return models.Account{}, fmt.Errorf("%s: %w", op, repositoryErrors.ErrAccountNotFound)
	}

	return s.accounts[userID], nil
}

func (s *LedgerStore) CreateAccount(_ context.Context, account models.Account) error {
	const op = "storage.LedgerStore.CreateAccount"

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, found := s.accounts[account.UserID]; found {
		return fmt.Errorf("%s: %w", op, repositoryErrors.ErrAccountAlreadyExists)
	}
	if _, found := s.accountsByAddress[account.Address]; found {
		return fmt.Errorf("%s: %w", op, repositoryErrors.ErrAccountAlreadyExists)
	}

	s.accounts[account.UserID] = account
	s.accountsByAddress[account.Address] = account.UserID

	return nil
}

func (s *LedgerStore) GetAsset(_ context.Context, id uuid.UUID) (models.Asset, error) {
	const op = "storage.LedgerStore.GetAsset"

	s.mu.Lock()
	defer s.mu.Unlock()

	asset, found := s.assets[id]
	if !found {
		return models.Asset{}, fmt.Errorf("%s: %w", op, repositoryErrors.ErrAssetNotFound)
	}

	return asset, nil
}

func (s *LedgerStore) FindAsset(_ context.Context, address, tokenID string) (models.Asset, error) {
	const op = "storage.LedgerStore.FindAsset"

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, asset := range s.assets {
		if asset.Address == address && asset.TokenID == tokenID {
			return asset, nil
		}
	}

	return models.Asset{}, fmt.Errorf("%s: %w", op, repositoryErrors.ErrAssetNotFound)
}

func (s *LedgerStore) SaveAsset(_ context.Context, asset models.Asset) error {
	s.mu.Lock()
	s.assets[asset.ID] = asset
	s.mu.Unlock()

	return nil
}

func (s *LedgerStore) SaveTransfer(_ context.Context, transfer models.Transfer, changes ...models.PositionChange) error {
	const op = "storage.LedgerStore.SaveTransfer"

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, found := s.transfers[transfer.TransactionHash]; found {
		return fmt.Errorf("%s: %w", op, repositoryErrors.ErrTransferAlreadyExists)
	}
	if err := s.applyLocked(changes); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.transfers[transfer.TransactionHash] = transfer

	return nil
}

func (s *LedgerStore) UpdateTransfer(_ context.Context, transfer models.Transfer, changes ...models.PositionChange) error {
	const op = "storage.LedgerStore.UpdateTransfer"

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, found := s.transfers[transfer.TransactionHash]; !found {
		return fmt.Errorf("%s: %w", op, repositoryErrors.ErrTransferNotFound)
	}
	if err := s.applyLocked(changes); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.transfers[transfer.TransactionHash] = transfer

	return nil
}

func (s *LedgerStore) GetTransferByHash(_ context.Context, transactionHash string) (models.Transfer, error) {
	const op = "storage.LedgerStore.GetTransferByHash"

	s.mu.Lock()
	defer s.mu.Unlock()

	transfer, found := s.transfers[transactionHash]
	if !found {
		return models.Transfer{}, fmt.Errorf("%s: %w", op, repositoryErrors.ErrTransferNotFound)
	}

	return transfer, nil
}

func (s *LedgerStore) UserTransfers(_ context.Context, userID uuid.UUID) ([]models.Transfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]models.Transfer, 0)
	for _, transfer := range s.transfers {
		if transfer.UserID == userID {
			result = append(result, transfer)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}

func (s *LedgerStore) Position(_ context.Context, userID, assetID uuid.UUID) (models.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.positionLocked(userID, assetID), nil
}

func (s *LedgerStore) UserPositions(_ context.Context, userID uuid.UUID) ([]models.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]models.Position, 0)
	for key, position := range s.positions {
		if key.userID == userID {
			result = append(result, position)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].AssetID.String() < result[j].AssetID.String()
	})

	return result, nil
}

func (s *LedgerStore) ApplyPositions(_ context.Context, changes ...models.PositionChange) error {
	const op = "storage.LedgerStore.ApplyPositions"

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.applyLocked(changes); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// applyLocked validates every change before writing any of them.
func (s *LedgerStore) applyLocked(changes []models.PositionChange) error {
	next := make(map[positionKey]models.Position, len(changes))

	for _, change := range changes {
		key := positionKey{userID: change.UserID, assetID: change.AssetID}

		position, found := next[key]
		if !found {
			position = s.positionLocked(change.UserID, change.AssetID)
		}

		position = position.Apply(change)
		if !position.Valid() {
			return repositoryErrors.ErrInsufficientBalance
		}
		next[key] = position
	}

	for key, position := range next {
		s.positions[key] = position
	}

	return nil
}

func (s *LedgerStore) positionLocked(userID, assetID uuid.UUID) models.Position {
	position, found := s.positions[positionKey{userID: userID, assetID: assetID}]
	if !found {
		return models.Position{UserID: userID, AssetID: assetID}
	}
	return position
}
