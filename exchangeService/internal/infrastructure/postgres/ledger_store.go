package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gridcert/exchange/exchangeService/internal/domain/models"
	"github.com/gridcert/exchange/exchangeService/internal/infrastructure/postgres/dto"
	repositoryErrors "github.com/gridcert/exchange/shared/errors/repository"
)

const assetColumns = `id, address, token_id, device_id, generation_from, generation_to,
	device_type, location, grid_operator, vintage_year, vintage_operator`

const transferSelect = `SELECT t.id, t.user_id, t.amount, t.transaction_hash, t.address, t.status,
		t.confirmation_block, t.direction, t.created_at,
		a.id AS asset_id, a.address AS asset_address, a.token_id AS asset_token_id,
		a.device_id AS asset_device_id, a.generation_from AS asset_generation_from,
		a.generation_to AS asset_generation_to, a.device_type AS asset_device_type,
		a.location AS asset_location, a.grid_operator AS asset_grid_operator,
		a.vintage_year AS asset_vintage_year, a.vintage_operator AS asset_vintage_operator
	FROM transfers t
	JOIN assets a ON a.id = t.asset_id`

const positionColumns = `user_id, asset_id, deposited, withdrawn, bought, sold, reserved`

// LedgerStore keeps accounts, assets, transfers and positions. Position rows
// are locked with SELECT ... FOR UPDATE inside the transaction that changes them.
type LedgerStore struct {
	pool *pgxpool.Pool
}

func NewLedgerStore(pool *pgxpool.Pool) *LedgerStore {
	return &LedgerStore{
		pool: pool,
	}
}

func (s *LedgerStore) GetAccount(ctx context.Context, userID uuid.UUID) (models.Account, error) {
	const op = "infrastructure.LedgerStore.GetAccount"

	rows, err := s.pool.Query(ctx,
		`SELECT user_id, address, created_at FROM accounts WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return models.Account{}, fmt.Errorf("%s: query: %w", op, err)
	}

	return collectAccount(op, rows)
}

func (s *LedgerStore) GetAccountByAddress(ctx context.Context, address string) (models.Account, error) {
	const op = "infrastructure.LedgerStore.GetAccountByAddress"

	rows, err := s.pool.Query(ctx,
		`SELECT user_id, address, created_at FROM accounts WHERE address = $1`,
		address,
	)
	if err != nil {
		return models.Account{}, fmt.Errorf("%s: query: %w", op, err)
	}

	return collectAccount(op, rows)
}

func collectAccount(op string, rows pgx.Rows) (models.Account, error) {
	accountDTO, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[dto.Account])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Account{}, fmt.Errorf("%s: %w", op, repositoryErrors.ErrAccountNotFound)
		}

		return models.Account{}, fmt.Errorf("%s: collect: %w", op, err)
	}

	return accountDTO.ToDomain(), nil
}

func (s *LedgerStore) CreateAccount(ctx context.Context, account models.Account) error {
	const op = "infrastructure.LedgerStore.CreateAccount"

	_, err := s.pool.Exec(ctx,
		`INSERT INTO accounts (user_id, address, created_at) VALUES ($1, $2, $3)`,
		account.UserID,
		account.Address,
		account.CreatedAt,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("%s: %w", op, repositoryErrors.ErrAccountAlreadyExists)
		}

		return fmt.Errorf("%s: exec: %w", op, err)
	}

	return nil
}

func (s *LedgerStore) GetAsset(ctx context.Context, id uuid.UUID) (models.Asset, error) {
	const op = "infrastructure.LedgerStore.GetAsset"

	rows, err := s.pool.Query(ctx, `SELECT `+assetColumns+` FROM assets WHERE id = $1`, id)
	if err != nil {
		return models.Asset{}, fmt.Errorf("%s: query: %w", op, err)
	}

	return collectAsset(op, rows)
}

func (s *LedgerStore) FindAsset(ctx context.Context, address, tokenID string) (models.Asset, error) {
	const op = "infrastructure.LedgerStore.FindAsset"

	rows, err := s.pool.Query(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE address = $1 AND token_id = $2`,
		address,
		tokenID,
	)
	if err != nil {
		return models.Asset{}, fmt.Errorf("%s: query: %w", op, err)
	}

	return collectAsset(op, rows)
}

func collectAsset(op string, rows pgx.Rows) (models.Asset, error) {
	assetDTO, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[dto.Asset])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Asset{}, fmt.Errorf("%s: %w", op, repositoryErrors.ErrAssetNotFound)
		}

		return models.Asset{}, fmt.Errorf("%s: collect: %w", op, err)
	}

	return assetDTO.ToDomain(), nil
}

func (s *LedgerStore) SaveAsset(ctx context.Context, asset models.Asset) error {
	const op = "infrastructure.LedgerStore.SaveAsset"

	assetDTO := dto.AssetFromDomain(asset)

	_, err := s.pool.Exec(ctx,
		`INSERT INTO assets (`+assetColumns+`)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		assetDTO.ID,
		assetDTO.Address,
		assetDTO.TokenID,
		assetDTO.DeviceID,
		assetDTO.GenerationFrom,
		assetDTO.GenerationTo,
		assetDTO.DeviceType,
		assetDTO.Location,
		assetDTO.GridOperator,
		assetDTO.VintageYear,
		assetDTO.VintageOperator,
	)
	if err != nil {
		return fmt.Errorf("%s: exec: %w", op, err)
	}

	return nil
}

func (s *LedgerStore) SaveTransfer(ctx context.Context, transfer models.Transfer, changes ...models.PositionChange) error {
	const op = "infrastructure.LedgerStore.SaveTransfer"

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO transfers (id, user_id, asset_id, amount, transaction_hash, address,
                                    status, confirmation_block, direction, created_at)
             VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			transfer.ID,
			transfer.UserID,
			transfer.Asset.ID,
			dto.AmountFromDomain(transfer),
			transfer.TransactionHash,
			transfer.Address,
			int16(transfer.Status),
			transfer.ConfirmationBlock,
			int16(transfer.Direction),
			transfer.CreatedAt,
		)
		if err != nil {
			if isDuplicateKey(err) {
				return repositoryErrors.ErrTransferAlreadyExists
			}
			return fmt.Errorf("exec: %w", err)
		}

		return applyPositions(ctx, tx, changes)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *LedgerStore) UpdateTransfer(ctx context.Context, transfer models.Transfer, changes ...models.PositionChange) error {
	const op = "infrastructure.LedgerStore.UpdateTransfer"

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE transfers SET status = $2, confirmation_block = $3 WHERE transaction_hash = $1`,
			transfer.TransactionHash,
			int16(transfer.Status),
			transfer.ConfirmationBlock,
		)
		if err != nil {
			return fmt.Errorf("exec: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return repositoryErrors.ErrTransferNotFound
		}

		return applyPositions(ctx, tx, changes)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *LedgerStore) GetTransferByHash(ctx context.Context, transactionHash string) (models.Transfer, error) {
	const op = "infrastructure.LedgerStore.GetTransferByHash"

	rows, err := s.pool.Query(ctx, transferSelect+` WHERE t.transaction_hash = $1`, transactionHash)
	if err != nil {
		return models.Transfer{}, fmt.Errorf("%s: query: %w", op, err)
	}

	transferDTO, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[dto.Transfer])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Transfer{}, fmt.Errorf("%s: %w", op, repositoryErrors.ErrTransferNotFound)
		}

		return models.Transfer{}, fmt.Errorf("%s: collect: %w", op, err)
	}

	return transferDTO.ToDomain(), nil
}

func (s *LedgerStore) UserTransfers(ctx context.Context, userID uuid.UUID) ([]models.Transfer, error) {
	const op = "infrastructure.LedgerStore.UserTransfers"

	rows, err := s.pool.Query(ctx, transferSelect+` WHERE t.user_id = $1 ORDER BY t.created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}

	transferDTOs, err := pgx.CollectRows(rows, pgx.RowToStructByName[dto.Transfer])
	if err != nil {
		return nil, fmt.Errorf("%s: collect: %w", op, err)
	}

	result := make([]models.Transfer, 0, len(transferDTOs))
	for _, transferDTO := range transferDTOs {
		result = append(result, transferDTO.ToDomain())
	}

	return result, nil
}

func (s *LedgerStore) Position(ctx context.Context, userID, assetID uuid.UUID) (models.Position, error) {
	const op = "infrastructure.LedgerStore.Position"

	rows, err := s.pool.Query(ctx,
		`SELECT `+positionColumns+` FROM positions WHERE user_id = $1 AND asset_id = $2`,
		userID,
		assetID,
	)
	if err != nil {
		return models.Position{}, fmt.Errorf("%s: query: %w", op, err)
	}

	positionDTO, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[dto.Position])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Position{UserID: userID, AssetID: assetID}, nil
		}

		return models.Position{}, fmt.Errorf("%s: collect: %w", op, err)
	}

	return positionDTO.ToDomain(), nil
}

func (s *LedgerStore) UserPositions(ctx context.Context, userID uuid.UUID) ([]models.Position, error) {
	const op = "infrastructure.LedgerStore.UserPositions"

	rows, err := s.pool.Query(ctx,
		`SELECT `+positionColumns+` FROM positions WHERE user_id = $1 ORDER BY asset_id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}

	positionDTOs, err := pgx.CollectRows(rows, pgx.RowToStructByName[dto.Position])
	if err != nil {
		return nil, fmt.Errorf("%s: collect: %w", op, err)
	}

	result := make([]models.Position, 0, len(positionDTOs))
	for _, positionDTO := range positionDTOs {
		result = append(result, positionDTO.ToDomain())
	}

	return result, nil
}

func (s *LedgerStore) ApplyPositions(ctx context.Context, changes ...models.PositionChange) error {
	const op = "infrastructure.LedgerStore.ApplyPositions"

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return applyPositions(ctx, tx, changes)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// applyPositions locks rows in (user, asset) order so concurrent
// transactions cannot deadlock on each other.
func applyPositions(ctx context.Context, tx pgx.Tx, changes []models.PositionChange) error {
	ordered := append([]models.PositionChange(nil), changes...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].UserID != ordered[j].UserID {
			return ordered[i].UserID.String() < ordered[j].UserID.String()
		}
		return ordered[i].AssetID.String() < ordered[j].AssetID.String()
	})

	for _, change := range ordered {
		_, err := tx.Exec(ctx,
			`INSERT INTO positions (user_id, asset_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			change.UserID,
			change.AssetID,
		)
		if err != nil {
			return fmt.Errorf("insert position: %w", err)
		}

		rows, err := tx.Query(ctx,
			`SELECT `+positionColumns+` FROM positions WHERE user_id = $1 AND asset_id = $2 FOR UPDATE`,
			change.UserID,
			change.AssetID,
		)
		if err != nil {
			return fmt.Errorf("lock position: %w", err)
		}

		current, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[dto.Position])
		if err != nil {
			return fmt.Errorf("collect position: %w", err)
		}

		next := current.ToDomain().Apply(change)
		if !next.Valid() {
			return repositoryErrors.ErrInsufficientBalance
		}

		nextDTO := dto.PositionFromDomain(next)
		_, err = tx.Exec(ctx,
			`UPDATE positions
             SET deposited = $3, withdrawn = $4, bought = $5, sold = $6, reserved = $7
             WHERE user_id = $1 AND asset_id = $2`,
			nextDTO.UserID,
			nextDTO.AssetID,
			nextDTO.Deposited,
			nextDTO.Withdrawn,
			nextDTO.Bought,
			nextDTO.Sold,
			nextDTO.Reserved,
		)
		if err != nil {
			return fmt.Errorf("update position: %w", err)
		}
	}

	return nil
}
