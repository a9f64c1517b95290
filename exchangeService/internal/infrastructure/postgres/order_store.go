package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gridcert/exchange/exchangeService/internal/domain/models"
	"github.com/gridcert/exchange/exchangeService/internal/infrastructure/postgres/dto"
	repositoryErrors "github.com/gridcert/exchange/shared/errors/repository"
)

const PostgresErrorCode = "23505"

const orderColumns = `id, side, price, start_volume, current_volume, product, valid_from,
	user_id, asset_id, direct_buy_id, status, sequence, created_at`

// OrderStore keeps the book's orders in postgres.
type OrderStore struct {
	pool *pgxpool.Pool
}

func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{
		pool: pool,
	}
}

func (o *OrderStore) Set(ctx context.Context, order models.Order) error {
	const op = "infrastructure.OrderStore.Set"

	orderDTO := dto.OrderFromDomain(order)

	_, err := o.pool.Exec(ctx,
		`INSERT INTO orders (`+orderColumns+`)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
         ON CONFLICT (id) DO UPDATE SET
             current_volume = EXCLUDED.current_volume,
             valid_from     = EXCLUDED.valid_from,
             status         = EXCLUDED.status,
             sequence       = EXCLUDED.sequence`,
		orderDTO.ID,
		orderDTO.Side,
		orderDTO.Price,
		orderDTO.StartVolume,
		orderDTO.CurrentVolume,
		orderDTO.Product,
		orderDTO.ValidFrom,
		orderDTO.UserID,
		orderDTO.AssetID,
		orderDTO.DirectBuyID,
		orderDTO.Status,
		orderDTO.Sequence,
		orderDTO.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%s: exec: %w", op, err)
	}

	return nil
}

func (o *OrderStore) Get(ctx context.Context, id uuid.UUID) (models.Order, error) {
	const op = "infrastructure.OrderStore.Get"

	rows, err := o.pool.Query(ctx,
		`SELECT `+orderColumns+`
		 FROM orders
		 WHERE id = $1
		 LIMIT 1`,
		id,
	)
	if err != nil {
		return models.Order{}, fmt.Errorf("%s: query: %w", op, err)
	}

	orderDTO, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[dto.Order])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Order{}, fmt.Errorf("%s: %w", op, repositoryErrors.ErrOrderNotFound)
		}

		return models.Order{}, fmt.Errorf("%s: collect: %w", op, err)
	}

	return orderDTO.ToDomain(), nil
}

func (o *OrderStore) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "infrastructure.OrderStore.Delete"

	if _, err := o.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id); err != nil {
		return fmt.Errorf("%s: exec: %w", op, err)
	}

	return nil
}

func (o *OrderStore) All(ctx context.Context) ([]models.Order, error) {
	const op = "infrastructure.OrderStore.All"

	rows, err := o.pool.Query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY sequence`)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}

	orderDTOs, err := pgx.CollectRows(rows, pgx.RowToStructByName[dto.Order])
	if err != nil {
		return nil, fmt.Errorf("%s: collect: %w", op, err)
	}

	result := make([]models.Order, 0, len(orderDTOs))
	for _, orderDTO := range orderDTOs {
		result = append(result, orderDTO.ToDomain())
	}

	return result, nil
}

func isDuplicateKey(err error) bool {
	var postgresErr *pgconn.PgError

	if errors.As(err, &postgresErr) {
		return postgresErr.Code == PostgresErrorCode
	}

	return false
}
