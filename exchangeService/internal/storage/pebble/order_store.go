package pebble

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/google/uuid"

	"github.com/gridcert/exchange/exchangeService/internal/domain/models"
	"github.com/gridcert/exchange/exchangeService/internal/storage/pebble/dto"
	repositoryErrors "github.com/gridcert/exchange/shared/errors/repository"
)

const keyPrefix = "order/"

// OrderStore keeps one JSON record per order under "order/<id>".
type OrderStore struct {
	db *pebble.DB
}

func Open(dir string) (*OrderStore, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("pebble.Open: %w", err)
	}
	return &OrderStore{db: db}, nil
}

func (s *OrderStore) Close() error {
	return s.db.Close()
}

func (s *OrderStore) Set(ctx context.Context, order models.Order) error {
	const op = "pebble.OrderStore.Set"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	value, err := json.Marshal(dto.FromDomain(order))
	if err != nil {
		return fmt.Errorf("%s: marshal: %w", op, err)
	}

	if err := s.db.Set(keyFor(order.ID), value, pebble.Sync); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *OrderStore) Get(ctx context.Context, id uuid.UUID) (models.Order, error) {
	const op = "pebble.OrderStore.Get"

	if err := ctx.Err(); err != nil {
		return models.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	value, closer, err := s.db.Get(keyFor(id))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return models.Order{}, fmt.Errorf("%s: %w", op, repositoryErrors.ErrOrderNotFound)
		}
		return models.Order{}, fmt.Errorf("%s: %w", op, err)
	}
	defer closer.Close()

	return decode(op, value)
}

func (s *OrderStore) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "pebble.OrderStore.Delete"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.db.Delete(keyFor(id), pebble.Sync); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *OrderStore) All(ctx context.Context) ([]models.Order, error) {
	const op = "pebble.OrderStore.All"

	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(keyPrefix),
		UpperBound: []byte("order0"),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer iter.Close()

	orders := make([]models.Order, 0)
	for iter.First(); iter.Valid(); iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		order, err := decode(op, iter.Value())
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return orders, nil
}

func decode(op string, value []byte) (models.Order, error) {
	var record dto.Order
	if err := json.Unmarshal(value, &record); err != nil {
		return models.Order{}, fmt.Errorf("%s: unmarshal: %w", op, err)
	}

	order, err := record.ToDomain()
	if err != nil {
		return models.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	return order, nil
}

func keyFor(id uuid.UUID) []byte {
	return []byte(keyPrefix + id.String())
}
