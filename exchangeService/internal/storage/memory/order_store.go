package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/gridcert/exchange/exchangeService/internal/domain/models"
	repositoryErrors "github.com/gridcert/exchange/shared/errors/repository"
)

type OrderStore struct {
	orders map[uuid.UUID]models.Order
	mu     sync.RWMutex
}

func NewOrderStore() *OrderStore {
	return &OrderStore{
		orders: make(map[uuid.UUID]models.Order, 1024),
	}
}

func (s *OrderStore) Set(ctx context.Context, order models.Order) error {
	const op = "storage.OrderStore.Set"

	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	s.mu.Lock()
	s.orders[order.ID] = order
	s.mu.Unlock()

	return nil
}

func (s *OrderStore) Get(ctx context.Context, id uuid.UUID) (models.Order, error) {
	const op = "storage.OrderStore.Get"

	select {
	case <-ctx.Done():
		return models.Order{}, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	s.mu.RLock()
	result, found := s.orders[id]
	s.mu.RUnlock()

	if !found {
		return models.Order{}, fmt.Errorf("%s: %w", op, repositoryErrors.ErrOrderNotFound)
	}

	return result, nil
}

func (s *OrderStore) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "storage.OrderStore.Delete"

	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	s.mu.Lock()
	delete(s.orders, id)
	s.mu.Unlock()

	return nil
}

func (s *OrderStore) All(ctx context.Context) ([]models.Order, error) {
	const op = "storage.OrderStore.All"

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.Order, 0, len(s.orders))
	for _, order := range s.orders {
		result = append(result, order)
	}

	return result, nil
}
