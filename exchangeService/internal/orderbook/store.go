package orderbook

import (
	"context"

	"github.com/google/uuid"

	"github.com/gridcert/exchange/exchangeService/internal/domain/models"
)

// Store persists orders by id. Get returns repository.ErrOrderNotFound for
// unknown ids and Delete of an unknown id is a no-op. Terminal orders stay
// in the store until purged.
type Store interface {
	Get(ctx context.Context, id uuid.UUID) (models.Order, error)
	Set(ctx context.Context, order models.Order) error
	Delete(ctx context.Context, id uuid.UUID) error
	All(ctx context.Context) ([]models.Order, error)
}
