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

type TradeStore struct {
	trades map[uuid.UUID]models.Trade
	mu     sync.RWMutex
}

func NewTradeStore() *TradeStore {
	return &TradeStore{
		trades: make(map[uuid.UUID]models.Trade, 1024),
	}
}

func (s *TradeStore) SaveTrade(ctx context.Context, trade models.Trade) error {
	const op = "storage.TradeStore.SaveTrade"

	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, found := s.trades[trade.ID]; found {
		return fmt.Errorf("%s: %w", op, repositoryErrors.ErrTradeAlreadyExists)
	}
	s.trades[trade.ID] = trade

	return nil
}

// UserTrades returns trades where userID bought or sold, oldest first.
func (s *TradeStore) UserTrades(_ context.Context, userID uuid.UUID) ([]models.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.Trade, 0)
	for _, trade := range s.trades {
		if trade.BuyerID == userID || trade.SellerID == userID {
			result = append(result, trade)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Created.Before(result[j].Created)
	})

	return result, nil
}
