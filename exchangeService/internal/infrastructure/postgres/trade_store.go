package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gridcert/exchange/exchangeService/internal/domain/models"
	"github.com/gridcert/exchange/exchangeService/internal/infrastructure/postgres/dto"
	repositoryErrors "github.com/gridcert/exchange/shared/errors/repository"
)

type TradeStore struct {
	pool *pgxpool.Pool
}

func NewTradeStore(pool *pgxpool.Pool) *TradeStore {
	return &TradeStore{
		pool: pool,
	}
}

func (s *TradeStore) SaveTrade(ctx context.Context, trade models.Trade) error {
	const op = "infrastructure.TradeStore.SaveTrade"

	tradeDTO := dto.TradeFromDomain(trade)

	_, err := s.pool.Exec(ctx,
		`INSERT INTO trades (id, created_at, volume, price, bid_id, ask_id, asset_id, buyer_id, seller_id)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		tradeDTO.ID,
		tradeDTO.CreatedAt,
		tradeDTO.Volume,
		tradeDTO.Price,
		tradeDTO.BidID,
		tradeDTO.AskID,
		tradeDTO.AssetID,
		tradeDTO.BuyerID,
		tradeDTO.SellerID,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("%s: %w", op, repositoryErrors.ErrTradeAlreadyExists)
		}

		return fmt.Errorf("%s: exec: %w", op, err)
	}

	return nil
}

func (s *TradeStore) UserTrades(ctx context.Context, userID uuid.UUID) ([]models.Trade, error) {
	const op = "infrastructure.TradeStore.UserTrades"

	rows, err := s.pool.Query(ctx,
		`SELECT id, created_at, volume, price, bid_id, ask_id, asset_id, buyer_id, seller_id
		 FROM trades
		 WHERE buyer_id = $1 OR seller_id = $1
		 ORDER BY created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}

	tradeDTOs, err := pgx.CollectRows(rows, pgx.RowToStructByName[dto.Trade])
	if err != nil {
		return nil, fmt.Errorf("%s: collect: %w", op, err)
	}

	result := make([]models.Trade, 0, len(tradeDTOs))
	for _, tradeDTO := range tradeDTOs {
		result = append(result, tradeDTO.ToDomain())
	}

	return result, nil
}
