package orderbook

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gridcert/exchange/exchangeService/internal/domain/models"
	"github.com/gridcert/exchange/exchangeService/internal/domain/product"
)

// attemptMatch fills incoming against the opposite side. The caller holds
// the write lock and incoming is not resting yet.
func (b *Book) attemptMatch(ctx context.Context, incoming *models.Order, now time.Time) ([]models.Trade, error) {
	opposite := b.asks
	if incoming.Side == models.SideAsk {
		opposite = b.bids
	}

	// Candidates are collected first since fills unlink orders from levels.
	candidates := make([]*models.Order, 0)
	opposite.each(func(resting *models.Order) bool {
		if !crosses(incoming, resting) {
			return false
		}
		if compatible(incoming, resting) {
			candidates = append(candidates, resting)
		}
		return true
	})

	trades := make([]models.Trade, 0, len(candidates))
	for _, resting := range candidates {
		if !incoming.CurrentVolume.IsPositive() {
			break
		}

		trade, err := b.fill(ctx, incoming, resting, now)
		if err != nil {
			return trades, err
		}
		trades = append(trades, trade)
	}

	return trades, nil
}

func crosses(incoming, resting *models.Order) bool {
	if incoming.Side == models.SideBid {
		return incoming.Price >= resting.Price
	}
	return resting.Price >= incoming.Price
}

func compatible(incoming, resting *models.Order) bool {
	bid, ask := incoming, resting
	if incoming.Side == models.SideAsk {
		bid, ask = resting, incoming
	}

	if bid.IsDirectBuy() {
		return bid.DirectBuyID == ask.ID
	}

	return product.Matches(ask.Product, product.FilterOf(bid.Product))
}

// fill executes one pairing. Both new volumes are checked before either
// order changes, and the resting order is stored before memory is touched.
func (b *Book) fill(ctx context.Context, incoming, resting *models.Order, now time.Time) (models.Trade, error) {
	volume := decimal.Min(incoming.CurrentVolume, resting.CurrentVolume)
	incomingLeft := incoming.CurrentVolume.Sub(volume)
	restingLeft := resting.CurrentVolume.Sub(volume)

	if !volume.IsPositive() || incomingLeft.IsNegative() || restingLeft.IsNegative() {
		return models.Trade{}, errors.Wrapf(ErrInvariantViolation,
			"fill %s against %s: volume %s leaves %s and %s",
			incoming.ID, resting.ID, volume, incomingLeft, restingLeft)
	}
	if _, found := b.active[resting.ID]; !found {
		return models.Trade{}, errors.Wrapf(ErrInvariantViolation, "resting order %s is not in the book", resting.ID)
	}

	updated := *resting
	updated.CurrentVolume = restingLeft
	if restingLeft.IsZero() {
		updated.Status = models.StatusFilled
	}
	if err := b.store.Set(ctx, updated); err != nil {
		return models.Trade{}, err
	}

	if updated.Status == models.StatusFilled {
		b.sideOf(resting.Side).remove(resting)
		delete(b.active, resting.ID)
	}
	*resting = updated
	incoming.CurrentVolume = incomingLeft

	bid, ask := incoming, resting
	if incoming.Side == models.SideAsk {
		bid, ask = resting, incoming
	}

	return models.Trade{
		ID:       uuid.New(),
		Created:  now,
		Volume:   volume,
		Price:    resting.Price,
		BidID:    bid.ID,
		AskID:    ask.ID,
		AssetID:  ask.AssetID,
		BuyerID:  bid.UserID,
		SellerID: ask.UserID,
	}, nil
}
