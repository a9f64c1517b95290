package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Counter interface {
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, expiration time.Duration) error
}

// OrderRateLimiter is a fixed-window counter per user and action.
type OrderRateLimiter struct {
	client Counter
	limit  int64
	window time.Duration
	prefix string
}

func NewOrderRateLimiter(
	client Counter,
	limit int64,
	window time.Duration,
	prefix string,
) *OrderRateLimiter {
	return &OrderRateLimiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: prefix,
	}
}

func (r *OrderRateLimiter) Allow(ctx context.Context, userID uuid.UUID) (bool, error) {
	const op = "OrderRateLimiter.Allow"

	key := r.prefix + userID.String()

	count, err := r.client.Incr(ctx, key)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	// The window starts with the first request so later hits don't extend it.
	if count == 1 {
		if err := r.client.Expire(ctx, key, r.window); err != nil {
			return false, fmt.Errorf("%s: %w", op, err)
		}
	}

	return count <= r.limit, nil
}
