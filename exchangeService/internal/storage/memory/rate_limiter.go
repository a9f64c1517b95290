package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// RateLimiter is a per-user token bucket used when redis is disabled.
// A bucket refills limit tokens per window and holds at most limit.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[uuid.UUID]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func NewRateLimiter(limit int64, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[uuid.UUID]*rate.Limiter),
		limit:    rate.Limit(float64(limit) / window.Seconds()),
		burst:    int(limit),
	}
}

func (r *RateLimiter) Allow(_ context.Context, userID uuid.UUID) (bool, error) {
	r.mu.Lock()
	limiter, found := r.limiters[userID]
	if !found {
		limiter = rate.NewLimiter(r.limit, r.burst)
		r.limiters[userID] = limiter
	}
	r.mu.Unlock()

	return limiter.Allow(), nil
}
