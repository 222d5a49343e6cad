package cache

import (
	"context"
	"time"

	"tokopos/backend/internal/domain"
)

// OrderCache holds enriched order reads. Entries are invalidated on every
// order mutation, so a short TTL only bounds staleness for writers outside
// this process.
type OrderCache interface {
	Get(ctx context.Context, orderID string) (*domain.OrderDetailResponse, bool, error)
	Set(ctx context.Context, orderID string, value *domain.OrderDetailResponse, ttl time.Duration) error
	Invalidate(ctx context.Context, orderID string) error
}

type NoopOrderCache struct{}

func (NoopOrderCache) Get(ctx context.Context, orderID string) (*domain.OrderDetailResponse, bool, error) {
	return nil, false, nil
}

func (NoopOrderCache) Set(ctx context.Context, orderID string, value *domain.OrderDetailResponse, ttl time.Duration) error {
	return nil
}

func (NoopOrderCache) Invalidate(ctx context.Context, orderID string) error {
	return nil
}
