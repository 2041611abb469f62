package port

import (
	"context"

	"balanced.io/internal/domain/entity"
)

// BalanceStore persists balance records by storage key.
type BalanceStore interface {
	Set(ctx context.Context, key string, balance entity.Balance) error
	// Get returns found=false when no record exists for key.
	Get(ctx context.Context, key string) (balance entity.Balance, found bool, err error)
	Delete(ctx context.Context, key string) error
	Close() error
}
