package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"balanced.io/internal/domain/entity"
	"balanced.io/internal/domain/port"
	"balanced.io/internal/infrastructure/logger"
)

// ErrScopeReleased is returned when a released scope is used again.
var ErrScopeReleased = errors.New("account scope already released")

// Account is the cached, lock-guarded balance of one key. Every mutation is
// committed to the store before the new state is adopted in memory.
type Account[K entity.Key] struct {
	key    K
	store  port.BalanceStore
	logger logger.Logger

	mu      sync.Mutex
	balance entity.Balance
	// stale is set when a commit failed; the store may or may not hold the
	// attempted state, so the next scope re-reads it before anything else.
	stale bool
}

var _ port.LedgerAccount = (*Account[entity.AccountID])(nil)

func newAccount[K entity.Key](key K, balance entity.Balance, store port.BalanceStore, logger logger.Logger) *Account[K] {
	return &Account[K]{
		key:     key,
		store:   store,
		logger:  logger,
		balance: balance,
	}
}

// Key returns the account key.
func (a *Account[K]) Key() K {
	return a.key
}

// Acquire blocks until the caller has exclusive access to the account.
func (a *Account[K]) Acquire() port.AccountScope {
	a.mu.Lock()
	return &accountScope[K]{account: a}
}

// refresh reloads a stale account from the store. Caller holds a.mu.
func (a *Account[K]) refresh(ctx context.Context) error {
	if !a.stale {
		return nil
	}

	balance, found, err := a.store.Get(ctx, a.key.StorageKey())
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: record %s disappeared", entity.ErrStoreUnavailable, a.key.StorageKey())
	}

	a.balance = balance
	a.stale = false
	a.logger.LogInfo(ctx, "Stale account reloaded",
		"key", a.key.StorageKey(),
		"free", balance.Free,
		"lock", balance.Lock)
	return nil
}

// accountScope is exclusive access to an Account until Release.
type accountScope[K entity.Key] struct {
	account  *Account[K]
	released bool
}

// Balance returns the last committed balance.
func (s *accountScope[K]) Balance(ctx context.Context) (entity.Balance, error) {
	if s.released {
		return entity.Balance{}, ErrScopeReleased
	}
	if err := s.account.refresh(ctx); err != nil {
		return entity.Balance{}, err
	}
	return s.account.balance, nil
}

// Apply runs op and commits the result. On any error the in-memory balance
// is unchanged and returned alongside the error.
func (s *accountScope[K]) Apply(ctx context.Context, op entity.Operation, val uint64) (entity.Balance, error) {
	if s.released {
		return entity.Balance{}, ErrScopeReleased
	}

	a := s.account
	if err := a.refresh(ctx); err != nil {
		return a.balance, err
	}

	next, err := op.Apply(a.balance, val)
	if err != nil {
		return a.balance, err
	}

	if err := a.store.Set(ctx, a.key.StorageKey(), next); err != nil {
		a.stale = true
		a.logger.LogError(ctx, "Failed to commit balance", err,
			"key", a.key.StorageKey(),
			"operation", op.String(),
			"value", val)
		return a.balance, err
	}

	a.balance = next
	return next, nil
}

// Release gives up exclusive access. Calling it more than once is a no-op.
func (s *accountScope[K]) Release() {
	if s.released {
		return
	}
	s.released = true
	s.account.mu.Unlock()
}
