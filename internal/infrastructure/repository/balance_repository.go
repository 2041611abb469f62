package repository

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"balanced.io/internal/domain/entity"
	"balanced.io/internal/domain/port"
	"balanced.io/internal/infrastructure/logger"
)

// BalanceRepository is the process-wide cache of accounts keyed by K.
// Accounts are hydrated from the store on first access and never evicted.
type BalanceRepository[K entity.Key] struct {
	// mu guards accounts. It is only held for map lookups and inserts,
	// never across a store call.
	mu       sync.RWMutex
	accounts map[K]*Account[K]

	// hydrate collapses concurrent cache misses on one key into a single store read.
	hydrate singleflight.Group

	// registerMu serializes registrations so check-then-create is atomic
	// without blocking readers of the cache.
	registerMu sync.Mutex

	store    port.BalanceStore
	logger   logger.Logger
	onResize func(size int)
}

var (
	_ port.LedgerRepository[entity.AccountID]       = (*BalanceRepository[entity.AccountID])(nil)
	_ port.LedgerRepository[entity.CurrencyAccount] = (*BalanceRepository[entity.CurrencyAccount])(nil)
)

// Option configures a BalanceRepository.
type Option func(*options)

type options struct {
	onResize func(size int)
}

// WithCacheObserver is called with the cache size after every insert.
func WithCacheObserver(fn func(size int)) Option {
	return func(o *options) {
		if fn != nil {
			o.onResize = fn
		}
	}
}

// NewBalanceRepository creates an empty repository backed by store.
func NewBalanceRepository[K entity.Key](store port.BalanceStore, logger logger.Logger, opts ...Option) *BalanceRepository[K] {
	o := options{onResize: func(int) {}}
	for _, opt := range opts {
		opt(&o)
	}
	return &BalanceRepository[K]{
		accounts: make(map[K]*Account[K]),
		store:    store,
		logger:   logger,
		onResize: o.onResize,
	}
}

// Register creates a zero balance for key unless the account is already
// cached or persisted.
func (r *BalanceRepository[K]) Register(ctx context.Context, key K) (bool, error) {
	r.registerMu.Lock()
	defer r.registerMu.Unlock()

	if _, ok := r.cached(key); ok {
		return false, nil
	}

	storageKey := key.StorageKey()
	balance, found, err := r.store.Get(ctx, storageKey)
	if err != nil {
		return false, err
	}
	if found {
		// Persisted before this process started; keep its balance
		r.insertIfAbsent(key, balance)
		return false, nil
	}

	if err := r.store.Set(ctx, storageKey, entity.Balance{}); err != nil {
		return false, err
	}
	r.insertIfAbsent(key, entity.Balance{})

	r.logger.LogInfo(ctx, "Account registered", "key", storageKey)
	return true, nil
}

// Resolve returns the shared account for key. A cache hit only takes the
// read lock. A miss reads the store outside the lock, once per key no
// matter how many callers miss together.
func (r *BalanceRepository[K]) Resolve(ctx context.Context, key K) (port.LedgerAccount, error) {
	if account, ok := r.cached(key); ok {
		return account, nil
	}

	storageKey := key.StorageKey()
	v, err, _ := r.hydrate.Do(storageKey, func() (any, error) {
		// Another caller may have hydrated it while we waited
		if account, ok := r.cached(key); ok {
			return account, nil
		}

		balance, found, err := r.store.Get(ctx, storageKey)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, fmt.Errorf("%w: %s", entity.ErrAccountNotFound, storageKey)
		}
		return r.insertIfAbsent(key, balance), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Account[K]), nil
}

func (r *BalanceRepository[K]) cached(key K) (*Account[K], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	account, ok := r.accounts[key]
	return account, ok
}

// Len returns the number of cached accounts.
func (r *BalanceRepository[K]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.accounts)
}

// insertIfAbsent caches a new account unless one was inserted concurrently,
// in which case the existing handle wins.
func (r *BalanceRepository[K]) insertIfAbsent(key K, balance entity.Balance) *Account[K] {
	r.mu.Lock()
	defer r.mu.Unlock()

	if account, ok := r.accounts[key]; ok {
		return account
	}
	account := newAccount(key, balance, r.store, r.logger)
	r.accounts[key] = account
	r.onResize(len(r.accounts))
	return account
}
