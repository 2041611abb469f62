package store

import (
	"context"
	"fmt"
	"time"

	"balanced.io/internal/domain/entity"
	"balanced.io/internal/domain/port"
)

// BalanceStore implements port.BalanceStore on a Backend.
// Every failure is wrapped with entity.ErrStoreUnavailable.
type BalanceStore struct {
	backend Backend
	codec   Codec
	prefix  string
	timeout time.Duration
}

var _ port.BalanceStore = (*BalanceStore)(nil)

// Option configures a BalanceStore.
type Option func(*BalanceStore)

// WithKeyPrefix namespaces every storage key.
func WithKeyPrefix(prefix string) Option {
	return func(s *BalanceStore) { s.prefix = prefix }
}

// WithCodec overrides the default JSON codec.
func WithCodec(c Codec) Option {
	return func(s *BalanceStore) { s.codec = c }
}

// WithTimeout bounds each backend call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *BalanceStore) { s.timeout = d }
}

// NewBalanceStore wraps backend.
func NewBalanceStore(backend Backend, opts ...Option) *BalanceStore {
	s := &BalanceStore{
		backend: backend,
		codec:   JSONCodec{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Backend returns the underlying backend name.
func (s *BalanceStore) Backend() string {
	return s.backend.Name()
}

// Set persists balance under key.
func (s *BalanceStore) Set(ctx context.Context, key string, balance entity.Balance) error {
	data, err := s.codec.Encode(balance)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", entity.ErrStoreUnavailable, key, err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.backend.Put(ctx, s.prefix+key, data); err != nil {
		return fmt.Errorf("%w: set %s: %w", entity.ErrStoreUnavailable, key, err)
	}
	return nil
}

// Get loads the balance stored under key.
func (s *BalanceStore) Get(ctx context.Context, key string) (entity.Balance, bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	data, found, err := s.backend.Get(ctx, s.prefix+key)
	if err != nil {
		return entity.Balance{}, false, fmt.Errorf("%w: get %s: %w", entity.ErrStoreUnavailable, key, err)
	}
	if !found {
		return entity.Balance{}, false, nil
	}

	balance, err := s.codec.Decode(data)
	if err != nil {
		return entity.Balance{}, false, fmt.Errorf("%w: decode %s: %v", entity.ErrStoreUnavailable, key, err)
	}
	return balance, true, nil
}

// Delete removes the record under key.
func (s *BalanceStore) Delete(ctx context.Context, key string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.backend.Delete(ctx, s.prefix+key); err != nil {
		return fmt.Errorf("%w: delete %s: %w", entity.ErrStoreUnavailable, key, err)
	}
	return nil
}

// Close releases the backend connection.
func (s *BalanceStore) Close() error {
	return s.backend.Close()
}

func (s *BalanceStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}
