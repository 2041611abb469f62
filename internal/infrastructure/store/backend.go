// Package store implements port.BalanceStore over interchangeable key-value
// backends. Backends deal in raw bytes; BalanceStore owns key prefixing,
// record encoding and per-call timeouts.
package store

import (
	"context"
	"errors"
)

// ErrClosed is returned by backends used after Close.
var ErrClosed = errors.New("store closed")

// Backend is a byte-level key-value store.
type Backend interface {
	Name() string
	Put(ctx context.Context, key string, value []byte) error
	// Get returns found=false when key is absent.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Delete(ctx context.Context, key string) error
	Close() error
}
