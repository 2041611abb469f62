package store

import (
	"context"
	"fmt"

	"balanced.io/internal/infrastructure/config"
)

// Open builds the BalanceStore selected by cfg.Driver. The returned store
// owns one pooled connection shared by every account.
func Open(ctx context.Context, cfg config.Store) (*BalanceStore, error) {
	codec, err := NewCodec(cfg.Codec)
	if err != nil {
		return nil, err
	}

	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return NewBalanceStore(backend,
		WithCodec(codec),
		WithKeyPrefix(cfg.KeyPrefix),
		WithTimeout(cfg.Timeout),
	), nil
}

func openBackend(ctx context.Context, cfg config.Store) (Backend, error) {
	switch cfg.Driver {
	case "redis":
		return NewRedisBackend(ctx, cfg.URL, cfg.PoolSize)
	case "leveldb":
		return NewLevelDBBackend(cfg.Path)
	case "sqlite", "postgres":
		return NewSQLBackend(ctx, cfg.Driver, cfg.DSN, cfg.Table)
	case "nats":
		return NewNATSBackend(ctx, cfg.URL, cfg.Bucket)
	case "memory":
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
