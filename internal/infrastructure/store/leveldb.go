package store

import (
	"context"
	"fmt"
	"os"

	"github.com/btcsuite/goleveldb/leveldb"
	"github.com/btcsuite/goleveldb/leveldb/filter"
	"github.com/btcsuite/goleveldb/leveldb/opt"
)

// LevelDBBackend stores records in an embedded LevelDB database.
type LevelDBBackend struct {
	ldb *leveldb.DB
}

// NewLevelDBBackend opens (or creates) the database at path.
func NewLevelDBBackend(path string) (*LevelDBBackend, error) {
	if err := os.MkdirAll(path, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create leveldb directory: %w", err)
	}

	opts := opt.Options{
		Strict:      opt.DefaultStrict,
		Compression: opt.NoCompression,
		Filter:      filter.NewBloomFilter(10),
	}
	ldb, err := leveldb.OpenFile(path, &opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open leveldb at %s: %w", path, err)
	}

	return &LevelDBBackend{ldb: ldb}, nil
}

func (l *LevelDBBackend) Name() string { return "leveldb" }

// Put writes synchronously so an acknowledged commit survives a crash.
func (l *LevelDBBackend) Put(_ context.Context, key string, value []byte) error {
	return l.ldb.Put([]byte(key), value, &opt.WriteOptions{Sync: true})
}

func (l *LevelDBBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	data, err := l.ldb.Get([]byte(key), nil)
	if err == leveldb.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (l *LevelDBBackend) Delete(_ context.Context, key string) error {
	return l.ldb.Delete([]byte(key), &opt.WriteOptions{Sync: true})
}

func (l *LevelDBBackend) Close() error {
	return l.ldb.Close()
}
