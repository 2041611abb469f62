package store

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NATSBackend stores records in a JetStream key-value bucket.
// KV keys only allow [-/_=.A-Za-z0-9], so storage keys are base64url encoded.
type NATSBackend struct {
	nc *nats.Conn
	kv jetstream.KeyValue
}

// NewNATSBackend connects to url and creates bucket if it does not exist.
func NewNATSBackend(ctx context.Context, url, bucket string) (*NATSBackend, error) {
	nc, err := nats.Connect(url, nats.Name("balanced"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create jetstream context: %w", err)
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "balanced account balances",
		History:     1,
		Storage:     jetstream.FileStorage,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to open kv bucket %s: %w", bucket, err)
	}

	return &NATSBackend{nc: nc, kv: kv}, nil
}

func (n *NATSBackend) Name() string { return "nats" }

func (n *NATSBackend) Put(ctx context.Context, key string, value []byte) error {
	_, err := n.kv.Put(ctx, encodeKVKey(key), value)
	return err
}

func (n *NATSBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	entry, err := n.kv.Get(ctx, encodeKVKey(key))
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return entry.Value(), true, nil
}

func (n *NATSBackend) Delete(ctx context.Context, key string) error {
	return n.kv.Delete(ctx, encodeKVKey(key))
}

func (n *NATSBackend) Close() error {
	return n.nc.Drain()
}

func encodeKVKey(key string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(key))
}
