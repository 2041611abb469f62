package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testBackendContract checks the behaviour every Backend must share.
func testBackendContract(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()

	_, found, err := b.Get(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, found, "missing key must report not found")

	require.NoError(t, b.Put(ctx, "alice", []byte(`{"free":0,"lock":0}`)))
	got, found, err := b.Get(ctx, "alice")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, `{"free":0,"lock":0}`, string(got))

	require.NoError(t, b.Put(ctx, "alice", []byte(`{"free":40,"lock":60}`)))
	got, found, err = b.Get(ctx, "alice")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, `{"free":40,"lock":60}`, string(got))

	require.NoError(t, b.Put(ctx, "alice:BTC", []byte(`{"free":1,"lock":2}`)))
	got, found, err = b.Get(ctx, "alice:BTC")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, `{"free":1,"lock":2}`, string(got))

	require.NoError(t, b.Delete(ctx, "alice"))
	_, found, err = b.Get(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, found)

	// Deleting an absent key is not an error
	require.NoError(t, b.Delete(ctx, "bob"))
}

func TestMemoryBackend(t *testing.T) {
	b := NewMemoryBackend()
	testBackendContract(t, b)

	require.NoError(t, b.Close())
	_, _, err := b.Get(context.Background(), "alice:BTC")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestMemoryBackend_CopiesValues(t *testing.T) {
	b := NewMemoryBackend()
	ctx := context.Background()

	buf := []byte("abc")
	require.NoError(t, b.Put(ctx, "k", buf))
	buf[0] = 'x'

	got, _, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestRedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)

	b, err := NewRedisBackend(context.Background(), "redis://"+mr.Addr(), 4)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	testBackendContract(t, b)

	// Values are stored as plain strings, readable by other redis clients
	require.NoError(t, b.Put(context.Background(), "carol", []byte(`{"free":5,"lock":0}`)))
	raw, err := mr.Get("carol")
	require.NoError(t, err)
	assert.Equal(t, `{"free":5,"lock":0}`, raw)
}

func TestRedisBackend_InvalidURL(t *testing.T) {
	_, err := NewRedisBackend(context.Background(), "not-a-url", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid redis url")
}

func TestRedisBackend_ServerError(t *testing.T) {
	mr := miniredis.RunT(t)
	b, err := NewRedisBackend(context.Background(), "redis://"+mr.Addr(), 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	mr.SetError("ERR simulated outage")
	err = b.Put(context.Background(), "alice", []byte("{}"))
	require.Error(t, err)

	_, _, err = b.Get(context.Background(), "alice")
	require.Error(t, err)
}

func TestLevelDBBackend(t *testing.T) {
	b, err := NewLevelDBBackend(filepath.Join(t.TempDir(), "balances"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	testBackendContract(t, b)
}

func TestLevelDBBackend_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "balances")
	ctx := context.Background()

	b, err := NewLevelDBBackend(path)
	require.NoError(t, err)
	require.NoError(t, b.Put(ctx, "alice", []byte(`{"free":7,"lock":3}`)))
	require.NoError(t, b.Close())

	b, err = NewLevelDBBackend(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	got, found, err := b.Get(ctx, "alice")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, `{"free":7,"lock":3}`, string(got))
}

func TestSQLBackend_SQLite(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "balances.db")
	b, err := NewSQLBackend(context.Background(), "sqlite", dsn, "balances")
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	assert.Equal(t, "sqlite", b.Name())
	testBackendContract(t, b)
}

func TestSQLBackend_Postgres(t *testing.T) {
	dsn := os.Getenv("BALANCED_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("BALANCED_TEST_POSTGRES_DSN not set")
	}
	table := "balances_test_" + time.Now().Format("150405")
	b, err := NewSQLBackend(context.Background(), "postgres", dsn, table)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = b.db.Exec("DROP TABLE " + table)
		_ = b.Close()
	})

	testBackendContract(t, b)
}

func TestSQLBackend_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		driver  string
		table   string
		wantErr string
	}{
		{name: "bad table name", driver: "sqlite", table: "balances; DROP", wantErr: "invalid table name"},
		{name: "unknown driver", driver: "mysql", table: "balances", wantErr: "unsupported sql driver"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSQLBackend(context.Background(), tt.driver, ":memory:", tt.table)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func runNATSServer(t *testing.T) *natsserver.Server {
	t.Helper()
	ns, err := natsserver.NewServer(&natsserver.Options{
		Host:      "127.0.0.1",
		Port:      -1,
		JetStream: true,
		StoreDir:  t.TempDir(),
		NoLog:     true,
		NoSigs:    true,
	})
	require.NoError(t, err)

	go ns.Start()
	if !ns.ReadyForConnections(10 * time.Second) {
		t.Fatal("nats server not ready")
	}
	t.Cleanup(ns.Shutdown)
	return ns
}

func TestNATSBackend(t *testing.T) {
	ns := runNATSServer(t)

	b, err := NewNATSBackend(context.Background(), ns.ClientURL(), "balances")
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	testBackendContract(t, b)
}

func TestEncodeKVKey(t *testing.T) {
	for _, key := range []string{"alice", "alice:USD", "user@example.com", "a b/c"} {
		encoded := encodeKVKey(key)
		assert.Regexp(t, `^[-_A-Za-z0-9]+$`, encoded, key)
	}
	assert.NotEqual(t, encodeKVKey("alice:USD"), encodeKVKey("alice:BTC"))
}
