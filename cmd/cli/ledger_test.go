package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"balanced.io/internal/domain/entity"
	"balanced.io/internal/infrastructure/config"
	"balanced.io/internal/infrastructure/logger"
	"balanced.io/internal/infrastructure/metrics"
	"balanced.io/internal/infrastructure/store"
)

func TestNewLedger_Modes(t *testing.T) {
	tests := []struct {
		name         string
		mode         string
		currency     string
		wantErr      bool
		wantCurrency string
	}{
		{name: "single", mode: entity.ModeSingle},
		{name: "multi", mode: entity.ModeMulti, currency: "eth", wantCurrency: "ETH"},
		{name: "unknown", mode: "sharded", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			l, err := newLedger(tt.mode, store.NewBalanceStore(store.NewMemoryBackend()), logger.NewNopLogger(), nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			reg, err := l.Register(ctx, "alice", tt.currency)
			require.NoError(t, err)
			assert.Equal(t, entity.RegisterStatusCreated, reg.Status)

			got, err := l.Apply(ctx, entity.OpForceAdd, "alice", tt.currency, 9)
			require.NoError(t, err)
			assert.Equal(t, uint64(9), got.Free)
			assert.Equal(t, tt.wantCurrency, got.Currency)

			got, err = l.Balance(ctx, "alice", tt.currency)
			require.NoError(t, err)
			assert.Equal(t, uint64(9), got.Free)

			_, err = l.Balance(ctx, "bob", tt.currency)
			assert.ErrorIs(t, err, entity.ErrAccountNotFound)
		})
	}
}

func TestNewLedger_RoutesWithMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	l, err := newLedger(entity.ModeSingle, store.NewBalanceStore(store.NewMemoryBackend()), logger.NewNopLogger(), m)
	require.NoError(t, err)

	_, err = l.Register(context.Background(), "alice", "")
	require.NoError(t, err)

	h := l.Routes(&config.Config{}, nil, reg)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "balanced_ledger_cached_accounts 1")
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "Version: 1.0.0 Ledger\n", out.String())
}

func TestAccountCommand_ConfigErrorsStayOffStdout(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.yaml"), []byte("ledger:\n  mode: both\n"), 0o600))
	t.Setenv("CONFIG_ENV", "test")

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs([]string{"account", "show", "alice", "--config-dir", dir})
	previousDir := configDir
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		configDir = previousDir
	})

	require.Error(t, rootCmd.Execute())
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "Failed to load config")
}

func TestPrintJSON(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printJSON(&out, &entity.BalanceResponse{Account: "alice", Free: 1, Lock: 2}))
	assert.JSONEq(t, `{"account":"alice","free":1,"lock":2}`, out.String())
}
