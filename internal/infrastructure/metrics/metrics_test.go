package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"balanced.io/internal/domain/entity"
)

func TestMetrics_ObserveOperation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveOperation("lock", nil, time.Millisecond)
	m.ObserveOperation("lock", nil, time.Millisecond)
	m.ObserveOperation("lock", fmt.Errorf("%w: set alice", entity.ErrStoreUnavailable), time.Millisecond)
	m.ObserveOperation("register", nil, time.Millisecond)
	m.SetCachedAccounts(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Operations.WithLabelValues("lock", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreErrors.WithLabelValues("lock")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("register", OutcomeOK)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.CachedAccounts))
	assert.Equal(t, 2, testutil.CollectAndCount(m.OperationDuration))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveOperation("add", nil, time.Second)
		m.SetCachedAccounts(1)
	})
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, OutcomeOK},
		{"insufficient", &entity.InsufficientBalanceError{Operation: entity.OpLock}, OutcomeInsufficientBalance},
		{"not found", fmt.Errorf("%w: bob", entity.ErrAccountNotFound), OutcomeNotFound},
		{"store", fmt.Errorf("%w: set alice", entity.ErrStoreUnavailable), OutcomeStoreError},
		{"validation", entity.ErrMissingAccount, OutcomeInvalid},
		{"overflow", entity.ErrBalanceOverflow, OutcomeInvalid},
		{"other", errors.New("boom"), OutcomeError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Outcome(tt.err))
		})
	}
}
