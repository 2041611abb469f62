// Package metrics holds the Prometheus instruments of the ledger.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"balanced.io/internal/domain/entity"
	"balanced.io/internal/domain/port"
)

// Outcome labels
const (
	OutcomeOK                  = "ok"
	OutcomeInsufficientBalance = "insufficient_balance"
	OutcomeNotFound            = "not_found"
	OutcomeInvalid             = "invalid"
	OutcomeStoreError          = "store_error"
	OutcomeError               = "error"
)

// Metrics holds all Prometheus metrics for the ledger.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Operations        *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	CachedAccounts    prometheus.Gauge
	StoreErrors       *prometheus.CounterVec
}

var _ port.OperationObserver = (*Metrics)(nil)

// New registers the ledger metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Operations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "balanced",
			Subsystem: "ledger",
			Name:      "operations_total",
			Help:      "Ledger operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		OperationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "balanced",
			Subsystem: "ledger",
			Name:      "operation_duration_seconds",
			Help:      "Latency of ledger operations including lock wait and store commit.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"operation"}),
		CachedAccounts: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "balanced",
			Subsystem: "ledger",
			Name:      "cached_accounts",
			Help:      "Accounts held in the repository cache.",
		}),
		StoreErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "balanced",
			Subsystem: "store",
			Name:      "errors_total",
			Help:      "Ledger operations that failed on the balance store.",
		}, []string{"operation"}),
	}
}

// ObserveOperation records one ledger call and classifies err into its outcome.
func (m *Metrics) ObserveOperation(operation string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := Outcome(err)
	m.Operations.WithLabelValues(operation, outcome).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
	if outcome == OutcomeStoreError {
		m.StoreErrors.WithLabelValues(operation).Inc()
	}
}

// SetCachedAccounts updates the cache size gauge.
func (m *Metrics) SetCachedAccounts(n int) {
	if m == nil {
		return
	}
	m.CachedAccounts.Set(float64(n))
}

// Outcome classifies err into an outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, entity.ErrInsufficientBalance):
		return OutcomeInsufficientBalance
	case errors.Is(err, entity.ErrAccountNotFound):
		return OutcomeNotFound
	case errors.Is(err, entity.ErrStoreUnavailable):
		return OutcomeStoreError
	case entity.IsValidation(err), errors.Is(err, entity.ErrBalanceOverflow):
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}
