package port

import "time"

// OperationObserver records the outcome of ledger use cases.
type OperationObserver interface {
	ObserveOperation(operation string, err error, elapsed time.Duration)
}
