package usecase

import (
	"time"

	"balanced.io/internal/domain/port"
)

type noopObserver struct{}

func (noopObserver) ObserveOperation(string, error, time.Duration) {}

func observerOrNoop(o port.OperationObserver) port.OperationObserver {
	if o == nil {
		return noopObserver{}
	}
	return o
}
