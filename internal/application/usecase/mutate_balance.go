package usecase

import (
	"context"
	"time"

	"balanced.io/internal/domain/entity"
	"balanced.io/internal/domain/port"
)

// MutateBalanceUseCase applies one balance operation to one account
type MutateBalanceUseCase[K entity.Key] struct {
	repository port.LedgerRepository[K]
	observer   port.OperationObserver
}

// NewMutateBalanceUseCase creates a new MutateBalanceUseCase
func NewMutateBalanceUseCase[K entity.Key](repository port.LedgerRepository[K], observer port.OperationObserver) *MutateBalanceUseCase[K] {
	return &MutateBalanceUseCase[K]{
		repository: repository,
		observer:   observerOrNoop(observer),
	}
}

// MutateBalanceRequest contains the data for one mutation
type MutateBalanceRequest[K entity.Key] struct {
	Key       K
	Operation entity.Operation
	Value     uint64
}

// Execute resolves the account, takes its exclusive scope, applies exactly
// one operation and releases the scope on every path. The returned balance
// has already been committed to the store.
func (uc *MutateBalanceUseCase[K]) Execute(ctx context.Context, req MutateBalanceRequest[K]) (resp *entity.BalanceResponse, err error) {
	start := time.Now()
	defer func() { uc.observer.ObserveOperation(req.Operation.String(), err, time.Since(start)) }()

	if _, err := entity.ParseOperation(req.Operation.String()); err != nil {
		return nil, err
	}

	account, err := uc.repository.Resolve(ctx, req.Key)
	if err != nil {
		return nil, err
	}

	scope := account.Acquire()
	defer scope.Release()

	balance, err := scope.Apply(ctx, req.Operation, req.Value)
	if err != nil {
		return nil, err
	}

	return entity.NewBalanceResponse(req.Key.Ref(), balance), nil
}
