package usecase

import (
	"context"
	"time"

	"balanced.io/internal/domain/entity"
	"balanced.io/internal/domain/port"
)

// GetBalanceUseCase handles balance retrieval
type GetBalanceUseCase[K entity.Key] struct {
	repository port.LedgerRepository[K]
	observer   port.OperationObserver
}

// NewGetBalanceUseCase creates a new GetBalanceUseCase
func NewGetBalanceUseCase[K entity.Key](repository port.LedgerRepository[K], observer port.OperationObserver) *GetBalanceUseCase[K] {
	return &GetBalanceUseCase[K]{
		repository: repository,
		observer:   observerOrNoop(observer),
	}
}

// Execute returns the committed balance of key. The read happens inside the
// account's exclusive scope so it never sees a mutation in progress.
func (uc *GetBalanceUseCase[K]) Execute(ctx context.Context, key K) (resp *entity.BalanceResponse, err error) {
	start := time.Now()
	defer func() { uc.observer.ObserveOperation("get", err, time.Since(start)) }()

	account, err := uc.repository.Resolve(ctx, key)
	if err != nil {
		return nil, err
	}

	scope := account.Acquire()
	defer scope.Release()

	balance, err := scope.Balance(ctx)
	if err != nil {
		return nil, err
	}

	return entity.NewBalanceResponse(key.Ref(), balance), nil
}
