package usecase

import (
	"context"
	"time"

	"balanced.io/internal/domain/entity"
	"balanced.io/internal/domain/port"
)

// RegisterAccountUseCase handles account registration
type RegisterAccountUseCase[K entity.Key] struct {
	repository port.LedgerRepository[K]
	observer   port.OperationObserver
}

// NewRegisterAccountUseCase creates a new RegisterAccountUseCase
func NewRegisterAccountUseCase[K entity.Key](repository port.LedgerRepository[K], observer port.OperationObserver) *RegisterAccountUseCase[K] {
	return &RegisterAccountUseCase[K]{
		repository: repository,
		observer:   observerOrNoop(observer),
	}
}

// Execute registers key with a zero balance. Registering an existing
// account is not an error; it reports RegisterStatusExists.
func (uc *RegisterAccountUseCase[K]) Execute(ctx context.Context, key K) (resp *entity.RegisterResponse, err error) {
	start := time.Now()
	defer func() { uc.observer.ObserveOperation("register", err, time.Since(start)) }()

	created, err := uc.repository.Register(ctx, key)
	if err != nil {
		return nil, err
	}

	status := entity.RegisterStatusExists
	if created {
		status = entity.RegisterStatusCreated
	}
	return &entity.RegisterResponse{Status: status}, nil
}
