package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"balanced.io/internal/domain/entity"
	"balanced.io/internal/domain/port"
)

// mockRepository is a mock implementation of LedgerRepository
type mockRepository struct {
	registerFunc func(ctx context.Context, key entity.AccountID) (bool, error)
	account      *mockAccount
	resolveErr   error
	resolved     []entity.AccountID
}

func (m *mockRepository) Register(ctx context.Context, key entity.AccountID) (bool, error) {
	if m.registerFunc != nil {
		return m.registerFunc(ctx, key)
	}
	return true, nil
}

func (m *mockRepository) Resolve(_ context.Context, key entity.AccountID) (port.LedgerAccount, error) {
	m.resolved = append(m.resolved, key)
	if m.resolveErr != nil {
		return nil, m.resolveErr
	}
	return m.account, nil
}

// mockAccount records how often its scope was acquired and released.
type mockAccount struct {
	balance  entity.Balance
	applyErr error
	readErr  error
	acquired int
	released int
	applied  []entity.Operation
}

func (a *mockAccount) Acquire() port.AccountScope {
	a.acquired++
	return &mockScope{account: a}
}

type mockScope struct {
	account *mockAccount
	done    bool
}

func (s *mockScope) Balance(context.Context) (entity.Balance, error) {
	if s.account.readErr != nil {
		return entity.Balance{}, s.account.readErr
	}
	return s.account.balance, nil
}

func (s *mockScope) Apply(_ context.Context, op entity.Operation, val uint64) (entity.Balance, error) {
	s.account.applied = append(s.account.applied, op)
	if s.account.applyErr != nil {
		return s.account.balance, s.account.applyErr
	}
	next, err := op.Apply(s.account.balance, val)
	if err != nil {
		return s.account.balance, err
	}
	s.account.balance = next
	return next, nil
}

func (s *mockScope) Release() {
	if s.done {
		return
	}
	s.done = true
	s.account.released++
}

// recordingObserver captures every observation.
type recordingObserver struct {
	mu   sync.Mutex
	seen []observation
}

type observation struct {
	operation string
	err       error
}

func (o *recordingObserver) ObserveOperation(operation string, err error, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seen = append(o.seen, observation{operation: operation, err: err})
}

var errStoreDown = errors.New("store down")
