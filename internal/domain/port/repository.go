package port

import (
	"context"

	"balanced.io/internal/domain/entity"
)

// LedgerRepository is the port for the cached balance repository.
type LedgerRepository[K entity.Key] interface {
	// Register creates a zero balance for key. created is false when the
	// account already existed, in which case its balance is left untouched.
	Register(ctx context.Context, key K) (created bool, err error)
	// Resolve returns the shared account for key, hydrating it from the
	// store on first access. It returns entity.ErrAccountNotFound when no
	// record exists.
	Resolve(ctx context.Context, key K) (LedgerAccount, error)
}

// LedgerAccount is a resolved, shared account handle.
type LedgerAccount interface {
	// Acquire blocks until the caller holds exclusive access to the account.
	// The returned scope must be released on every exit path.
	Acquire() AccountScope
}

// AccountScope is exclusive access to one account.
type AccountScope interface {
	Balance(ctx context.Context) (entity.Balance, error)
	Apply(ctx context.Context, op entity.Operation, val uint64) (entity.Balance, error)
	Release()
}
