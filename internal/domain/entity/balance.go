package entity

import "math"

// Balance is the free/lock pair held by one account.
// Free is spendable, Lock is reserved (e.g. pending settlement).
type Balance struct {
	Free uint64
	Lock uint64
}

// Total returns free + lock.
func (b Balance) Total() uint64 {
	return b.Free + b.Lock
}

// Add credits the locked partition.
func (b Balance) Add(val uint64) (Balance, error) {
	lock, err := checkedAdd(b.Lock, val)
	if err != nil {
		return b, err
	}
	b.Lock = lock
	return b, nil
}

// ForceAdd credits the free partition.
func (b Balance) ForceAdd(val uint64) (Balance, error) {
	free, err := checkedAdd(b.Free, val)
	if err != nil {
		return b, err
	}
	b.Free = free
	return b, nil
}

// LockFree moves val from free to lock.
func (b Balance) LockFree(val uint64) (Balance, error) {
	if val > b.Free {
		return b, insufficient(OpLock, val, b.Free)
	}
	lock, err := checkedAdd(b.Lock, val)
	if err != nil {
		return b, err
	}
	b.Free -= val
	b.Lock = lock
	return b, nil
}

// Unlock moves val from lock back to free.
func (b Balance) Unlock(val uint64) (Balance, error) {
	if val > b.Lock {
		return b, insufficient(OpUnlock, val, b.Lock)
	}
	free, err := checkedAdd(b.Free, val)
	if err != nil {
		return b, err
	}
	b.Lock -= val
	b.Free = free
	return b, nil
}

// Remove debits the locked partition.
func (b Balance) Remove(val uint64) (Balance, error) {
	if val > b.Lock {
		return b, insufficient(OpRemove, val, b.Lock)
	}
	b.Lock -= val
	return b, nil
}

// ForceRemove debits the free partition.
func (b Balance) ForceRemove(val uint64) (Balance, error) {
	if val > b.Free {
		return b, insufficient(OpForceRemove, val, b.Free)
	}
	b.Free -= val
	return b, nil
}

func checkedAdd(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return a, ErrBalanceOverflow
	}
	return a + b, nil
}

func insufficient(op Operation, requested, available uint64) error {
	return &InsufficientBalanceError{
		Operation: op,
		Requested: requested,
		Available: available,
	}
}
