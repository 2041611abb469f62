package entity

import "fmt"

// Operation names one of the balance mutations.
type Operation string

const (
	OpAdd         Operation = "add"
	OpForceAdd    Operation = "force_add"
	OpLock        Operation = "lock"
	OpUnlock      Operation = "unlock"
	OpRemove      Operation = "remove"
	OpForceRemove Operation = "force_remove"
)

// Operations lists every mutation in a stable order.
var Operations = []Operation{OpAdd, OpForceAdd, OpLock, OpUnlock, OpRemove, OpForceRemove} //nolint:gochecknoglobals

// ParseOperation converts a route or CLI argument into an Operation.
func ParseOperation(s string) (Operation, error) {
	for _, op := range Operations {
		if string(op) == s {
			return op, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOperation, s)
}

// Apply runs the operation against b and returns the resulting balance.
// On error b is returned unchanged.
func (op Operation) Apply(b Balance, val uint64) (Balance, error) {
	switch op {
	case OpAdd:
		return b.Add(val)
	case OpForceAdd:
		return b.ForceAdd(val)
	case OpLock:
		return b.LockFree(val)
	case OpUnlock:
		return b.Unlock(val)
	case OpRemove:
		return b.Remove(val)
	case OpForceRemove:
		return b.ForceRemove(val)
	default:
		return b, fmt.Errorf("%w: %q", ErrUnknownOperation, string(op))
	}
}

func (op Operation) String() string {
	return string(op)
}
