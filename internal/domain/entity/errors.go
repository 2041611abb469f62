package entity

import (
	"errors"
	"fmt"
)

var (
	ErrMissingAccount      = errors.New("missing required field: account")
	ErrMissingCurrency     = errors.New("missing required field: currency")
	ErrUnknownCurrency     = errors.New("unknown currency")
	ErrCurrencyNotAllowed  = errors.New("currency not supported in single-currency mode")
	ErrUnknownOperation    = errors.New("unknown operation")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrBalanceOverflow     = errors.New("balance overflow")
	ErrAccountNotFound     = errors.New("account not found")
	ErrStoreUnavailable    = errors.New("balance store unavailable")
)

// InsufficientBalanceError reports which partition could not cover a mutation.
type InsufficientBalanceError struct {
	Operation Operation
	Requested uint64
	Available uint64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: operation=%s requested=%d available=%d",
		e.Operation, e.Requested, e.Available)
}

func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

// IsValidation reports whether err was caused by bad caller input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrMissingAccount) ||
		errors.Is(err, ErrMissingCurrency) ||
		errors.Is(err, ErrUnknownCurrency) ||
		errors.Is(err, ErrCurrencyNotAllowed) ||
		errors.Is(err, ErrUnknownOperation) ||
		errors.Is(err, ErrInvalidAmount)
}
