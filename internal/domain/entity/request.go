package entity

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MutationRequest is the payload of POST /v1/balances/{operation}.
type MutationRequest struct {
	Account  string              `json:"account"`
	Currency string              `json:"currency,omitempty"`
	Value    decimal.NullDecimal `json:"value"`
}

// Amount validates and returns the requested value. An absent or null
// value is rejected; an explicit zero is not.
func (r *MutationRequest) Amount() (uint64, error) {
	if !r.Value.Valid {
		return 0, fmt.Errorf("%w: missing required field: value", ErrInvalidAmount)
	}
	return ParseAmount(r.Value.Decimal)
}

// RegisterRequest is the payload of POST /v1/accounts.
type RegisterRequest struct {
	Account  string `json:"account"`
	Currency string `json:"currency,omitempty"`
}

// BalanceResponse is returned by the read accessor and every mutation.
type BalanceResponse struct {
	Account  string `json:"account"`
	Currency string `json:"currency,omitempty"`
	Free     uint64 `json:"free"`
	Lock     uint64 `json:"lock"`
}

// NewBalanceResponse pairs a key reference with its balance.
func NewBalanceResponse(ref AccountRef, b Balance) *BalanceResponse {
	return &BalanceResponse{
		Account:  ref.Account,
		Currency: ref.Currency,
		Free:     b.Free,
		Lock:     b.Lock,
	}
}

// RegisterResponse reports whether a registration created a new account.
type RegisterResponse struct {
	Status string `json:"status"`
}

const (
	RegisterStatusCreated = "created"
	RegisterStatusExists  = "exists"
)
