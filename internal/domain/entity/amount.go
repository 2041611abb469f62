package entity

import (
	"fmt"
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

var maxAmount = decimal.NewFromBigInt(new(big.Int).SetUint64(math.MaxUint64), 0) //nolint:gochecknoglobals

// ParseAmount converts a wire amount into ledger units. The amount must be
// a non-negative integer that fits in a uint64.
func ParseAmount(d decimal.Decimal) (uint64, error) {
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: %s is negative", ErrInvalidAmount, d.String())
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("%w: %s is not an integer", ErrInvalidAmount, d.String())
	}
	if d.GreaterThan(maxAmount) {
		return 0, fmt.Errorf("%w: %s exceeds maximum", ErrInvalidAmount, d.String())
	}
	return d.BigInt().Uint64(), nil
}

// ParseAmountString is ParseAmount for command-line input.
func ParseAmountString(s string) (uint64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return ParseAmount(d)
}
