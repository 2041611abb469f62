package entity

import (
	"fmt"
	"strings"
)

// Currency is the discriminator used by the multi-currency key scheme.
type Currency string

const (
	USD Currency = "USD"
	BTC Currency = "BTC"
	ETH Currency = "ETH"
)

// Currencies is the closed set accepted by ParseCurrency.
var Currencies = []Currency{USD, BTC, ETH} //nolint:gochecknoglobals

// ParseCurrency accepts a currency code in any case.
func ParseCurrency(s string) (Currency, error) {
	code := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if code == "" {
		return "", ErrMissingCurrency
	}
	for _, c := range Currencies {
		if c == code {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCurrency, s)
}

// AccountRef is the transport-facing form of a key.
type AccountRef struct {
	Account  string
	Currency string
}

// Key identifies one cached balance. Implementations must be usable as map keys.
type Key interface {
	comparable
	// StorageKey is the key the balance record is persisted under.
	StorageKey() string
	Ref() AccountRef
}

// AccountID is the key of the single-currency scheme.
type AccountID string

func (a AccountID) StorageKey() string { return string(a) }

func (a AccountID) Ref() AccountRef { return AccountRef{Account: string(a)} }

func (a AccountID) String() string { return string(a) }

// CurrencyAccount is the key of the multi-currency scheme.
type CurrencyAccount struct {
	Account  string
	Currency Currency
}

func (c CurrencyAccount) StorageKey() string {
	return c.Account + ":" + string(c.Currency)
}

func (c CurrencyAccount) Ref() AccountRef {
	return AccountRef{Account: c.Account, Currency: string(c.Currency)}
}

func (c CurrencyAccount) String() string { return c.StorageKey() }

// Ledger modes select which key scheme a deployment uses.
const (
	ModeSingle = "single"
	ModeMulti  = "multi"
)

// KeyScheme builds keys of type K from the raw account/currency pair
// carried by requests.
type KeyScheme[K Key] interface {
	Mode() string
	Key(account, currency string) (K, error)
}

// SingleCurrency is the KeyScheme for AccountID. A currency must not be supplied.
type SingleCurrency struct{}

func (SingleCurrency) Mode() string { return ModeSingle }

func (SingleCurrency) Key(account, currency string) (AccountID, error) {
	account = strings.TrimSpace(account)
	if account == "" {
		return "", ErrMissingAccount
	}
	if strings.TrimSpace(currency) != "" {
		return "", fmt.Errorf("%w: %q", ErrCurrencyNotAllowed, currency)
	}
	return AccountID(account), nil
}

// MultiCurrency is the KeyScheme for CurrencyAccount.
type MultiCurrency struct{}

func (MultiCurrency) Mode() string { return ModeMulti }

func (MultiCurrency) Key(account, currency string) (CurrencyAccount, error) {
	account = strings.TrimSpace(account)
	if account == "" {
		return CurrencyAccount{}, ErrMissingAccount
	}
	c, err := ParseCurrency(currency)
	if err != nil {
		return CurrencyAccount{}, err
	}
	return CurrencyAccount{Account: account, Currency: c}, nil
}
