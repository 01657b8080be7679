// Package currency rounds and converts monetary amounts.
package currency

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"shipping-carrier-service/internal/apperr"
)

// Currency is an ISO 4217 currency with its rounding digits.
type Currency struct {
	Code   string
	Digits int32
}

// Converter rounds amounts in a currency and converts between currencies.
type Converter interface {
	Round(code string, amount decimal.Decimal) (decimal.Decimal, error)
	Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, error)
}

// Table converts through rates quoted against a single base currency:
// one unit of base is worth rate units of the currency.
type Table struct {
	base       string
	currencies map[string]Currency
	rates      map[string]decimal.Decimal
}

// NewTable creates a table quoted against base. Base has an implicit rate of 1.
func NewTable(base string, currencies ...Currency) *Table {
	t := &Table{
		base:       strings.ToUpper(base),
		currencies: make(map[string]Currency, len(currencies)+1),
		rates:      map[string]decimal.Decimal{},
	}
	t.currencies[t.base] = Currency{Code: t.base, Digits: 2}
	for _, c := range currencies {
		c.Code = strings.ToUpper(c.Code)
		t.currencies[c.Code] = c
	}
	t.rates[t.base] = decimal.NewFromInt(1)
	return t
}

// Default knows the common two-digit currencies and the zero-digit JPY.
func Default(base string) *Table {
	return NewTable(base,
		Currency{Code: "USD", Digits: 2},
		Currency{Code: "EUR", Digits: 2},
		Currency{Code: "GBP", Digits: 2},
		Currency{Code: "CAD", Digits: 2},
		Currency{Code: "JPY", Digits: 0},
	)
}

// Base returns the code rates are quoted against.
func (t *Table) Base() string { return t.base }

// SetRate sets how many units of code one unit of base is worth.
func (t *Table) SetRate(code string, rate decimal.Decimal) error {
	code = strings.ToUpper(code)
	if _, ok := t.currencies[code]; !ok {
		return fmt.Errorf("%w: currency %q", apperr.ErrNotFound, code)
	}
	if !rate.IsPositive() {
		return fmt.Errorf("%w: rate for %s must be positive, got %s", apperr.ErrInvalid, code, rate)
	}
	if code == t.base && !rate.Equal(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: base currency %s rate must be 1", apperr.ErrInvalid, code)
	}
	t.rates[code] = rate
	return nil
}

func (t *Table) lookup(code string) (Currency, error) {
	c, ok := t.currencies[strings.ToUpper(code)]
	if !ok {
		return Currency{}, fmt.Errorf("%w: currency %q", apperr.ErrNotFound, code)
	}
	return c, nil
}

// Round implements Converter.
func (t *Table) Round(code string, amount decimal.Decimal) (decimal.Decimal, error) {
	c, err := t.lookup(code)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Round(c.Digits), nil
}

// Convert implements Converter. The result is rounded in the target currency.
func (t *Table) Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	src, err := t.lookup(from)
	if err != nil {
		return decimal.Zero, err
	}
	dst, err := t.lookup(to)
	if err != nil {
		return decimal.Zero, err
	}
	if src.Code == dst.Code {
		return amount.Round(dst.Digits), nil
	}
	srcRate, ok := t.rates[src.Code]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: no rate for %s", apperr.ErrMissingConfiguration, src.Code)
	}
	dstRate, ok := t.rates[dst.Code]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: no rate for %s", apperr.ErrMissingConfiguration, dst.Code)
	}
	return amount.Div(srcRate).Mul(dstRate).Round(dst.Digits), nil
}
