package kernel

import (
	"fmt"
	"strings"

	"shipping/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// DefaultCurrency is used when a request does not name one.
const DefaultCurrency = "USD"

// Currency is an ISO 4217 currency together with its minor-unit precision.
type Currency struct {
	unit currency.Unit
}

// ParseCurrency accepts an ISO 4217 code in any case; empty input means DefaultCurrency.
func ParseCurrency(code string) (Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = DefaultCurrency
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return Currency{}, errs.NewValueIsInvalidErrorWithCause("currency", fmt.Errorf("%q: %w", code, err))
	}
	return Currency{unit: unit}, nil
}

// MustCurrency is ParseCurrency for compile-time constants.
func MustCurrency(code string) Currency {
	c, err := ParseCurrency(code)
	if err != nil {
		panic(err)
	}
	return c
}

// Code returns the ISO 4217 code, or "" for the zero value.
func (c Currency) Code() string {
	if c.unit == (currency.Unit{}) {
		return ""
	}
	return c.unit.String()
}

// Scale is the number of minor-unit digits (2 for USD, 0 for JPY, 3 for KWD).
func (c Currency) Scale() int32 {
	scale, _ := currency.Standard.Rounding(c.unit)
	return int32(scale) //nolint:gosec // scale is at most 4
}

func (c Currency) IsZero() bool {
	return c.Code() == ""
}

// ToMinorUnits rounds amount (in major units) to the currency precision and
// returns it as an integer count of minor units.
func (c Currency) ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Round(c.Scale()).Shift(c.Scale()).IntPart()
}

// FromMinorUnits is the inverse of ToMinorUnits.
func (c Currency) FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -c.Scale())
}

// ParseMinorUnits converts a provider's decimal string amount ("12.50") to minor units.
func (c Currency) ParseMinorUnits(amount string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return 0, errs.NewValueIsInvalidErrorWithCause("amount", err)
	}
	return c.ToMinorUnits(d), nil
}

func (c Currency) String() string {
	return c.Code()
}
