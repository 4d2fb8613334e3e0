// Package types provides common types used across Tally.
package types

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value in the smallest unit (cents) of the
// store currency. All arithmetic is integer-only, so adding and then
// subtracting the same amount restores the original value exactly.
//
// In JSON a Money is a plain number in major units, so 12550 cents is
// written as 125.5. This is the shape older backup files use.
//
// Examples:
//   - Cents(4900) = 49.00
//   - Major(299)  = 299.00
type Money int64

// minorDigits is the number of decimal places of the store currency.
const minorDigits = 2

// Cents creates a Money value from minor units.
func Cents(cents int64) Money { return Money(cents) }

// Major creates a Money value from whole major units.
func Major(units int64) Money { return Money(units * 100) }

// Zero is the zero Money value.
const Zero Money = 0

// FromDecimal converts a major-unit decimal into Money, rounding half away
// from zero to the nearest cent.
func FromDecimal(d decimal.Decimal) Money {
	return Money(d.Shift(minorDigits).Round(0).IntPart())
}

// ParseMajor parses a major-unit string such as "125.50".
func ParseMajor(s string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("money: parse %q: %w", s, err)
	}
	return FromDecimal(d), nil
}

// Decimal returns the value in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -minorDigits)
}

// Arithmetic operations

// Add adds two Money values.
func (m Money) Add(other Money) Money { return m + other }

// Subtract subtracts another Money value.
func (m Money) Subtract(other Money) Money { return m - other }

// Multiply multiplies the Money by a quantity.
func (m Money) Multiply(qty int64) Money { return m * Money(qty) }

// MulRate multiplies the Money by a decimal rate (0.1 for 10%) and rounds to
// the nearest cent.
func (m Money) MulRate(rate decimal.Decimal) Money {
	return FromDecimal(m.Decimal().Mul(rate))
}

// Negate returns the negative of the Money value.
func (m Money) Negate() Money { return -m }

// Abs returns the absolute value.
func (m Money) Abs() Money {
	if m < 0 {
		return -m
	}
	return m
}

// FloorZero returns m, or zero when m is negative.
func (m Money) FloorZero() Money {
	if m < 0 {
		return 0
	}
	return m
}

// Comparison methods

// IsZero returns true if the amount is zero.
func (m Money) IsZero() bool { return m == 0 }

// IsPositive returns true if the amount is greater than zero.
func (m Money) IsPositive() bool { return m > 0 }

// IsNegative returns true if the amount is less than zero.
func (m Money) IsNegative() bool { return m < 0 }

// LessThan returns true if this Money is less than other.
func (m Money) LessThan(other Money) bool { return m < other }

// GreaterThan returns true if this Money is greater than other.
func (m Money) GreaterThan(other Money) bool { return m > other }

// Min returns the smaller of two Money values.
func (m Money) Min(other Money) Money { return min(m, other) }

// Max returns the larger of two Money values.
func (m Money) Max(other Money) Money { return max(m, other) }

// Formatting methods

// FormatMajor returns the major unit string without currency symbol,
// e.g. "49.00" for Cents(4900).
func (m Money) FormatMajor() string {
	isNegative := m < 0
	abs := int64(m.Abs())

	result := fmt.Sprintf("%d.%02d", abs/100, abs%100)
	if isNegative {
		return "-" + result
	}
	return result
}

// Format returns the amount with the symbol of the given ISO 4217 currency.
// Examples: "$49.00", "€199.00", "CHF 12.00"
func (m Money) Format(currency string) string {
	return currencySymbol(currency) + m.FormatMajor()
}

// String returns the major unit representation.
func (m Money) String() string {
	return m.FormatMajor()
}

// MarshalJSON implements json.Marshaler.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().String()), nil
}

// UnmarshalJSON implements json.Unmarshaler. It accepts numbers and quoted
// numeric strings in major units; null decodes as zero.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*m = 0
		return nil
	}

	raw := strings.Trim(string(data), `"`)
	if raw == "" {
		*m = 0
		return nil
	}

	parsed, err := ParseMajor(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// currencySymbol returns the symbol for a currency code.
func currencySymbol(currency string) string {
	symbols := map[string]string{
		"usd": "$",
		"eur": "€",
		"gbp": "£",
		"inr": "₹",
		"bdt": "৳",
		"cad": "C$",
		"aud": "A$",
		"chf": "CHF ",
		"nzd": "NZ$",
	}
	if sym, ok := symbols[strings.ToLower(currency)]; ok {
		return sym
	}
	return strings.ToUpper(currency) + " "
}

// Sum calculates the sum of multiple Money values.
func Sum(values ...Money) Money {
	var result Money
	for _, v := range values {
		result += v
	}
	return result
}
