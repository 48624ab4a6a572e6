package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CentsToAmount converts an integer cent value into a two-place decimal.
func CentsToAmount(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// AmountString renders a cent value as a fixed two-decimal string for API payloads.
func AmountString(cents int64) string {
	return CentsToAmount(cents).StringFixed(2)
}

// ParseAmount converts a decimal money string into cents. More than two
// fractional digits or a negative value is rejected.
func ParseAmount(value string) (int64, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", value)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("amount %q is negative", value)
	}
	cents := d.Shift(2)
	if !cents.IsInteger() {
		return 0, fmt.Errorf("amount %q has more than two decimal places", value)
	}
	return cents.IntPart(), nil
}
