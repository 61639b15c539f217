// Package precision holds the fixed-point rules applied to every monetary
// value the engine reads, stores or writes.
package precision

import "github.com/shopspring/decimal"

// Places is the number of fractional digits kept for every amount.
const Places int32 = 4

// Normalize rounds d to Places fractional digits, half away from zero.
func Normalize(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Format renders d normalized, always with exactly Places fractional digits.
func Format(d decimal.Decimal) string {
	return Normalize(d).StringFixed(Places)
}
