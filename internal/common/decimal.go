package common

import "github.com/shopspring/decimal"

// DecimalPlaces is the fixed-point precision every price and quantity
// is normalized to on admission. Comparisons and map keys use the
// canonical fixed-point representation, never a float64, so the book
// index never drifts.
const DecimalPlaces = 8

// NormalizeDecimal rounds d to DecimalPlaces fractional digits, the
// boundary conversion every externally supplied price/quantity goes
// through before it touches the book.
func NormalizeDecimal(d decimal.Decimal) decimal.Decimal {
	return d.Round(DecimalPlaces)
}

// IsPositive reports whether d is strictly greater than zero.
func IsPositive(d decimal.Decimal) bool {
	return d.Sign() > 0
}
