package storage

import "github.com/shopspring/decimal"

// Backends persist money as integer minor units (cents) so that additive
// balance updates stay exact.

// ToMinor converts an amount to cents, rounding half away from zero.
func ToMinor(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

// FromMinor converts cents back to an amount.
func FromMinor(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
