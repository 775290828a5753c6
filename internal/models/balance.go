package models

import "github.com/shopspring/decimal"

// Balance is a user's global running total across every expense and
// settlement they take part in.
//
// Positive means the user is owed money; negative means the user owes.
// There is at most one Balance per user. A user with no row has a zero balance.
type Balance struct {
	// UserID is the user this balance belongs to.
	UserID string

	// Amount is the running total.
	Amount decimal.Decimal

	// LastUpdated is the Unix timestamp of the most recent adjustment.
	LastUpdated int64
}
