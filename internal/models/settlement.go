package models

import "github.com/shopspring/decimal"

// Settlement represents a real-world payment between two users to clear debt.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// Amount is the payment amount.
	Amount decimal.Decimal

	// Note is an optional description for the settlement.
	Note string

	// Date is the Unix timestamp when the payment happened.
	Date int64

	// PayerID is the user who paid (debtor settling up).
	PayerID string

	// ReceiverID is the user who received payment (creditor being paid).
	ReceiverID string

	// GroupID scopes the settlement to a group. Empty for one-on-one settlements.
	GroupID string

	// RelatedExpenseIDs lists the expenses this payment covers.
	// When all of them are deleted the settlement is deleted too.
	RelatedExpenseIDs []string

	// CreatedBy is the user ID who recorded this settlement.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the record was written.
	CreatedAt int64
}
