package models

import "github.com/shopspring/decimal"

// DefaultCategory is assigned to expenses recorded without a category.
const DefaultCategory = "Other"

// DefaultCategories is the built-in category list offered to clients.
var DefaultCategories = []string{
	"Food & Drink",
	"Groceries",
	"Transport",
	"Housing",
	"Utilities",
	"Entertainment",
	"Travel",
	"Shopping",
	"Health",
	DefaultCategory,
}

// SplitType records how an expense's shares were derived.
// The ledger only ever looks at the resulting split amounts.
type SplitType string

const (
	SplitEqual      SplitType = "equal"
	SplitPercentage SplitType = "percentage"
	SplitExact      SplitType = "exact"
)

// Valid reports whether t is a known split type.
func (t SplitType) Valid() bool {
	switch t {
	case SplitEqual, SplitPercentage, SplitExact:
		return true
	}
	return false
}

// Split is one participant's share of an expense.
type Split struct {
	// UserID is the participant this share belongs to.
	UserID string

	// Amount is the share owed by this user.
	Amount decimal.Decimal

	// Paid marks shares that are already covered and owe nothing.
	// The payer's own share is always recorded as paid.
	Paid bool
}

// Expense represents a shared cost paid by one user and split among several.
//
// Expenses are immutable once created. Deleting one reverses its balance
// effects and detaches it from any settlement that references it.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// Description is what the money was spent on (e.g., "dinner").
	Description string

	// Amount is the total cost. Always positive with two-decimal precision.
	Amount decimal.Decimal

	// Category is a free-form label. Defaults to DefaultCategory.
	Category string

	// Date is the Unix timestamp when the expense happened.
	Date int64

	// PayerID is the user who paid the full amount.
	PayerID string

	// SplitType records how the splits were derived.
	SplitType SplitType

	// Splits are the per-participant shares.
	// Their amounts sum to Amount within SplitTolerance.
	Splits []Split

	// GroupID scopes the expense to a group. Empty for one-on-one expenses.
	GroupID string

	// CreatedBy is the user who recorded the expense (not necessarily the payer).
	CreatedBy string

	// CreatedAt is the Unix timestamp when the record was written.
	CreatedAt int64
}

// SplitTolerance is the largest accepted difference between an expense's
// amount and the sum of its splits.
var SplitTolerance = decimal.New(1, -2)

// SplitTotal returns the sum of all split amounts.
func (e *Expense) SplitTotal() decimal.Decimal {
	total := decimal.Zero
	for _, s := range e.Splits {
		total = total.Add(s.Amount)
	}
	return total
}
