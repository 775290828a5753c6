// Package models defines the core domain models for splitr.
//
// # Records and views
//
// Expenses and Settlements are the records of what happened. Everything
// else about money is derived from them:
//   - Balance: a per-user running total maintained incrementally as records
//     are written and removed
//   - the per-group pairwise ledger, recomputed on demand by the calculator
//     package and never stored
//
// # Money
//
// Amounts are decimal.Decimal values with at most two fractional digits.
// Storage backends persist them as integer minor units so that repeated
// additive updates never accumulate binary floating point error.
//
// # Identity
//
// Relationships use ID strings rather than pointers. Users are referenced by
// ID from groups, expenses, settlements and balances, and are never deleted.
package models
