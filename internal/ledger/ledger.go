// Package ledger maintains the global per-user Balance as a materialized view
// over expense and settlement records.
//
// Every write to an expense or settlement is paired with the adjustments
// computed here, inside the same storage transaction. Reversal is the exact
// negation of application, so deleting a record restores every touched
// balance to its previous value.
package ledger

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitr/internal/metrics"
	"github.com/mmynk/splitr/internal/models"
)

// BalanceAdjuster applies a signed delta to a user's balance, creating the
// row if it does not exist. Implementations must make each call atomic.
type BalanceAdjuster interface {
	AdjustBalance(ctx context.Context, userID string, delta decimal.Decimal, at int64) error
}

// Adjustment is a signed change to one user's balance.
type Adjustment struct {
	UserID string
	Delta  decimal.Decimal
}

// ExpenseAdjustments returns the balance changes an expense causes.
//
// For each split owned by the payer, the payer is credited once with the sum
// of all unpaid splits owned by others (only if that sum is positive). Each
// unpaid split owned by someone else debits its owner by the split amount.
func ExpenseAdjustments(splits []models.Split, payerID string) []Adjustment {
	var adjs []Adjustment
	for _, s := range splits {
		switch {
		case s.UserID == payerID:
			credit := decimal.Zero
			for _, other := range splits {
				if other.UserID != payerID && !other.Paid {
					credit = credit.Add(other.Amount)
				}
			}
			if credit.IsPositive() {
				adjs = append(adjs, Adjustment{UserID: payerID, Delta: credit})
			}
		case !s.Paid:
			adjs = append(adjs, Adjustment{UserID: s.UserID, Delta: s.Amount.Neg()})
		}
	}
	return adjs
}

// SettlementAdjustments returns the balance changes a settlement causes:
// the payer moves up by the amount and the receiver moves down by it.
func SettlementAdjustments(s *models.Settlement) []Adjustment {
	return []Adjustment{
		{UserID: s.PayerID, Delta: s.Amount},
		{UserID: s.ReceiverID, Delta: s.Amount.Neg()},
	}
}

// Negate returns adjustments with every delta sign-flipped.
func Negate(adjs []Adjustment) []Adjustment {
	out := make([]Adjustment, len(adjs))
	for i, a := range adjs {
		out[i] = Adjustment{UserID: a.UserID, Delta: a.Delta.Neg()}
	}
	return out
}

// ApplyExpenseSplits records an expense's effect on balances.
func ApplyExpenseSplits(ctx context.Context, b BalanceAdjuster, splits []models.Split, payerID string, at int64) error {
	return apply(ctx, b, ExpenseAdjustments(splits, payerID), at, "apply")
}

// ReverseExpenseSplits undoes ApplyExpenseSplits. It must be called with the
// same splits and payer that were applied.
func ReverseExpenseSplits(ctx context.Context, b BalanceAdjuster, splits []models.Split, payerID string, at int64) error {
	return apply(ctx, b, Negate(ExpenseAdjustments(splits, payerID)), at, "reverse")
}

// ApplySettlement records a settlement's effect on balances.
func ApplySettlement(ctx context.Context, b BalanceAdjuster, s *models.Settlement, at int64) error {
	return apply(ctx, b, SettlementAdjustments(s), at, "apply")
}

// ReverseSettlement undoes ApplySettlement.
func ReverseSettlement(ctx context.Context, b BalanceAdjuster, s *models.Settlement, at int64) error {
	return apply(ctx, b, Negate(SettlementAdjustments(s)), at, "reverse")
}

func apply(ctx context.Context, b BalanceAdjuster, adjs []Adjustment, at int64, op string) error {
	for _, a := range adjs {
		if err := b.AdjustBalance(ctx, a.UserID, a.Delta, at); err != nil {
			return fmt.Errorf("failed to adjust balance for %s: %w", a.UserID, err)
		}
		metrics.LedgerAdjustments.WithLabelValues(op).Inc()
	}
	return nil
}

// Replay computes the balances the given records imply, starting from zero.
func Replay(expenses []*models.Expense, settlements []*models.Settlement) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	add := func(adjs []Adjustment) {
		for _, a := range adjs {
			totals[a.UserID] = totals[a.UserID].Add(a.Delta)
		}
	}
	for _, e := range expenses {
		add(ExpenseAdjustments(e.Splits, e.PayerID))
	}
	for _, s := range settlements {
		add(SettlementAdjustments(s))
	}
	return totals
}

// Drift is a user whose stored balance differs from the replayed one.
type Drift struct {
	UserID   string
	Stored   decimal.Decimal
	Expected decimal.Decimal
}

// Compare returns every user whose stored balance differs from expected,
// sorted by user ID. Users missing from either side count as zero.
func Compare(stored []*models.Balance, expected map[string]decimal.Decimal) []Drift {
	seen := make(map[string]decimal.Decimal, len(stored))
	for _, b := range stored {
		seen[b.UserID] = b.Amount
	}
	ids := make(map[string]struct{}, len(seen)+len(expected))
	for id := range seen {
		ids[id] = struct{}{}
	}
	for id := range expected {
		ids[id] = struct{}{}
	}

	var drifts []Drift
	for id := range ids {
		if !seen[id].Equal(expected[id]) {
			drifts = append(drifts, Drift{UserID: id, Stored: seen[id], Expected: expected[id]})
		}
	}
	sort.Slice(drifts, func(i, j int) bool { return drifts[i].UserID < drifts[j].UserID })
	return drifts
}
