package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitr/internal/errs"
	"github.com/mmynk/splitr/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Participant is one person's input to a split calculation.
// Percentage is used by percentage splits, Amount by exact splits.
type Participant struct {
	UserID     string
	Percentage decimal.Decimal
	Amount     decimal.Decimal
}

// RoundShare rounds to two decimal places, halves away from zero.
func RoundShare(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// EqualShare returns amount/n rounded to two decimals.
func EqualShare(amount decimal.Decimal, n int) decimal.Decimal {
	return RoundShare(amount.Div(decimal.NewFromInt(int64(n))))
}

// EqualSplits divides amount equally between the payer and others.
//
// The payer's split comes first and is marked paid. Each share is rounded
// independently, so the splits may sum to slightly more or less than amount.
// When remainderToPayer is set, the payer's share absorbs the difference
// and the splits sum exactly.
func EqualSplits(amount decimal.Decimal, payerID string, others []string, remainderToPayer bool) []models.Split {
	share := EqualShare(amount, len(others)+1)

	payerShare := share
	if remainderToPayer {
		payerShare = amount.Sub(share.Mul(decimal.NewFromInt(int64(len(others)))))
	}

	splits := make([]models.Split, 0, len(others)+1)
	splits = append(splits, models.Split{UserID: payerID, Amount: payerShare, Paid: true})
	for _, id := range others {
		splits = append(splits, models.Split{UserID: id, Amount: share})
	}
	return splits
}

// CalculateSplits computes split rows for an expense of the given type.
// The participant matching payerID, if any, is marked paid.
func CalculateSplits(splitType models.SplitType, amount decimal.Decimal, payerID string, participants []Participant) ([]models.Split, error) {
	if !amount.IsPositive() {
		return nil, errs.Validation("amount must be greater than 0")
	}
	if len(participants) == 0 {
		return nil, errs.Validation("must have at least one participant")
	}
	seen := make(map[string]bool, len(participants))
	for _, p := range participants {
		if p.UserID == "" {
			return nil, errs.Validation("participant user id required")
		}
		if seen[p.UserID] {
			return nil, errs.Validation("duplicate participant: %s", p.UserID)
		}
		seen[p.UserID] = true
	}

	splits := make([]models.Split, len(participants))
	switch splitType {
	case models.SplitEqual:
		share := EqualShare(amount, len(participants))
		for i, p := range participants {
			splits[i] = models.Split{UserID: p.UserID, Amount: share}
		}

	case models.SplitPercentage:
		total := decimal.Zero
		for i, p := range participants {
			if p.Percentage.IsNegative() {
				return nil, errs.Validation("percentage for %s cannot be negative", p.UserID)
			}
			total = total.Add(p.Percentage)
			splits[i] = models.Split{UserID: p.UserID, Amount: RoundShare(amount.Mul(p.Percentage).Div(hundred))}
		}
		if total.Sub(hundred).Abs().GreaterThan(models.SplitTolerance) {
			return nil, errs.Validation("percentages must add up to 100, got %s", total)
		}

	case models.SplitExact:
		total := decimal.Zero
		for i, p := range participants {
			if p.Amount.IsNegative() {
				return nil, errs.Validation("amount for %s cannot be negative", p.UserID)
			}
			total = total.Add(p.Amount)
			splits[i] = models.Split{UserID: p.UserID, Amount: p.Amount}
		}
		if total.Sub(amount).Abs().GreaterThan(models.SplitTolerance) {
			return nil, errs.Validation("Split amounts must add up to the total expense amount")
		}

	default:
		return nil, errs.Validation("unknown split type %q", splitType)
	}

	for i := range splits {
		if splits[i].UserID == payerID {
			splits[i].Paid = true
		}
	}
	return splits, nil
}
