// Package calculator holds the pure arithmetic behind splits and group balances.
package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitr/internal/models"
)

// Ledger is a directed debt matrix: ledger[a][b] is what a owes b.
type Ledger map[string]map[string]decimal.Decimal

// Get returns ledger[from][to], zero if absent.
func (l Ledger) Get(from, to string) decimal.Decimal {
	return l[from][to]
}

func (l Ledger) set(from, to string, amount decimal.Decimal) {
	row, ok := l[from]
	if !ok {
		row = make(map[string]decimal.Decimal)
		l[from] = row
	}
	row[to] = amount
}

func (l Ledger) add(from, to string, amount decimal.Decimal) {
	l.set(from, to, l.Get(from, to).Add(amount))
}

// Users returns every user appearing on either side, sorted.
func (l Ledger) Users() []string {
	set := make(map[string]struct{})
	for from, row := range l {
		set[from] = struct{}{}
		for to := range row {
			set[to] = struct{}{}
		}
	}
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clone returns a deep copy.
func (l Ledger) Clone() Ledger {
	out := make(Ledger, len(l))
	for from, row := range l {
		cp := make(map[string]decimal.Decimal, len(row))
		for to, amt := range row {
			cp[to] = amt
		}
		out[from] = cp
	}
	return out
}

// Debt is one counterpart and an amount in a member's owes/owedBy view.
type Debt struct {
	UserID string
	Amount decimal.Decimal
}

// MemberBalance is a group member's position restricted to the group's records.
type MemberBalance struct {
	UserID string
	Total  decimal.Decimal // Positive = owed money, Negative = owes money
	Owes   []Debt          // who this member owes, after netting
	OwedBy []Debt          // who owes this member, after netting
}

// DebtEdge represents a suggested payment from one person to another.
type DebtEdge struct {
	From   string // Person who pays
	To     string // Person who is paid
	Amount decimal.Decimal
}

// BuildLedger accumulates per-user totals and the raw (un-netted) ledger
// from a group's expenses and settlements.
//
// Every split that is neither the payer's own nor already paid moves its
// amount from the split owner to the payer. Every settlement moves its
// amount from receiver to payer and reduces what the payer owes the receiver.
// Every member starts at zero; users who appear in records but are no longer
// members are accumulated too.
func BuildLedger(memberIDs []string, expenses []*models.Expense, settlements []*models.Settlement) (map[string]decimal.Decimal, Ledger) {
	totals := make(map[string]decimal.Decimal, len(memberIDs))
	ledger := make(Ledger, len(memberIDs))
	for _, a := range memberIDs {
		totals[a] = decimal.Zero
		for _, b := range memberIDs {
			if a != b {
				ledger.set(a, b, decimal.Zero)
			}
		}
	}

	for _, exp := range expenses {
		payer := exp.PayerID
		for _, split := range exp.Splits {
			if split.UserID == payer || split.Paid {
				continue
			}
			totals[payer] = totals[payer].Add(split.Amount)
			totals[split.UserID] = totals[split.UserID].Sub(split.Amount)
			ledger.add(split.UserID, payer, split.Amount)
		}
	}

	for _, s := range settlements {
		totals[s.PayerID] = totals[s.PayerID].Add(s.Amount)
		totals[s.ReceiverID] = totals[s.ReceiverID].Sub(s.Amount)
		ledger.add(s.PayerID, s.ReceiverID, s.Amount.Neg())
	}

	return totals, ledger
}

// Net collapses each pair of opposing debts into a single direction.
//
// Pairs are visited as (a, b) with a < b by identifier. The result has at
// most one non-zero direction per pair and no negative entries. The input
// is not modified, and netting a netted ledger returns it unchanged.
func Net(raw Ledger) Ledger {
	out := raw.Clone()
	ids := out.Users()
	for i, a := range ids {
		for _, b := range ids[i+1:] {
			diff := out.Get(a, b).Sub(out.Get(b, a))
			switch diff.Sign() {
			case 1:
				out.set(a, b, diff)
				out.set(b, a, decimal.Zero)
			case -1:
				out.set(b, a, diff.Neg())
				out.set(a, b, decimal.Zero)
			default:
				out.set(a, b, decimal.Zero)
				out.set(b, a, decimal.Zero)
			}
		}
	}
	return out
}

// GroupBalances computes each current member's total and netted debts.
// Owes and OwedBy keep strictly positive amounts, sorted by counterpart ID.
func GroupBalances(memberIDs []string, expenses []*models.Expense, settlements []*models.Settlement) []MemberBalance {
	totals, raw := BuildLedger(memberIDs, expenses, settlements)
	netted := Net(raw)
	ids := netted.Users()

	balances := make([]MemberBalance, 0, len(memberIDs))
	for _, m := range memberIDs {
		mb := MemberBalance{UserID: m, Total: totals[m]}
		for _, other := range ids {
			if other == m {
				continue
			}
			if amt := netted.Get(m, other); amt.IsPositive() {
				mb.Owes = append(mb.Owes, Debt{UserID: other, Amount: amt})
			}
			if amt := netted.Get(other, m); amt.IsPositive() {
				mb.OwedBy = append(mb.OwedBy, Debt{UserID: other, Amount: amt})
			}
		}
		balances = append(balances, mb)
	}
	return balances
}

// SuggestTransfers proposes a short list of payments that would bring every
// member's total to zero.
//
// Greedy algorithm: match largest debts with largest credits.
func SuggestTransfers(balances []MemberBalance) []DebtEdge {
	type party struct {
		id     string
		amount decimal.Decimal
	}
	var creditors, debtors []party
	for _, b := range balances {
		switch b.Total.Sign() {
		case 1:
			creditors = append(creditors, party{b.UserID, b.Total})
		case -1:
			debtors = append(debtors, party{b.UserID, b.Total.Neg()})
		}
	}
	byAmount := func(ps []party) func(i, j int) bool {
		return func(i, j int) bool {
			if c := ps[i].amount.Cmp(ps[j].amount); c != 0 {
				return c > 0
			}
			return ps[i].id < ps[j].id
		}
	}
	sort.Slice(creditors, byAmount(creditors))
	sort.Slice(debtors, byAmount(debtors))

	var edges []DebtEdge
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := decimal.Min(debtors[i].amount, creditors[j].amount)
		if amount.IsPositive() {
			edges = append(edges, DebtEdge{From: debtors[i].id, To: creditors[j].id, Amount: amount})
		}

		debtors[i].amount = debtors[i].amount.Sub(amount)
		creditors[j].amount = creditors[j].amount.Sub(amount)

		// Move to next debtor/creditor if fully settled
		if !debtors[i].amount.IsPositive() {
			i++
		}
		if !creditors[j].amount.IsPositive() {
			j++
		}
	}
	return edges
}
