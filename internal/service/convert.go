package service

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitr/internal/calculator"
	"github.com/mmynk/splitr/internal/models"
	"github.com/mmynk/splitr/pkg/api"
)

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func toAPIUser(u *models.User) *api.User {
	if u == nil {
		return nil
	}
	return &api.User{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt}
}

// toAPIGroup converts g, filling member names from users where known.
func toAPIGroup(g *models.Group, users map[string]*models.User) *api.Group {
	out := &api.Group{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		CreatedBy:   g.CreatedBy,
		CreatedAt:   g.CreatedAt,
		Members:     make([]*api.Member, len(g.Members)),
	}
	for i, m := range g.Members {
		member := &api.Member{UserID: m.UserID, Role: string(m.Role), JoinedAt: m.JoinedAt}
		if u, ok := users[m.UserID]; ok {
			member.Name = u.Name
			member.Email = u.Email
		}
		out.Members[i] = member
	}
	return out
}

func toAPIExpense(e *models.Expense) *api.Expense {
	out := &api.Expense{
		ID:          e.ID,
		Description: e.Description,
		Amount:      money(e.Amount),
		Category:    e.Category,
		Date:        e.Date,
		PayerID:     e.PayerID,
		SplitType:   string(e.SplitType),
		Splits:      toAPISplits(e.Splits),
		GroupID:     e.GroupID,
		CreatedBy:   e.CreatedBy,
		CreatedAt:   e.CreatedAt,
	}
	return out
}

func toAPIExpenses(expenses []*models.Expense) []*api.Expense {
	out := make([]*api.Expense, len(expenses))
	for i, e := range expenses {
		out[i] = toAPIExpense(e)
	}
	return out
}

func toAPISplits(splits []models.Split) []*api.Split {
	out := make([]*api.Split, len(splits))
	for i, s := range splits {
		out[i] = &api.Split{UserID: s.UserID, Amount: money(s.Amount), Paid: s.Paid}
	}
	return out
}

func toAPISettlement(s *models.Settlement) *api.Settlement {
	return &api.Settlement{
		ID:                s.ID,
		Amount:            money(s.Amount),
		Note:              s.Note,
		Date:              s.Date,
		PayerID:           s.PayerID,
		ReceiverID:        s.ReceiverID,
		GroupID:           s.GroupID,
		RelatedExpenseIDs: s.RelatedExpenseIDs,
		CreatedBy:         s.CreatedBy,
		CreatedAt:         s.CreatedAt,
	}
}

func toAPISettlements(settlements []*models.Settlement) []*api.Settlement {
	out := make([]*api.Settlement, len(settlements))
	for i, s := range settlements {
		out[i] = toAPISettlement(s)
	}
	return out
}

func toAPIDebts(debts []calculator.Debt) []*api.Debt {
	out := make([]*api.Debt, len(debts))
	for i, d := range debts {
		out[i] = &api.Debt{UserID: d.UserID, Amount: money(d.Amount)}
	}
	return out
}

func toAPIBalance(b *models.Balance, users map[string]*models.User) *api.Balance {
	if b == nil {
		return nil
	}
	out := &api.Balance{UserID: b.UserID, Amount: money(b.Amount), LastUpdated: b.LastUpdated}
	if u, ok := users[b.UserID]; ok {
		out.Name = u.Name
	}
	return out
}
