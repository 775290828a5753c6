// Package notify tells participants about expenses recorded on their behalf.
package notify

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"strings"

	"github.com/resend/resend-go/v2"
	"github.com/shopspring/decimal"
)

// Recipient is one participant who owes a share of an expense.
type Recipient struct {
	Name  string
	Email string
	Share decimal.Decimal
}

// ExpenseNotice describes a newly recorded expense.
type ExpenseNotice struct {
	ExpenseID   string
	Description string
	Amount      decimal.Decimal
	Currency    string
	PayerName   string
	Recipients  []Recipient
}

// Notifier delivers expense notices.
type Notifier interface {
	ExpenseCreated(ctx context.Context, n ExpenseNotice) error
}

// Nop discards every notice.
type Nop struct{}

func (Nop) ExpenseCreated(context.Context, ExpenseNotice) error { return nil }

// Resend emails every recipient through the Resend API.
type Resend struct {
	client *resend.Client
	from   string
}

// NewResend creates a Resend notifier sending from the given address.
func NewResend(apiKey, from string) *Resend {
	return &Resend{client: resend.NewClient(apiKey), from: from}
}

// ExpenseCreated sends one email per recipient with an address. It attempts
// every recipient and returns the first failure.
func (r *Resend) ExpenseCreated(ctx context.Context, n ExpenseNotice) error {
	var firstErr error
	for _, rcpt := range n.Recipients {
		if rcpt.Email == "" {
			continue
		}
		body, err := renderExpenseEmail(n, rcpt)
		if err != nil {
			return err
		}
		params := &resend.SendEmailRequest{
			From:    r.from,
			To:      []string{rcpt.Email},
			Subject: expenseSubject(n),
			Html:    body,
		}
		res, err := r.client.Emails.SendWithContext(ctx, params)
		if err != nil {
			slog.Warn("Expense email failed", "expense_id", n.ExpenseID, "to", rcpt.Email, "error", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to send expense email: %w", err)
			}
			continue
		}
		slog.Debug("Expense email sent", "expense_id", n.ExpenseID, "to", rcpt.Email, "message_id", res.Id)
	}
	return firstErr
}

func expenseSubject(n ExpenseNotice) string {
	return fmt.Sprintf("%s added %s%s for %s", n.PayerName, n.Currency, n.Amount.StringFixed(2), n.Description)
}

var expenseTmpl = template.Must(template.New("expense").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif;">
  <p>Hi {{.Name}},</p>
  <p><strong>{{.Payer}}</strong> paid <strong>{{.Currency}}{{.Amount}}</strong> for {{.Description}}.</p>
  <p>Your share is <strong>{{.Currency}}{{.Share}}</strong>.</p>
  <p style="color: #888;">splitr</p>
</body>
</html>`))

func renderExpenseEmail(n ExpenseNotice, rcpt Recipient) (string, error) {
	var b strings.Builder
	err := expenseTmpl.Execute(&b, map[string]string{
		"Name":        rcpt.Name,
		"Payer":       n.PayerName,
		"Currency":    n.Currency,
		"Amount":      n.Amount.StringFixed(2),
		"Description": n.Description,
		"Share":       rcpt.Share.StringFixed(2),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render expense email: %w", err)
	}
	return b.String(), nil
}
