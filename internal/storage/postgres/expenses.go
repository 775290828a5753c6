package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mmynk/splitr/internal/errs"
	"github.com/mmynk/splitr/internal/models"
	"github.com/mmynk/splitr/internal/storage"
)

const expenseColumns = `id, description, amount_minor, category, date, payer_id, split_type, group_id, created_by, created_at`

// CreateExpense persists a new expense and its splits.
func (s *Store) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	return s.InTx(ctx, func(tx storage.Store) error {
		st := tx.(*Store)
		batch := &pgx.Batch{}
		batch.Queue(
			`insert into expenses (`+expenseColumns+`) values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			expense.ID, expense.Description, storage.ToMinor(expense.Amount), expense.Category,
			expense.Date, expense.PayerID, string(expense.SplitType), nullable(expense.GroupID),
			expense.CreatedBy, expense.CreatedAt,
		)
		for i, split := range expense.Splits {
			batch.Queue(
				`insert into expense_splits (expense_id, user_id, amount_minor, paid, position) values ($1, $2, $3, $4, $5)`,
				expense.ID, split.UserID, storage.ToMinor(split.Amount), split.Paid, i,
			)
		}
		return st.sendBatch(ctx, batch, "failed to insert expense")
	})
}

// GetExpense retrieves an expense with its splits.
func (s *Store) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expenses, err := s.queryExpenses(ctx, `select `+expenseColumns+` from expenses where id = $1`, expenseID)
	if err != nil {
		return nil, err
	}
	if len(expenses) == 0 {
		return nil, errs.NotFound("Expense not found")
	}
	return expenses[0], nil
}

// ListExpensesByGroup returns a group's expenses, newest first.
func (s *Store) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	return s.queryExpenses(ctx,
		`select `+expenseColumns+` from expenses where group_id = $1
		 order by date desc, created_at desc, id`, groupID)
}

// ListExpensesForUser returns expenses the user paid or created, newest first.
func (s *Store) ListExpensesForUser(ctx context.Context, userID string) ([]*models.Expense, error) {
	return s.queryExpenses(ctx,
		`select `+expenseColumns+` from expenses where payer_id = $1 or created_by = $1
		 order by date desc, created_at desc, id`, userID)
}

// ListPersonalExpensesBetween returns group-less expenses shared by two users.
func (s *Store) ListPersonalExpensesBetween(ctx context.Context, userA, userB string) ([]*models.Expense, error) {
	return s.queryExpenses(ctx,
		`select `+expenseColumns+` from expenses e
		 where e.group_id is null and (
		   (e.payer_id = $1 and exists (select 1 from expense_splits s where s.expense_id = e.id and s.user_id = $2))
		   or
		   (e.payer_id = $2 and exists (select 1 from expense_splits s where s.expense_id = e.id and s.user_id = $1))
		 )
		 order by e.date desc, e.created_at desc, e.id`, userA, userB)
}

// ListAllExpenses returns every expense.
func (s *Store) ListAllExpenses(ctx context.Context) ([]*models.Expense, error) {
	return s.queryExpenses(ctx, `select `+expenseColumns+` from expenses order by created_at, id`)
}

// DeleteExpense removes an expense. Splits are removed by cascade.
func (s *Store) DeleteExpense(ctx context.Context, expenseID string) error {
	tag, err := s.q.Exec(ctx, `delete from expenses where id = $1`, expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.Consistency("expense %s was already deleted", expenseID)
	}
	return nil
}

func (s *Store) queryExpenses(ctx context.Context, sql string, args ...any) ([]*models.Expense, error) {
	rows, err := s.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}

	var expenses []*models.Expense
	for rows.Next() {
		var e models.Expense
		var amount int64
		var splitType string
		var groupID *string
		if err := rows.Scan(&e.ID, &e.Description, &amount, &e.Category, &e.Date,
			&e.PayerID, &splitType, &groupID, &e.CreatedBy, &e.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		e.Amount = storage.FromMinor(amount)
		e.SplitType = models.SplitType(splitType)
		e.GroupID = deref(groupID)
		expenses = append(expenses, &e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	if len(expenses) == 0 {
		return expenses, nil
	}

	byID := make(map[string]*models.Expense, len(expenses))
	ids := make([]string, len(expenses))
	for i, e := range expenses {
		byID[e.ID] = e
		ids[i] = e.ID
	}

	splitRows, err := s.q.Query(ctx,
		`select expense_id, user_id, amount_minor, paid from expense_splits
		 where expense_id = any($1) order by expense_id, position`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense splits: %w", err)
	}
	defer splitRows.Close()

	for splitRows.Next() {
		var expenseID string
		var amount int64
		var split models.Split
		if err := splitRows.Scan(&expenseID, &split.UserID, &amount, &split.Paid); err != nil {
			return nil, fmt.Errorf("failed to scan expense split: %w", err)
		}
		split.Amount = storage.FromMinor(amount)
		byID[expenseID].Splits = append(byID[expenseID].Splits, split)
	}
	if err := splitRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expense splits: %w", err)
	}
	return expenses, nil
}
