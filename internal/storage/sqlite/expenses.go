package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitr/internal/errs"
	"github.com/mmynk/splitr/internal/models"
	"github.com/mmynk/splitr/internal/storage"
)

const expenseColumns = `id, description, amount_minor, category, date, payer_id, split_type, group_id, created_by, created_at`

// CreateExpense persists a new expense and its splits.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	return s.InTx(ctx, func(tx storage.Store) error {
		st := tx.(*SQLiteStore)
		_, err := st.q.ExecContext(ctx,
			`INSERT INTO expenses (`+expenseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			expense.ID, expense.Description, storage.ToMinor(expense.Amount), expense.Category,
			expense.Date, expense.PayerID, string(expense.SplitType), nullable(expense.GroupID),
			expense.CreatedBy, expense.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense: %w", err)
		}

		for i, split := range expense.Splits {
			_, err := st.q.ExecContext(ctx,
				"INSERT INTO expense_splits (expense_id, user_id, amount_minor, paid, position) VALUES (?, ?, ?, ?, ?)",
				expense.ID, split.UserID, storage.ToMinor(split.Amount), split.Paid, i,
			)
			if err != nil {
				return fmt.Errorf("failed to insert expense split: %w", err)
			}
		}
		return nil
	})
}

// GetExpense retrieves an expense by ID, including its splits.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expenses, err := s.queryExpenses(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, expenseID)
	if err != nil {
		return nil, err
	}
	if len(expenses) == 0 {
		return nil, errs.NotFound("Expense not found")
	}
	return expenses[0], nil
}

// ListExpensesByGroup returns a group's expenses, newest first.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	return s.queryExpenses(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE group_id = ?
		 ORDER BY date DESC, created_at DESC, id`, groupID)
}

// ListExpensesForUser returns expenses the user paid or created, newest first.
func (s *SQLiteStore) ListExpensesForUser(ctx context.Context, userID string) ([]*models.Expense, error) {
	return s.queryExpenses(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE payer_id = ? OR created_by = ?
		 ORDER BY date DESC, created_at DESC, id`, userID, userID)
}

// ListPersonalExpensesBetween returns group-less expenses shared by two users.
func (s *SQLiteStore) ListPersonalExpensesBetween(ctx context.Context, userA, userB string) ([]*models.Expense, error) {
	return s.queryExpenses(ctx,
		`SELECT `+expenseColumns+` FROM expenses e
		 WHERE e.group_id IS NULL AND (
		   (e.payer_id = ? AND EXISTS (SELECT 1 FROM expense_splits s WHERE s.expense_id = e.id AND s.user_id = ?))
		   OR
		   (e.payer_id = ? AND EXISTS (SELECT 1 FROM expense_splits s WHERE s.expense_id = e.id AND s.user_id = ?))
		 )
		 ORDER BY e.date DESC, e.created_at DESC, e.id`,
		userA, userB, userB, userA)
}

// ListAllExpenses returns every expense with its splits.
func (s *SQLiteStore) ListAllExpenses(ctx context.Context) ([]*models.Expense, error) {
	return s.queryExpenses(ctx, `SELECT `+expenseColumns+` FROM expenses ORDER BY created_at, id`)
}

// DeleteExpense removes an expense. Splits are removed by cascade.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	res, err := s.q.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if n == 0 {
		return errs.Consistency("expense %s was already deleted", expenseID)
	}
	return nil
}

// queryExpenses runs a query selecting expenseColumns and attaches splits.
func (s *SQLiteStore) queryExpenses(ctx context.Context, query string, args ...any) ([]*models.Expense, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}

	var expenses []*models.Expense
	for rows.Next() {
		var e models.Expense
		var amount int64
		var splitType string
		var groupID sql.NullString
		err := rows.Scan(&e.ID, &e.Description, &amount, &e.Category, &e.Date,
			&e.PayerID, &splitType, &groupID, &e.CreatedBy, &e.CreatedAt)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		e.Amount = storage.FromMinor(amount)
		e.SplitType = models.SplitType(splitType)
		e.GroupID = groupID.String
		expenses = append(expenses, &e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	if err := s.loadSplits(ctx, expenses); err != nil {
		return nil, err
	}
	return expenses, nil
}

func (s *SQLiteStore) loadSplits(ctx context.Context, expenses []*models.Expense) error {
	if len(expenses) == 0 {
		return nil
	}
	byID := make(map[string]*models.Expense, len(expenses))
	ids := make([]string, len(expenses))
	for i, e := range expenses {
		byID[e.ID] = e
		ids[i] = e.ID
	}

	err := s.queryIn(ctx,
		`SELECT expense_id, user_id, amount_minor, paid FROM expense_splits
		 WHERE expense_id IN (%s)
		 ORDER BY expense_id, position`,
		ids,
		func(rows *sql.Rows) error {
			var expenseID string
			var amount int64
			var split models.Split
			if err := rows.Scan(&expenseID, &split.UserID, &amount, &split.Paid); err != nil {
				return err
			}
			split.Amount = storage.FromMinor(amount)
			e := byID[expenseID]
			e.Splits = append(e.Splits, split)
			return nil
		},
	)
	if err != nil {
		return fmt.Errorf("failed to get expense splits: %w", err)
	}
	return nil
}

