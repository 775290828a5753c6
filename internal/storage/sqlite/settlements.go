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

const settlementColumns = `id, amount_minor, note, date, payer_id, receiver_id, group_id, created_by, created_at`

// CreateSettlement persists a new settlement to the database.
func (s *SQLiteStore) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = time.Now().Unix()
	}

	return s.InTx(ctx, func(tx storage.Store) error {
		st := tx.(*SQLiteStore)
		_, err := st.q.ExecContext(ctx,
			`INSERT INTO settlements (`+settlementColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			settlement.ID, storage.ToMinor(settlement.Amount), nullable(settlement.Note), settlement.Date,
			settlement.PayerID, settlement.ReceiverID, nullable(settlement.GroupID),
			settlement.CreatedBy, settlement.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert settlement: %w", err)
		}
		return st.insertSettlementExpenses(ctx, settlement.ID, settlement.RelatedExpenseIDs)
	})
}

func (s *SQLiteStore) insertSettlementExpenses(ctx context.Context, settlementID string, expenseIDs []string) error {
	for i, id := range expenseIDs {
		_, err := s.q.ExecContext(ctx,
			"INSERT INTO settlement_expenses (settlement_id, expense_id, position) VALUES (?, ?, ?)",
			settlementID, id, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert settlement expense: %w", err)
		}
	}
	return nil
}

// GetSettlement retrieves a settlement by ID.
func (s *SQLiteStore) GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error) {
	settlements, err := s.querySettlements(ctx,
		`SELECT `+settlementColumns+` FROM settlements WHERE id = ?`, settlementID)
	if err != nil {
		return nil, err
	}
	if len(settlements) == 0 {
		return nil, errs.NotFound("Settlement not found")
	}
	return settlements[0], nil
}

// ListSettlementsByGroup returns a group's settlements, newest first.
func (s *SQLiteStore) ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error) {
	return s.querySettlements(ctx,
		`SELECT `+settlementColumns+` FROM settlements WHERE group_id = ?
		 ORDER BY date DESC, created_at DESC, id`, groupID)
}

// ListSettlementsByExpense returns the settlements referencing an expense.
func (s *SQLiteStore) ListSettlementsByExpense(ctx context.Context, expenseID string) ([]*models.Settlement, error) {
	return s.querySettlements(ctx,
		`SELECT `+settlementColumns+` FROM settlements
		 WHERE id IN (SELECT settlement_id FROM settlement_expenses WHERE expense_id = ?)
		 ORDER BY created_at, id`, expenseID)
}

// ListPersonalSettlementsBetween returns group-less settlements between two users.
func (s *SQLiteStore) ListPersonalSettlementsBetween(ctx context.Context, userA, userB string) ([]*models.Settlement, error) {
	return s.querySettlements(ctx,
		`SELECT `+settlementColumns+` FROM settlements
		 WHERE group_id IS NULL AND (
		   (payer_id = ? AND receiver_id = ?) OR (payer_id = ? AND receiver_id = ?)
		 )
		 ORDER BY date DESC, created_at DESC, id`,
		userA, userB, userB, userA)
}

// ListAllSettlements returns every settlement.
func (s *SQLiteStore) ListAllSettlements(ctx context.Context) ([]*models.Settlement, error) {
	return s.querySettlements(ctx, `SELECT `+settlementColumns+` FROM settlements ORDER BY created_at, id`)
}

// UpdateSettlementExpenses replaces the related expense list of a settlement.
func (s *SQLiteStore) UpdateSettlementExpenses(ctx context.Context, settlementID string, expenseIDs []string) error {
	return s.InTx(ctx, func(tx storage.Store) error {
		st := tx.(*SQLiteStore)
		if _, err := st.q.ExecContext(ctx,
			"DELETE FROM settlement_expenses WHERE settlement_id = ?", settlementID); err != nil {
			return fmt.Errorf("failed to clear settlement expenses: %w", err)
		}
		return st.insertSettlementExpenses(ctx, settlementID, expenseIDs)
	})
}

// DeleteSettlement removes a settlement. Its expense references cascade.
func (s *SQLiteStore) DeleteSettlement(ctx context.Context, settlementID string) error {
	res, err := s.q.ExecContext(ctx, "DELETE FROM settlements WHERE id = ?", settlementID)
	if err != nil {
		return fmt.Errorf("failed to delete settlement: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.Consistency("settlement %s was already deleted", settlementID)
	}
	return nil
}

func (s *SQLiteStore) querySettlements(ctx context.Context, query string, args ...any) ([]*models.Settlement, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query settlements: %w", err)
	}

	var settlements []*models.Settlement
	for rows.Next() {
		var st models.Settlement
		var amount int64
		var note, groupID sql.NullString
		err := rows.Scan(&st.ID, &amount, &note, &st.Date, &st.PayerID, &st.ReceiverID,
			&groupID, &st.CreatedBy, &st.CreatedAt)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		st.Amount = storage.FromMinor(amount)
		st.Note = note.String
		st.GroupID = groupID.String
		settlements = append(settlements, &st)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}

	if len(settlements) == 0 {
		return settlements, nil
	}

	byID := make(map[string]*models.Settlement, len(settlements))
	ids := make([]string, len(settlements))
	for i, st := range settlements {
		byID[st.ID] = st
		ids[i] = st.ID
	}

	err = s.queryIn(ctx,
		`SELECT settlement_id, expense_id FROM settlement_expenses
		 WHERE settlement_id IN (%s)
		 ORDER BY settlement_id, position`,
		ids,
		func(rows *sql.Rows) error {
			var settlementID, expenseID string
			if err := rows.Scan(&settlementID, &expenseID); err != nil {
				return err
			}
			st := byID[settlementID]
			st.RelatedExpenseIDs = append(st.RelatedExpenseIDs, expenseID)
			return nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement expenses: %w", err)
	}
	return settlements, nil
}
