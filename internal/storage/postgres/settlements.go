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

const settlementColumns = `id, amount_minor, note, date, payer_id, receiver_id, group_id, created_by, created_at`

// CreateSettlement persists a new settlement and its expense references.
func (s *Store) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = time.Now().Unix()
	}

	return s.InTx(ctx, func(tx storage.Store) error {
		st := tx.(*Store)
		batch := &pgx.Batch{}
		batch.Queue(
			`insert into settlements (`+settlementColumns+`) values ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			settlement.ID, storage.ToMinor(settlement.Amount), nullable(settlement.Note), settlement.Date,
			settlement.PayerID, settlement.ReceiverID, nullable(settlement.GroupID),
			settlement.CreatedBy, settlement.CreatedAt,
		)
		queueSettlementExpenses(batch, settlement.ID, settlement.RelatedExpenseIDs)
		return st.sendBatch(ctx, batch, "failed to insert settlement")
	})
}

func queueSettlementExpenses(batch *pgx.Batch, settlementID string, expenseIDs []string) {
	for i, id := range expenseIDs {
		batch.Queue(
			`insert into settlement_expenses (settlement_id, expense_id, position) values ($1, $2, $3)`,
			settlementID, id, i,
		)
	}
}

// GetSettlement retrieves a settlement by ID.
func (s *Store) GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error) {
	list, err := s.querySettlements(ctx, `select `+settlementColumns+` from settlements where id = $1`, settlementID)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, errs.NotFound("Settlement not found")
	}
	return list[0], nil
}

// ListSettlementsByGroup returns a group's settlements, newest first.
func (s *Store) ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error) {
	return s.querySettlements(ctx,
		`select `+settlementColumns+` from settlements where group_id = $1
		 order by date desc, created_at desc, id`, groupID)
}

// ListSettlementsByExpense returns the settlements referencing an expense.
func (s *Store) ListSettlementsByExpense(ctx context.Context, expenseID string) ([]*models.Settlement, error) {
	return s.querySettlements(ctx,
		`select `+settlementColumns+` from settlements
		 where id in (select settlement_id from settlement_expenses where expense_id = $1)
		 order by created_at, id`, expenseID)
}

// ListPersonalSettlementsBetween returns group-less settlements between two users.
func (s *Store) ListPersonalSettlementsBetween(ctx context.Context, userA, userB string) ([]*models.Settlement, error) {
	return s.querySettlements(ctx,
		`select `+settlementColumns+` from settlements
		 where group_id is null and (
		   (payer_id = $1 and receiver_id = $2) or (payer_id = $2 and receiver_id = $1)
		 )
		 order by date desc, created_at desc, id`, userA, userB)
}

// ListAllSettlements returns every settlement.
func (s *Store) ListAllSettlements(ctx context.Context) ([]*models.Settlement, error) {
	return s.querySettlements(ctx, `select `+settlementColumns+` from settlements order by created_at, id`)
}

// UpdateSettlementExpenses replaces the related expense list of a settlement.
func (s *Store) UpdateSettlementExpenses(ctx context.Context, settlementID string, expenseIDs []string) error {
	return s.InTx(ctx, func(tx storage.Store) error {
		st := tx.(*Store)
		batch := &pgx.Batch{}
		batch.Queue(`delete from settlement_expenses where settlement_id = $1`, settlementID)
		queueSettlementExpenses(batch, settlementID, expenseIDs)
		return st.sendBatch(ctx, batch, "failed to update settlement expenses")
	})
}

// DeleteSettlement removes a settlement. Its expense references cascade.
func (s *Store) DeleteSettlement(ctx context.Context, settlementID string) error {
	tag, err := s.q.Exec(ctx, `delete from settlements where id = $1`, settlementID)
	if err != nil {
		return fmt.Errorf("failed to delete settlement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.Consistency("settlement %s was already deleted", settlementID)
	}
	return nil
}

func (s *Store) querySettlements(ctx context.Context, sql string, args ...any) ([]*models.Settlement, error) {
	rows, err := s.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query settlements: %w", err)
	}

	var settlements []*models.Settlement
	for rows.Next() {
		var st models.Settlement
		var amount int64
		var note, groupID *string
		if err := rows.Scan(&st.ID, &amount, &note, &st.Date, &st.PayerID, &st.ReceiverID,
			&groupID, &st.CreatedBy, &st.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		st.Amount = storage.FromMinor(amount)
		st.Note = deref(note)
		st.GroupID = deref(groupID)
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

	refs, err := s.q.Query(ctx,
		`select settlement_id, expense_id from settlement_expenses
		 where settlement_id = any($1) order by settlement_id, position`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement expenses: %w", err)
	}
	defer refs.Close()

	for refs.Next() {
		var settlementID, expenseID string
		if err := refs.Scan(&settlementID, &expenseID); err != nil {
			return nil, fmt.Errorf("failed to scan settlement expense: %w", err)
		}
		byID[settlementID].RelatedExpenseIDs = append(byID[settlementID].RelatedExpenseIDs, expenseID)
	}
	if err := refs.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlement expenses: %w", err)
	}
	return settlements, nil
}
