package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitr/internal/models"
	"github.com/mmynk/splitr/internal/storage"
)

// AdjustBalance adds delta to a user's balance in one statement. The
// conflicting row stays locked until the statement (or enclosing
// transaction) finishes, so concurrent adjustments never lose updates.
func (s *Store) AdjustBalance(ctx context.Context, userID string, delta decimal.Decimal, at int64) error {
	_, err := s.q.Exec(ctx,
		`insert into balances (user_id, amount_minor, last_updated) values ($1, $2, $3)
		 on conflict (user_id) do update set
		   amount_minor = balances.amount_minor + excluded.amount_minor,
		   last_updated = excluded.last_updated`,
		userID, storage.ToMinor(delta), at)
	if err != nil {
		return fmt.Errorf("failed to adjust balance: %w", mapErr(err))
	}
	return nil
}

// GetBalance returns a user's balance, or nil if the user has none.
func (s *Store) GetBalance(ctx context.Context, userID string) (*models.Balance, error) {
	b := &models.Balance{}
	var amount int64
	err := s.q.QueryRow(ctx,
		`select user_id, amount_minor, last_updated from balances where user_id = $1`, userID,
	).Scan(&b.UserID, &amount, &b.LastUpdated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	b.Amount = storage.FromMinor(amount)
	return b, nil
}

// ListBalances returns every balance row.
func (s *Store) ListBalances(ctx context.Context) ([]*models.Balance, error) {
	rows, err := s.q.Query(ctx, `select user_id, amount_minor, last_updated from balances order by user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list balances: %w", err)
	}
	defer rows.Close()

	var balances []*models.Balance
	for rows.Next() {
		b := &models.Balance{}
		var amount int64
		if err := rows.Scan(&b.UserID, &amount, &b.LastUpdated); err != nil {
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}
		b.Amount = storage.FromMinor(amount)
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate balances: %w", err)
	}
	return balances, nil
}
