package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitr/internal/models"
	"github.com/mmynk/splitr/internal/storage"
)

// AdjustBalance adds delta to a user's balance in one statement.
func (s *SQLiteStore) AdjustBalance(ctx context.Context, userID string, delta decimal.Decimal, at int64) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO balances (user_id, amount_minor, last_updated) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   amount_minor = amount_minor + excluded.amount_minor,
		   last_updated = excluded.last_updated`,
		userID, storage.ToMinor(delta), at,
	)
	if err != nil {
		return fmt.Errorf("failed to adjust balance: %w", err)
	}
	return nil
}

// GetBalance returns a user's balance, or nil if the user has none.
func (s *SQLiteStore) GetBalance(ctx context.Context, userID string) (*models.Balance, error) {
	b := &models.Balance{}
	var amount int64
	err := s.q.QueryRowContext(ctx,
		"SELECT user_id, amount_minor, last_updated FROM balances WHERE user_id = ?", userID,
	).Scan(&b.UserID, &amount, &b.LastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	b.Amount = storage.FromMinor(amount)
	return b, nil
}

// ListBalances returns every balance row.
func (s *SQLiteStore) ListBalances(ctx context.Context) ([]*models.Balance, error) {
	rows, err := s.q.QueryContext(ctx,
		"SELECT user_id, amount_minor, last_updated FROM balances ORDER BY user_id")
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
