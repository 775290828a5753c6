// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitr/internal/models"
)

// UserStore persists user accounts.
type UserStore interface {
	// CreateUser inserts a new user. Email must be unique.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByID returns nil, nil if no user has the ID.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUserByEmail returns nil, nil if no user has the email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUsersByIDs returns the users that exist among ids, keyed by ID.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)

	// ListUsers returns every user in directory order (created_at, id).
	ListUsers(ctx context.Context) ([]*models.User, error)
}

// GroupStore persists groups and their memberships.
type GroupStore interface {
	// CreateGroup persists a new group with its members.
	// The group.ID and CreatedAt fields are populated if empty.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup returns the group with its members.
	// Returns an errs.ErrNotFound error if the group does not exist.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroupsForUser returns every group userID belongs to, newest first.
	ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error)

	// UpdateGroup replaces the group's details and membership list.
	UpdateGroup(ctx context.Context, group *models.Group) error

	// DeleteGroup removes the group row. Expenses and settlements scoped to
	// it must already be gone.
	DeleteGroup(ctx context.Context, groupID string) error
}

// ExpenseStore persists expenses and their splits.
type ExpenseStore interface {
	// CreateExpense persists the expense and its splits.
	// The expense.ID and CreatedAt fields are populated if empty.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense returns an errs.ErrNotFound error if the expense does not exist.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ListExpensesByGroup returns a group's expenses, newest first.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)

	// ListExpensesForUser returns expenses userID paid or created, newest first.
	ListExpensesForUser(ctx context.Context, userID string) ([]*models.Expense, error)

	// ListPersonalExpensesBetween returns group-less expenses where one of the
	// two users paid and the other has a split, newest first.
	ListPersonalExpensesBetween(ctx context.Context, userA, userB string) ([]*models.Expense, error)

	// ListAllExpenses returns every expense. Used for balance reconciliation.
	ListAllExpenses(ctx context.Context) ([]*models.Expense, error)

	// DeleteExpense removes the expense and its splits. Returns an
	// errs.ErrConsistency error if the row was already gone.
	DeleteExpense(ctx context.Context, expenseID string) error
}

// SettlementStore persists settlements and their expense references.
type SettlementStore interface {
	// CreateSettlement persists the settlement and its related expense IDs.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error

	// GetSettlement returns an errs.ErrNotFound error if the settlement does not exist.
	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)

	// ListSettlementsByGroup returns a group's settlements, newest first.
	ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error)

	// ListSettlementsByExpense returns every settlement referencing expenseID.
	ListSettlementsByExpense(ctx context.Context, expenseID string) ([]*models.Settlement, error)

	// ListPersonalSettlementsBetween returns group-less settlements between
	// the two users in either direction, newest first.
	ListPersonalSettlementsBetween(ctx context.Context, userA, userB string) ([]*models.Settlement, error)

	// ListAllSettlements returns every settlement. Used for balance reconciliation.
	ListAllSettlements(ctx context.Context) ([]*models.Settlement, error)

	// UpdateSettlementExpenses replaces the related expense list.
	UpdateSettlementExpenses(ctx context.Context, settlementID string, expenseIDs []string) error

	// DeleteSettlement removes the settlement.
	DeleteSettlement(ctx context.Context, settlementID string) error
}

// BalanceStore persists the per-user running balance.
type BalanceStore interface {
	// AdjustBalance adds delta to userID's balance in a single atomic
	// statement, creating the row if needed.
	AdjustBalance(ctx context.Context, userID string, delta decimal.Decimal, at int64) error

	// GetBalance returns nil, nil if the user has no balance row.
	GetBalance(ctx context.Context, userID string) (*models.Balance, error)

	// ListBalances returns every balance row ordered by user ID.
	ListBalances(ctx context.Context) ([]*models.Balance, error)
}

// Store is the full storage surface used by the service layer.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the service layer.
type Store interface {
	UserStore
	GroupStore
	ExpenseStore
	SettlementStore
	BalanceStore

	// InTx runs fn against a Store bound to a single transaction. The
	// transaction commits if fn returns nil and rolls back otherwise.
	// Calling InTx on a transactional Store runs fn in the same transaction.
	InTx(ctx context.Context, fn func(tx Store) error) error

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
