package service

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitr/internal/errs"
	"github.com/mmynk/splitr/internal/ledger"
	"github.com/mmynk/splitr/internal/models"
	"github.com/mmynk/splitr/internal/storage"
	"github.com/mmynk/splitr/pkg/api"
	"github.com/mmynk/splitr/pkg/api/apiconnect"
)

// BalanceService serves the global per-user running balances.
//
// Reads favour availability: a storage failure is logged and reported as an
// empty result rather than an error. Writes never go through here.
type BalanceService struct {
	store storage.Store
}

var _ apiconnect.BalanceServiceHandler = (*BalanceService)(nil)

func NewBalanceService(store storage.Store) *BalanceService {
	return &BalanceService{store: store}
}

// GetAllBalances returns every stored balance.
func (s *BalanceService) GetAllBalances(ctx context.Context, req *connect.Request[api.GetAllBalancesRequest]) (*connect.Response[api.GetAllBalancesResponse], error) {
	slog.Info("GetAllBalances request received")

	balances, err := s.store.ListBalances(ctx)
	if err != nil {
		slog.Warn("GetAllBalances failed, returning empty list", "error", err)
		return connect.NewResponse(&api.GetAllBalancesResponse{Balances: []*api.Balance{}}), nil
	}

	ids := make([]string, len(balances))
	for i, b := range balances {
		ids[i] = b.UserID
	}
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		slog.Warn("GetAllBalances could not load names", "error", err)
	}

	out := make([]*api.Balance, len(balances))
	for i, b := range balances {
		out[i] = toAPIBalance(b, users)
	}
	return connect.NewResponse(&api.GetAllBalancesResponse{Balances: out}), nil
}

// GetUserBalance returns one user's balance, or none.
func (s *BalanceService) GetUserBalance(ctx context.Context, req *connect.Request[api.GetUserBalanceRequest]) (*connect.Response[api.GetUserBalanceResponse], error) {
	slog.Info("GetUserBalance request received", "user_id", req.Msg.UserID)
	return connect.NewResponse(&api.GetUserBalanceResponse{Balance: s.balance(ctx, req.Msg.UserID)}), nil
}

// GetCurrentUserBalance returns the caller's balance, or none.
func (s *BalanceService) GetCurrentUserBalance(ctx context.Context, req *connect.Request[api.GetCurrentUserBalanceRequest]) (*connect.Response[api.GetCurrentUserBalanceResponse], error) {
	actorID, err := actingUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetCurrentUserBalance request received", "user_id", actorID)
	return connect.NewResponse(&api.GetCurrentUserBalanceResponse{Balance: s.balance(ctx, actorID)}), nil
}

func (s *BalanceService) balance(ctx context.Context, userID string) *api.Balance {
	b, err := s.store.GetBalance(ctx, userID)
	if err != nil {
		slog.Warn("Balance read failed, returning none", "user_id", userID, "error", err)
		return nil
	}
	if b == nil {
		return nil
	}
	users, err := s.store.GetUsersByIDs(ctx, []string{userID})
	if err != nil {
		slog.Warn("Balance read could not load name", "user_id", userID, "error", err)
	}
	return toAPIBalance(b, users)
}

// ReconcileBalances replays every expense and settlement and checks the
// stored balances against the result.
func (s *BalanceService) ReconcileBalances(ctx context.Context, req *connect.Request[api.ReconcileBalancesRequest]) (*connect.Response[api.ReconcileBalancesResponse], error) {
	slog.Info("ReconcileBalances request received")

	checked, err := Reconcile(ctx, s.store)
	if err != nil {
		return nil, toConnectError("ReconcileBalances", err)
	}
	slog.Info("Balances reconciled", "checked", checked)
	return connect.NewResponse(&api.ReconcileBalancesResponse{Checked: checked}), nil
}

// Reconcile compares stored balances with a full replay of the log and
// returns how many users were checked. Drift is a ConsistencyError naming
// the affected users.
func Reconcile(ctx context.Context, store storage.Store) (int, error) {
	var (
		expenses    []*models.Expense
		settlements []*models.Settlement
		stored      []*models.Balance
	)
	err := store.InTx(ctx, func(tx storage.Store) error {
		var err error
		if expenses, err = tx.ListAllExpenses(ctx); err != nil {
			return err
		}
		if settlements, err = tx.ListAllSettlements(ctx); err != nil {
			return err
		}
		stored, err = tx.ListBalances(ctx)
		return err
	})
	if err != nil {
		return 0, err
	}

	expected := ledger.Replay(expenses, settlements)
	drift := ledger.Compare(stored, expected)

	checked := len(expected)
	for _, b := range stored {
		if _, ok := expected[b.UserID]; !ok {
			checked++
		}
	}
	if len(drift) == 0 {
		return checked, nil
	}

	details := make([]string, len(drift))
	for i, d := range drift {
		details[i] = d.UserID + " stored " + d.Stored.StringFixed(2) + " expected " + d.Expected.StringFixed(2)
		slog.Warn("Balance drift", "user_id", d.UserID, "stored", d.Stored.String(), "expected", d.Expected.String())
	}
	return checked, errs.Consistency("Balance drift for %d users: %s", len(drift), strings.Join(details, "; "))
}
