package service

import (
	"context"
	"errors"
	"testing"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitr/internal/errs"
	"github.com/mmynk/splitr/pkg/api"
)

func TestCreateSettlement(t *testing.T) {
	env := setupTestServer(t, ExpenseOptions{})
	ctx := context.Background()
	alice := env.createUser(t, "Alice", "alice@demo.com")
	bob := env.createUser(t, "Bob", "bob@demo.com")
	carol := env.createUser(t, "Carol", "carol@demo.com")

	resp, err := env.settlements.CreateSettlement(ctx, as(bob, &api.CreateSettlementRequest{
		Amount: 25.5, Note: "cash", PayerID: bob.ID, ReceiverID: alice.ID,
	}))
	if err != nil {
		t.Fatalf("CreateSettlement failed: %v", err)
	}
	if resp.Msg.Settlement.ID == "" || resp.Msg.Settlement.CreatedBy != bob.ID {
		t.Errorf("unexpected settlement: %+v", resp.Msg.Settlement)
	}
	env.assertBalance(t, bob, "25.5")
	env.assertBalance(t, alice, "-25.5")

	tests := []struct {
		name  string
		actor user
		req   *api.CreateSettlementRequest
		code  connect.Code
	}{
		{"same user", bob, &api.CreateSettlementRequest{Amount: 1, PayerID: bob.ID, ReceiverID: bob.ID}, connect.CodeInvalidArgument},
		{"negative amount", bob, &api.CreateSettlementRequest{Amount: -1, PayerID: bob.ID, ReceiverID: alice.ID}, connect.CodeInvalidArgument},
		{"unknown receiver", bob, &api.CreateSettlementRequest{Amount: 1, PayerID: bob.ID, ReceiverID: "ghost"}, connect.CodeNotFound},
		{"bystander", carol, &api.CreateSettlementRequest{Amount: 1, PayerID: bob.ID, ReceiverID: alice.ID}, connect.CodePermissionDenied},
		{"unknown expense", bob, &api.CreateSettlementRequest{Amount: 1, PayerID: bob.ID, ReceiverID: alice.ID, RelatedExpenseIDs: []string{"nope"}}, connect.CodeNotFound},
		{"missing group", bob, &api.CreateSettlementRequest{Amount: 1, PayerID: bob.ID, ReceiverID: alice.ID, GroupID: "nope"}, connect.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.settlements.CreateSettlement(ctx, as(tt.actor, tt.req))
			assertCode(t, err, tt.code)
		})
	}
	env.assertBalance(t, bob, "25.5")
}

func TestListSettlements(t *testing.T) {
	env := setupTestServer(t, ExpenseOptions{})
	ctx := context.Background()
	alice := env.createUser(t, "Alice", "alice@demo.com")
	bob := env.createUser(t, "Bob", "bob@demo.com")
	outsider := env.createUser(t, "Zed", "zed@demo.com")

	created, err := env.groups.CreateGroup(ctx, as(alice, &api.CreateGroupRequest{Name: "Trip", MemberIDs: []string{bob.ID}}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	groupID := created.Msg.Group.ID
	if _, err := env.settlements.CreateSettlement(ctx, as(bob, &api.CreateSettlementRequest{
		Amount: 5, PayerID: bob.ID, ReceiverID: alice.ID, GroupID: groupID,
	})); err != nil {
		t.Fatalf("CreateSettlement failed: %v", err)
	}

	resp, err := env.settlements.ListSettlements(ctx, as(alice, &api.ListSettlementsRequest{GroupID: groupID}))
	if err != nil {
		t.Fatalf("ListSettlements failed: %v", err)
	}
	if len(resp.Msg.Settlements) != 1 {
		t.Errorf("expected 1 settlement, got %d", len(resp.Msg.Settlements))
	}

	_, err = env.settlements.ListSettlements(ctx, as(outsider, &api.ListSettlementsRequest{GroupID: groupID}))
	assertCode(t, err, connect.CodePermissionDenied)
}

func TestBalances(t *testing.T) {
	env := setupTestServer(t, ExpenseOptions{})
	ctx := context.Background()
	john := env.createUser(t, "John", "john@demo.com")
	alice := env.createUser(t, "Alice", "alice@demo.com")

	if _, err := env.expense.CreateExpense(ctx, as(john, &api.CreateExpenseRequest{
		Description: "Dinner", Amount: 300, PayerID: john.ID,
		Splits: []*api.Split{{UserID: john.ID, Amount: 150}, {UserID: alice.ID, Amount: 150}},
	})); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	all, err := env.balances.GetAllBalances(ctx, as(john, &api.GetAllBalancesRequest{}))
	if err != nil {
		t.Fatalf("GetAllBalances failed: %v", err)
	}
	if len(all.Msg.Balances) != 2 {
		t.Fatalf("expected 2 balances, got %d", len(all.Msg.Balances))
	}
	for _, b := range all.Msg.Balances {
		if b.Name == "" {
			t.Errorf("balance for %s has no name", b.UserID)
		}
	}

	mine, err := env.balances.GetCurrentUserBalance(ctx, as(john, &api.GetCurrentUserBalanceRequest{}))
	if err != nil {
		t.Fatalf("GetCurrentUserBalance failed: %v", err)
	}
	if mine.Msg.Balance == nil || mine.Msg.Balance.Amount != 150 {
		t.Errorf("current balance = %+v, want 150", mine.Msg.Balance)
	}

	theirs, err := env.balances.GetUserBalance(ctx, as(john, &api.GetUserBalanceRequest{UserID: alice.ID}))
	if err != nil {
		t.Fatalf("GetUserBalance failed: %v", err)
	}
	if theirs.Msg.Balance == nil || theirs.Msg.Balance.Amount != -150 {
		t.Errorf("alice balance = %+v, want -150", theirs.Msg.Balance)
	}

	none, err := env.balances.GetUserBalance(ctx, as(john, &api.GetUserBalanceRequest{UserID: "ghost"}))
	if err != nil {
		t.Fatalf("GetUserBalance failed: %v", err)
	}
	if none.Msg.Balance != nil {
		t.Errorf("expected no balance, got %+v", none.Msg.Balance)
	}
}

func TestBalanceReadsSwallowStorageErrors(t *testing.T) {
	env := setupTestServer(t, ExpenseOptions{})
	ctx := context.Background()
	john := env.createUser(t, "John", "john@demo.com")

	env.store.Close()

	all, err := env.balances.GetAllBalances(ctx, as(john, &api.GetAllBalancesRequest{}))
	if err != nil {
		t.Fatalf("GetAllBalances should not fail: %v", err)
	}
	if len(all.Msg.Balances) != 0 {
		t.Errorf("expected empty list, got %d", len(all.Msg.Balances))
	}

	mine, err := env.balances.GetCurrentUserBalance(ctx, as(john, &api.GetCurrentUserBalanceRequest{}))
	if err != nil {
		t.Fatalf("GetCurrentUserBalance should not fail: %v", err)
	}
	if mine.Msg.Balance != nil {
		t.Errorf("expected nil balance, got %+v", mine.Msg.Balance)
	}

	// Writes keep failing loudly.
	_, err = env.settlements.CreateSettlement(ctx, as(john, &api.CreateSettlementRequest{
		Amount: 1, PayerID: john.ID, ReceiverID: "x",
	}))
	assertCode(t, err, connect.CodeInternal)
}

func TestReconcileBalances(t *testing.T) {
	env := setupTestServer(t, ExpenseOptions{})
	ctx := context.Background()
	john := env.createUser(t, "John", "john@demo.com")
	alice := env.createUser(t, "Alice", "alice@demo.com")

	if _, err := env.expense.CreateExpense(ctx, as(john, &api.CreateExpenseRequest{
		Description: "Dinner", Amount: 300, PayerID: john.ID,
		Splits: []*api.Split{{UserID: john.ID, Amount: 150}, {UserID: alice.ID, Amount: 150}},
	})); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	resp, err := env.balances.ReconcileBalances(ctx, as(john, &api.ReconcileBalancesRequest{}))
	if err != nil {
		t.Fatalf("ReconcileBalances failed: %v", err)
	}
	if resp.Msg.Checked != 2 {
		t.Errorf("checked = %d, want 2", resp.Msg.Checked)
	}

	// Tamper with a stored balance behind the ledger's back.
	if err := env.store.AdjustBalance(ctx, alice.ID, decimal.NewFromInt(1), 0); err != nil {
		t.Fatalf("AdjustBalance failed: %v", err)
	}
	_, err = env.balances.ReconcileBalances(ctx, as(john, &api.ReconcileBalancesRequest{}))
	assertCode(t, err, connect.CodeAborted)

	_, err = Reconcile(ctx, env.store)
	if !errors.Is(err, errs.ErrConsistency) {
		t.Fatalf("error = %v, want consistency error", err)
	}
}
