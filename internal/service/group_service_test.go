package service

import (
	"context"
	"errors"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/splitr/internal/errs"
	"github.com/mmynk/splitr/pkg/api"
)

func TestCreateGroup(t *testing.T) {
	env := setupTestServer(t, ExpenseOptions{})
	ctx := context.Background()
	alice := env.createUser(t, "Alice", "alice@demo.com")
	bob := env.createUser(t, "Bob", "bob@demo.com")
	charlie := env.createUser(t, "Charlie", "charlie@demo.com")

	resp, err := env.groups.CreateGroup(ctx, as(alice, &api.CreateGroupRequest{
		Name:      "Roommates",
		MemberIDs: []string{bob.ID, charlie.ID, bob.ID},
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	group := resp.Msg.Group
	if group.ID == "" {
		t.Error("expected non-empty group ID")
	}
	if group.Name != "Roommates" {
		t.Errorf("name: expected 'Roommates', got '%s'", group.Name)
	}
	if len(group.Members) != 3 {
		t.Fatalf("members: expected 3, got %d", len(group.Members))
	}
	if group.Members[0].UserID != alice.ID || group.Members[0].Role != "admin" {
		t.Errorf("creator should be the first admin, got %+v", group.Members[0])
	}
	if group.Members[1].Name != "Bob" || group.Members[1].Role != "member" {
		t.Errorf("unexpected member: %+v", group.Members[1])
	}

	t.Run("unknown member", func(t *testing.T) {
		_, err := env.groups.CreateGroup(ctx, as(alice, &api.CreateGroupRequest{Name: "x", MemberIDs: []string{"ghost"}}))
		assertCode(t, err, connect.CodeNotFound)
	})

	t.Run("blank name", func(t *testing.T) {
		_, err := env.groups.CreateGroup(ctx, as(alice, &api.CreateGroupRequest{Name: "  "}))
		assertCode(t, err, connect.CodeInvalidArgument)
	})
}

func TestGroupMembership(t *testing.T) {
	env := setupTestServer(t, ExpenseOptions{})
	ctx := context.Background()
	alice := env.createUser(t, "Alice", "alice@demo.com")
	bob := env.createUser(t, "Bob", "bob@demo.com")
	charlie := env.createUser(t, "Charlie", "charlie@demo.com")
	outsider := env.createUser(t, "Zed", "zed@demo.com")

	created, err := env.groups.CreateGroup(ctx, as(alice, &api.CreateGroupRequest{Name: "Trip", MemberIDs: []string{bob.ID}}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	groupID := created.Msg.Group.ID

	t.Run("non-members cannot read", func(t *testing.T) {
		_, err := env.groups.GetGroup(ctx, as(outsider, &api.GetGroupRequest{GroupID: groupID}))
		assertCode(t, err, connect.CodePermissionDenied)
	})

	t.Run("only admins add", func(t *testing.T) {
		_, err := env.groups.AddMember(ctx, as(bob, &api.AddMemberRequest{GroupID: groupID, UserID: charlie.ID}))
		assertCode(t, err, connect.CodePermissionDenied)
	})

	t.Run("admin adds an admin", func(t *testing.T) {
		resp, err := env.groups.AddMember(ctx, as(alice, &api.AddMemberRequest{GroupID: groupID, UserID: charlie.ID, Role: "admin"}))
		if err != nil {
			t.Fatalf("AddMember failed: %v", err)
		}
		if len(resp.Msg.Group.Members) != 3 {
			t.Fatalf("expected 3 members, got %d", len(resp.Msg.Group.Members))
		}
	})

	t.Run("already a member", func(t *testing.T) {
		_, err := env.groups.AddMember(ctx, as(alice, &api.AddMemberRequest{GroupID: groupID, UserID: bob.ID}))
		assertCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("creator cannot be removed", func(t *testing.T) {
		_, err := env.groups.RemoveMember(ctx, as(charlie, &api.RemoveMemberRequest{GroupID: groupID, UserID: alice.ID}))
		assertCode(t, err, connect.CodeInvalidArgument)

		got, err := env.groups.GetGroup(ctx, as(alice, &api.GetGroupRequest{GroupID: groupID}))
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if len(got.Msg.Group.Members) != 3 {
			t.Errorf("membership changed after rejected removal: %d members", len(got.Msg.Group.Members))
		}
	})

	t.Run("admin removes member", func(t *testing.T) {
		resp, err := env.groups.RemoveMember(ctx, as(charlie, &api.RemoveMemberRequest{GroupID: groupID, UserID: bob.ID}))
		if err != nil {
			t.Fatalf("RemoveMember failed: %v", err)
		}
		for _, m := range resp.Msg.Group.Members {
			if m.UserID == bob.ID {
				t.Error("bob should have been removed")
			}
		}
	})

	t.Run("non-member removal", func(t *testing.T) {
		_, err := env.groups.RemoveMember(ctx, as(alice, &api.RemoveMemberRequest{GroupID: groupID, UserID: outsider.ID}))
		assertCode(t, err, connect.CodeNotFound)
	})

	t.Run("update details", func(t *testing.T) {
		resp, err := env.groups.UpdateGroup(ctx, as(alice, &api.UpdateGroupRequest{GroupID: groupID, Name: "Goa Trip"}))
		if err != nil {
			t.Fatalf("UpdateGroup failed: %v", err)
		}
		if resp.Msg.Group.Name != "Goa Trip" {
			t.Errorf("name = %q", resp.Msg.Group.Name)
		}
	})

	t.Run("list groups", func(t *testing.T) {
		resp, err := env.groups.ListGroups(ctx, as(charlie, &api.ListGroupsRequest{}))
		if err != nil {
			t.Fatalf("ListGroups failed: %v", err)
		}
		if len(resp.Msg.Groups) != 1 || resp.Msg.Groups[0].ID != groupID {
			t.Errorf("unexpected groups: %+v", resp.Msg.Groups)
		}
		resp, err = env.groups.ListGroups(ctx, as(bob, &api.ListGroupsRequest{}))
		if err != nil {
			t.Fatalf("ListGroups failed: %v", err)
		}
		if len(resp.Msg.Groups) != 0 {
			t.Errorf("removed member still sees %d groups", len(resp.Msg.Groups))
		}
	})
}

func TestGetGroupExpenses(t *testing.T) {
	env := setupTestServer(t, ExpenseOptions{})
	ctx := context.Background()
	alice := env.createUser(t, "Alice", "alice@demo.com")
	bob := env.createUser(t, "Bob", "bob@demo.com")
	charlie := env.createUser(t, "Charlie", "charlie@demo.com")

	created, err := env.groups.CreateGroup(ctx, as(alice, &api.CreateGroupRequest{
		Name: "Flat", MemberIDs: []string{bob.ID, charlie.ID},
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	groupID := created.Msg.Group.ID

	// Alice pays 90 for everyone, Bob pays 30 for everyone.
	for _, e := range []struct {
		payer  user
		amount float64
	}{{alice, 90}, {bob, 30}} {
		share := e.amount / 3
		_, err := env.expense.CreateExpense(ctx, as(e.payer, &api.CreateExpenseRequest{
			Description: "Shared",
			Amount:      e.amount,
			PayerID:     e.payer.ID,
			GroupID:     groupID,
			Splits: []*api.Split{
				{UserID: alice.ID, Amount: share},
				{UserID: bob.ID, Amount: share},
				{UserID: charlie.ID, Amount: share},
			},
		}))
		if err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
	}
	if _, err := env.settlements.CreateSettlement(ctx, as(charlie, &api.CreateSettlementRequest{
		Amount: 10, PayerID: charlie.ID, ReceiverID: alice.ID, GroupID: groupID,
	})); err != nil {
		t.Fatalf("CreateSettlement failed: %v", err)
	}

	resp, err := env.groups.GetGroupExpenses(ctx, as(bob, &api.GetGroupExpensesRequest{GroupID: groupID}))
	if err != nil {
		t.Fatalf("GetGroupExpenses failed: %v", err)
	}
	if len(resp.Msg.Expenses) != 2 || len(resp.Msg.Settlements) != 1 {
		t.Fatalf("got %d expenses and %d settlements", len(resp.Msg.Expenses), len(resp.Msg.Settlements))
	}

	// alice: +60 -10 -10 = 40, bob: -30 +20 = -10, charlie: -30 -10 +10 = -30.
	want := map[string]float64{alice.ID: 40, bob.ID: -10, charlie.ID: -30}
	total := 0.0
	for _, b := range resp.Msg.Balances {
		if b.TotalBalance != want[b.UserID] {
			t.Errorf("%s total = %v, want %v", b.Name, b.TotalBalance, want[b.UserID])
		}
		total += b.TotalBalance
	}
	if total != 0 {
		t.Errorf("group balances sum to %v", total)
	}

	paid := 0.0
	for _, tr := range resp.Msg.Transfers {
		if tr.To != alice.ID {
			t.Errorf("unexpected transfer %+v", tr)
		}
		paid += tr.Amount
	}
	if paid != 40 {
		t.Errorf("suggested transfers pay alice %v, want 40", paid)
	}
}

func TestDeleteGroup(t *testing.T) {
	env := setupTestServer(t, ExpenseOptions{})
	ctx := context.Background()
	alice := env.createUser(t, "Alice", "alice@demo.com")
	bob := env.createUser(t, "Bob", "bob@demo.com")

	created, err := env.groups.CreateGroup(ctx, as(alice, &api.CreateGroupRequest{Name: "Trip", MemberIDs: []string{bob.ID}}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	groupID := created.Msg.Group.ID

	if _, err := env.expense.CreateExpense(ctx, as(alice, &api.CreateExpenseRequest{
		Description: "Hotel", Amount: 200, PayerID: alice.ID, GroupID: groupID,
		Splits: []*api.Split{{UserID: alice.ID, Amount: 100}, {UserID: bob.ID, Amount: 100}},
	})); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	if _, err := env.settlements.CreateSettlement(ctx, as(bob, &api.CreateSettlementRequest{
		Amount: 40, PayerID: bob.ID, ReceiverID: alice.ID, GroupID: groupID,
	})); err != nil {
		t.Fatalf("CreateSettlement failed: %v", err)
	}
	// A personal expense outside the group must survive the cascade.
	if _, err := env.expense.CreateExpense(ctx, as(alice, &api.CreateExpenseRequest{
		Description: "Coffee", Amount: 10, PayerID: alice.ID,
		Splits: []*api.Split{{UserID: alice.ID, Amount: 5}, {UserID: bob.ID, Amount: 5}},
	})); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	env.assertBalance(t, alice, "65")

	t.Run("only the creator", func(t *testing.T) {
		_, err := env.groups.DeleteGroup(ctx, as(bob, &api.DeleteGroupRequest{GroupID: groupID}))
		assertCode(t, err, connect.CodePermissionDenied)
	})

	t.Run("cascade reverses balances", func(t *testing.T) {
		if _, err := env.groups.DeleteGroup(ctx, as(alice, &api.DeleteGroupRequest{GroupID: groupID})); err != nil {
			t.Fatalf("DeleteGroup failed: %v", err)
		}
		if _, err := env.store.GetGroup(ctx, groupID); !errors.Is(err, errs.ErrNotFound) {
			t.Errorf("group should be gone, got %v", err)
		}
		env.assertBalance(t, alice, "5")
		env.assertBalance(t, bob, "-5")
		env.assertZeroSum(t)

		if _, err := Reconcile(ctx, env.store); err != nil {
			t.Errorf("Reconcile reported drift: %v", err)
		}
	})

	t.Run("missing group", func(t *testing.T) {
		_, err := env.groups.DeleteGroup(ctx, as(alice, &api.DeleteGroupRequest{GroupID: groupID}))
		assertCode(t, err, connect.CodeNotFound)
	})
}
