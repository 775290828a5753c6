package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitr/internal/calculator"
	"github.com/mmynk/splitr/internal/directory"
	"github.com/mmynk/splitr/internal/errs"
	"github.com/mmynk/splitr/internal/ledger"
	"github.com/mmynk/splitr/internal/models"
	"github.com/mmynk/splitr/internal/storage"
	"github.com/mmynk/splitr/pkg/api"
	"github.com/mmynk/splitr/pkg/api/apiconnect"
)

// GroupService implements the Connect GroupService
type GroupService struct {
	store storage.Store
}

var _ apiconnect.GroupServiceHandler = (*GroupService)(nil)

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// CreateGroup creates a new group owned by the caller.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	actorID, err := actingUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateGroup request received",
		"user_id", actorID,
		"name", req.Msg.Name,
		"members_count", len(req.Msg.MemberIDs),
	)

	group, err := directory.NewGroup(req.Msg.Name, req.Msg.Description, actorID, req.Msg.MemberIDs, time.Now().Unix())
	if err != nil {
		return nil, toConnectError("CreateGroup", err)
	}
	users, err := s.requireUsers(ctx, group.MemberIDs())
	if err != nil {
		return nil, toConnectError("CreateGroup", err)
	}

	// Save to storage (generates ID and CreatedAt)
	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, toConnectError("CreateGroup", err)
	}

	slog.Info("Group created", "group_id", group.ID)
	return connect.NewResponse(&api.CreateGroupResponse{Group: toAPIGroup(group, users)}), nil
}

// GetGroup retrieves a group by ID.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	actorID, err := actingUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetGroup request received", "user_id", actorID, "group_id", req.Msg.GroupID)

	group, users, err := s.memberView(ctx, req.Msg.GroupID, actorID)
	if err != nil {
		return nil, toConnectError("GetGroup", err)
	}
	return connect.NewResponse(&api.GetGroupResponse{Group: toAPIGroup(group, users)}), nil
}

// ListGroups retrieves the caller's groups.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	actorID, err := actingUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ListGroups request received", "user_id", actorID)

	groups, err := s.store.ListGroupsForUser(ctx, actorID)
	if err != nil {
		return nil, toConnectError("ListGroups", err)
	}

	var ids []string
	for _, g := range groups {
		ids = append(ids, g.MemberIDs()...)
	}
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, toConnectError("ListGroups", err)
	}

	out := make([]*api.Group, len(groups))
	for i, g := range groups {
		out[i] = toAPIGroup(g, users)
	}
	slog.Info("ListGroups successful", "count", len(out))
	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// UpdateGroup changes a group's name or description.
func (s *GroupService) UpdateGroup(ctx context.Context, req *connect.Request[api.UpdateGroupRequest]) (*connect.Response[api.UpdateGroupResponse], error) {
	actorID, err := actingUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("UpdateGroup request received", "user_id", actorID, "group_id", req.Msg.GroupID)

	group, users, err := s.mutate(ctx, req.Msg.GroupID, func(g *models.Group) error {
		return directory.UpdateDetails(g, actorID, req.Msg.Name, req.Msg.Description)
	})
	if err != nil {
		return nil, toConnectError("UpdateGroup", err)
	}

	slog.Info("Group updated", "group_id", group.ID)
	return connect.NewResponse(&api.UpdateGroupResponse{Group: toAPIGroup(group, users)}), nil
}

// AddMember adds an existing user to a group.
func (s *GroupService) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	actorID, err := actingUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("AddMember request received",
		"user_id", actorID,
		"group_id", req.Msg.GroupID,
		"member_id", req.Msg.UserID,
	)

	role := models.Role(req.Msg.Role)
	user, err := s.store.GetUserByID(ctx, req.Msg.UserID)
	if err != nil {
		return nil, toConnectError("AddMember", err)
	}
	if user == nil {
		return nil, toConnectError("AddMember", errs.NotFound("User not found: %s", req.Msg.UserID))
	}

	group, users, err := s.mutate(ctx, req.Msg.GroupID, func(g *models.Group) error {
		return directory.AddMember(g, actorID, user.ID, role, time.Now().Unix())
	})
	if err != nil {
		return nil, toConnectError("AddMember", err)
	}

	slog.Info("Member added", "group_id", group.ID, "member_id", user.ID, "role", role)
	return connect.NewResponse(&api.AddMemberResponse{Group: toAPIGroup(group, users)}), nil
}

// RemoveMember removes a user from a group. Their history stays.
func (s *GroupService) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	actorID, err := actingUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("RemoveMember request received",
		"user_id", actorID,
		"group_id", req.Msg.GroupID,
		"member_id", req.Msg.UserID,
	)

	group, users, err := s.mutate(ctx, req.Msg.GroupID, func(g *models.Group) error {
		return directory.RemoveMember(g, actorID, req.Msg.UserID)
	})
	if err != nil {
		return nil, toConnectError("RemoveMember", err)
	}

	slog.Info("Member removed", "group_id", group.ID, "member_id", req.Msg.UserID)
	return connect.NewResponse(&api.RemoveMemberResponse{Group: toAPIGroup(group, users)}), nil
}

// DeleteGroup deletes a group together with its expenses and settlements.
// Every balance effect they had is reversed first.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	actorID, err := actingUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("DeleteGroup request received", "user_id", actorID, "group_id", req.Msg.GroupID)

	group, err := s.store.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError("DeleteGroup", err)
	}
	if err := directory.RequireCreator(group, actorID); err != nil {
		return nil, toConnectError("DeleteGroup", err)
	}

	var expenseCount, settlementCount int
	now := time.Now().Unix()
	err = s.store.InTx(ctx, func(tx storage.Store) error {
		settlements, err := tx.ListSettlementsByGroup(ctx, group.ID)
		if err != nil {
			return err
		}
		settlementCount = len(settlements)
		for _, st := range settlements {
			if err := ledger.ReverseSettlement(ctx, tx, st, now); err != nil {
				return err
			}
			if err := tx.DeleteSettlement(ctx, st.ID); err != nil {
				return err
			}
		}

		expenses, err := tx.ListExpensesByGroup(ctx, group.ID)
		if err != nil {
			return err
		}
		expenseCount = len(expenses)
		for _, e := range expenses {
			if err := removeExpense(ctx, tx, e, now); err != nil {
				return err
			}
		}
		return tx.DeleteGroup(ctx, group.ID)
	})
	if err != nil {
		return nil, toConnectError("DeleteGroup", err)
	}

	slog.Info("Group deleted",
		"group_id", group.ID,
		"expenses", expenseCount,
		"settlements", settlementCount,
	)
	return connect.NewResponse(&api.DeleteGroupResponse{}), nil
}

// GetGroupExpenses returns a group's records together with each member's
// balance and a suggested settle-up plan.
func (s *GroupService) GetGroupExpenses(ctx context.Context, req *connect.Request[api.GetGroupExpensesRequest]) (*connect.Response[api.GetGroupExpensesResponse], error) {
	actorID, err := actingUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetGroupExpenses request received", "user_id", actorID, "group_id", req.Msg.GroupID)

	group, users, err := s.memberView(ctx, req.Msg.GroupID, actorID)
	if err != nil {
		return nil, toConnectError("GetGroupExpenses", err)
	}
	expenses, err := s.store.ListExpensesByGroup(ctx, group.ID)
	if err != nil {
		return nil, toConnectError("GetGroupExpenses", err)
	}
	settlements, err := s.store.ListSettlementsByGroup(ctx, group.ID)
	if err != nil {
		return nil, toConnectError("GetGroupExpenses", err)
	}

	balances := calculator.GroupBalances(group.MemberIDs(), expenses, settlements)
	transfers := calculator.SuggestTransfers(balances)

	resp := &api.GetGroupExpensesResponse{
		Group:       toAPIGroup(group, users),
		Expenses:    toAPIExpenses(expenses),
		Settlements: toAPISettlements(settlements),
		Balances:    make([]*api.MemberBalance, len(balances)),
		Transfers:   make([]*api.Transfer, len(transfers)),
	}
	for i, b := range balances {
		mb := &api.MemberBalance{
			UserID:       b.UserID,
			TotalBalance: money(b.Total),
			Owes:         toAPIDebts(b.Owes),
			OwedBy:       toAPIDebts(b.OwedBy),
		}
		if u, ok := users[b.UserID]; ok {
			mb.Name = u.Name
		}
		resp.Balances[i] = mb
	}
	for i, t := range transfers {
		resp.Transfers[i] = &api.Transfer{From: t.From, To: t.To, Amount: money(t.Amount)}
	}

	slog.Info("GetGroupExpenses successful",
		"group_id", group.ID,
		"expenses", len(expenses),
		"transfers", len(transfers),
	)
	return connect.NewResponse(resp), nil
}

// memberView loads a group the caller belongs to along with its members.
func (s *GroupService) memberView(ctx context.Context, groupID, actorID string) (*models.Group, map[string]*models.User, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}
	if err := directory.RequireMember(group, actorID); err != nil {
		return nil, nil, err
	}
	users, err := s.store.GetUsersByIDs(ctx, group.MemberIDs())
	if err != nil {
		return nil, nil, err
	}
	return group, users, nil
}

// mutate applies fn to a fresh copy of the group and saves it in one
// transaction. Nothing is written if fn fails.
func (s *GroupService) mutate(ctx context.Context, groupID string, fn func(*models.Group) error) (*models.Group, map[string]*models.User, error) {
	var group *models.Group
	err := s.store.InTx(ctx, func(tx storage.Store) error {
		g, err := tx.GetGroup(ctx, groupID)
		if err != nil {
			return err
		}
		if err := fn(g); err != nil {
			return err
		}
		if err := tx.UpdateGroup(ctx, g); err != nil {
			return fmt.Errorf("failed to update group: %w", err)
		}
		group = g
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	users, err := s.store.GetUsersByIDs(ctx, group.MemberIDs())
	if err != nil {
		return nil, nil, err
	}
	return group, users, nil
}

// requireUsers fails with NotFound unless every ID names an existing user.
func (s *GroupService) requireUsers(ctx context.Context, ids []string) (map[string]*models.User, error) {
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, ok := users[id]; !ok {
			return nil, errs.NotFound("User not found: %s", id)
		}
	}
	return users, nil
}
