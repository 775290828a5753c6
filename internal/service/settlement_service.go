package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitr/internal/directory"
	"github.com/mmynk/splitr/internal/errs"
	"github.com/mmynk/splitr/internal/ledger"
	"github.com/mmynk/splitr/internal/models"
	"github.com/mmynk/splitr/internal/storage"
	"github.com/mmynk/splitr/pkg/api"
	"github.com/mmynk/splitr/pkg/api/apiconnect"
)

// SettlementService records repayments between users.
type SettlementService struct {
	store storage.Store
}

var _ apiconnect.SettlementServiceHandler = (*SettlementService)(nil)

func NewSettlementService(store storage.Store) *SettlementService {
	return &SettlementService{store: store}
}

// CreateSettlement records that one user paid another back.
func (s *SettlementService) CreateSettlement(ctx context.Context, req *connect.Request[api.CreateSettlementRequest]) (*connect.Response[api.CreateSettlementResponse], error) {
	actorID, err := actingUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateSettlement request received",
		"user_id", actorID,
		"payer_id", req.Msg.PayerID,
		"receiver_id", req.Msg.ReceiverID,
		"amount", req.Msg.Amount,
	)

	settlement, err := s.buildSettlement(ctx, actorID, req.Msg)
	if err != nil {
		return nil, toConnectError("CreateSettlement", err)
	}

	now := time.Now().Unix()
	err = s.store.InTx(ctx, func(tx storage.Store) error {
		if err := tx.CreateSettlement(ctx, settlement); err != nil {
			return err
		}
		return ledger.ApplySettlement(ctx, tx, settlement, now)
	})
	if err != nil {
		return nil, toConnectError("CreateSettlement", err)
	}

	slog.Info("Settlement created", "settlement_id", settlement.ID, "amount", settlement.Amount.String())
	return connect.NewResponse(&api.CreateSettlementResponse{Settlement: toAPISettlement(settlement)}), nil
}

func (s *SettlementService) buildSettlement(ctx context.Context, actorID string, msg *api.CreateSettlementRequest) (*models.Settlement, error) {
	amount, err := parseAmount(msg.Amount, "Amount")
	if err != nil {
		return nil, err
	}
	if msg.PayerID == "" || msg.ReceiverID == "" {
		return nil, errs.Validation("Payer and receiver are required")
	}
	if msg.PayerID == msg.ReceiverID {
		return nil, errs.Validation("Payer and receiver must be different users")
	}

	users, err := s.store.GetUsersByIDs(ctx, []string{msg.PayerID, msg.ReceiverID})
	if err != nil {
		return nil, err
	}
	for _, id := range []string{msg.PayerID, msg.ReceiverID} {
		if _, ok := users[id]; !ok {
			return nil, errs.NotFound("User not found: %s", id)
		}
	}

	party := actorID == msg.PayerID || actorID == msg.ReceiverID
	if msg.GroupID != "" {
		group, err := s.store.GetGroup(ctx, msg.GroupID)
		if err != nil {
			return nil, err
		}
		if err := directory.RequireMember(group, actorID); err != nil {
			return nil, err
		}
	} else if !party {
		return nil, errs.Forbidden("You can only record settlements you are part of")
	}

	for _, id := range msg.RelatedExpenseIDs {
		if _, err := s.store.GetExpense(ctx, id); err != nil {
			return nil, err
		}
	}

	settlement := &models.Settlement{
		Amount:            amount,
		Note:              strings.TrimSpace(msg.Note),
		Date:              msg.Date,
		PayerID:           msg.PayerID,
		ReceiverID:        msg.ReceiverID,
		GroupID:           msg.GroupID,
		RelatedExpenseIDs: msg.RelatedExpenseIDs,
		CreatedBy:         actorID,
	}
	if settlement.Date == 0 {
		settlement.Date = time.Now().Unix()
	}
	return settlement, nil
}

// ListSettlements lists a group's settlements. Only members may see them.
func (s *SettlementService) ListSettlements(ctx context.Context, req *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	actorID, err := actingUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ListSettlements request received", "user_id", actorID, "group_id", req.Msg.GroupID)

	group, err := s.store.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError("ListSettlements", err)
	}
	if err := directory.RequireMember(group, actorID); err != nil {
		return nil, toConnectError("ListSettlements", err)
	}
	settlements, err := s.store.ListSettlementsByGroup(ctx, group.ID)
	if err != nil {
		return nil, toConnectError("ListSettlements", err)
	}
	return connect.NewResponse(&api.ListSettlementsResponse{Settlements: toAPISettlements(settlements)}), nil
}
