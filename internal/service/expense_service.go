package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitr/internal/calculator"
	"github.com/mmynk/splitr/internal/directory"
	"github.com/mmynk/splitr/internal/errs"
	"github.com/mmynk/splitr/internal/interpreter"
	"github.com/mmynk/splitr/internal/ledger"
	"github.com/mmynk/splitr/internal/metrics"
	"github.com/mmynk/splitr/internal/models"
	"github.com/mmynk/splitr/internal/notify"
	"github.com/mmynk/splitr/internal/storage"
	"github.com/mmynk/splitr/pkg/api"
	"github.com/mmynk/splitr/pkg/api/apiconnect"
)

// MaxCommandAmount is the largest amount accepted from a free-text command.
var MaxCommandAmount = decimal.NewFromInt(1_000_000)

// ExpenseOptions tunes expense creation.
type ExpenseOptions struct {
	// AssignRemainderToPayer makes equal splits from commands sum exactly by
	// letting the payer's share absorb the rounding remainder.
	AssignRemainderToPayer bool
	// Currency is the symbol used in notifications and messages.
	Currency string
}

// ExpenseService implements the Connect ExpenseService and the command
// flow behind the HTTP command endpoint.
type ExpenseService struct {
	store    storage.Store
	notifier notify.Notifier
	opts     ExpenseOptions
}

var _ apiconnect.ExpenseServiceHandler = (*ExpenseService)(nil)

// NewExpenseService creates an ExpenseService. A nil notifier disables
// notifications.
func NewExpenseService(store storage.Store, notifier notify.Notifier, opts ExpenseOptions) *ExpenseService {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &ExpenseService{store: store, notifier: notifier, opts: opts}
}

// CreateExpense records an expense with caller-supplied splits.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	actorID, err := actingUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateExpense request received",
		"user_id", actorID,
		"group_id", req.Msg.GroupID,
		"amount", req.Msg.Amount,
		"splits_count", len(req.Msg.Splits),
	)

	expense, err := s.buildExpense(ctx, actorID, req.Msg)
	if err != nil {
		return nil, toConnectError("CreateExpense", err)
	}
	users, err := s.persist(ctx, expense, "form")
	if err != nil {
		return nil, toConnectError("CreateExpense", err)
	}
	s.notifyCreated(ctx, expense, users)

	slog.Info("Expense created", "expense_id", expense.ID, "amount", expense.Amount.String())
	return connect.NewResponse(&api.CreateExpenseResponse{
		ExpenseID: expense.ID,
		Expense:   toAPIExpense(expense),
	}), nil
}

// buildExpense validates a create request into an unsaved expense.
func (s *ExpenseService) buildExpense(ctx context.Context, actorID string, msg *api.CreateExpenseRequest) (*models.Expense, error) {
	amount, err := parseAmount(msg.Amount, "Amount")
	if err != nil {
		return nil, err
	}
	description := strings.TrimSpace(msg.Description)
	if description == "" {
		return nil, errs.Validation("Description is required")
	}
	splitType := models.SplitType(msg.SplitType)
	if splitType == "" {
		splitType = models.SplitEqual
	}
	if !splitType.Valid() {
		return nil, errs.Validation("unknown split type %q", msg.SplitType)
	}
	if msg.PayerID == "" {
		return nil, errs.Validation("Payer is required")
	}
	if len(msg.Splits) == 0 {
		return nil, errs.Validation("At least one split is required")
	}

	if msg.GroupID != "" {
		group, err := s.store.GetGroup(ctx, msg.GroupID)
		if err != nil {
			return nil, err
		}
		if err := directory.RequireMember(group, actorID); err != nil {
			return nil, err
		}
	}

	expense := &models.Expense{
		Description: description,
		Amount:      amount,
		Category:    strings.TrimSpace(msg.Category),
		Date:        msg.Date,
		PayerID:     msg.PayerID,
		SplitType:   splitType,
		GroupID:     msg.GroupID,
		CreatedBy:   actorID,
	}
	if expense.Category == "" {
		expense.Category = models.DefaultCategory
	}
	if expense.Date == 0 {
		expense.Date = time.Now().Unix()
	}

	seen := make(map[string]bool, len(msg.Splits))
	payerListed := false
	for _, sp := range msg.Splits {
		if sp.UserID == "" {
			return nil, errs.Validation("Split user is required")
		}
		if seen[sp.UserID] {
			return nil, errs.Validation("Duplicate split for user %s", sp.UserID)
		}
		seen[sp.UserID] = true

		share := decimal.NewFromFloat(sp.Amount)
		if share.IsNegative() {
			return nil, errs.Validation("Split amounts cannot be negative")
		}
		if !share.Equal(share.Round(2)) {
			return nil, errs.Validation("Split amounts must have at most two decimal places")
		}
		split := models.Split{UserID: sp.UserID, Amount: share, Paid: sp.Paid}
		if sp.UserID == msg.PayerID {
			split.Paid = true
			payerListed = true
		}
		expense.Splits = append(expense.Splits, split)
	}

	if expense.SplitTotal().Sub(amount).Abs().GreaterThan(models.SplitTolerance) {
		return nil, errs.Validation("Split amounts must add up to the total expense amount")
	}

	// The payer's split carries the credit for everyone else's shares.
	if !payerListed {
		expense.Splits = append([]models.Split{{UserID: msg.PayerID, Amount: decimal.Zero, Paid: true}}, expense.Splits...)
	}
	return expense, nil
}

// persist checks that every referenced user exists, then writes the expense
// and applies its balance effects in one transaction. It returns the
// referenced users keyed by ID.
func (s *ExpenseService) persist(ctx context.Context, expense *models.Expense, source string) (map[string]*models.User, error) {
	ids := []string{expense.PayerID}
	for _, sp := range expense.Splits {
		ids = append(ids, sp.UserID)
	}
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, ok := users[id]; !ok {
			return nil, errs.NotFound("User not found: %s", id)
		}
	}

	now := time.Now().Unix()
	err = s.store.InTx(ctx, func(tx storage.Store) error {
		if err := tx.CreateExpense(ctx, expense); err != nil {
			return err
		}
		return ledger.ApplyExpenseSplits(ctx, tx, expense.Splits, expense.PayerID, now)
	})
	if err != nil {
		return nil, err
	}
	metrics.ExpensesCreated.WithLabelValues(source).Inc()
	return users, nil
}

// notifyCreated tells everyone who owes a share. Delivery runs in the
// background and failures are only logged.
func (s *ExpenseService) notifyCreated(ctx context.Context, expense *models.Expense, users map[string]*models.User) {
	notice := notify.ExpenseNotice{
		ExpenseID:   expense.ID,
		Description: expense.Description,
		Amount:      expense.Amount,
		Currency:    s.opts.Currency,
	}
	if payer, ok := users[expense.PayerID]; ok {
		notice.PayerName = payer.Name
	}
	for _, sp := range expense.Splits {
		if sp.Paid || sp.UserID == expense.PayerID || sp.UserID == expense.CreatedBy {
			continue
		}
		if u, ok := users[sp.UserID]; ok {
			notice.Recipients = append(notice.Recipients, notify.Recipient{Name: u.Name, Email: u.Email, Share: sp.Amount})
		}
	}
	if len(notice.Recipients) == 0 {
		return
	}

	ctx = context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := s.notifier.ExpenseCreated(ctx, notice); err != nil {
			slog.Warn("Expense notification failed", "expense_id", expense.ID, "error", err)
		}
	}()
}

// CommandResult describes an expense created from a free-text command.
type CommandResult struct {
	Expense *models.Expense
	// Members are the users who owe a share, excluding the payer.
	Members []*models.User
	// Share is the per-person amount.
	Share decimal.Decimal
}

// CreateFromCommand records an equal-split, group-less expense from an
// interpreted command. The acting user is always the payer; cmd.Payer is
// display text only. Member names are resolved against the whole user
// directory and any unresolved name fails the whole operation.
func (s *ExpenseService) CreateFromCommand(ctx context.Context, actorID string, cmd *interpreter.Command) (*CommandResult, error) {
	slog.Info("CreateFromCommand request received",
		"user_id", actorID,
		"amount", cmd.Amount.String(),
		"payer", cmd.Payer,
		"members", cmd.Members,
	)

	amount := cmd.Amount
	if !amount.IsPositive() {
		return nil, errs.Validation("Amount must be greater than 0")
	}
	if amount.GreaterThan(MaxCommandAmount) {
		return nil, errs.Validation("Amount must not exceed %s", MaxCommandAmount.String())
	}
	if !amount.Equal(amount.Round(2)) {
		return nil, errs.Validation("Amount must have at most two decimal places")
	}
	reason := strings.TrimSpace(cmd.Reason)
	if reason == "" {
		return nil, errs.Validation("Reason is required")
	}

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	var actor *models.User
	for _, u := range users {
		if u.ID == actorID {
			actor = u
			break
		}
	}
	if actor == nil {
		return nil, errs.NotFound("User not found")
	}

	resolved, err := directory.ResolveAll(users, cmd.Members)
	if err != nil {
		return nil, err
	}

	var owers []*models.User
	seen := map[string]bool{actor.ID: true}
	for _, u := range resolved {
		if !seen[u.ID] {
			seen[u.ID] = true
			owers = append(owers, u)
		}
	}
	if len(owers) == 0 {
		return nil, errs.Validation("At least one other person must be included in the expense")
	}

	owerIDs := make([]string, len(owers))
	for i, u := range owers {
		owerIDs[i] = u.ID
	}

	expense := &models.Expense{
		Description: reason,
		Amount:      amount,
		Category:    models.DefaultCategory,
		Date:        time.Now().Unix(),
		PayerID:     actor.ID,
		SplitType:   models.SplitEqual,
		Splits:      calculator.EqualSplits(amount, actor.ID, owerIDs, s.opts.AssignRemainderToPayer),
		CreatedBy:   actor.ID,
	}

	byID, err := s.persist(ctx, expense, "command")
	if err != nil {
		return nil, err
	}
	s.notifyCreated(ctx, expense, byID)

	slog.Info("Expense created from command", "expense_id", expense.ID, "payer_id", actor.ID, "members", len(owers))
	return &CommandResult{
		Expense: expense,
		Members: owers,
		Share:   calculator.EqualShare(amount, len(owers)+1),
	}, nil
}

// DeleteExpense removes an expense the caller created or paid for.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	actorID, err := actingUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("DeleteExpense request received", "user_id", actorID, "expense_id", req.Msg.ExpenseID)

	if err := s.deleteExpense(ctx, actorID, req.Msg.ExpenseID); err != nil {
		return nil, toConnectError("DeleteExpense", err)
	}

	slog.Info("Expense deleted", "expense_id", req.Msg.ExpenseID)
	return connect.NewResponse(&api.DeleteExpenseResponse{Success: true}), nil
}

func (s *ExpenseService) deleteExpense(ctx context.Context, actorID, expenseID string) error {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return err
	}
	if expense.CreatedBy != actorID && expense.PayerID != actorID {
		return errs.Forbidden("You don't have permission to delete this expense")
	}

	now := time.Now().Unix()
	return s.store.InTx(ctx, func(tx storage.Store) error {
		return removeExpense(ctx, tx, expense, now)
	})
}

// removeExpense undoes an expense inside tx: its balance effects are
// reversed, settlements referencing it are pruned (and deleted, with their
// own effects reversed, once nothing is left), and the row goes last.
func removeExpense(ctx context.Context, tx storage.Store, expense *models.Expense, now int64) error {
	if err := ledger.ReverseExpenseSplits(ctx, tx, expense.Splits, expense.PayerID, now); err != nil {
		return err
	}

	settlements, err := tx.ListSettlementsByExpense(ctx, expense.ID)
	if err != nil {
		return err
	}
	for _, st := range settlements {
		remaining := make([]string, 0, len(st.RelatedExpenseIDs))
		for _, id := range st.RelatedExpenseIDs {
			if id != expense.ID {
				remaining = append(remaining, id)
			}
		}
		if len(remaining) > 0 {
			if err := tx.UpdateSettlementExpenses(ctx, st.ID, remaining); err != nil {
				return err
			}
			continue
		}
		if err := ledger.ReverseSettlement(ctx, tx, st, now); err != nil {
			return err
		}
		if err := tx.DeleteSettlement(ctx, st.ID); err != nil {
			return err
		}
	}

	return tx.DeleteExpense(ctx, expense.ID)
}

// ListExpenses returns expenses the caller paid for or recorded.
func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	actorID, err := actingUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ListExpenses request received", "user_id", actorID)

	expenses, err := s.store.ListExpensesForUser(ctx, actorID)
	if err != nil {
		return nil, toConnectError("ListExpenses", err)
	}
	return connect.NewResponse(&api.ListExpensesResponse{Expenses: toAPIExpenses(expenses)}), nil
}

// GetExpensesBetweenUsers returns one-on-one activity between the caller and
// another user with the running balance from the caller's side.
func (s *ExpenseService) GetExpensesBetweenUsers(ctx context.Context, req *connect.Request[api.GetExpensesBetweenUsersRequest]) (*connect.Response[api.GetExpensesBetweenUsersResponse], error) {
	actorID, err := actingUser(ctx)
	if err != nil {
		return nil, err
	}
	otherID := req.Msg.UserID
	slog.Info("GetExpensesBetweenUsers request received", "user_id", actorID, "other_user_id", otherID)

	if otherID == "" || otherID == actorID {
		return nil, toConnectError("GetExpensesBetweenUsers", errs.Validation("Choose another user to compare with"))
	}
	other, err := s.store.GetUserByID(ctx, otherID)
	if err != nil {
		return nil, toConnectError("GetExpensesBetweenUsers", err)
	}
	if other == nil {
		return nil, toConnectError("GetExpensesBetweenUsers", errs.NotFound("User not found"))
	}

	expenses, err := s.store.ListPersonalExpensesBetween(ctx, actorID, otherID)
	if err != nil {
		return nil, toConnectError("GetExpensesBetweenUsers", err)
	}
	settlements, err := s.store.ListPersonalSettlementsBetween(ctx, actorID, otherID)
	if err != nil {
		return nil, toConnectError("GetExpensesBetweenUsers", err)
	}

	return connect.NewResponse(&api.GetExpensesBetweenUsersResponse{
		Expenses:    toAPIExpenses(expenses),
		Settlements: toAPISettlements(settlements),
		OtherUser:   toAPIUser(other),
		Balance:     money(pairBalance(actorID, otherID, expenses, settlements)),
	}), nil
}

// pairBalance is what other owes me (negative if I owe other) across
// one-on-one records.
func pairBalance(me, other string, expenses []*models.Expense, settlements []*models.Settlement) decimal.Decimal {
	balance := decimal.Zero
	for _, e := range expenses {
		for _, sp := range e.Splits {
			if sp.Paid {
				continue
			}
			switch {
			case e.PayerID == me && sp.UserID == other:
				balance = balance.Add(sp.Amount)
			case e.PayerID == other && sp.UserID == me:
				balance = balance.Sub(sp.Amount)
			}
		}
	}
	for _, st := range settlements {
		switch {
		case st.PayerID == me && st.ReceiverID == other:
			balance = balance.Add(st.Amount)
		case st.PayerID == other && st.ReceiverID == me:
			balance = balance.Sub(st.Amount)
		}
	}
	return balance
}

// CalculateSplits previews split rows without saving anything.
func (s *ExpenseService) CalculateSplits(ctx context.Context, req *connect.Request[api.CalculateSplitsRequest]) (*connect.Response[api.CalculateSplitsResponse], error) {
	slog.Info("CalculateSplits request received",
		"split_type", req.Msg.SplitType,
		"amount", req.Msg.Amount,
		"participants_count", len(req.Msg.Participants),
	)

	amount, err := parseAmount(req.Msg.Amount, "Amount")
	if err != nil {
		return nil, toConnectError("CalculateSplits", err)
	}
	participants := make([]calculator.Participant, len(req.Msg.Participants))
	for i, p := range req.Msg.Participants {
		participants[i] = calculator.Participant{
			UserID:     p.UserID,
			Percentage: decimal.NewFromFloat(p.Percentage),
			Amount:     decimal.NewFromFloat(p.Amount),
		}
	}

	splits, err := calculator.CalculateSplits(models.SplitType(req.Msg.SplitType), amount, req.Msg.PayerID, participants)
	if err != nil {
		return nil, toConnectError("CalculateSplits", err)
	}
	return connect.NewResponse(&api.CalculateSplitsResponse{Splits: toAPISplits(splits)}), nil
}

// ListCategories returns the built-in expense categories.
func (s *ExpenseService) ListCategories(ctx context.Context, req *connect.Request[api.ListCategoriesRequest]) (*connect.Response[api.ListCategoriesResponse], error) {
	categories := make([]string, len(models.DefaultCategories))
	copy(categories, models.DefaultCategories)
	return connect.NewResponse(&api.ListCategoriesResponse{Categories: categories}), nil
}
