package api

type Settlement struct {
	ID                string   `json:"id"`
	Amount            float64  `json:"amount"`
	Note              string   `json:"note,omitempty"`
	Date              int64    `json:"date"`
	PayerID           string   `json:"paidByUserId"`
	ReceiverID        string   `json:"receivedByUserId"`
	GroupID           string   `json:"groupId,omitempty"`
	RelatedExpenseIDs []string `json:"relatedExpenseIds,omitempty"`
	CreatedBy         string   `json:"createdBy"`
	CreatedAt         int64    `json:"createdAt"`
}

type CreateSettlementRequest struct {
	Amount            float64  `json:"amount"`
	Note              string   `json:"note,omitempty"`
	Date              int64    `json:"date,omitempty"`
	PayerID           string   `json:"paidByUserId"`
	ReceiverID        string   `json:"receivedByUserId"`
	GroupID           string   `json:"groupId,omitempty"`
	RelatedExpenseIDs []string `json:"relatedExpenseIds,omitempty"`
}

type CreateSettlementResponse struct {
	Settlement *Settlement `json:"settlement"`
}

type ListSettlementsRequest struct {
	GroupID string `json:"groupId"`
}

type ListSettlementsResponse struct {
	Settlements []*Settlement `json:"settlements"`
}

// Balance is a user's global running total. Positive means owed money.
type Balance struct {
	UserID      string  `json:"userId"`
	Name        string  `json:"name,omitempty"`
	Amount      float64 `json:"amount"`
	LastUpdated int64   `json:"lastUpdated"`
}

type GetAllBalancesRequest struct{}

type GetAllBalancesResponse struct {
	Balances []*Balance `json:"balances"`
}

type GetUserBalanceRequest struct {
	UserID string `json:"userId"`
}

// GetUserBalanceResponse carries a nil Balance when the user has none or
// the read failed.
type GetUserBalanceResponse struct {
	Balance *Balance `json:"balance"`
}

type GetCurrentUserBalanceRequest struct{}

type GetCurrentUserBalanceResponse struct {
	Balance *Balance `json:"balance"`
}

type ReconcileBalancesRequest struct{}

type ReconcileBalancesResponse struct {
	Checked int `json:"checked"`
}
