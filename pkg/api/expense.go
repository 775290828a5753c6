package api

type Split struct {
	UserID string  `json:"userId"`
	Amount float64 `json:"amount"`
	Paid   bool    `json:"paid"`
}

type Expense struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Amount      float64  `json:"amount"`
	Category    string   `json:"category"`
	Date        int64    `json:"date"`
	PayerID     string   `json:"paidByUserId"`
	SplitType   string   `json:"splitType"`
	Splits      []*Split `json:"splits"`
	GroupID     string   `json:"groupId,omitempty"`
	CreatedBy   string   `json:"createdBy"`
	CreatedAt   int64    `json:"createdAt"`
}

type CreateExpenseRequest struct {
	Description string   `json:"description"`
	Amount      float64  `json:"amount"`
	Category    string   `json:"category,omitempty"`
	Date        int64    `json:"date,omitempty"`
	PayerID     string   `json:"paidByUserId"`
	SplitType   string   `json:"splitType"`
	Splits      []*Split `json:"splits"`
	GroupID     string   `json:"groupId,omitempty"`
}

type CreateExpenseResponse struct {
	ExpenseID string   `json:"expenseId"`
	Expense   *Expense `json:"expense"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expenseId"`
}

type DeleteExpenseResponse struct {
	Success bool `json:"success"`
}

type ListExpensesRequest struct{}

type ListExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

type GetExpensesBetweenUsersRequest struct {
	UserID string `json:"userId"`
}

// GetExpensesBetweenUsersResponse lists one-on-one activity with another
// user. Balance is positive when the other user owes the caller.
type GetExpensesBetweenUsersResponse struct {
	Expenses    []*Expense    `json:"expenses"`
	Settlements []*Settlement `json:"settlements"`
	OtherUser   *User         `json:"otherUser"`
	Balance     float64       `json:"balance"`
}

type Participant struct {
	UserID     string  `json:"userId"`
	Percentage float64 `json:"percentage,omitempty"`
	Amount     float64 `json:"amount,omitempty"`
}

type CalculateSplitsRequest struct {
	SplitType    string         `json:"splitType"`
	Amount       float64        `json:"amount"`
	PayerID      string         `json:"paidByUserId"`
	Participants []*Participant `json:"participants"`
}

type CalculateSplitsResponse struct {
	Splits []*Split `json:"splits"`
}

type ListCategoriesRequest struct{}

type ListCategoriesResponse struct {
	Categories []string `json:"categories"`
}
