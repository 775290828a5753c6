package api

type Member struct {
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	JoinedAt int64  `json:"joinedAt"`
}

type Group struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedBy   string    `json:"createdBy"`
	Members     []*Member `json:"members"`
	CreatedAt   int64     `json:"createdAt"`
}

type CreateGroupRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	MemberIDs   []string `json:"memberIds"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"groupId"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

// UpdateGroupRequest changes a group's details. Empty fields are left unchanged.
type UpdateGroupRequest struct {
	GroupID     string `json:"groupId"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

type UpdateGroupResponse struct {
	Group *Group `json:"group"`
}

type AddMemberRequest struct {
	GroupID string `json:"groupId"`
	UserID  string `json:"userId"`
	// Role is "admin" or "member" (default).
	Role string `json:"role,omitempty"`
}

type AddMemberResponse struct {
	Group *Group `json:"group"`
}

type RemoveMemberRequest struct {
	GroupID string `json:"groupId"`
	UserID  string `json:"userId"`
}

type RemoveMemberResponse struct {
	Group *Group `json:"group"`
}

type DeleteGroupRequest struct {
	GroupID string `json:"groupId"`
}

type DeleteGroupResponse struct{}

type Debt struct {
	UserID string  `json:"userId"`
	Amount float64 `json:"amount"`
}

// MemberBalance is one member's position within a group. TotalBalance is
// positive when the member is owed money.
type MemberBalance struct {
	UserID       string  `json:"userId"`
	Name         string  `json:"name"`
	TotalBalance float64 `json:"totalBalance"`
	Owes         []*Debt `json:"owes"`
	OwedBy       []*Debt `json:"owedBy"`
}

// Transfer is a suggested payment that settles group debts.
type Transfer struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
}

type GetGroupExpensesRequest struct {
	GroupID string `json:"groupId"`
}

type GetGroupExpensesResponse struct {
	Group       *Group           `json:"group"`
	Expenses    []*Expense       `json:"expenses"`
	Settlements []*Settlement    `json:"settlements"`
	Balances    []*MemberBalance `json:"balances"`
	Transfers   []*Transfer      `json:"transfers"`
}
