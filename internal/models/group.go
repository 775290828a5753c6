package models

// Role is a member's permission level within a group.
type Role string

const (
	// RoleAdmin may edit the group and manage its members.
	RoleAdmin Role = "admin"
	// RoleMember may record expenses and settlements in the group.
	RoleMember Role = "member"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

// Member is one user's membership in a group.
type Member struct {
	// UserID references the member's User.
	UserID string

	// Role is the member's permission level.
	Role Role

	// JoinedAt is the Unix timestamp when the user joined the group.
	JoinedAt int64
}

// Group represents a named collection of members who share expenses.
//
// The creator is always a member with the admin role, and a group always
// keeps at least one admin. Deleting a group removes every expense and
// settlement scoped to it.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Work Lunch").
	Name string

	// Description is an optional free-form description.
	Description string

	// CreatedBy is the user ID of the group's creator.
	CreatedBy string

	// Members is the list of memberships, in join order.
	Members []Member

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// Member returns the membership for userID, if any.
func (g *Group) Member(userID string) (Member, bool) {
	for _, m := range g.Members {
		if m.UserID == userID {
			return m, true
		}
	}
	return Member{}, false
}

// IsMember reports whether userID belongs to the group.
func (g *Group) IsMember(userID string) bool {
	_, ok := g.Member(userID)
	return ok
}

// IsAdmin reports whether userID is an admin of the group.
func (g *Group) IsAdmin(userID string) bool {
	m, ok := g.Member(userID)
	return ok && m.Role == RoleAdmin
}

// MemberIDs returns member user IDs in join order.
func (g *Group) MemberIDs() []string {
	ids := make([]string, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.UserID
	}
	return ids
}

// AdminCount returns how many members hold the admin role.
func (g *Group) AdminCount() int {
	n := 0
	for _, m := range g.Members {
		if m.Role == RoleAdmin {
			n++
		}
	}
	return n
}
