package directory

import (
	"strings"

	"github.com/mmynk/splitr/internal/errs"
	"github.com/mmynk/splitr/internal/models"
)

// NewGroup builds a group owned by creatorID. The creator becomes an admin;
// every other listed user joins as a member. Duplicate IDs are ignored.
func NewGroup(name, description, creatorID string, memberIDs []string, now int64) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errs.Validation("group name required")
	}
	g := &models.Group{
		Name:        name,
		Description: description,
		CreatedBy:   creatorID,
		Members:     []models.Member{{UserID: creatorID, Role: models.RoleAdmin, JoinedAt: now}},
	}
	for _, id := range memberIDs {
		if id == "" || g.IsMember(id) {
			continue
		}
		g.Members = append(g.Members, models.Member{UserID: id, Role: models.RoleMember, JoinedAt: now})
	}
	return g, nil
}

// RequireMember fails with Forbidden unless userID belongs to g.
func RequireMember(g *models.Group, userID string) error {
	if !g.IsMember(userID) {
		return errs.Forbidden("You are not a member of this group")
	}
	return nil
}

// RequireAdmin fails with Forbidden unless userID is an admin of g.
func RequireAdmin(g *models.Group, userID string) error {
	if !g.IsAdmin(userID) {
		return errs.Forbidden("Only group admins can modify the group")
	}
	return nil
}

// RequireCreator fails with Forbidden unless userID created g.
func RequireCreator(g *models.Group, userID string) error {
	if g.CreatedBy != userID {
		return errs.Forbidden("Only group creator can delete the group")
	}
	return nil
}

// UpdateDetails renames g and/or changes its description. Empty values are
// left unchanged.
func UpdateDetails(g *models.Group, actorID, name, description string) error {
	if err := RequireAdmin(g, actorID); err != nil {
		return err
	}
	if name = strings.TrimSpace(name); name != "" {
		g.Name = name
	}
	if description != "" {
		g.Description = description
	}
	return nil
}

// AddMember adds userID to g with the given role (member if empty).
func AddMember(g *models.Group, actorID, userID string, role models.Role, now int64) error {
	if !g.IsAdmin(actorID) {
		return errs.Forbidden("Only admins can add members")
	}
	if role == "" {
		role = models.RoleMember
	}
	if !role.Valid() {
		return errs.Validation("unknown role %q", role)
	}
	if g.IsMember(userID) {
		return errs.Validation("User is already a member")
	}
	g.Members = append(g.Members, models.Member{UserID: userID, Role: role, JoinedAt: now})
	return nil
}

// RemoveMember removes userID from g. The creator can never be removed and
// the group always keeps at least one admin.
func RemoveMember(g *models.Group, actorID, userID string) error {
	if !g.IsAdmin(actorID) {
		return errs.Forbidden("Only admins can remove members")
	}
	if g.CreatedBy == userID {
		return errs.Validation("Cannot remove group creator")
	}
	m, ok := g.Member(userID)
	if !ok {
		return errs.NotFound("User is not a member of this group")
	}
	if m.Role == models.RoleAdmin && g.AdminCount() == 1 {
		return errs.Validation("Cannot remove the last admin")
	}

	kept := make([]models.Member, 0, len(g.Members)-1)
	for _, existing := range g.Members {
		if existing.UserID != userID {
			kept = append(kept, existing)
		}
	}
	g.Members = kept
	return nil
}
