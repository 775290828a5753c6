package directory

import (
	"errors"
	"testing"

	"github.com/mmynk/splitr/internal/errs"
	"github.com/mmynk/splitr/internal/models"
)

func testGroup(t *testing.T) *models.Group {
	t.Helper()
	g, err := NewGroup("Roommates", "", "alice", []string{"bob", "carol", "bob", "alice"}, 100)
	if err != nil {
		t.Fatalf("NewGroup failed: %v", err)
	}
	return g
}

func TestNewGroup(t *testing.T) {
	g := testGroup(t)

	if len(g.Members) != 3 {
		t.Fatalf("members = %d, want 3", len(g.Members))
	}
	if !g.IsAdmin("alice") {
		t.Error("creator should be admin")
	}
	if g.IsAdmin("bob") {
		t.Error("bob should be a plain member")
	}

	if _, err := NewGroup("  ", "", "alice", nil, 0); !errors.Is(err, errs.ErrValidation) {
		t.Errorf("blank name: got %v, want validation error", err)
	}
}

func TestRemoveMember(t *testing.T) {
	tests := []struct {
		name    string
		actor   string
		target  string
		setup   func(g *models.Group)
		wantErr error
	}{
		{name: "admin removes member", actor: "alice", target: "bob"},
		{name: "creator cannot be removed", actor: "alice", target: "alice", wantErr: errs.ErrValidation},
		{
			name:   "creator cannot be removed by another admin",
			actor:  "bob",
			target: "alice",
			setup: func(g *models.Group) {
				g.Members[1].Role = models.RoleAdmin
			},
			wantErr: errs.ErrValidation,
		},
		{name: "non-admin forbidden", actor: "bob", target: "carol", wantErr: errs.ErrForbidden},
		{name: "non-member target", actor: "alice", target: "zed", wantErr: errs.ErrNotFound},
		{
			name:   "last admin stays",
			actor:  "bob",
			target: "bob",
			setup: func(g *models.Group) {
				// creator left admin duty to bob
				g.Members[0].Role = models.RoleMember
				g.Members[1].Role = models.RoleAdmin
			},
			wantErr: errs.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := testGroup(t)
			if tt.setup != nil {
				tt.setup(g)
			}
			before := len(g.Members)

			err := RemoveMember(g, tt.actor, tt.target)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("RemoveMember failed: %v", err)
				}
				if g.IsMember(tt.target) {
					t.Error("target still a member")
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
			if len(g.Members) != before {
				t.Error("membership changed on failure")
			}
		})
	}
}

func TestAddMember(t *testing.T) {
	g := testGroup(t)

	if err := AddMember(g, "bob", "dave", "", 200); !errors.Is(err, errs.ErrForbidden) {
		t.Errorf("non-admin add: got %v, want forbidden", err)
	}
	if err := AddMember(g, "alice", "bob", "", 200); !errors.Is(err, errs.ErrValidation) {
		t.Errorf("duplicate add: got %v, want validation", err)
	}
	if err := AddMember(g, "alice", "dave", "owner", 200); !errors.Is(err, errs.ErrValidation) {
		t.Errorf("bad role: got %v, want validation", err)
	}
	if err := AddMember(g, "alice", "dave", models.RoleAdmin, 200); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	if !g.IsAdmin("dave") {
		t.Error("dave should be admin")
	}
}

func TestUpdateDetailsAndCreator(t *testing.T) {
	g := testGroup(t)

	if err := UpdateDetails(g, "carol", "Flat 4", ""); !errors.Is(err, errs.ErrForbidden) {
		t.Errorf("non-admin update: got %v", err)
	}
	if err := UpdateDetails(g, "alice", "Flat 4", ""); err != nil {
		t.Fatalf("UpdateDetails failed: %v", err)
	}
	if g.Name != "Flat 4" {
		t.Errorf("name = %q", g.Name)
	}
	if err := RequireCreator(g, "bob"); !errors.Is(err, errs.ErrForbidden) {
		t.Errorf("RequireCreator(bob) = %v", err)
	}
	if err := RequireMember(g, "zed"); !errors.Is(err, errs.ErrForbidden) {
		t.Errorf("RequireMember(zed) = %v", err)
	}
}
