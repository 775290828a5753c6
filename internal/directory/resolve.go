// Package directory resolves free-form names to users and enforces group
// membership rules.
package directory

import (
	"strings"

	"github.com/mmynk/splitr/internal/errs"
	"github.com/mmynk/splitr/internal/models"
)

type matcher func(u *models.User, query string) bool

// strategies are tried in order. The first one that matches any user wins,
// and within a strategy the first matching user in directory order wins.
var strategies = []matcher{
	exactName,
	tokenOverlap,
	exactEmail,
	nameContains,
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func exactName(u *models.User, q string) bool {
	return u.Name != "" && normalize(u.Name) == q
}

// tokenOverlap matches when any word of the query and any word of the
// user's name contain one another.
func tokenOverlap(u *models.User, q string) bool {
	if u.Name == "" {
		return false
	}
	userWords := strings.Fields(normalize(u.Name))
	for _, qw := range strings.Fields(q) {
		for _, uw := range userWords {
			if strings.Contains(uw, qw) || strings.Contains(qw, uw) {
				return true
			}
		}
	}
	return false
}

func exactEmail(u *models.User, q string) bool {
	return u.Email != "" && normalize(u.Email) == q
}

func nameContains(u *models.User, q string) bool {
	return u.Name != "" && strings.Contains(strings.ToLower(u.Name), q)
}

// Resolve returns the user a free-form name refers to, or nil.
// users must be in directory order. Blank names never match.
func Resolve(users []*models.User, name string) *models.User {
	q := normalize(name)
	if q == "" {
		return nil
	}
	for _, match := range strategies {
		for _, u := range users {
			if match(u, q) {
				return u
			}
		}
	}
	return nil
}

// ResolveAll resolves every name or none. If any name is unresolved it
// returns a NotFound error listing the unresolved names and every known
// display name.
func ResolveAll(users []*models.User, names []string) ([]*models.User, error) {
	found := make([]*models.User, 0, len(names))
	var missing []string
	for _, name := range names {
		if u := Resolve(users, name); u != nil {
			found = append(found, u)
		} else {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, errs.NotFound("Users not found: %s. Available users: %s. Try using exact names or email addresses.",
			strings.Join(missing, ", "), strings.Join(DisplayNames(users), ", "))
	}
	return found, nil
}

// DisplayNames returns the non-empty names of users, in order.
func DisplayNames(users []*models.User) []string {
	names := make([]string, 0, len(users))
	for _, u := range users {
		if u.Name != "" {
			names = append(names, u.Name)
		}
	}
	return names
}
