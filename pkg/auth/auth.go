package auth

import (
	"context"
	"sort"
	"strings"

	"github.com/rhuss/gatehouse/pkg/api"
)

// Role is a coarse-grained permission label assigned to a user.
type Role string

// Known roles. The store may hold others; they simply match no route that
// does not list them.
const (
	RoleUser      Role = "user"
	RolePublisher Role = "publisher"
	RoleAdmin     Role = "admin"
)

// Identity is the resolved principal bound to a request after successful
// authentication.
type Identity struct {
	// ID is the user's unique identifier (non-empty).
	ID string

	// Role is the user's role as held by the user store.
	Role Role
}

// RoleSet is an immutable set of roles. The zero value permits nothing.
type RoleSet struct {
	roles map[Role]struct{}
}

// NewRoleSet builds a RoleSet from the given roles. Duplicates are ignored.
func NewRoleSet(roles ...Role) RoleSet {
	m := make(map[Role]struct{}, len(roles))
	for _, r := range roles {
		m[r] = struct{}{}
	}
	return RoleSet{roles: m}
}

// Contains reports whether r is a member of the set.
func (s RoleSet) Contains(r Role) bool {
	_, ok := s.roles[r]
	return ok
}

// Len returns the number of roles in the set.
func (s RoleSet) Len() int {
	return len(s.roles)
}

// String returns the roles in sorted order, comma separated.
func (s RoleSet) String() string {
	names := make([]string, 0, len(s.roles))
	for r := range s.roles {
		names = append(names, string(r))
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

// UserLookup resolves a subject identifier to a user record. It returns
// storage.ErrNotFound when no such user exists. Any other error is treated
// as a store failure.
type UserLookup interface {
	GetUser(ctx context.Context, id string) (*api.User, error)
}
