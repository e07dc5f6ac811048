// Package identity describes the authenticated caller as seen by the task
// services. Session and credential handling live elsewhere; the services only
// need a stable user id and the caller's role set.
package identity

import "slices"

const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

// Principal is the authenticated caller of a request.
type Principal interface {
	CurrentUserID() string
	CurrentUserRoles() []string
}

// IsAdmin reports whether p holds the Admin role.
func IsAdmin(p Principal) bool {
	if p == nil {
		return false
	}
	return HasRole(p, RoleAdmin)
}

func HasRole(p Principal, role string) bool {
	return slices.Contains(p.CurrentUserRoles(), role)
}

// Claims is the Principal decoded from a bearer token.
type Claims struct {
	UserID    string
	Roles     []string
	FirstName string
}

func (c Claims) CurrentUserID() string      { return c.UserID }
func (c Claims) CurrentUserRoles() []string { return c.Roles }
