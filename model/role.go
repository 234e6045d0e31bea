package model

import "fmt"

// Role is the closed set of roles a user can hold.
type Role string

const (
	RoleVolunteer   Role = "volunteer"
	RoleCoordinator Role = "coordinator"
	RoleCommunity   Role = "community"
)

// Roles lists every selectable role.
var Roles = []Role{RoleVolunteer, RoleCoordinator, RoleCommunity}

func (r Role) Valid() bool {
	switch r {
	case RoleVolunteer, RoleCoordinator, RoleCommunity:
		return true
	default:
		return false
	}
}

// ParseRole accepts the stored spelling of a role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", &ValidationError{Field: "role", Message: fmt.Sprintf("unknown role %q", s)}
	}
	return r, nil
}
