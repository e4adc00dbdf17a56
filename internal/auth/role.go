// AngelaMos | 2026
// role.go

package auth

import (
	"fmt"

	"github.com/carterperez-dev/templates/users-service/internal/core"
)

// Role is the closed set of user kinds. It is carried in the token's
// "role" claim and drives every authorization decision.
type Role string

const (
	RoleClient   Role = "client"
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("parse role %q: %w", s, core.ErrInvalidInput)
	}
	return r, nil
}

func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleEmployee, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// CanReadUsers reports whether the role may look up other users by id.
func (r Role) CanReadUsers() bool {
	return r == RoleEmployee || r == RoleAdmin
}

func (r Role) CanManageUsers() bool {
	return r == RoleAdmin
}
