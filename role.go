package kasane

import (
	"fmt"

	"github.com/yacchi/kasane/layer"
)

// Role identifies one of the fixed top-level layers of the root composite.
type Role int

// Roles in precedence order, highest first.
const (
	RoleRuntime Role = iota
	RoleRemote
	RoleSystem
	RoleEnvironment
	RoleApplication
	RoleLibraries
	RoleDefaults
)

var roleNames = [...]string{
	RoleRuntime:     "RUNTIME",
	RoleRemote:      "REMOTE",
	RoleSystem:      "SYSTEM",
	RoleEnvironment: "ENVIRONMENT",
	RoleApplication: "APPLICATION",
	RoleLibraries:   "LIBRARIES",
	RoleDefaults:    "DEFAULTS",
}

// Roles returns every role in precedence order, highest first.
func Roles() []Role {
	return []Role{
		RoleRuntime,
		RoleRemote,
		RoleSystem,
		RoleEnvironment,
		RoleApplication,
		RoleLibraries,
		RoleDefaults,
	}
}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	return r >= RoleRuntime && r <= RoleDefaults
}

// Settable reports whether the role is backed by a settable layer that seeders can target.
func (r Role) Settable() bool {
	return r == RoleRuntime || r == RoleDefaults
}

func (r Role) String() string {
	if !r.Valid() {
		return fmt.Sprintf("Role(%d)", int(r))
	}
	return roleNames[r]
}

// LayerName returns the name under which the role's layer is registered in the root composite.
func (r Role) LayerName() layer.Name {
	return layer.Name(r.String())
}

// ParseRole returns the role whose name is s.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles() {
		if roleNames[r] == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRole, s)
}
