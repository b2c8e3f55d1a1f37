package loft

import (
	"encoding/json"
	"fmt"
)

// Role is a permission granted to an application member.
type Role string

// Application member roles.
const (
	// RoleAdmin allows everything, including application administration.
	RoleAdmin Role = "admin"
	// RoleManager allows managing registry content, and implies RoleReader.
	RoleManager Role = "manager"
	// RoleReader allows reading registry content.
	RoleReader Role = "reader"
	// RoleSubscriber allows consuming device events.
	RoleSubscriber Role = "subscriber"
	// RolePublisher allows publishing events on behalf of devices.
	RolePublisher Role = "publisher"
)

// ParseRole converts a string into a known role.
func ParseRole(s string) (Role, error) {
	switch role := Role(s); role {
	case RoleAdmin, RoleManager, RoleReader, RoleSubscriber, RolePublisher:
		return role, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// UnmarshalJSON rejects unknown roles.
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	role, err := ParseRole(s)
	if err != nil {
		return err
	}

	*r = role

	return nil
}

// Roles is a set of granted roles.
type Roles []Role

// Contains reports whether the granted roles satisfy the requested role.
// Admin satisfies every request, and manager satisfies reader.
func (r Roles) Contains(role Role) bool {
	for _, granted := range r {
		if granted == role || granted == RoleAdmin {
			return true
		}

		if granted == RoleManager && role == RoleReader {
			return true
		}
	}

	return false
}

// MemberEntry is the role assignment of a single member.
type MemberEntry struct {
	Roles Roles `json:"roles" yaml:"roles"`
}

// Members is the membership list of an application. The resource version
// guards concurrent updates; the map is keyed by user id.
type Members struct {
	ResourceVersion *string                `json:"resourceVersion,omitempty" yaml:"resourceVersion,omitempty"`
	Members         map[string]MemberEntry `json:"members"                   yaml:"members"`
}

// TransferOwnership initiates handing an application over to another user.
type TransferOwnership struct {
	NewUser string `json:"newUser" yaml:"newUser"`
}
