package types

import (
	"fmt"
	"strings"
)

// Role is a courtroom seat a generated utterance is spoken from
type Role string

const (
	RoleJudge     Role = "judge"
	RolePlaintiff Role = "plaintiff"
	RoleDefendant Role = "defendant"
)

// AllRoles returns all valid roles
func AllRoles() []Role {
	return []Role{
		RoleJudge,
		RolePlaintiff,
		RoleDefendant,
	}
}

// IsValid checks if the role is valid
func (r Role) IsValid() bool {
	switch r {
	case RoleJudge,
		RolePlaintiff,
		RoleDefendant:
		return true
	default:
		return false
	}
}

// IsParty reports whether the role is one of the two litigating parties
func (r Role) IsParty() bool {
	return r == RolePlaintiff || r == RoleDefendant
}

// Normalize lower-cases and trims the role. Unknown values are kept so that
// callers can pass them through untouched.
func (r Role) Normalize() Role {
	return Role(strings.ToLower(strings.TrimSpace(string(r))))
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// ParseRole parses a string into a Role, ignoring case
func ParseRole(s string) (Role, error) {
	role := Role(s).Normalize()
	if !role.IsValid() {
		return "", fmt.Errorf("invalid role: %s", s)
	}
	return role, nil
}

// ParseIdentity parses the user's identity. Only the two parties are valid.
func ParseIdentity(s string) (Role, error) {
	role, err := ParseRole(s)
	if err != nil {
		return "", err
	}
	if !role.IsParty() {
		return "", fmt.Errorf("invalid identity: %s", s)
	}
	return role, nil
}
