package model

import (
	"encoding/json"
	"strings"
)

// RoleSlug is the authoritative key of a portal role.
// Only the values declared below exist; anything else the backend sends is
// decoded as RoleUnknown.
type RoleSlug string

const (
	RoleUnknown    RoleSlug = ""
	RoleUser       RoleSlug = "user"
	RoleAdmin      RoleSlug = "admin"
	RoleSuperAdmin RoleSlug = "superadmin"
)

// roleRanks is the total order over known roles. Unknown roles rank 0.
var roleRanks = map[RoleSlug]int{
	RoleUser:       1,
	RoleAdmin:      2,
	RoleSuperAdmin: 3,
}

// ParseRoleSlug lower-cases s and maps it onto the closed role set.
// Unrecognized values yield RoleUnknown, never an error.
func ParseRoleSlug(s string) RoleSlug {
	slug := RoleSlug(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := roleRanks[slug]; ok {
		return slug
	}
	return RoleUnknown
}

// Rank returns the position of r in the role hierarchy.
func (r RoleSlug) Rank() int {
	return roleRanks[r]
}

// Known reports whether r is one of the declared roles.
func (r RoleSlug) Known() bool {
	_, ok := roleRanks[r]
	return ok
}

// Satisfies reports whether r is at least as privileged as required.
func (r RoleSlug) Satisfies(required RoleSlug) bool {
	return r.Rank() >= required.Rank()
}

// UnmarshalJSON decodes leniently: unknown slugs become RoleUnknown.
func (r *RoleSlug) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		// non-string slug (null, number) is treated like an unknown role
		*r = RoleUnknown
		return nil
	}
	*r = ParseRoleSlug(raw)
	return nil
}

// Role is the role object embedded in a backend user profile.
// Level and Name are informational; Slug drives authorization.
type Role struct {
	ID          uint     `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string   `json:"name" yaml:"name"`
	Slug        RoleSlug `json:"slug" yaml:"slug"`
	Level       int      `json:"level" yaml:"level"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	IsActive    *bool    `json:"is_active,omitempty" yaml:"is_active,omitempty"`
}
