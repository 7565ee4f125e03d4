package models

import (
	"fmt"

	"github.com/google/uuid"
)

// Role is a closed enumeration. Authorization decisions go through the
// capability functions below rather than string comparisons in handlers.
type Role string

const (
	RoleCEO     Role = "CEO"
	RoleAdmin   Role = "Admin"
	RoleManager Role = "Manager"
)

// ParseRole validates a raw role string against the closed set
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleCEO, RoleAdmin, RoleManager:
		return Role(raw), nil
	}
	return "", fmt.Errorf("unknown role %q", raw)
}

// CanManageAllAreas reports whether the role may write in any area of the
// tenant
func (r Role) CanManageAllAreas() bool {
	return r == RoleCEO || r == RoleAdmin
}

// CanManageArea reports whether a caller with this role and assigned area may
// write entities belonging to targetArea
func (r Role) CanManageArea(assignedArea *uuid.UUID, targetArea uuid.UUID) bool {
	if r.CanManageAllAreas() {
		return true
	}
	if r != RoleManager || assignedArea == nil {
		return false
	}
	return *assignedArea == targetArea
}

// CanImport reports whether the role may run bulk imports
func (r Role) CanImport() bool {
	return r == RoleCEO || r == RoleAdmin
}
