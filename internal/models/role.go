package models

import "strings"

// Role identifies the permission tier of a user account.
type Role string

// Known roles.
const (
	// RoleAdmin can manage team members, content, and system settings.
	RoleAdmin Role = "admin"
	// RoleManager can manage content but not the team.
	RoleManager Role = "manager"
	// RoleSales has read-only access to content surfaces.
	RoleSales Role = "sales"
)

// ParseRole normalizes a raw role string into a Role.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleManager:
		return RoleManager, true
	case RoleSales:
		return RoleSales, true
	default:
		return "", false
	}
}

// IsTeamRole reports whether the role can be assigned to an invited team member.
func (r Role) IsTeamRole() bool {
	return r == RoleManager || r == RoleSales
}

// CanManageTeam reports whether a user may invite, list, and delete team members.
func (u *User) CanManageTeam() bool {
	return u != nil && (u.IsSuperuser || u.Role == RoleAdmin)
}

// CanManageSystem reports whether a user may toggle maintenance mode.
func (u *User) CanManageSystem() bool {
	return u.CanManageTeam()
}

// CanManageContent reports whether a user may mutate gallery content.
func (u *User) CanManageContent() bool {
	return u != nil && (u.IsSuperuser || u.Role == RoleAdmin || u.Role == RoleManager)
}
