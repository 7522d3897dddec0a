package authorization

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleIncharge UserRole = "incharge"
	RoleUser     UserRole = "user"
)

var titleCaser = cases.Title(language.English)

// AllRoles lists the roles from most to least privileged.
func AllRoles() []UserRole {
	return []UserRole{RoleAdmin, RoleIncharge, RoleUser}
}

func (r UserRole) String() string {
	return string(r)
}

func (r UserRole) IsAdmin() bool {
	return r == RoleAdmin
}

func (r UserRole) IsIncharge() bool {
	return r == RoleIncharge
}

// IsStaff reports whether the role works tickets (admin or incharge).
func (r UserRole) IsStaff() bool {
	return r == RoleAdmin || r == RoleIncharge
}

func (r UserRole) IsValid() bool {
	return r == RoleAdmin || r == RoleIncharge || r == RoleUser
}

// DisplayName is the human label shown to other presence members.
func (r UserRole) DisplayName() string {
	return titleCaser.String(string(r))
}

// ParseUserRole falls back to RoleUser for unknown values.
func ParseUserRole(s string) UserRole {
	role := UserRole(s)
	if role.IsValid() {
		return role
	}
	return RoleUser
}
