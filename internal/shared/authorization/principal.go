package authorization

// Principal is the authenticated caller as asserted by the identity provider.
type Principal struct {
	ID   uint
	Role UserRole
}

func (p Principal) IsAdmin() bool {
	return p.Role.IsAdmin()
}

func (p Principal) IsStaff() bool {
	return p.Role.IsStaff()
}

// Decision is the outcome of a guard check.
type Decision struct {
	Allowed bool
	Reason  string
}

var allow = Decision{Allowed: true}

// Guard allows the principal when its role is one of roles. An empty role list allows any
// authenticated principal.
func Guard(p Principal, roles ...UserRole) Decision {
	if p.ID == 0 {
		return Decision{Reason: "unauthenticated"}
	}
	if len(roles) == 0 {
		return allow
	}
	for _, r := range roles {
		if p.Role == r {
			return allow
		}
	}
	return Decision{Reason: "role " + p.Role.String() + " not permitted"}
}

// StaffOnly is Guard restricted to admin and incharge.
func StaffOnly(p Principal) Decision {
	return Guard(p, RoleAdmin, RoleIncharge)
}

// AdminOnly is Guard restricted to admin.
func AdminOnly(p Principal) Decision {
	return Guard(p, RoleAdmin)
}
