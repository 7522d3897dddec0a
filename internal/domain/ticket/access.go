package ticket

import "github.com/helpdesk-inc/helpdesk/internal/shared/authorization"

// CanAccessTicket is the strict rule used by command endpoints: admins see everything,
// incharge staff only tickets assigned to them, everyone else only tickets they own.
func CanAccessTicket(p authorization.Principal, t *Ticket) bool {
	if t == nil || p.ID == 0 {
		return false
	}
	if p.Role.IsAdmin() {
		return true
	}
	if p.Role.IsIncharge() && t.IsAssignedTo(p.ID) {
		return true
	}
	return t.IsOwnedBy(p.ID)
}

// CanAccessTicketBroad is the relaxed rule for the live presence channel: any staff member
// may observe, plus the owner and assignee.
func CanAccessTicketBroad(p authorization.Principal, t *Ticket) bool {
	if t == nil || p.ID == 0 {
		return false
	}
	if p.Role.IsStaff() {
		return true
	}
	return t.IsOwnedBy(p.ID) || t.IsAssignedTo(p.ID)
}
