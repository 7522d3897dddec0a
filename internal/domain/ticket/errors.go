package ticket

import "errors"

var (
	// ErrTicketClosed rejects writes to a closed ticket.
	ErrTicketClosed = errors.New("ticket is closed")
	// ErrTicketResolved rejects messages on a resolved ticket from anyone but its owner.
	ErrTicketResolved = errors.New("ticket is resolved; only the owner may reply to reopen it")
	// ErrNumberExhausted is returned when no unused ticket number could be drawn.
	ErrNumberExhausted = errors.New("could not allocate a unique ticket number")
)
