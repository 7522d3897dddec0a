package valueobjects

import "fmt"

type TicketStatus string

const (
	StatusOpen       TicketStatus = "open"
	StatusInProgress TicketStatus = "in_progress"
	StatusPending    TicketStatus = "pending"
	StatusResolved   TicketStatus = "resolved"
	StatusClosed     TicketStatus = "closed"
)

// AllStatuses lists statuses in lifecycle order.
var AllStatuses = []TicketStatus{
	StatusOpen,
	StatusInProgress,
	StatusPending,
	StatusResolved,
	StatusClosed,
}

var validTicketStatuses = map[TicketStatus]bool{
	StatusOpen:       true,
	StatusInProgress: true,
	StatusPending:    true,
	StatusResolved:   true,
	StatusClosed:     true,
}

func (ts TicketStatus) String() string {
	return string(ts)
}

func (ts TicketStatus) IsValid() bool {
	return validTicketStatuses[ts]
}

func (ts TicketStatus) IsOpen() bool {
	return ts == StatusOpen
}

func (ts TicketStatus) IsPending() bool {
	return ts == StatusPending
}

func (ts TicketStatus) IsResolved() bool {
	return ts == StatusResolved
}

func (ts TicketStatus) IsClosed() bool {
	return ts == StatusClosed
}

// IsActive is true for statuses that still need staff attention.
func (ts TicketStatus) IsActive() bool {
	return ts == StatusOpen || ts == StatusInProgress || ts == StatusPending
}

// ReopensOnOwnerReply is true for statuses an owner reply moves back to in_progress.
func (ts TicketStatus) ReopensOnOwnerReply() bool {
	return ts.IsResolved() || ts.IsPending()
}

func NewTicketStatus(s string) (TicketStatus, error) {
	ts := TicketStatus(s)
	if !ts.IsValid() {
		return "", fmt.Errorf("invalid ticket status: %s", s)
	}
	return ts, nil
}
