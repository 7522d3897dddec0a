package ticket

import (
	"context"

	vo "github.com/helpdesk-inc/helpdesk/internal/domain/ticket/valueobjects"
)

type TicketRepository interface {
	Save(ctx context.Context, ticket *Ticket) error
	Update(ctx context.Context, ticket *Ticket) error
	Delete(ctx context.Context, ticketID uint) error
	GetByID(ctx context.Context, ticketID uint) (*Ticket, error)
	// GetByIDForUpdate loads the ticket with a row lock when called inside a transaction.
	GetByIDForUpdate(ctx context.Context, ticketID uint) (*Ticket, error)
	ExistsByNumber(ctx context.Context, number string) (bool, error)
	List(ctx context.Context, filter TicketFilter) ([]*Ticket, int64, error)
	CountByStatus(ctx context.Context, scope TicketScope) (map[vo.TicketStatus]int64, error)
	CountUnassignedActive(ctx context.Context) (int64, error)
	CountCriticalActive(ctx context.Context) (int64, error)
}

// TicketScope restricts queries to tickets a principal may see. Zero values mean no restriction.
type TicketScope struct {
	OwnerID    *uint
	AssigneeID *uint
}

type TicketFilter struct {
	TicketScope
	Status    *vo.TicketStatus
	Priority  *vo.Priority
	Category  *vo.Category
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
