package message

import "context"

type Repository interface {
	Save(ctx context.Context, m *Message) error
	Update(ctx context.Context, m *Message) error
	// GetByID excludes deleted messages.
	GetByID(ctx context.Context, id uint) (*Message, error)
	// ListByTicket returns live messages in chronological order.
	ListByTicket(ctx context.Context, ticketID uint) ([]*Message, error)
	// MarkRead stamps read_at on unread messages in the ticket written by someone other than
	// readerID. Only messages that existed when the call started are touched.
	MarkRead(ctx context.Context, ticketID, readerID uint) (int64, error)
	CountUnread(ctx context.Context, readerID uint, scope UnreadScope) (int64, error)
	// StoredPathsByTicket lists blob paths of every message in the ticket, deleted or not.
	StoredPathsByTicket(ctx context.Context, ticketID uint) ([]string, error)
	DeleteByTicket(ctx context.Context, ticketID uint) error
}

// UnreadScope selects the tickets whose messages count toward a reader's unread total.
type UnreadScope struct {
	OwnerID    *uint
	AssigneeID *uint
}
