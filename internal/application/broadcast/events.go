package broadcast

import (
	"time"

	messagedto "github.com/helpdesk-inc/helpdesk/internal/application/message/dto"
	ticketdto "github.com/helpdesk-inc/helpdesk/internal/application/ticket/dto"
	"github.com/helpdesk-inc/helpdesk/internal/domain/message"
	"github.com/helpdesk-inc/helpdesk/internal/domain/ticket"
	"github.com/helpdesk-inc/helpdesk/internal/domain/user"
	"github.com/helpdesk-inc/helpdesk/internal/shared/authorization"
)

const (
	EventMessageSent         = "message.sent"
	EventMessageUpdated      = "message.updated"
	EventMessageDeleted      = "message.deleted"
	EventMessageNotification = "message.notification"
	EventTicketUpdated       = "ticket.updated"
	EventTicketAssigned      = "ticket.assigned"
)

// Event is a committed change that subscribers must hear about. Use cases return events
// and the caller publishes them once the transaction is done.
type Event interface {
	EventName() string
	Publications() []Publication
}

// Publication is one delivery of an event onto one channel. Subscribers connected with
// ExcludeSocketID do not receive it.
type Publication struct {
	Channel         string `json:"channel"`
	Event           string `json:"event"`
	Payload         any    `json:"data"`
	ExcludeSocketID string `json:"exclude_socket_id,omitempty"`
}

// Fanout expands events into their channel publications, preserving order.
func Fanout(events ...Event) []Publication {
	var pubs []Publication
	for _, e := range events {
		if e == nil {
			continue
		}
		pubs = append(pubs, e.Publications()...)
	}
	return pubs
}

type messagePayload struct {
	Message *messagedto.MessageDTO `json:"message"`
}

type MessageSent struct {
	Message  *messagedto.MessageDTO
	SocketID string
}

func (e MessageSent) EventName() string {
	return EventMessageSent
}

func (e MessageSent) Publications() []Publication {
	return []Publication{{
		Channel:         PresenceTicketChannel(e.Message.TicketID),
		Event:           EventMessageSent,
		Payload:         messagePayload{Message: e.Message},
		ExcludeSocketID: e.SocketID,
	}}
}

type MessageUpdated struct {
	Message  *messagedto.MessageDTO
	SocketID string
}

func (e MessageUpdated) EventName() string {
	return EventMessageUpdated
}

func (e MessageUpdated) Publications() []Publication {
	return []Publication{{
		Channel:         PresenceTicketChannel(e.Message.TicketID),
		Event:           EventMessageUpdated,
		Payload:         messagePayload{Message: e.Message},
		ExcludeSocketID: e.SocketID,
	}}
}

type MessageDeletedPayload struct {
	MessageID uint `json:"message_id"`
	TicketID  uint `json:"ticket_id"`
}

type MessageDeleted struct {
	TicketID  uint
	MessageID uint
	SocketID  string
}

func (e MessageDeleted) EventName() string {
	return EventMessageDeleted
}

func (e MessageDeleted) Publications() []Publication {
	return []Publication{{
		Channel:         PresenceTicketChannel(e.TicketID),
		Event:           EventMessageDeleted,
		Payload:         MessageDeletedPayload{MessageID: e.MessageID, TicketID: e.TicketID},
		ExcludeSocketID: e.SocketID,
	}}
}

type NotificationPayload struct {
	MessageID    uint   `json:"message_id"`
	TicketID     uint   `json:"ticket_id"`
	TicketNumber string `json:"ticket_number"`
	SenderID     uint   `json:"sender_id"`
	SenderName   string `json:"sender_name"`
	Preview      string `json:"preview"`
}

// NewMessageNotification tells the other side of a ticket that a message arrived.
type NewMessageNotification struct {
	RecipientID uint
	NotificationPayload
}

func (e NewMessageNotification) EventName() string {
	return EventMessageNotification
}

func (e NewMessageNotification) Publications() []Publication {
	return []Publication{{
		Channel: UserChannel(e.RecipientID),
		Event:   EventMessageNotification,
		Payload: e.NotificationPayload,
	}}
}

// NotificationRecipient picks who hears about a new message: staff writing on someone
// else's ticket notify the owner, and the owner notifies an assignee other than themselves.
func NotificationRecipient(t *ticket.Ticket, sender authorization.Principal) (uint, bool) {
	if sender.IsStaff() && !t.IsOwnedBy(sender.ID) {
		return t.OwnerID(), true
	}
	if t.IsOwnedBy(sender.ID) {
		if a := t.AssigneeID(); a != nil && *a != sender.ID {
			return *a, true
		}
	}
	return 0, false
}

// NewNotification builds the notification for m, or returns nil when nobody should get one.
func NewNotification(t *ticket.Ticket, m *message.Message, sender authorization.Principal, senderName string) *NewMessageNotification {
	recipient, ok := NotificationRecipient(t, sender)
	if !ok {
		return nil
	}
	return &NewMessageNotification{
		RecipientID: recipient,
		NotificationPayload: NotificationPayload{
			MessageID:    m.ID(),
			TicketID:     t.ID(),
			TicketNumber: t.Number(),
			SenderID:     sender.ID,
			SenderName:   senderName,
			Preview:      m.Preview(),
		},
	}
}

type ticketPayload struct {
	Ticket *ticketdto.TicketDTO `json:"ticket"`
}

// TicketUpdated goes to the ticket's own channel, skipping the originator, and to the
// staff list channel for everyone.
type TicketUpdated struct {
	Ticket   *ticketdto.TicketDTO
	SocketID string
}

func (e TicketUpdated) EventName() string {
	return EventTicketUpdated
}

func (e TicketUpdated) Publications() []Publication {
	payload := ticketPayload{Ticket: e.Ticket}
	return []Publication{
		{
			Channel:         TicketChannel(e.Ticket.ID),
			Event:           EventTicketUpdated,
			Payload:         payload,
			ExcludeSocketID: e.SocketID,
		},
		{
			Channel: TicketsChannel,
			Event:   EventTicketUpdated,
			Payload: payload,
		},
	}
}

type TicketAssignedPayload struct {
	TicketID     uint      `json:"ticket_id"`
	TicketNumber string    `json:"ticket_number"`
	Title        string    `json:"title"`
	Category     string    `json:"category"`
	Priority     string    `json:"priority"`
	Status       string    `json:"status"`
	UserName     string    `json:"user_name"`
	AssignedAt   time.Time `json:"assigned_at"`
}

type TicketAssigned struct {
	AssigneeID uint
	TicketAssignedPayload
}

func (e TicketAssigned) EventName() string {
	return EventTicketAssigned
}

func (e TicketAssigned) Publications() []Publication {
	return []Publication{{
		Channel: UserChannel(e.AssigneeID),
		Event:   EventTicketAssigned,
		Payload: e.TicketAssignedPayload,
	}}
}

// NewTicketAssigned summarises t for its new assignee. owner may be nil when it could not be resolved.
func NewTicketAssigned(t *ticket.Ticket, assigneeID uint, owner *user.User) TicketAssigned {
	var ownerName string
	if owner != nil {
		ownerName = owner.FullName()
	}
	return TicketAssigned{
		AssigneeID: assigneeID,
		TicketAssignedPayload: TicketAssignedPayload{
			TicketID:     t.ID(),
			TicketNumber: t.Number(),
			Title:        t.Title(),
			Category:     t.Category().String(),
			Priority:     t.Priority().String(),
			Status:       t.Status().String(),
			UserName:     ownerName,
			AssignedAt:   t.UpdatedAt(),
		},
	}
}
