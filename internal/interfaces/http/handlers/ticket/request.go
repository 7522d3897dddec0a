package ticket

import (
	"bytes"
	"encoding/json"

	"github.com/helpdesk-inc/helpdesk/internal/application/ticket/usecases"
	"github.com/helpdesk-inc/helpdesk/internal/shared/authorization"
)

type CreateTicketRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description" binding:"required"`
	Category    string `json:"category" binding:"required,ticket_category"`
	Priority    string `json:"priority" binding:"omitempty,ticket_priority"`
}

func (r *CreateTicketRequest) ToCommand(actor authorization.Principal, socketID string) usecases.CreateTicketCommand {
	return usecases.CreateTicketCommand{
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Priority:    r.Priority,
		Actor:       actor,
		SocketID:    socketID,
	}
}

// NullableID distinguishes an absent field from an explicit null.
type NullableID struct {
	Set   bool
	Value *uint
}

func (n *NullableID) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}
	var id uint
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	n.Value = &id
	return nil
}

// UpdateTicketRequest is a partial update. assigned_to: null unassigns the ticket.
type UpdateTicketRequest struct {
	Title       *string    `json:"title" binding:"omitempty,min=1,max=255"`
	Description *string    `json:"description" binding:"omitempty,min=1"`
	Category    *string    `json:"category" binding:"omitempty,ticket_category"`
	Priority    *string    `json:"priority" binding:"omitempty,ticket_priority"`
	Status      *string    `json:"status" binding:"omitempty,ticket_status"`
	AssignedTo  NullableID `json:"assigned_to" swaggertype:"integer"`
}

func (r *UpdateTicketRequest) ToCommand(ticketID uint, actor authorization.Principal, socketID string) usecases.UpdateTicketCommand {
	cmd := usecases.UpdateTicketCommand{
		TicketID:    ticketID,
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Priority:    r.Priority,
		Status:      r.Status,
		Actor:       actor,
		SocketID:    socketID,
	}
	if r.AssignedTo.Set {
		if r.AssignedTo.Value == nil {
			cmd.UnassignRequested = true
		} else {
			cmd.AssignedTo = r.AssignedTo.Value
		}
	}
	return cmd
}

type AssignTicketRequest struct {
	AssignedTo uint `json:"assigned_to" binding:"required,gt=0"`
}
