package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/helpdesk-inc/helpdesk/internal/application/broadcast"
	"github.com/helpdesk-inc/helpdesk/internal/application/ticket/dto"
	"github.com/helpdesk-inc/helpdesk/internal/domain/message"
	"github.com/helpdesk-inc/helpdesk/internal/domain/ticket"
	vo "github.com/helpdesk-inc/helpdesk/internal/domain/ticket/valueobjects"
	"github.com/helpdesk-inc/helpdesk/internal/domain/user"
	"github.com/helpdesk-inc/helpdesk/internal/shared/authorization"
	"github.com/helpdesk-inc/helpdesk/internal/shared/db"
	"github.com/helpdesk-inc/helpdesk/internal/shared/errors"
	"github.com/helpdesk-inc/helpdesk/internal/shared/logger"
)

// UpdateTicketCommand carries a partial update. Nil fields are left alone. Title, description
// and category may be changed by the owner; priority, status and assignee only by staff.
// UnassignRequested clears the assignee and wins over AssignedTo.
type UpdateTicketCommand struct {
	TicketID          uint
	Title             *string
	Description       *string
	Category          *string
	Priority          *string
	Status            *string
	AssignedTo        *uint
	UnassignRequested bool
	Actor             authorization.Principal
	SocketID          string
}

func (c UpdateTicketCommand) touchesStaffFields() bool {
	return c.Priority != nil || c.Status != nil || c.AssignedTo != nil || c.UnassignRequested
}

type UpdateTicketResult struct {
	Ticket  *dto.TicketDTO
	Changed bool
	Events  []broadcast.Event
}

type UpdateTicketUseCase struct {
	ticketRepo  ticket.TicketRepository
	messageRepo message.Repository
	userRepo    user.Repository
	txMgr       db.Transactor
	logger      logger.Interface
}

func NewUpdateTicketUseCase(
	ticketRepo ticket.TicketRepository,
	messageRepo message.Repository,
	userRepo user.Repository,
	txMgr db.Transactor,
	logger logger.Interface,
) *UpdateTicketUseCase {
	return &UpdateTicketUseCase{
		ticketRepo:  ticketRepo,
		messageRepo: messageRepo,
		userRepo:    userRepo,
		txMgr:       txMgr,
		logger:      logger,
	}
}

func (uc *UpdateTicketUseCase) Execute(ctx context.Context, cmd UpdateTicketCommand) (*UpdateTicketResult, error) {
	uc.logger.Infow("executing update ticket use case", "ticket_id", cmd.TicketID, "actor_id", cmd.Actor.ID)

	if err := uc.validateCommand(cmd); err != nil {
		uc.logger.Warnw("invalid update ticket command", "ticket_id", cmd.TicketID, "error", err)
		return nil, err
	}

	var (
		t           *ticket.Ticket
		changed     bool
		newAssignee *user.User
	)
	err := uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		var err error
		t, err = uc.ticketRepo.GetByIDForUpdate(txCtx, cmd.TicketID)
		if err != nil {
			return err
		}
		if !ticket.CanAccessTicket(cmd.Actor, t) {
			return errors.NewAccessDeniedError("you do not have access to this ticket")
		}
		if cmd.touchesStaffFields() && !cmd.Actor.IsStaff() {
			return errors.NewForbiddenError("only staff may change priority, status or assignee")
		}

		var notes []string
		changed, notes, newAssignee, err = uc.apply(txCtx, t, cmd)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}

		if err := uc.ticketRepo.Update(txCtx, t); err != nil {
			return fmt.Errorf("failed to update ticket: %w", err)
		}
		for _, note := range notes {
			if err := appendSystemNote(txCtx, uc.messageRepo, t, note); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		uc.logger.Errorw("failed to update ticket", "ticket_id", cmd.TicketID, "error", err)
		if errors.IsAppError(err) {
			return nil, err
		}
		return nil, errors.NewInternalError("failed to update ticket")
	}

	users := resolveUsers(ctx, uc.userRepo, uc.logger, t)
	ticketDTO := dto.ToTicketDTO(t, users)
	result := &UpdateTicketResult{Ticket: ticketDTO, Changed: changed}
	if !changed {
		return result, nil
	}

	result.Events = append(result.Events, broadcast.TicketUpdated{Ticket: ticketDTO, SocketID: cmd.SocketID})
	if newAssignee != nil && newAssignee.ID() != cmd.Actor.ID {
		result.Events = append(result.Events, broadcast.NewTicketAssigned(t, newAssignee.ID(), users[t.OwnerID()]))
	}

	uc.logger.Infow("ticket updated successfully", "ticket_id", t.ID(), "status", t.Status())
	return result, nil
}

// apply mutates t and returns the system notes to append, in order: status first, then
// assignment. newAssignee is set only when a staff member was newly assigned.
func (uc *UpdateTicketUseCase) apply(ctx context.Context, t *ticket.Ticket, cmd UpdateTicketCommand) (changed bool, notes []string, newAssignee *user.User, err error) {
	var category *vo.Category
	if cmd.Category != nil {
		c := vo.Category(*cmd.Category)
		category = &c
	}
	var title *string
	if cmd.Title != nil {
		trimmed := strings.TrimSpace(*cmd.Title)
		title = &trimmed
	}
	if cmd.Title != nil || cmd.Description != nil || category != nil {
		detailsChanged, err := t.UpdateDetails(cmd.Actor, title, cmd.Description, category)
		if err != nil {
			return false, nil, nil, domainError(err)
		}
		changed = changed || detailsChanged
	}

	if cmd.Priority != nil {
		priorityChanged, err := t.ChangePriority(vo.Priority(*cmd.Priority))
		if err != nil {
			return false, nil, nil, domainError(err)
		}
		changed = changed || priorityChanged
	}

	if cmd.Status != nil {
		change, err := t.ChangeStatus(vo.TicketStatus(*cmd.Status))
		if err != nil {
			return false, nil, nil, domainError(err)
		}
		if change.Changed() {
			changed = true
			notes = append(notes, change.Note())
		}
	}

	switch {
	case cmd.UnassignRequested:
		if t.AssignTo(nil) {
			changed = true
			notes = append(notes, ticket.AssignmentNote(""))
		}
	case cmd.AssignedTo != nil:
		assignee, err := loadAssignee(ctx, uc.userRepo, *cmd.AssignedTo)
		if err != nil {
			return false, nil, nil, err
		}
		id := assignee.ID()
		if t.AssignTo(&id) {
			changed = true
			newAssignee = assignee
			notes = append(notes, ticket.AssignmentNote(assignee.FullName()))
		}
	}

	return changed, notes, newAssignee, nil
}

func (uc *UpdateTicketUseCase) validateCommand(cmd UpdateTicketCommand) error {
	if cmd.TicketID == 0 {
		return errors.NewValidationError("ticket ID is required")
	}

	fields := make(map[string]string)
	if cmd.Title != nil && strings.TrimSpace(*cmd.Title) == "" {
		fields["title"] = "cannot be empty"
	}
	if cmd.Description != nil && strings.TrimSpace(*cmd.Description) == "" {
		fields["description"] = "cannot be empty"
	}
	if cmd.Category != nil && !vo.Category(*cmd.Category).IsValid() {
		fields["category"] = "must be one of software, hardware, network, account, other"
	}
	if cmd.Priority != nil && !vo.Priority(*cmd.Priority).IsValid() {
		fields["priority"] = "must be one of low, medium, high, critical"
	}
	if cmd.Status != nil && !vo.TicketStatus(*cmd.Status).IsValid() {
		fields["status"] = "must be one of open, in_progress, pending, resolved, closed"
	}
	if cmd.AssignedTo != nil && *cmd.AssignedTo == 0 {
		fields["assigned_to"] = "must be a valid user ID"
	}

	if len(fields) > 0 {
		return errors.NewFieldValidationError("invalid ticket update", fields)
	}
	return nil
}
