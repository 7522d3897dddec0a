package usecases

import (
	"context"
	"fmt"

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

type AssignTicketCommand struct {
	TicketID   uint
	AssigneeID uint
	Actor      authorization.Principal
	SocketID   string
}

type AssignTicketResult struct {
	Ticket *dto.TicketDTO
	Events []broadcast.Event
}

// AssignTicketUseCase hands a ticket to a staff member and moves it to in_progress.
type AssignTicketUseCase struct {
	ticketRepo  ticket.TicketRepository
	messageRepo message.Repository
	userRepo    user.Repository
	txMgr       db.Transactor
	logger      logger.Interface
}

func NewAssignTicketUseCase(
	ticketRepo ticket.TicketRepository,
	messageRepo message.Repository,
	userRepo user.Repository,
	txMgr db.Transactor,
	logger logger.Interface,
) *AssignTicketUseCase {
	return &AssignTicketUseCase{
		ticketRepo:  ticketRepo,
		messageRepo: messageRepo,
		userRepo:    userRepo,
		txMgr:       txMgr,
		logger:      logger,
	}
}

func (uc *AssignTicketUseCase) Execute(ctx context.Context, cmd AssignTicketCommand) (*AssignTicketResult, error) {
	uc.logger.Infow("executing assign ticket use case",
		"ticket_id", cmd.TicketID,
		"assignee_id", cmd.AssigneeID,
		"actor_id", cmd.Actor.ID,
	)

	if d := authorization.StaffOnly(cmd.Actor); !d.Allowed {
		uc.logger.Warnw("non-staff attempted to assign ticket", "ticket_id", cmd.TicketID, "actor_id", cmd.Actor.ID)
		return nil, accessDenied(d)
	}
	if cmd.TicketID == 0 {
		return nil, errors.NewValidationError("ticket ID is required")
	}
	if cmd.AssigneeID == 0 {
		return nil, errors.NewFieldValidationError("invalid assignment", map[string]string{
			"assigned_to": "is required",
		})
	}

	var (
		t        *ticket.Ticket
		assignee *user.User
		changed  bool
	)
	err := uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		var err error
		t, err = uc.ticketRepo.GetByIDForUpdate(txCtx, cmd.TicketID)
		if err != nil {
			return err
		}
		assignee, err = loadAssignee(txCtx, uc.userRepo, cmd.AssigneeID)
		if err != nil {
			return err
		}

		var notes []string
		change, err := t.ChangeStatus(vo.StatusInProgress)
		if err != nil {
			return domainError(err)
		}
		if change.Changed() {
			notes = append(notes, change.Note())
		}
		id := assignee.ID()
		if t.AssignTo(&id) {
			notes = append(notes, ticket.AssignmentNote(assignee.FullName()))
		}
		changed = len(notes) > 0
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
		uc.logger.Errorw("failed to assign ticket", "ticket_id", cmd.TicketID, "error", err)
		if errors.IsAppError(err) {
			return nil, err
		}
		return nil, errors.NewInternalError("failed to assign ticket")
	}

	users := resolveUsers(ctx, uc.userRepo, uc.logger, t)
	ticketDTO := dto.ToTicketDTO(t, users)
	result := &AssignTicketResult{Ticket: ticketDTO}
	if !changed {
		return result, nil
	}

	result.Events = append(result.Events, broadcast.TicketUpdated{Ticket: ticketDTO, SocketID: cmd.SocketID})
	if assignee.ID() != cmd.Actor.ID {
		result.Events = append(result.Events, broadcast.NewTicketAssigned(t, assignee.ID(), users[t.OwnerID()]))
	}

	uc.logger.Infow("ticket assigned successfully", "ticket_id", t.ID(), "assignee_id", assignee.ID())
	return result, nil
}
