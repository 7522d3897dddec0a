package usecases

import (
	"context"

	"github.com/helpdesk-inc/helpdesk/internal/application/ticket/dto"
	"github.com/helpdesk-inc/helpdesk/internal/domain/ticket"
	"github.com/helpdesk-inc/helpdesk/internal/domain/user"
	"github.com/helpdesk-inc/helpdesk/internal/shared/authorization"
	"github.com/helpdesk-inc/helpdesk/internal/shared/errors"
	"github.com/helpdesk-inc/helpdesk/internal/shared/logger"
)

type GetTicketQuery struct {
	TicketID uint
	Actor    authorization.Principal
}

type GetTicketUseCase struct {
	ticketRepo ticket.TicketRepository
	userRepo   user.Repository
	logger     logger.Interface
}

func NewGetTicketUseCase(
	ticketRepo ticket.TicketRepository,
	userRepo user.Repository,
	logger logger.Interface,
) *GetTicketUseCase {
	return &GetTicketUseCase{
		ticketRepo: ticketRepo,
		userRepo:   userRepo,
		logger:     logger,
	}
}

func (uc *GetTicketUseCase) Execute(ctx context.Context, query GetTicketQuery) (*dto.TicketDTO, error) {
	uc.logger.Debugw("executing get ticket use case", "ticket_id", query.TicketID, "actor_id", query.Actor.ID)

	if query.TicketID == 0 {
		return nil, errors.NewValidationError("ticket ID is required")
	}

	t, err := uc.ticketRepo.GetByID(ctx, query.TicketID)
	if err != nil {
		if !errors.IsAppError(err) {
			uc.logger.Errorw("failed to load ticket", "ticket_id", query.TicketID, "error", err)
			return nil, errors.NewInternalError("failed to load ticket")
		}
		return nil, err
	}

	if !ticket.CanAccessTicket(query.Actor, t) {
		uc.logger.Warnw("ticket access denied", "ticket_id", query.TicketID, "actor_id", query.Actor.ID)
		return nil, errors.NewAccessDeniedError("you do not have access to this ticket")
	}

	return dto.ToTicketDTO(t, resolveUsers(ctx, uc.userRepo, uc.logger, t)), nil
}
