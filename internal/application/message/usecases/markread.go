package usecases

import (
	"context"

	"github.com/helpdesk-inc/helpdesk/internal/application/message/dto"
	"github.com/helpdesk-inc/helpdesk/internal/domain/message"
	"github.com/helpdesk-inc/helpdesk/internal/domain/ticket"
	"github.com/helpdesk-inc/helpdesk/internal/shared/authorization"
	"github.com/helpdesk-inc/helpdesk/internal/shared/errors"
	"github.com/helpdesk-inc/helpdesk/internal/shared/logger"
)

type MarkReadCommand struct {
	TicketID uint
	Actor    authorization.Principal
}

type MarkReadUseCase struct {
	ticketRepo  ticket.TicketRepository
	messageRepo message.Repository
	logger      logger.Interface
}

func NewMarkReadUseCase(ticketRepo ticket.TicketRepository, messageRepo message.Repository, logger logger.Interface) *MarkReadUseCase {
	return &MarkReadUseCase{ticketRepo: ticketRepo, messageRepo: messageRepo, logger: logger}
}

func (uc *MarkReadUseCase) Execute(ctx context.Context, cmd MarkReadCommand) (*dto.MarkReadDTO, error) {
	if _, err := loadAccessibleTicket(ctx, uc.ticketRepo.GetByID, cmd.Actor, cmd.TicketID); err != nil {
		return nil, err
	}

	marked, err := uc.messageRepo.MarkRead(ctx, cmd.TicketID, cmd.Actor.ID)
	if err != nil {
		uc.logger.Errorw("failed to mark messages read", "ticket_id", cmd.TicketID, "reader_id", cmd.Actor.ID, "error", err)
		return nil, errors.NewInternalError("failed to mark messages as read")
	}

	uc.logger.Debugw("messages marked read", "ticket_id", cmd.TicketID, "reader_id", cmd.Actor.ID, "count", marked)
	return &dto.MarkReadDTO{Marked: marked}, nil
}
