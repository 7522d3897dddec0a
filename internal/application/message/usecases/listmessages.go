package usecases

import (
	"context"

	"github.com/helpdesk-inc/helpdesk/internal/application/message/dto"
	"github.com/helpdesk-inc/helpdesk/internal/domain/message"
	"github.com/helpdesk-inc/helpdesk/internal/domain/ticket"
	"github.com/helpdesk-inc/helpdesk/internal/domain/user"
	"github.com/helpdesk-inc/helpdesk/internal/shared/authorization"
	"github.com/helpdesk-inc/helpdesk/internal/shared/errors"
	"github.com/helpdesk-inc/helpdesk/internal/shared/logger"
)

type ListMessagesQuery struct {
	TicketID uint
	Actor    authorization.Principal
}

// ListMessagesUseCase returns a ticket's conversation and marks what the reader has now seen.
type ListMessagesUseCase struct {
	ticketRepo  ticket.TicketRepository
	messageRepo message.Repository
	userRepo    user.Repository
	renderer    dto.ContentRenderer
	logger      logger.Interface
}

func NewListMessagesUseCase(
	ticketRepo ticket.TicketRepository,
	messageRepo message.Repository,
	userRepo user.Repository,
	renderer dto.ContentRenderer,
	logger logger.Interface,
) *ListMessagesUseCase {
	return &ListMessagesUseCase{
		ticketRepo:  ticketRepo,
		messageRepo: messageRepo,
		userRepo:    userRepo,
		renderer:    renderer,
		logger:      logger,
	}
}

func (uc *ListMessagesUseCase) Execute(ctx context.Context, query ListMessagesQuery) ([]*dto.MessageDTO, error) {
	uc.logger.Debugw("executing list messages use case", "ticket_id", query.TicketID, "reader_id", query.Actor.ID)

	if _, err := loadAccessibleTicket(ctx, uc.ticketRepo.GetByID, query.Actor, query.TicketID); err != nil {
		return nil, err
	}

	messages, err := uc.messageRepo.ListByTicket(ctx, query.TicketID)
	if err != nil {
		uc.logger.Errorw("failed to list messages", "ticket_id", query.TicketID, "error", err)
		return nil, errors.NewInternalError("failed to list messages")
	}

	// The returned snapshot keeps the pre-read state so the client can highlight new messages.
	if marked, err := uc.messageRepo.MarkRead(ctx, query.TicketID, query.Actor.ID); err != nil {
		uc.logger.Warnw("failed to mark messages read", "ticket_id", query.TicketID, "error", err)
	} else if marked > 0 {
		uc.logger.Debugw("messages marked read", "ticket_id", query.TicketID, "count", marked)
	}

	authors := resolveAuthors(ctx, uc.userRepo, uc.logger, messages...)
	return dto.ToMessageDTOList(messages, authors, uc.renderer), nil
}
