package usecases

import (
	"context"
	"fmt"

	"github.com/helpdesk-inc/helpdesk/internal/application/broadcast"
	"github.com/helpdesk-inc/helpdesk/internal/application/message/dto"
	"github.com/helpdesk-inc/helpdesk/internal/domain/message"
	"github.com/helpdesk-inc/helpdesk/internal/domain/ticket"
	"github.com/helpdesk-inc/helpdesk/internal/domain/user"
	"github.com/helpdesk-inc/helpdesk/internal/shared/authorization"
	"github.com/helpdesk-inc/helpdesk/internal/shared/db"
	"github.com/helpdesk-inc/helpdesk/internal/shared/errors"
	"github.com/helpdesk-inc/helpdesk/internal/shared/logger"
)

type EditMessageCommand struct {
	TicketID  uint
	MessageID uint
	Content   string
	Actor     authorization.Principal
	SocketID  string
}

type EditMessageResult struct {
	Message *dto.MessageDTO
	Events  []broadcast.Event
}

type EditMessageUseCase struct {
	ticketRepo  ticket.TicketRepository
	messageRepo message.Repository
	userRepo    user.Repository
	txMgr       db.Transactor
	renderer    dto.ContentRenderer
	logger      logger.Interface
}

func NewEditMessageUseCase(
	ticketRepo ticket.TicketRepository,
	messageRepo message.Repository,
	userRepo user.Repository,
	txMgr db.Transactor,
	renderer dto.ContentRenderer,
	logger logger.Interface,
) *EditMessageUseCase {
	return &EditMessageUseCase{
		ticketRepo:  ticketRepo,
		messageRepo: messageRepo,
		userRepo:    userRepo,
		txMgr:       txMgr,
		renderer:    renderer,
		logger:      logger,
	}
}

func (uc *EditMessageUseCase) Execute(ctx context.Context, cmd EditMessageCommand) (*EditMessageResult, error) {
	uc.logger.Infow("executing edit message use case",
		"ticket_id", cmd.TicketID,
		"message_id", cmd.MessageID,
		"editor_id", cmd.Actor.ID,
	)

	if cmd.MessageID == 0 {
		return nil, errors.NewValidationError("message ID is required")
	}

	var msg *message.Message
	err := uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		if _, err := loadAccessibleTicket(txCtx, uc.ticketRepo.GetByID, cmd.Actor, cmd.TicketID); err != nil {
			return err
		}
		m, err := loadTicketMessage(txCtx, uc.messageRepo, cmd.TicketID, cmd.MessageID)
		if err != nil {
			return err
		}
		if err := m.Edit(cmd.Actor.ID, cmd.Content); err != nil {
			return domainError(err)
		}
		if err := uc.messageRepo.Update(txCtx, m); err != nil {
			return fmt.Errorf("failed to update message: %w", err)
		}
		msg = m
		return nil
	})
	if err != nil {
		uc.logger.Warnw("failed to edit message", "message_id", cmd.MessageID, "error", err)
		if errors.IsAppError(err) {
			return nil, err
		}
		return nil, errors.NewInternalError("failed to edit message")
	}

	uc.logger.Infow("message edited successfully",
		"message_id", msg.ID(),
		"revisions", len(msg.EditHistory()),
	)

	authors := resolveAuthors(ctx, uc.userRepo, uc.logger, msg)
	out := dto.ToMessageDTO(msg, authors[msg.AuthorID()], uc.renderer)
	return &EditMessageResult{
		Message: out,
		Events:  []broadcast.Event{broadcast.MessageUpdated{Message: out, SocketID: cmd.SocketID}},
	}, nil
}
