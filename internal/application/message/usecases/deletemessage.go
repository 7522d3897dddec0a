package usecases

import (
	"context"
	"fmt"

	"github.com/helpdesk-inc/helpdesk/internal/application/broadcast"
	"github.com/helpdesk-inc/helpdesk/internal/domain/message"
	"github.com/helpdesk-inc/helpdesk/internal/domain/ticket"
	"github.com/helpdesk-inc/helpdesk/internal/shared/authorization"
	"github.com/helpdesk-inc/helpdesk/internal/shared/db"
	"github.com/helpdesk-inc/helpdesk/internal/shared/errors"
	"github.com/helpdesk-inc/helpdesk/internal/shared/logger"
)

type DeleteMessageCommand struct {
	TicketID  uint
	MessageID uint
	Actor     authorization.Principal
	SocketID  string
}

type DeleteMessageResult struct {
	MessageID     uint
	ReleasedBlobs int
	Events        []broadcast.Event
}

// DeleteMessageUseCase tombstones a message. Its stored attachments are released after commit.
type DeleteMessageUseCase struct {
	ticketRepo  ticket.TicketRepository
	messageRepo message.Repository
	blobs       message.BlobStore
	txMgr       db.Transactor
	logger      logger.Interface
}

func NewDeleteMessageUseCase(
	ticketRepo ticket.TicketRepository,
	messageRepo message.Repository,
	blobs message.BlobStore,
	txMgr db.Transactor,
	logger logger.Interface,
) *DeleteMessageUseCase {
	return &DeleteMessageUseCase{
		ticketRepo:  ticketRepo,
		messageRepo: messageRepo,
		blobs:       blobs,
		txMgr:       txMgr,
		logger:      logger,
	}
}

func (uc *DeleteMessageUseCase) Execute(ctx context.Context, cmd DeleteMessageCommand) (*DeleteMessageResult, error) {
	uc.logger.Infow("executing delete message use case",
		"ticket_id", cmd.TicketID,
		"message_id", cmd.MessageID,
		"actor_id", cmd.Actor.ID,
	)

	if cmd.MessageID == 0 {
		return nil, errors.NewValidationError("message ID is required")
	}

	var paths []string
	err := uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		if _, err := loadAccessibleTicket(txCtx, uc.ticketRepo.GetByID, cmd.Actor, cmd.TicketID); err != nil {
			return err
		}
		m, err := loadTicketMessage(txCtx, uc.messageRepo, cmd.TicketID, cmd.MessageID)
		if err != nil {
			return err
		}
		if err := m.CheckDeletableBy(cmd.Actor); err != nil {
			return domainError(err)
		}
		m.MarkDeleted()
		if err := uc.messageRepo.Update(txCtx, m); err != nil {
			return fmt.Errorf("failed to delete message: %w", err)
		}
		paths = m.StoredPaths()
		return nil
	})
	if err != nil {
		uc.logger.Warnw("failed to delete message", "message_id", cmd.MessageID, "error", err)
		if errors.IsAppError(err) {
			return nil, err
		}
		return nil, errors.NewInternalError("failed to delete message")
	}

	released := releaseBlobs(ctx, uc.blobs, uc.logger, paths)

	uc.logger.Infow("message deleted successfully",
		"message_id", cmd.MessageID,
		"released_blobs", released,
	)

	return &DeleteMessageResult{
		MessageID:     cmd.MessageID,
		ReleasedBlobs: released,
		Events: []broadcast.Event{broadcast.MessageDeleted{
			TicketID:  cmd.TicketID,
			MessageID: cmd.MessageID,
			SocketID:  cmd.SocketID,
		}},
	}, nil
}
