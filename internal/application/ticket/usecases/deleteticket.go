package usecases

import (
	"context"
	"fmt"

	"github.com/helpdesk-inc/helpdesk/internal/domain/message"
	"github.com/helpdesk-inc/helpdesk/internal/domain/ticket"
	"github.com/helpdesk-inc/helpdesk/internal/shared/authorization"
	"github.com/helpdesk-inc/helpdesk/internal/shared/db"
	"github.com/helpdesk-inc/helpdesk/internal/shared/errors"
	"github.com/helpdesk-inc/helpdesk/internal/shared/logger"
)

type DeleteTicketCommand struct {
	TicketID uint
	Actor    authorization.Principal
}

type DeleteTicketResult struct {
	TicketID      uint
	ReleasedBlobs int
}

// DeleteTicketUseCase removes a ticket with its conversation. Rows go in one transaction;
// attachment blobs are released afterwards and a failed release is only logged.
type DeleteTicketUseCase struct {
	ticketRepo  ticket.TicketRepository
	messageRepo message.Repository
	blobs       message.BlobStore
	txMgr       db.Transactor
	logger      logger.Interface
}

func NewDeleteTicketUseCase(
	ticketRepo ticket.TicketRepository,
	messageRepo message.Repository,
	blobs message.BlobStore,
	txMgr db.Transactor,
	logger logger.Interface,
) *DeleteTicketUseCase {
	return &DeleteTicketUseCase{
		ticketRepo:  ticketRepo,
		messageRepo: messageRepo,
		blobs:       blobs,
		txMgr:       txMgr,
		logger:      logger,
	}
}

func (uc *DeleteTicketUseCase) Execute(ctx context.Context, cmd DeleteTicketCommand) (*DeleteTicketResult, error) {
	uc.logger.Infow("executing delete ticket use case", "ticket_id", cmd.TicketID, "actor_id", cmd.Actor.ID)

	if d := authorization.AdminOnly(cmd.Actor); !d.Allowed {
		uc.logger.Warnw("non-admin attempted to delete ticket", "ticket_id", cmd.TicketID, "actor_id", cmd.Actor.ID)
		return nil, accessDenied(d)
	}
	if cmd.TicketID == 0 {
		return nil, errors.NewValidationError("ticket ID is required")
	}

	var paths []string
	err := uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		if _, err := uc.ticketRepo.GetByIDForUpdate(txCtx, cmd.TicketID); err != nil {
			return err
		}
		var err error
		paths, err = uc.messageRepo.StoredPathsByTicket(txCtx, cmd.TicketID)
		if err != nil {
			return fmt.Errorf("failed to collect attachments: %w", err)
		}
		if err := uc.messageRepo.DeleteByTicket(txCtx, cmd.TicketID); err != nil {
			return fmt.Errorf("failed to delete messages: %w", err)
		}
		return uc.ticketRepo.Delete(txCtx, cmd.TicketID)
	})
	if err != nil {
		uc.logger.Errorw("failed to delete ticket", "ticket_id", cmd.TicketID, "error", err)
		if errors.IsAppError(err) {
			return nil, err
		}
		return nil, errors.NewInternalError("failed to delete ticket")
	}

	released := 0
	for _, path := range paths {
		if err := uc.blobs.Delete(ctx, path); err != nil {
			uc.logger.Warnw("failed to release attachment blob", "ticket_id", cmd.TicketID, "path", path, "error", err)
			continue
		}
		released++
	}

	uc.logger.Infow("ticket deleted successfully", "ticket_id", cmd.TicketID, "released_blobs", released)
	return &DeleteTicketResult{TicketID: cmd.TicketID, ReleasedBlobs: released}, nil
}
