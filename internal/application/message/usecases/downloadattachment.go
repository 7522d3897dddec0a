package usecases

import (
	"context"
	"io"
	"path"

	"github.com/helpdesk-inc/helpdesk/internal/domain/message"
	"github.com/helpdesk-inc/helpdesk/internal/domain/ticket"
	"github.com/helpdesk-inc/helpdesk/internal/shared/authorization"
	"github.com/helpdesk-inc/helpdesk/internal/shared/errors"
	"github.com/helpdesk-inc/helpdesk/internal/shared/logger"
)

type DownloadAttachmentQuery struct {
	Path  string
	Actor authorization.Principal
}

// Download is an open attachment stream. The caller closes Content.
type Download struct {
	Content     io.ReadCloser
	Name        string
	Size        int64
	ContentType string
}

// DownloadAttachmentUseCase streams a stored attachment to anyone who can read its ticket.
type DownloadAttachmentUseCase struct {
	ticketRepo ticket.TicketRepository
	blobs      message.BlobStore
	logger     logger.Interface
}

func NewDownloadAttachmentUseCase(ticketRepo ticket.TicketRepository, blobs message.BlobStore, logger logger.Interface) *DownloadAttachmentUseCase {
	return &DownloadAttachmentUseCase{ticketRepo: ticketRepo, blobs: blobs, logger: logger}
}

func (uc *DownloadAttachmentUseCase) Execute(ctx context.Context, query DownloadAttachmentQuery) (*Download, error) {
	ticketID, ok := message.TicketIDFromBlobKey(query.Path)
	if !ok {
		return nil, errors.NewNotFoundError("attachment not found")
	}

	if _, err := loadAccessibleTicket(ctx, uc.ticketRepo.GetByID, query.Actor, ticketID); err != nil {
		return nil, err
	}

	content, info, err := uc.blobs.Open(ctx, query.Path)
	if err != nil {
		if errors.IsNotFoundError(err) {
			return nil, err
		}
		uc.logger.Errorw("failed to open attachment", "path", query.Path, "error", err)
		return nil, errors.NewInternalError("failed to open attachment")
	}

	return &Download{
		Content:     content,
		Name:        path.Base(query.Path),
		Size:        info.Size,
		ContentType: info.ContentType,
	}, nil
}
