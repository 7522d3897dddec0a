package usecases

import (
	"context"

	"github.com/helpdesk-inc/helpdesk/internal/application/message/dto"
)

type SendMessageExecutor interface {
	Execute(ctx context.Context, cmd SendMessageCommand) (*SendMessageResult, error)
}

type EditMessageExecutor interface {
	Execute(ctx context.Context, cmd EditMessageCommand) (*EditMessageResult, error)
}

type DeleteMessageExecutor interface {
	Execute(ctx context.Context, cmd DeleteMessageCommand) (*DeleteMessageResult, error)
}

type ListMessagesExecutor interface {
	Execute(ctx context.Context, query ListMessagesQuery) ([]*dto.MessageDTO, error)
}

type MarkReadExecutor interface {
	Execute(ctx context.Context, cmd MarkReadCommand) (*dto.MarkReadDTO, error)
}

type UnreadCountExecutor interface {
	Execute(ctx context.Context, query UnreadCountQuery) (*dto.UnreadCountDTO, error)
}

type DownloadAttachmentExecutor interface {
	Execute(ctx context.Context, query DownloadAttachmentQuery) (*Download, error)
}
