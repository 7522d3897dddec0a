package usecases

import (
	"context"

	"github.com/helpdesk-inc/helpdesk/internal/application/message/dto"
	"github.com/helpdesk-inc/helpdesk/internal/domain/message"
	"github.com/helpdesk-inc/helpdesk/internal/shared/authorization"
	"github.com/helpdesk-inc/helpdesk/internal/shared/errors"
	"github.com/helpdesk-inc/helpdesk/internal/shared/logger"
)

type UnreadCountQuery struct {
	Actor authorization.Principal
}

// UnreadCountUseCase counts messages the reader has not seen. Users count over tickets they
// own; staff count over tickets assigned to them.
type UnreadCountUseCase struct {
	messageRepo message.Repository
	logger      logger.Interface
}

func NewUnreadCountUseCase(messageRepo message.Repository, logger logger.Interface) *UnreadCountUseCase {
	return &UnreadCountUseCase{messageRepo: messageRepo, logger: logger}
}

func (uc *UnreadCountUseCase) Execute(ctx context.Context, query UnreadCountQuery) (*dto.UnreadCountDTO, error) {
	id := query.Actor.ID
	scope := message.UnreadScope{OwnerID: &id}
	if query.Actor.IsStaff() {
		scope = message.UnreadScope{AssigneeID: &id}
	}

	count, err := uc.messageRepo.CountUnread(ctx, id, scope)
	if err != nil {
		uc.logger.Errorw("failed to count unread messages", "reader_id", id, "error", err)
		return nil, errors.NewInternalError("failed to count unread messages")
	}
	return &dto.UnreadCountDTO{UnreadCount: count}, nil
}
