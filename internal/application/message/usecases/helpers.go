package usecases

import (
	"context"
	"errors"

	ticketdto "github.com/helpdesk-inc/helpdesk/internal/application/ticket/dto"
	"github.com/helpdesk-inc/helpdesk/internal/domain/message"
	"github.com/helpdesk-inc/helpdesk/internal/domain/ticket"
	"github.com/helpdesk-inc/helpdesk/internal/domain/user"
	"github.com/helpdesk-inc/helpdesk/internal/shared/authorization"
	apperrors "github.com/helpdesk-inc/helpdesk/internal/shared/errors"
	"github.com/helpdesk-inc/helpdesk/internal/shared/logger"
)

type ticketLoader func(ctx context.Context, ticketID uint) (*ticket.Ticket, error)

// loadAccessibleTicket fetches a ticket and applies the strict access rule used by every
// conversation command.
func loadAccessibleTicket(ctx context.Context, load ticketLoader, p authorization.Principal, ticketID uint) (*ticket.Ticket, error) {
	if ticketID == 0 {
		return nil, apperrors.NewValidationError("ticket ID is required")
	}
	t, err := load(ctx, ticketID)
	if err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.NewInternalError("failed to load ticket")
	}
	if !ticket.CanAccessTicket(p, t) {
		return nil, apperrors.NewAccessDeniedError("you do not have access to this ticket")
	}
	return t, nil
}

// loadTicketMessage fetches a live message and checks it belongs to ticketID.
func loadTicketMessage(ctx context.Context, repo message.Repository, ticketID, messageID uint) (*message.Message, error) {
	m, err := repo.GetByID(ctx, messageID)
	if err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.NewInternalError("failed to load message")
	}
	if m.TicketID() != ticketID {
		return nil, apperrors.NewNotFoundError("message not found")
	}
	return m, nil
}

// domainError converts message and ticket invariant violations into application errors.
func domainError(err error) error {
	switch {
	case errors.Is(err, message.ErrSystemMessage):
		return apperrors.NewForbiddenError("system messages cannot be edited or deleted")
	case errors.Is(err, message.ErrNotAuthor):
		return apperrors.NewForbiddenError(err.Error())
	case errors.Is(err, message.ErrDeleted):
		return apperrors.NewNotFoundError("message not found")
	case errors.Is(err, ticket.ErrTicketClosed):
		return apperrors.NewForbiddenError("cannot send messages to closed tickets")
	case errors.Is(err, ticket.ErrTicketResolved):
		return apperrors.NewForbiddenError(err.Error())
	case errors.Is(err, message.ErrEmptyMessage), errors.Is(err, message.ErrContentTooLong):
		return apperrors.NewFieldValidationError(err.Error(), map[string]string{"content": err.Error()})
	case apperrors.IsAppError(err):
		return err
	default:
		return apperrors.NewValidationError(err.Error())
	}
}

// resolveAuthors loads display data for message authors in one query. Failure leaves the
// messages without embedded users.
func resolveAuthors(ctx context.Context, users user.Repository, log logger.Interface, messages ...*message.Message) map[uint]*user.User {
	ids := make([]uint, 0, len(messages))
	for _, m := range messages {
		ids = append(ids, m.AuthorID())
	}
	return resolveUsers(ctx, users, log, ids)
}

func resolveUsers(ctx context.Context, users user.Repository, log logger.Interface, ids []uint) map[uint]*user.User {
	seen := make(map[uint]struct{}, len(ids))
	unique := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == 0 {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return nil
	}

	list, err := users.GetByIDs(ctx, unique)
	if err != nil {
		log.Warnw("failed to resolve users", "user_ids", unique, "error", err)
		return nil
	}
	return ticketdto.UsersByID(list)
}

func releaseBlobs(ctx context.Context, blobs message.BlobStore, log logger.Interface, paths []string) int {
	released := 0
	for _, path := range paths {
		if err := blobs.Delete(ctx, path); err != nil {
			log.Warnw("failed to release attachment blob", "path", path, "error", err)
			continue
		}
		released++
	}
	return released
}
