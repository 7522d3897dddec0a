package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/helpdesk-inc/helpdesk/internal/application/ticket/dto"
	"github.com/helpdesk-inc/helpdesk/internal/domain/message"
	"github.com/helpdesk-inc/helpdesk/internal/domain/ticket"
	"github.com/helpdesk-inc/helpdesk/internal/domain/user"
	"github.com/helpdesk-inc/helpdesk/internal/shared/authorization"
	apperrors "github.com/helpdesk-inc/helpdesk/internal/shared/errors"
	"github.com/helpdesk-inc/helpdesk/internal/shared/logger"
)

// resolveUsers loads display data for the given tickets' participants. A lookup failure only
// costs the embedded user objects, so it is logged rather than returned.
func resolveUsers(ctx context.Context, users user.Repository, log logger.Interface, tickets ...*ticket.Ticket) map[uint]*user.User {
	ids := dto.ParticipantIDs(tickets...)
	if len(ids) == 0 {
		return nil
	}
	list, err := users.GetByIDs(ctx, ids)
	if err != nil {
		log.Warnw("failed to resolve ticket participants", "user_ids", ids, "error", err)
		return nil
	}
	return dto.UsersByID(list)
}

func appendSystemNote(ctx context.Context, messages message.Repository, t *ticket.Ticket, text string) error {
	note, err := message.NewSystemMessage(t.ID(), t.OwnerID(), text)
	if err != nil {
		return fmt.Errorf("failed to build system message: %w", err)
	}
	if err := messages.Save(ctx, note); err != nil {
		return fmt.Errorf("failed to save system message: %w", err)
	}
	return nil
}

func accessDenied(d authorization.Decision) error {
	return apperrors.NewAccessDeniedError("access denied", d.Reason)
}

// loadAssignee fetches a prospective assignee and checks they are staff.
func loadAssignee(ctx context.Context, users user.Repository, assigneeID uint) (*user.User, error) {
	assignee, err := users.GetByID(ctx, assigneeID)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return nil, apperrors.NewNotFoundError("assignee not found")
		}
		return nil, fmt.Errorf("failed to load assignee: %w", err)
	}
	if !assignee.IsStaff() {
		return nil, apperrors.NewForbiddenError("can only assign tickets to staff members")
	}
	return assignee, nil
}

// domainError converts ticket invariant violations into application errors.
func domainError(err error) error {
	switch {
	case errors.Is(err, ticket.ErrTicketClosed), errors.Is(err, ticket.ErrTicketResolved):
		return apperrors.NewForbiddenError(err.Error())
	case apperrors.IsAppError(err):
		return err
	default:
		return apperrors.NewValidationError(err.Error())
	}
}

// scopeFor limits ticket queries to what the principal may see: users their own tickets,
// incharge their assigned tickets, admins everything.
func scopeFor(p authorization.Principal) ticket.TicketScope {
	switch {
	case p.Role.IsAdmin():
		return ticket.TicketScope{}
	case p.Role.IsIncharge():
		id := p.ID
		return ticket.TicketScope{AssigneeID: &id}
	default:
		id := p.ID
		return ticket.TicketScope{OwnerID: &id}
	}
}
