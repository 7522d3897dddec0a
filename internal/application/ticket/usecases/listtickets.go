package usecases

import (
	"context"

	"github.com/helpdesk-inc/helpdesk/internal/application/ticket/dto"
	"github.com/helpdesk-inc/helpdesk/internal/domain/ticket"
	vo "github.com/helpdesk-inc/helpdesk/internal/domain/ticket/valueobjects"
	"github.com/helpdesk-inc/helpdesk/internal/domain/user"
	"github.com/helpdesk-inc/helpdesk/internal/shared/authorization"
	"github.com/helpdesk-inc/helpdesk/internal/shared/constants"
	"github.com/helpdesk-inc/helpdesk/internal/shared/errors"
	"github.com/helpdesk-inc/helpdesk/internal/shared/logger"
	"github.com/helpdesk-inc/helpdesk/internal/shared/utils"
)

type ListTicketsQuery struct {
	Status    string
	Priority  string
	Category  string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
	Actor     authorization.Principal
}

// ListTicketsUseCase lists the tickets visible to the caller: users see their own, incharge
// their assigned tickets and admins all of them.
type ListTicketsUseCase struct {
	ticketRepo ticket.TicketRepository
	userRepo   user.Repository
	logger     logger.Interface
}

func NewListTicketsUseCase(
	ticketRepo ticket.TicketRepository,
	userRepo user.Repository,
	logger logger.Interface,
) *ListTicketsUseCase {
	return &ListTicketsUseCase{
		ticketRepo: ticketRepo,
		userRepo:   userRepo,
		logger:     logger,
	}
}

func (uc *ListTicketsUseCase) Execute(ctx context.Context, query ListTicketsQuery) (*dto.TicketListDTO, error) {
	uc.logger.Debugw("executing list tickets use case", "actor_id", query.Actor.ID, "role", query.Actor.Role)

	filter, err := uc.buildFilter(query)
	if err != nil {
		return nil, err
	}

	tickets, total, err := uc.ticketRepo.List(ctx, filter)
	if err != nil {
		uc.logger.Errorw("failed to list tickets", "actor_id", query.Actor.ID, "error", err)
		return nil, errors.NewInternalError("failed to list tickets")
	}

	items := dto.ToTicketDTOList(tickets, resolveUsers(ctx, uc.userRepo, uc.logger, tickets...))
	if items == nil {
		items = []*dto.TicketDTO{}
	}
	return &dto.TicketListDTO{
		Tickets:    items,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: utils.TotalPages(total, filter.PageSize),
	}, nil
}

func (uc *ListTicketsUseCase) buildFilter(query ListTicketsQuery) (ticket.TicketFilter, error) {
	page := utils.ValidatePagination(query.Page, query.PageSize)
	filter := ticket.TicketFilter{
		TicketScope: scopeFor(query.Actor),
		Page:        page.Page,
		PageSize:    page.PageSize,
		SortBy:      query.SortBy,
		SortOrder:   query.SortOrder,
	}

	fields := make(map[string]string)
	if query.Status != "" {
		s := vo.TicketStatus(query.Status)
		if s.IsValid() {
			filter.Status = &s
		} else {
			fields["status"] = "unknown status"
		}
	}
	if query.Priority != "" {
		p := vo.Priority(query.Priority)
		if p.IsValid() {
			filter.Priority = &p
		} else {
			fields["priority"] = "unknown priority"
		}
	}
	if query.Category != "" {
		c := vo.Category(query.Category)
		if c.IsValid() {
			filter.Category = &c
		} else {
			fields["category"] = "unknown category"
		}
	}
	if filter.SortOrder != "" && filter.SortOrder != constants.SortOrderAsc && filter.SortOrder != constants.SortOrderDesc {
		fields["sort_order"] = "must be asc or desc"
	}

	if len(fields) > 0 {
		return filter, errors.NewFieldValidationError("invalid ticket filter", fields)
	}
	return filter, nil
}
