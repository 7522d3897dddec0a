package usecases

import (
	"context"

	"github.com/helpdesk-inc/helpdesk/internal/application/ticket/dto"
	"github.com/helpdesk-inc/helpdesk/internal/domain/ticket"
	vo "github.com/helpdesk-inc/helpdesk/internal/domain/ticket/valueobjects"
	"github.com/helpdesk-inc/helpdesk/internal/shared/authorization"
	"github.com/helpdesk-inc/helpdesk/internal/shared/errors"
	"github.com/helpdesk-inc/helpdesk/internal/shared/logger"
)

type GetTicketStatsQuery struct {
	Actor authorization.Principal
}

type GetTicketStatsUseCase struct {
	ticketRepo ticket.TicketRepository
	logger     logger.Interface
}

func NewGetTicketStatsUseCase(ticketRepo ticket.TicketRepository, logger logger.Interface) *GetTicketStatsUseCase {
	return &GetTicketStatsUseCase{
		ticketRepo: ticketRepo,
		logger:     logger,
	}
}

func (uc *GetTicketStatsUseCase) Execute(ctx context.Context, query GetTicketStatsQuery) (*dto.TicketStatsDTO, error) {
	uc.logger.Debugw("executing get ticket stats use case", "actor_id", query.Actor.ID)

	counts, err := uc.ticketRepo.CountByStatus(ctx, scopeFor(query.Actor))
	if err != nil {
		uc.logger.Errorw("failed to count tickets by status", "error", err)
		return nil, errors.NewInternalError("failed to load ticket statistics")
	}

	stats := &dto.TicketStatsDTO{
		Open:       counts[vo.StatusOpen],
		InProgress: counts[vo.StatusInProgress],
		Pending:    counts[vo.StatusPending],
		Resolved:   counts[vo.StatusResolved],
		Closed:     counts[vo.StatusClosed],
	}
	for _, n := range counts {
		stats.Total += n
	}

	if !query.Actor.IsAdmin() {
		return stats, nil
	}

	unassigned, err := uc.ticketRepo.CountUnassignedActive(ctx)
	if err != nil {
		uc.logger.Errorw("failed to count unassigned tickets", "error", err)
		return nil, errors.NewInternalError("failed to load ticket statistics")
	}
	critical, err := uc.ticketRepo.CountCriticalActive(ctx)
	if err != nil {
		uc.logger.Errorw("failed to count critical tickets", "error", err)
		return nil, errors.NewInternalError("failed to load ticket statistics")
	}
	stats.Unassigned = &unassigned
	stats.Critical = &critical

	return stats, nil
}
