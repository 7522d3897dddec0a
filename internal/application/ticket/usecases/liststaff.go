package usecases

import (
	"context"

	"github.com/helpdesk-inc/helpdesk/internal/application/ticket/dto"
	"github.com/helpdesk-inc/helpdesk/internal/domain/user"
	"github.com/helpdesk-inc/helpdesk/internal/shared/authorization"
	"github.com/helpdesk-inc/helpdesk/internal/shared/errors"
	"github.com/helpdesk-inc/helpdesk/internal/shared/logger"
	"github.com/helpdesk-inc/helpdesk/internal/shared/mapper"
)

type ListStaffQuery struct {
	Actor authorization.Principal
}

// ListStaffUseCase returns the admins and incharge users tickets can be assigned to.
type ListStaffUseCase struct {
	userRepo user.Repository
	logger   logger.Interface
}

func NewListStaffUseCase(userRepo user.Repository, logger logger.Interface) *ListStaffUseCase {
	return &ListStaffUseCase{
		userRepo: userRepo,
		logger:   logger,
	}
}

func (uc *ListStaffUseCase) Execute(ctx context.Context, query ListStaffQuery) ([]*dto.UserSummaryDTO, error) {
	if d := authorization.StaffOnly(query.Actor); !d.Allowed {
		return nil, accessDenied(d)
	}

	staff, err := uc.userRepo.ListStaff(ctx)
	if err != nil {
		uc.logger.Errorw("failed to list staff", "error", err)
		return nil, errors.NewInternalError("failed to list staff")
	}

	out := mapper.MapSlice(staff, dto.ToUserSummaryDTO)
	if out == nil {
		out = []*dto.UserSummaryDTO{}
	}
	return out, nil
}
