package usecases

import (
	"context"

	"github.com/helpdesk-inc/helpdesk/internal/application/ticket/dto"
	"github.com/helpdesk-inc/helpdesk/internal/domain/user"
	"github.com/helpdesk-inc/helpdesk/internal/shared/authorization"
	"github.com/helpdesk-inc/helpdesk/internal/shared/errors"
	"github.com/helpdesk-inc/helpdesk/internal/shared/logger"
	"github.com/helpdesk-inc/helpdesk/internal/shared/mapper"
	"github.com/helpdesk-inc/helpdesk/internal/shared/utils"
)

type ListUsersQuery struct {
	Role     string
	Search   string
	Page     int
	PageSize int
	Actor    authorization.Principal
}

// ListUsersUseCase pages through the user directory for admins. The directory is read-only
// here; accounts are managed by the identity provider.
type ListUsersUseCase struct {
	userRepo user.Repository
	logger   logger.Interface
}

func NewListUsersUseCase(userRepo user.Repository, logger logger.Interface) *ListUsersUseCase {
	return &ListUsersUseCase{
		userRepo: userRepo,
		logger:   logger,
	}
}

func (uc *ListUsersUseCase) Execute(ctx context.Context, query ListUsersQuery) (*dto.UserListDTO, error) {
	if d := authorization.AdminOnly(query.Actor); !d.Allowed {
		return nil, accessDenied(d)
	}

	filter := user.Filter{Search: query.Search}
	if query.Role != "" {
		role := authorization.UserRole(query.Role)
		if !role.IsValid() {
			return nil, errors.NewValidationError("invalid role filter", query.Role)
		}
		filter.Role = role
	}
	page := utils.ValidatePagination(query.Page, query.PageSize)
	filter.Page, filter.PageSize = page.Page, page.PageSize

	users, total, err := uc.userRepo.List(ctx, filter)
	if err != nil {
		uc.logger.Errorw("failed to list users", "actor_id", query.Actor.ID, "error", err)
		return nil, errors.NewInternalError("failed to list users")
	}

	items := mapper.MapSlice(users, dto.ToUserSummaryDTO)
	if items == nil {
		items = []*dto.UserSummaryDTO{}
	}
	return &dto.UserListDTO{
		Users:      items,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: utils.TotalPages(total, filter.PageSize),
	}, nil
}

type ListRolesQuery struct {
	Actor authorization.Principal
}

// ListRolesUseCase describes the fixed role set for admin tooling.
type ListRolesUseCase struct{}

func NewListRolesUseCase() *ListRolesUseCase {
	return &ListRolesUseCase{}
}

func (uc *ListRolesUseCase) Execute(_ context.Context, query ListRolesQuery) ([]*dto.RoleDTO, error) {
	if d := authorization.AdminOnly(query.Actor); !d.Allowed {
		return nil, accessDenied(d)
	}

	roles := authorization.AllRoles()
	out := make([]*dto.RoleDTO, 0, len(roles))
	for _, r := range roles {
		out = append(out, &dto.RoleDTO{
			Name:        r.String(),
			DisplayName: r.DisplayName(),
			Staff:       r.IsStaff(),
		})
	}
	return out, nil
}
