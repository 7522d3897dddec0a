package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpdesk-inc/helpdesk/internal/domain/ticket"
	vo "github.com/helpdesk-inc/helpdesk/internal/domain/ticket/valueobjects"
	"github.com/helpdesk-inc/helpdesk/internal/shared/authorization"
	"github.com/helpdesk-inc/helpdesk/internal/shared/errors"
	"github.com/helpdesk-inc/helpdesk/internal/shared/logger"
)

func TestGetTicketUseCase_Execute(t *testing.T) {
	tk := existingTicket(t, vo.StatusOpen, uintPtr(inchargeID))
	uc := NewGetTicketUseCase(ticketRepoWith(tk), newTestUsers(t), logger.NewNop())

	tests := []struct {
		name    string
		actor   authorization.Principal
		allowed bool
	}{
		{"owner", ownerP, true},
		{"assignee", inchargeP, true},
		{"admin", adminP, true},
		{"unassigned incharge", idleP, false},
		{"stranger", strangerP, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := uc.Execute(context.Background(), GetTicketQuery{TicketID: 1, Actor: tt.actor})
			if !tt.allowed {
				require.Error(t, err)
				assert.True(t, errors.IsAccessDeniedError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "TS-20240101-AB12", got.TicketNumber)
			require.NotNil(t, got.Assignee)
			assert.Equal(t, inchargeID, got.Assignee.ID)
		})
	}
}

func TestGetTicketUseCase_Execute_NotFound(t *testing.T) {
	uc := NewGetTicketUseCase(&mockTicketRepository{}, newTestUsers(t), logger.NewNop())

	_, err := uc.Execute(context.Background(), GetTicketQuery{TicketID: 3, Actor: adminP})
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestListTicketsUseCase_ScopesByRole(t *testing.T) {
	tests := []struct {
		name     string
		actor    authorization.Principal
		owner    *uint
		assignee *uint
	}{
		{"user sees owned", ownerP, uintPtr(ownerID), nil},
		{"incharge sees assigned", inchargeP, nil, uintPtr(inchargeID)},
		{"admin sees all", adminP, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured ticket.TicketFilter
			repo := &mockTicketRepository{
				ListFunc: func(_ context.Context, f ticket.TicketFilter) ([]*ticket.Ticket, int64, error) {
					captured = f
					return []*ticket.Ticket{existingTicket(t, vo.StatusOpen, nil)}, 41, nil
				},
			}
			uc := NewListTicketsUseCase(repo, newTestUsers(t), logger.NewNop())

			got, err := uc.Execute(context.Background(), ListTicketsQuery{
				Status:   "open",
				PageSize: 20,
				Actor:    tt.actor,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.owner, captured.OwnerID)
			assert.Equal(t, tt.assignee, captured.AssigneeID)
			require.NotNil(t, captured.Status)
			assert.Equal(t, vo.StatusOpen, *captured.Status)
			assert.Equal(t, 1, captured.Page)
			assert.Equal(t, int64(41), got.Total)
			assert.Equal(t, 3, got.TotalPages)
			require.Len(t, got.Tickets, 1)
		})
	}
}

func TestListTicketsUseCase_InvalidFilter(t *testing.T) {
	uc := NewListTicketsUseCase(&mockTicketRepository{}, newTestUsers(t), logger.NewNop())

	_, err := uc.Execute(context.Background(), ListTicketsQuery{Priority: "urgent", SortOrder: "sideways", Actor: adminP})
	require.Error(t, err)
	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Contains(t, appErr.Fields, "priority")
	assert.Contains(t, appErr.Fields, "sort_order")
}

func TestListTicketsUseCase_EmptyListIsNotNil(t *testing.T) {
	uc := NewListTicketsUseCase(&mockTicketRepository{}, newTestUsers(t), logger.NewNop())

	got, err := uc.Execute(context.Background(), ListTicketsQuery{Actor: ownerP})
	require.NoError(t, err)
	assert.NotNil(t, got.Tickets)
	assert.Empty(t, got.Tickets)
}

func TestGetTicketStatsUseCase_Execute(t *testing.T) {
	counts := map[vo.TicketStatus]int64{
		vo.StatusOpen:       3,
		vo.StatusInProgress: 2,
		vo.StatusPending:    0,
		vo.StatusResolved:   4,
		vo.StatusClosed:     1,
	}
	repo := &mockTicketRepository{
		CountByStatusFunc: func(context.Context, ticket.TicketScope) (map[vo.TicketStatus]int64, error) {
			return counts, nil
		},
		CountUnassignedActiveFunc: func(context.Context) (int64, error) { return 2, nil },
		CountCriticalActiveFunc:   func(context.Context) (int64, error) { return 1, nil },
	}
	uc := NewGetTicketStatsUseCase(repo, logger.NewNop())

	userStats, err := uc.Execute(context.Background(), GetTicketStatsQuery{Actor: ownerP})
	require.NoError(t, err)
	assert.Equal(t, int64(10), userStats.Total)
	assert.Equal(t, int64(4), userStats.Resolved)
	assert.Nil(t, userStats.Unassigned)
	assert.Nil(t, userStats.Critical)

	adminStats, err := uc.Execute(context.Background(), GetTicketStatsQuery{Actor: adminP})
	require.NoError(t, err)
	require.NotNil(t, adminStats.Unassigned)
	assert.Equal(t, int64(2), *adminStats.Unassigned)
	assert.Equal(t, int64(1), *adminStats.Critical)
}

func TestListStaffUseCase_Execute(t *testing.T) {
	uc := NewListStaffUseCase(newTestUsers(t), logger.NewNop())

	staff, err := uc.Execute(context.Background(), ListStaffQuery{Actor: inchargeP})
	require.NoError(t, err)
	assert.Len(t, staff, 3)
	for _, s := range staff {
		assert.NotEqual(t, "user", s.Role)
	}

	_, err = uc.Execute(context.Background(), ListStaffQuery{Actor: ownerP})
	require.Error(t, err)
	assert.True(t, errors.IsAccessDeniedError(err))
}

func TestListUsersUseCase_Execute(t *testing.T) {
	users := newTestUsers(t)
	uc := NewListUsersUseCase(users, logger.NewNop())

	all, err := uc.Execute(context.Background(), ListUsersQuery{Actor: adminP})
	require.NoError(t, err)
	assert.Equal(t, int64(5), all.Total)
	require.Len(t, all.Users, 5)
	assert.Equal(t, ownerID, all.Users[0].ID)
	assert.Equal(t, 1, users.lastFilter.Page)
	assert.Equal(t, 20, users.lastFilter.PageSize)

	staff, err := uc.Execute(context.Background(), ListUsersQuery{Role: "incharge", Search: "cruz", Actor: adminP})
	require.NoError(t, err)
	assert.Equal(t, int64(2), staff.Total)
	assert.Equal(t, "cruz", users.lastFilter.Search)
}

func TestListUsersUseCase_Execute_Rejections(t *testing.T) {
	uc := NewListUsersUseCase(newTestUsers(t), logger.NewNop())

	_, err := uc.Execute(context.Background(), ListUsersQuery{Actor: inchargeP})
	assert.True(t, errors.IsAccessDeniedError(err))

	_, err = uc.Execute(context.Background(), ListUsersQuery{Role: "owner", Actor: adminP})
	assert.True(t, errors.IsValidationError(err))
}

func TestListRolesUseCase_Execute(t *testing.T) {
	uc := NewListRolesUseCase()

	roles, err := uc.Execute(context.Background(), ListRolesQuery{Actor: adminP})
	require.NoError(t, err)
	require.Len(t, roles, 3)
	assert.Equal(t, "admin", roles[0].Name)
	assert.Equal(t, "Incharge", roles[1].DisplayName)
	assert.False(t, roles[2].Staff)

	_, err = uc.Execute(context.Background(), ListRolesQuery{Actor: ownerP})
	assert.True(t, errors.IsAccessDeniedError(err))
}
