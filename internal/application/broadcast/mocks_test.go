package broadcast

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/helpdesk-inc/helpdesk/internal/domain/ticket"
	vo "github.com/helpdesk-inc/helpdesk/internal/domain/ticket/valueobjects"
	"github.com/helpdesk-inc/helpdesk/internal/domain/user"
	"github.com/helpdesk-inc/helpdesk/internal/shared/authorization"
	"github.com/helpdesk-inc/helpdesk/internal/shared/errors"
)

type mockTicketRepository struct {
	ticket.TicketRepository
	GetByIDFunc func(ctx context.Context, ticketID uint) (*ticket.Ticket, error)
}

func (m *mockTicketRepository) GetByID(ctx context.Context, ticketID uint) (*ticket.Ticket, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, ticketID)
	}
	return nil, errors.NewNotFoundError("ticket not found")
}

type mockUserRepository struct {
	user.Repository
	GetByIDFunc func(ctx context.Context, id uint) (*user.User, error)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id uint) (*user.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, errors.NewNotFoundError("user not found")
}

type mockTransport struct {
	mu          sync.Mutex
	published   []Publication
	ctxErrs     []error
	PublishFunc func(ctx context.Context, pub Publication) error
}

func (m *mockTransport) Publish(ctx context.Context, pub Publication) error {
	m.mu.Lock()
	m.published = append(m.published, pub)
	m.ctxErrs = append(m.ctxErrs, ctx.Err())
	m.mu.Unlock()
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, pub)
	}
	return nil
}

const (
	ownerID    uint = 10
	inchargeID uint = 20
	idleID     uint = 21
	adminID    uint = 30
	strangerID uint = 40
)

var (
	ownerP    = authorization.Principal{ID: ownerID, Role: authorization.RoleUser}
	inchargeP = authorization.Principal{ID: inchargeID, Role: authorization.RoleIncharge}
	idleP     = authorization.Principal{ID: idleID, Role: authorization.RoleIncharge}
	adminP    = authorization.Principal{ID: adminID, Role: authorization.RoleAdmin}
	strangerP = authorization.Principal{ID: strangerID, Role: authorization.RoleUser}
)

func uintPtr(v uint) *uint {
	return &v
}

func newTicket(t *testing.T, id uint, status vo.TicketStatus, assignee *uint) *ticket.Ticket {
	t.Helper()
	now := time.Now().UTC()
	tk, err := ticket.ReconstructTicket(
		id, "TS-20240101-AB12",
		"VPN drops", "VPN disconnects every hour",
		vo.CategoryNetwork, vo.PriorityHigh,
		status,
		ownerID,
		assignee,
		nil, nil,
		1,
		now, now,
	)
	require.NoError(t, err)
	return tk
}

func newUser(t *testing.T, id uint, first, last string, role authorization.UserRole) *user.User {
	t.Helper()
	u, err := user.ReconstructUser(id, first, "", last, first+"@example.com", role, nil)
	require.NoError(t, err)
	return u
}
