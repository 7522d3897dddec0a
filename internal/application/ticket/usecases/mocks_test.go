package usecases

import (
	"context"
	"io"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/helpdesk-inc/helpdesk/internal/domain/message"
	"github.com/helpdesk-inc/helpdesk/internal/domain/ticket"
	vo "github.com/helpdesk-inc/helpdesk/internal/domain/ticket/valueobjects"
	"github.com/helpdesk-inc/helpdesk/internal/domain/user"
	"github.com/helpdesk-inc/helpdesk/internal/shared/authorization"
	"github.com/helpdesk-inc/helpdesk/internal/shared/errors"
)

type mockTicketRepository struct {
	SaveFunc                  func(ctx context.Context, t *ticket.Ticket) error
	UpdateFunc                func(ctx context.Context, t *ticket.Ticket) error
	DeleteFunc                func(ctx context.Context, ticketID uint) error
	GetByIDFunc               func(ctx context.Context, ticketID uint) (*ticket.Ticket, error)
	GetByIDForUpdateFunc      func(ctx context.Context, ticketID uint) (*ticket.Ticket, error)
	ExistsByNumberFunc        func(ctx context.Context, number string) (bool, error)
	ListFunc                  func(ctx context.Context, filter ticket.TicketFilter) ([]*ticket.Ticket, int64, error)
	CountByStatusFunc         func(ctx context.Context, scope ticket.TicketScope) (map[vo.TicketStatus]int64, error)
	CountUnassignedActiveFunc func(ctx context.Context) (int64, error)
	CountCriticalActiveFunc   func(ctx context.Context) (int64, error)

	updated []*ticket.Ticket
}

func (m *mockTicketRepository) Save(ctx context.Context, t *ticket.Ticket) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, t)
	}
	return t.SetID(1)
}

func (m *mockTicketRepository) Update(ctx context.Context, t *ticket.Ticket) error {
	m.updated = append(m.updated, t)
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, t)
	}
	return nil
}

func (m *mockTicketRepository) Delete(ctx context.Context, ticketID uint) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, ticketID)
	}
	return nil
}

func (m *mockTicketRepository) GetByID(ctx context.Context, ticketID uint) (*ticket.Ticket, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, ticketID)
	}
	return nil, errors.NewNotFoundError("ticket not found")
}

func (m *mockTicketRepository) GetByIDForUpdate(ctx context.Context, ticketID uint) (*ticket.Ticket, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, ticketID)
	}
	return m.GetByID(ctx, ticketID)
}

func (m *mockTicketRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	if m.ExistsByNumberFunc != nil {
		return m.ExistsByNumberFunc(ctx, number)
	}
	return false, nil
}

func (m *mockTicketRepository) List(ctx context.Context, filter ticket.TicketFilter) ([]*ticket.Ticket, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return nil, 0, nil
}

func (m *mockTicketRepository) CountByStatus(ctx context.Context, scope ticket.TicketScope) (map[vo.TicketStatus]int64, error) {
	if m.CountByStatusFunc != nil {
		return m.CountByStatusFunc(ctx, scope)
	}
	return map[vo.TicketStatus]int64{}, nil
}

func (m *mockTicketRepository) CountUnassignedActive(ctx context.Context) (int64, error) {
	if m.CountUnassignedActiveFunc != nil {
		return m.CountUnassignedActiveFunc(ctx)
	}
	return 0, nil
}

func (m *mockTicketRepository) CountCriticalActive(ctx context.Context) (int64, error) {
	if m.CountCriticalActiveFunc != nil {
		return m.CountCriticalActiveFunc(ctx)
	}
	return 0, nil
}

// mockMessageRepository records saved messages so tests can assert on system notes.
type mockMessageRepository struct {
	SaveFunc                func(ctx context.Context, m *message.Message) error
	StoredPathsByTicketFunc func(ctx context.Context, ticketID uint) ([]string, error)
	DeleteByTicketFunc      func(ctx context.Context, ticketID uint) error

	saved  []*message.Message
	nextID uint
}

func (m *mockMessageRepository) Save(ctx context.Context, msg *message.Message) error {
	if m.SaveFunc != nil {
		if err := m.SaveFunc(ctx, msg); err != nil {
			return err
		}
	}
	m.nextID++
	if err := msg.SetID(m.nextID); err != nil {
		return err
	}
	m.saved = append(m.saved, msg)
	return nil
}

func (m *mockMessageRepository) Update(context.Context, *message.Message) error {
	return nil
}

func (m *mockMessageRepository) GetByID(context.Context, uint) (*message.Message, error) {
	return nil, errors.NewNotFoundError("message not found")
}

func (m *mockMessageRepository) ListByTicket(context.Context, uint) ([]*message.Message, error) {
	return nil, nil
}

func (m *mockMessageRepository) MarkRead(context.Context, uint, uint) (int64, error) {
	return 0, nil
}

func (m *mockMessageRepository) CountUnread(context.Context, uint, message.UnreadScope) (int64, error) {
	return 0, nil
}

func (m *mockMessageRepository) StoredPathsByTicket(ctx context.Context, ticketID uint) ([]string, error) {
	if m.StoredPathsByTicketFunc != nil {
		return m.StoredPathsByTicketFunc(ctx, ticketID)
	}
	return nil, nil
}

func (m *mockMessageRepository) DeleteByTicket(ctx context.Context, ticketID uint) error {
	if m.DeleteByTicketFunc != nil {
		return m.DeleteByTicketFunc(ctx, ticketID)
	}
	return nil
}

func (m *mockMessageRepository) notes() []string {
	var out []string
	for _, msg := range m.saved {
		if msg.IsSystem() {
			out = append(out, msg.Content())
		}
	}
	return out
}

type mockUserRepository struct {
	users      map[uint]*user.User
	err        error
	lastFilter user.Filter
}

func (m *mockUserRepository) GetByID(_ context.Context, id uint) (*user.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, errors.NewNotFoundError("user not found")
}

func (m *mockUserRepository) GetByIDs(_ context.Context, ids []uint) ([]*user.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*user.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockUserRepository) ListStaff(context.Context) ([]*user.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*user.User
	for _, u := range m.users {
		if u.IsStaff() {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockUserRepository) List(_ context.Context, filter user.Filter) ([]*user.User, int64, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	m.lastFilter = filter
	var out []*user.User
	for _, u := range m.users {
		if filter.Role == "" || u.Role() == filter.Role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, int64(len(out)), nil
}

// mockTxManager runs the unit of work inline and counts invocations.
type mockTxManager struct {
	calls int
}

func (m *mockTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

type mockNumberGenerator struct {
	numbers []string
	calls   int
}

func (m *mockNumberGenerator) Generate(context.Context) (string, error) {
	n := m.numbers[m.calls%len(m.numbers)]
	m.calls++
	return n, nil
}

type mockBlobStore struct {
	DeleteFunc func(ctx context.Context, path string) error
	deleted    []string
}

func (m *mockBlobStore) Store(context.Context, uint, io.Reader, int64, string, string) (message.StoredBlob, error) {
	return message.StoredBlob{}, nil
}

func (m *mockBlobStore) Delete(ctx context.Context, path string) error {
	m.deleted = append(m.deleted, path)
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, path)
	}
	return nil
}

func (m *mockBlobStore) Open(context.Context, string) (io.ReadCloser, message.BlobInfo, error) {
	return nil, message.BlobInfo{}, errors.NewNotFoundError("blob not found")
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

func strPtr(v string) *string {
	return &v
}

func newTestUsers(t *testing.T) *mockUserRepository {
	t.Helper()
	mk := func(id uint, first, last string, role authorization.UserRole) *user.User {
		u, err := user.ReconstructUser(id, first, "", last, first+"@example.com", role, nil)
		require.NoError(t, err)
		return u
	}
	return &mockUserRepository{users: map[uint]*user.User{
		ownerID:    mk(ownerID, "Lee", "Park", authorization.RoleUser),
		inchargeID: mk(inchargeID, "Ana", "Cruz", authorization.RoleIncharge),
		idleID:     mk(idleID, "Bo", "Lind", authorization.RoleIncharge),
		adminID:    mk(adminID, "Max", "Roe", authorization.RoleAdmin),
		strangerID: mk(strangerID, "Sam", "Hill", authorization.RoleUser),
	}}
}

func existingTicket(t *testing.T, status vo.TicketStatus, assignee *uint) *ticket.Ticket {
	t.Helper()
	now := time.Now().UTC()
	tk, err := ticket.ReconstructTicket(
		1, "TS-20240101-AB12",
		"Laptop will not boot", "Black screen after the update",
		vo.CategoryHardware, vo.PriorityMedium,
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

func ticketRepoWith(tk *ticket.Ticket) *mockTicketRepository {
	return &mockTicketRepository{
		GetByIDFunc: func(_ context.Context, id uint) (*ticket.Ticket, error) {
			if id == tk.ID() {
				return tk, nil
			}
			return nil, errors.NewNotFoundError("ticket not found")
		},
	}
}
