package usecases

import (
	"bytes"
	"context"
	"fmt"
	"io"
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

// mockTicketRepository implements only what conversation use cases touch.
type mockTicketRepository struct {
	ticket.TicketRepository

	GetByIDFunc func(ctx context.Context, ticketID uint) (*ticket.Ticket, error)
	UpdateFunc  func(ctx context.Context, t *ticket.Ticket) error

	locks   int
	updated []*ticket.Ticket
}

func (m *mockTicketRepository) GetByID(ctx context.Context, ticketID uint) (*ticket.Ticket, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, ticketID)
	}
	return nil, errors.NewNotFoundError("ticket not found")
}

func (m *mockTicketRepository) GetByIDForUpdate(ctx context.Context, ticketID uint) (*ticket.Ticket, error) {
	m.locks++
	return m.GetByID(ctx, ticketID)
}

func (m *mockTicketRepository) Update(ctx context.Context, t *ticket.Ticket) error {
	if m.UpdateFunc != nil {
		if err := m.UpdateFunc(ctx, t); err != nil {
			return err
		}
	}
	m.updated = append(m.updated, t)
	return nil
}

// mockMessageRepository keeps messages in insertion order.
type mockMessageRepository struct {
	SaveFunc        func(ctx context.Context, m *message.Message) error
	MarkReadFunc    func(ctx context.Context, ticketID, readerID uint) (int64, error)
	CountUnreadFunc func(ctx context.Context, readerID uint, scope message.UnreadScope) (int64, error)

	saved   []*message.Message
	updated []*message.Message
	nextID  uint
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

func (m *mockMessageRepository) Update(_ context.Context, msg *message.Message) error {
	m.updated = append(m.updated, msg)
	return nil
}

func (m *mockMessageRepository) GetByID(_ context.Context, id uint) (*message.Message, error) {
	for _, msg := range m.saved {
		if msg.ID() == id && !msg.IsDeleted() {
			return msg, nil
		}
	}
	return nil, errors.NewNotFoundError("message not found")
}

func (m *mockMessageRepository) ListByTicket(_ context.Context, ticketID uint) ([]*message.Message, error) {
	var out []*message.Message
	for _, msg := range m.saved {
		if msg.TicketID() == ticketID && !msg.IsDeleted() {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *mockMessageRepository) MarkRead(ctx context.Context, ticketID, readerID uint) (int64, error) {
	if m.MarkReadFunc != nil {
		return m.MarkReadFunc(ctx, ticketID, readerID)
	}
	return 0, nil
}

func (m *mockMessageRepository) CountUnread(ctx context.Context, readerID uint, scope message.UnreadScope) (int64, error) {
	if m.CountUnreadFunc != nil {
		return m.CountUnreadFunc(ctx, readerID, scope)
	}
	return 0, nil
}

func (m *mockMessageRepository) StoredPathsByTicket(context.Context, uint) ([]string, error) {
	return nil, nil
}

func (m *mockMessageRepository) DeleteByTicket(context.Context, uint) error {
	return nil
}

// seed stores a message as if it had been written earlier.
func (m *mockMessageRepository) seed(t *testing.T, authorID uint, content string, system bool, attachments ...message.Attachment) *message.Message {
	t.Helper()
	m.nextID++
	now := time.Now().UTC()
	msg, err := message.ReconstructMessage(m.nextID, 1, authorID, content, attachments, system, nil, nil, nil, nil, now, now)
	require.NoError(t, err)
	m.saved = append(m.saved, msg)
	return msg
}

func (m *mockMessageRepository) contents() []string {
	out := make([]string, 0, len(m.saved))
	for _, msg := range m.saved {
		out = append(out, msg.Content())
	}
	return out
}

type mockUserRepository struct {
	user.Repository
	users map[uint]*user.User
}

func (m *mockUserRepository) GetByIDs(_ context.Context, ids []uint) ([]*user.User, error) {
	var out []*user.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

type mockTxManager struct {
	calls int
}

func (m *mockTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

// mockBlobStore keeps blobs in memory under keys shaped like the real store's.
type mockBlobStore struct {
	StoreFunc func(name string) error

	blobs   map[string][]byte
	deleted []string
}

func newMockBlobStore() *mockBlobStore {
	return &mockBlobStore{blobs: map[string][]byte{}}
}

func (m *mockBlobStore) Store(_ context.Context, ticketID uint, r io.Reader, _ int64, name, _ string) (message.StoredBlob, error) {
	if m.StoreFunc != nil {
		if err := m.StoreFunc(name); err != nil {
			return message.StoredBlob{}, err
		}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return message.StoredBlob{}, err
	}
	path := message.BlobKey(ticketID, fmt.Sprintf("blob%d", len(m.blobs)+1), ".bin")
	m.blobs[path] = data
	return message.StoredBlob{Path: path, URL: "https://cdn.example.com/" + path}, nil
}

func (m *mockBlobStore) Delete(_ context.Context, path string) error {
	m.deleted = append(m.deleted, path)
	delete(m.blobs, path)
	return nil
}

func (m *mockBlobStore) Open(_ context.Context, path string) (io.ReadCloser, message.BlobInfo, error) {
	data, ok := m.blobs[path]
	if !ok {
		return nil, message.BlobInfo{}, errors.NewNotFoundError("attachment not found")
	}
	return io.NopCloser(bytes.NewReader(data)), message.BlobInfo{Size: int64(len(data)), ContentType: "application/octet-stream"}, nil
}

type stubRenderer struct{}

func (stubRenderer) Render(s string) (string, error) {
	return "<p>" + s + "</p>", nil
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
