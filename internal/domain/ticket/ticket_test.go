package ticket

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/helpdesk-inc/helpdesk/internal/domain/ticket/valueobjects"
	"github.com/helpdesk-inc/helpdesk/internal/shared/authorization"
)

const (
	ownerID    uint = 10
	inchargeID uint = 20
	otherStaff uint = 21
	adminID    uint = 30
	strangerID uint = 40
)

var (
	owner    = authorization.Principal{ID: ownerID, Role: authorization.RoleUser}
	incharge = authorization.Principal{ID: inchargeID, Role: authorization.RoleIncharge}
	idle     = authorization.Principal{ID: otherStaff, Role: authorization.RoleIncharge}
	admin    = authorization.Principal{ID: adminID, Role: authorization.RoleAdmin}
	stranger = authorization.Principal{ID: strangerID, Role: authorization.RoleUser}
)

func reconstructedTicket(t *testing.T, status vo.TicketStatus, assignee *uint) *Ticket {
	t.Helper()
	now := time.Now().UTC()
	tk, err := ReconstructTicket(
		1, "TS-20240101-AB12",
		"Printer offline", "Floor 3 printer shows offline",
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

func uintPtr(v uint) *uint {
	return &v
}

func TestNewTicket(t *testing.T) {
	tk, err := NewTicket("VPN drops", "Disconnects every 10 minutes", vo.CategoryNetwork, "", ownerID)
	require.NoError(t, err)

	assert.Equal(t, vo.StatusOpen, tk.Status())
	assert.Equal(t, vo.PriorityMedium, tk.Priority())
	assert.Equal(t, ownerID, tk.OwnerID())
	assert.Nil(t, tk.AssigneeID())
	assert.Equal(t, 1, tk.Version())
}

func TestNewTicket_Validation(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		desc     string
		category vo.Category
		priority vo.Priority
		owner    uint
	}{
		{"empty title", "", "d", vo.CategoryOther, vo.PriorityLow, 1},
		{"title too long", strings.Repeat("x", MaxTitleLength+1), "d", vo.CategoryOther, vo.PriorityLow, 1},
		{"empty description", "t", "", vo.CategoryOther, vo.PriorityLow, 1},
		{"bad category", "t", "d", vo.Category("billing"), vo.PriorityLow, 1},
		{"bad priority", "t", "d", vo.CategoryOther, vo.Priority("urgent"), 1},
		{"missing owner", "t", "d", vo.CategoryOther, vo.PriorityLow, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTicket(tt.title, tt.desc, tt.category, tt.priority, tt.owner)
			assert.Error(t, err)
		})
	}

	_, err := NewTicket(strings.Repeat("x", MaxTitleLength), "d", vo.CategoryOther, vo.PriorityLow, 1)
	assert.NoError(t, err)
}

func TestChangeStatus_StaffOverrideAnyDirection(t *testing.T) {
	tk := reconstructedTicket(t, vo.StatusClosed, nil)

	change, err := tk.ChangeStatus(vo.StatusOpen)
	require.NoError(t, err)
	assert.True(t, change.Changed())
	assert.Equal(t, "Status changed from closed to open", change.Note())
	assert.Equal(t, vo.StatusOpen, tk.Status())
}

func TestChangeStatus_NoopKeepsVersion(t *testing.T) {
	tk := reconstructedTicket(t, vo.StatusPending, nil)

	change, err := tk.ChangeStatus(vo.StatusPending)
	require.NoError(t, err)
	assert.False(t, change.Changed())
	assert.Equal(t, 1, tk.Version())

	_, err = tk.ChangeStatus(vo.TicketStatus("reopened"))
	assert.Error(t, err)
}

func TestChangeStatus_TimestampsMostRecentSet(t *testing.T) {
	tk := reconstructedTicket(t, vo.StatusInProgress, nil)
	assert.Nil(t, tk.ResolvedAt())
	assert.Nil(t, tk.ClosedAt())

	_, err := tk.ChangeStatus(vo.StatusResolved)
	require.NoError(t, err)
	firstResolved := tk.ResolvedAt()
	require.NotNil(t, firstResolved)

	_, err = tk.ChangeStatus(vo.StatusInProgress)
	require.NoError(t, err)
	require.NotNil(t, tk.ResolvedAt(), "leaving resolved must not clear resolved_at")

	time.Sleep(2 * time.Millisecond)
	_, err = tk.ChangeStatus(vo.StatusResolved)
	require.NoError(t, err)
	assert.True(t, tk.ResolvedAt().After(*firstResolved), "re-entry restamps resolved_at")

	_, err = tk.ChangeStatus(vo.StatusClosed)
	require.NoError(t, err)
	require.NotNil(t, tk.ClosedAt())
	require.NotNil(t, tk.ResolvedAt())
}

func TestAssignTo(t *testing.T) {
	tk := reconstructedTicket(t, vo.StatusOpen, nil)

	assert.True(t, tk.AssignTo(uintPtr(inchargeID)))
	assert.True(t, tk.IsAssignedTo(inchargeID))
	assert.False(t, tk.AssignTo(uintPtr(inchargeID)), "same assignee is a no-op")
	assert.True(t, tk.AssignTo(nil))
	assert.Nil(t, tk.AssigneeID())
	assert.False(t, tk.AssignTo(nil))
}

func TestAssignmentNote(t *testing.T) {
	assert.Equal(t, "Ticket assigned to Jane Q Doe", AssignmentNote("Jane Q Doe"))
	assert.Equal(t, "Unassigned", AssignmentNote(""))
}

func TestUpdateDetails(t *testing.T) {
	tk := reconstructedTicket(t, vo.StatusOpen, nil)
	title := "Printer still offline"
	category := vo.CategoryNetwork

	changed, err := tk.UpdateDetails(owner, &title, nil, &category)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, title, tk.Title())
	assert.Equal(t, vo.CategoryNetwork, tk.Category())

	changed, err = tk.UpdateDetails(owner, &title, nil, nil)
	require.NoError(t, err)
	assert.False(t, changed)

	empty := ""
	_, err = tk.UpdateDetails(owner, nil, &empty, nil)
	assert.Error(t, err)

	closed := reconstructedTicket(t, vo.StatusClosed, nil)
	_, err = closed.UpdateDetails(owner, &title, nil, nil)
	assert.ErrorIs(t, err, ErrTicketClosed)

	changed, err = closed.UpdateDetails(admin, &title, nil, nil)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, title, closed.Title())
}

func TestAcceptMessageFrom(t *testing.T) {
	tests := []struct {
		name       string
		status     vo.TicketStatus
		author     authorization.Principal
		wantErr    error
		wantStatus vo.TicketStatus
		reopened   bool
	}{
		{"staff on open advances", vo.StatusOpen, incharge, nil, vo.StatusInProgress, false},
		{"admin on open advances", vo.StatusOpen, admin, nil, vo.StatusInProgress, false},
		{"owner on open stays", vo.StatusOpen, owner, nil, vo.StatusOpen, false},
		{"staff on in_progress stays", vo.StatusInProgress, incharge, nil, vo.StatusInProgress, false},
		{"owner on resolved reopens", vo.StatusResolved, owner, nil, vo.StatusInProgress, true},
		{"owner on pending reopens", vo.StatusPending, owner, nil, vo.StatusInProgress, true},
		{"staff on pending stays", vo.StatusPending, incharge, nil, vo.StatusPending, false},
		{"staff on resolved rejected", vo.StatusResolved, incharge, ErrTicketResolved, vo.StatusResolved, false},
		{"owner on closed rejected", vo.StatusClosed, owner, ErrTicketClosed, vo.StatusClosed, false},
		{"admin on closed rejected", vo.StatusClosed, admin, ErrTicketClosed, vo.StatusClosed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tk := reconstructedTicket(t, tt.status, uintPtr(inchargeID))

			activity, err := tk.AcceptMessageFrom(tt.author)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantStatus, tk.Status())
			assert.Equal(t, tt.reopened, activity.ReopenedByOwner)
			assert.Equal(t, tt.status != tt.wantStatus, activity.Changed())
		})
	}
}

func TestAcceptMessageFrom_SecondSenderSeesUpdatedStatus(t *testing.T) {
	tk := reconstructedTicket(t, vo.StatusResolved, nil)

	first, err := tk.AcceptMessageFrom(owner)
	require.NoError(t, err)
	second, err := tk.AcceptMessageFrom(owner)
	require.NoError(t, err)

	assert.True(t, first.ReopenedByOwner)
	assert.False(t, second.ReopenedByOwner)
	assert.False(t, second.Changed())
}

func TestCheckMessageAllowed_DoesNotMutate(t *testing.T) {
	tk := reconstructedTicket(t, vo.StatusResolved, uintPtr(inchargeID))
	version := tk.Version()

	require.NoError(t, tk.CheckMessageAllowed(owner))
	assert.ErrorIs(t, tk.CheckMessageAllowed(incharge), ErrTicketResolved)
	assert.Equal(t, vo.StatusResolved, tk.Status())
	assert.Equal(t, version, tk.Version())
}

func TestAccessRules(t *testing.T) {
	tk := reconstructedTicket(t, vo.StatusOpen, uintPtr(inchargeID))

	tests := []struct {
		name   string
		p      authorization.Principal
		strict bool
		broad  bool
	}{
		{"admin", admin, true, true},
		{"assigned incharge", incharge, true, true},
		{"unassigned incharge", idle, false, true},
		{"owner", owner, true, true},
		{"stranger", stranger, false, false},
		{"anonymous", authorization.Principal{}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.strict, CanAccessTicket(tt.p, tk))
			assert.Equal(t, tt.broad, CanAccessTicketBroad(tt.p, tk))
		})
	}
}

func TestRandomNumberGenerator_Format(t *testing.T) {
	gen := NewRandomNumberGenerator(nil)
	gen.now = func() time.Time { return time.Date(2024, 5, 17, 12, 0, 0, 0, time.UTC) }

	number, err := gen.Generate(context.Background())
	require.NoError(t, err)
	assert.Regexp(t, `^TS-20240517-[0-9A-Z]{4}$`, number)
}

func TestRandomNumberGenerator_NoCollisions(t *testing.T) {
	seen := make(map[string]bool)
	gen := NewRandomNumberGenerator(func(_ context.Context, number string) (bool, error) {
		return seen[number], nil
	})
	fixed := time.Now().UTC()
	gen.now = func() time.Time { return fixed }

	for i := 0; i < 1000; i++ {
		number, err := gen.Generate(context.Background())
		require.NoError(t, err)
		require.False(t, seen[number], "duplicate number %s", number)
		seen[number] = true
	}
}

func TestRandomNumberGenerator_Exhausted(t *testing.T) {
	calls := 0
	gen := NewRandomNumberGenerator(func(context.Context, string) (bool, error) {
		calls++
		return true, nil
	})

	_, err := gen.Generate(context.Background())
	assert.ErrorIs(t, err, ErrNumberExhausted)
	assert.Equal(t, MaxNumberAttempts, calls)
}
