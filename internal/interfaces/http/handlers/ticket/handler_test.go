package ticket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpdesk-inc/helpdesk/internal/application/broadcast"
	ticketdto "github.com/helpdesk-inc/helpdesk/internal/application/ticket/dto"
	"github.com/helpdesk-inc/helpdesk/internal/application/ticket/usecases"
	"github.com/helpdesk-inc/helpdesk/internal/interfaces/http/handlers/testutil"
	"github.com/helpdesk-inc/helpdesk/internal/shared/authorization"
	"github.com/helpdesk-inc/helpdesk/internal/shared/errors"
	"github.com/helpdesk-inc/helpdesk/internal/shared/logger"
)

// =====================================================================
// Mock use cases
// =====================================================================

type mockCreateTicketUC struct {
	got    usecases.CreateTicketCommand
	result *usecases.CreateTicketResult
	err    error
}

func (m *mockCreateTicketUC) Execute(_ context.Context, cmd usecases.CreateTicketCommand) (*usecases.CreateTicketResult, error) {
	m.got = cmd
	return m.result, m.err
}

type mockUpdateTicketUC struct {
	got    usecases.UpdateTicketCommand
	result *usecases.UpdateTicketResult
	err    error
}

func (m *mockUpdateTicketUC) Execute(_ context.Context, cmd usecases.UpdateTicketCommand) (*usecases.UpdateTicketResult, error) {
	m.got = cmd
	return m.result, m.err
}

type mockAssignTicketUC struct {
	got    usecases.AssignTicketCommand
	result *usecases.AssignTicketResult
	err    error
}

func (m *mockAssignTicketUC) Execute(_ context.Context, cmd usecases.AssignTicketCommand) (*usecases.AssignTicketResult, error) {
	m.got = cmd
	return m.result, m.err
}

type mockDeleteTicketUC struct {
	result *usecases.DeleteTicketResult
	err    error
}

func (m *mockDeleteTicketUC) Execute(_ context.Context, _ usecases.DeleteTicketCommand) (*usecases.DeleteTicketResult, error) {
	return m.result, m.err
}

type mockGetTicketUC struct {
	result *ticketdto.TicketDTO
	err    error
}

func (m *mockGetTicketUC) Execute(_ context.Context, _ usecases.GetTicketQuery) (*ticketdto.TicketDTO, error) {
	return m.result, m.err
}

type mockListTicketsUC struct {
	got    usecases.ListTicketsQuery
	result *ticketdto.TicketListDTO
	err    error
}

func (m *mockListTicketsUC) Execute(_ context.Context, q usecases.ListTicketsQuery) (*ticketdto.TicketListDTO, error) {
	m.got = q
	return m.result, m.err
}

type mockStatsUC struct {
	result *ticketdto.TicketStatsDTO
}

func (m *mockStatsUC) Execute(_ context.Context, _ usecases.GetTicketStatsQuery) (*ticketdto.TicketStatsDTO, error) {
	return m.result, nil
}

type mockStaffUC struct {
	result []*ticketdto.UserSummaryDTO
	err    error
}

func (m *mockStaffUC) Execute(_ context.Context, _ usecases.ListStaffQuery) ([]*ticketdto.UserSummaryDTO, error) {
	return m.result, m.err
}

type mockUsersUC struct {
	result *ticketdto.UserListDTO
	err    error
	query  usecases.ListUsersQuery
}

func (m *mockUsersUC) Execute(_ context.Context, query usecases.ListUsersQuery) (*ticketdto.UserListDTO, error) {
	m.query = query
	return m.result, m.err
}

type mockRolesUC struct {
	result []*ticketdto.RoleDTO
	err    error
}

func (m *mockRolesUC) Execute(_ context.Context, _ usecases.ListRolesQuery) ([]*ticketdto.RoleDTO, error) {
	return m.result, m.err
}

// =====================================================================
// Test helper
// =====================================================================

func newTestHandler(uc UseCases) (*Handler, *testutil.RecordingPublisher) {
	pub := &testutil.RecordingPublisher{}
	return NewHandler(uc, pub, logger.NewNop()), pub
}

func sampleTicket() *ticketdto.TicketDTO {
	return &ticketdto.TicketDTO{ID: 7, TicketNumber: "TS-20260101-AB12", Title: "Printer jam", Status: "open", UserID: 10}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) testutil.APIResponse {
	t.Helper()
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	return resp
}

// =====================================================================
// CreateTicket
// =====================================================================

func TestHandler_CreateTicket_Success(t *testing.T) {
	ticketDTO := sampleTicket()
	mockUC := &mockCreateTicketUC{result: &usecases.CreateTicketResult{
		Ticket: ticketDTO,
		Events: []broadcast.Event{broadcast.TicketUpdated{Ticket: ticketDTO, SocketID: "1.2"}},
	}}
	h, pub := newTestHandler(UseCases{Create: mockUC})

	c, w := testutil.NewTestContext(http.MethodPost, "/api/tickets", CreateTicketRequest{
		Title:       "Printer jam",
		Description: "Paper stuck in tray 2",
		Category:    "hardware",
	})
	testutil.SetAuthContext(c, 10, authorization.RoleUser)
	testutil.SetSocketID(c, "1.2")

	h.CreateTicket(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decode(t, w)
	assert.True(t, resp.Success)
	assert.Contains(t, string(resp.Data), "TS-20260101-AB12")

	assert.Equal(t, uint(10), mockUC.got.Actor.ID)
	assert.Equal(t, "1.2", mockUC.got.SocketID)
	assert.Equal(t, "hardware", mockUC.got.Category)
	assert.Equal(t, []string{broadcast.EventTicketUpdated}, pub.Names())
}

func TestHandler_CreateTicket_ValidationFields(t *testing.T) {
	h, pub := newTestHandler(UseCases{})

	c, w := testutil.NewTestContext(http.MethodPost, "/api/tickets", map[string]string{
		"title":    "Printer jam",
		"category": "billing",
		"priority": "urgent",
	})
	testutil.SetAuthContext(c, 10, authorization.RoleUser)

	h.CreateTicket(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "validation_error", resp.Error.Type)
	assert.Contains(t, resp.Error.Fields, "description")
	assert.Contains(t, resp.Error.Fields, "category")
	assert.Contains(t, resp.Error.Fields, "priority")
	assert.Empty(t, pub.Events)
}

func TestHandler_CreateTicket_NotAuthenticated(t *testing.T) {
	h, _ := newTestHandler(UseCases{})

	c, w := testutil.NewTestContext(http.MethodPost, "/api/tickets", CreateTicketRequest{Title: "x", Description: "y", Category: "other"})

	h.CreateTicket(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// =====================================================================
// UpdateTicket
// =====================================================================

func TestHandler_UpdateTicket_AssignedToForms(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		wantAssignee *uint
		wantUnassign bool
	}{
		{"absent", `{"title":"New title"}`, nil, false},
		{"null unassigns", `{"assigned_to":null}`, nil, true},
		{"value assigns", `{"assigned_to":20}`, uintPtr(20), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUC := &mockUpdateTicketUC{result: &usecases.UpdateTicketResult{Ticket: sampleTicket(), Changed: true}}
			h, _ := newTestHandler(UseCases{Update: mockUC})

			c, w := testutil.NewTestContext(http.MethodPut, "/api/tickets/7", nil)
			c.Request = rawJSONRequest(http.MethodPut, "/api/tickets/7", tt.body)
			testutil.SetAuthContext(c, 30, authorization.RoleAdmin)
			testutil.SetURLParam(c, "id", "7")

			h.UpdateTicket(c)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, uint(7), mockUC.got.TicketID)
			assert.Equal(t, tt.wantAssignee, mockUC.got.AssignedTo)
			assert.Equal(t, tt.wantUnassign, mockUC.got.UnassignRequested)
		})
	}
}

func TestHandler_UpdateTicket_InvalidStatus(t *testing.T) {
	h, _ := newTestHandler(UseCases{Update: &mockUpdateTicketUC{}})

	c, w := testutil.NewTestContext(http.MethodPut, "/api/tickets/7", map[string]string{"status": "reopened"})
	testutil.SetAuthContext(c, 30, authorization.RoleAdmin)
	testutil.SetURLParam(c, "id", "7")

	h.UpdateTicket(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	assert.Contains(t, resp.Error.Fields, "status")
}

func TestHandler_UpdateTicket_NoChanges(t *testing.T) {
	mockUC := &mockUpdateTicketUC{result: &usecases.UpdateTicketResult{Ticket: sampleTicket()}}
	h, pub := newTestHandler(UseCases{Update: mockUC})

	c, w := testutil.NewTestContext(http.MethodPut, "/api/tickets/7", map[string]string{"title": "Printer jam"})
	testutil.SetAuthContext(c, 10, authorization.RoleUser)
	testutil.SetURLParam(c, "id", "7")

	h.UpdateTicket(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "No changes", decode(t, w).Message)
	assert.Empty(t, pub.Events)
}

func TestHandler_UpdateTicket_Forbidden(t *testing.T) {
	mockUC := &mockUpdateTicketUC{err: errors.NewForbiddenError("only staff may change priority, status or assignee")}
	h, _ := newTestHandler(UseCases{Update: mockUC})

	c, w := testutil.NewTestContext(http.MethodPut, "/api/tickets/7", map[string]string{"priority": "high"})
	testutil.SetAuthContext(c, 10, authorization.RoleUser)
	testutil.SetURLParam(c, "id", "7")

	h.UpdateTicket(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "forbidden", decode(t, w).Error.Type)
}

// =====================================================================
// AssignTicket / GetTicket / DeleteTicket
// =====================================================================

func TestHandler_AssignTicket(t *testing.T) {
	ticketDTO := sampleTicket()
	mockUC := &mockAssignTicketUC{result: &usecases.AssignTicketResult{
		Ticket: ticketDTO,
		Events: []broadcast.Event{broadcast.TicketUpdated{Ticket: ticketDTO}},
	}}
	h, pub := newTestHandler(UseCases{Assign: mockUC})

	c, w := testutil.NewTestContext(http.MethodPost, "/api/tickets/7/assign", AssignTicketRequest{AssignedTo: 20})
	testutil.SetAuthContext(c, 30, authorization.RoleAdmin)
	testutil.SetURLParam(c, "id", "7")

	h.AssignTicket(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint(20), mockUC.got.AssigneeID)
	assert.Equal(t, []string{broadcast.EventTicketUpdated}, pub.Names())
}

func TestHandler_AssignTicket_MissingAssignee(t *testing.T) {
	h, _ := newTestHandler(UseCases{Assign: &mockAssignTicketUC{}})

	c, w := testutil.NewTestContext(http.MethodPost, "/api/tickets/7/assign", map[string]any{})
	testutil.SetAuthContext(c, 30, authorization.RoleAdmin)
	testutil.SetURLParam(c, "id", "7")

	h.AssignTicket(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_GetTicket(t *testing.T) {
	tests := []struct {
		name       string
		param      string
		uc         *mockGetTicketUC
		wantStatus int
	}{
		{"found", "7", &mockGetTicketUC{result: sampleTicket()}, http.StatusOK},
		{"bad id", "abc", &mockGetTicketUC{}, http.StatusBadRequest},
		{"not found", "8", &mockGetTicketUC{err: errors.NewNotFoundError("ticket not found")}, http.StatusNotFound},
		{"access denied", "9", &mockGetTicketUC{err: errors.NewAccessDeniedError("you do not have access to this ticket")}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandler(UseCases{Get: tt.uc})
			c, w := testutil.NewTestContext(http.MethodGet, "/api/tickets/"+tt.param, nil)
			testutil.SetAuthContext(c, 10, authorization.RoleUser)
			testutil.SetURLParam(c, "id", tt.param)

			h.GetTicket(c)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestHandler_DeleteTicket(t *testing.T) {
	h, _ := newTestHandler(UseCases{Delete: &mockDeleteTicketUC{result: &usecases.DeleteTicketResult{TicketID: 7}}})

	c, _ := testutil.NewTestContext(http.MethodDelete, "/api/tickets/7", nil)
	testutil.SetAuthContext(c, 30, authorization.RoleAdmin)
	testutil.SetURLParam(c, "id", "7")

	h.DeleteTicket(c)

	assert.Equal(t, http.StatusNoContent, c.Writer.Status())
}

// =====================================================================
// ListTickets / Stats / Staff
// =====================================================================

func TestHandler_ListTickets(t *testing.T) {
	mockUC := &mockListTicketsUC{result: &ticketdto.TicketListDTO{
		Tickets:  []*ticketdto.TicketDTO{sampleTicket()},
		Total:    41,
		Page:     2,
		PageSize: 20,
	}}
	h, _ := newTestHandler(UseCases{List: mockUC})

	c, w := testutil.NewTestContext(http.MethodGet, "/api/tickets", nil)
	testutil.SetAuthContext(c, 20, authorization.RoleIncharge)
	testutil.SetQueryParams(c, map[string]string{
		"status": "pending", "page": "2", "sort_by": "priority", "sort_order": "ASC",
	})

	h.ListTickets(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pending", mockUC.got.Status)
	assert.Equal(t, 2, mockUC.got.Page)
	assert.Equal(t, "priority", mockUC.got.SortBy)
	assert.Equal(t, "asc", mockUC.got.SortOrder)
	assert.Contains(t, string(decode(t, w).Data), `"total_pages":3`)
}

func TestHandler_GetTicketStats(t *testing.T) {
	h, _ := newTestHandler(UseCases{Stats: &mockStatsUC{result: &ticketdto.TicketStatsDTO{Total: 3, Open: 2, Closed: 1}}})

	c, w := testutil.NewTestContext(http.MethodGet, "/api/tickets/stats", nil)
	testutil.SetAuthContext(c, 10, authorization.RoleUser)

	h.GetTicketStats(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(decode(t, w).Data), `"open":2`)
}

func TestHandler_ListStaff(t *testing.T) {
	h, _ := newTestHandler(UseCases{Staff: &mockStaffUC{result: []*ticketdto.UserSummaryDTO{{ID: 20, FullName: "Ana Cruz", Role: "incharge"}}}})

	c, w := testutil.NewTestContext(http.MethodGet, "/api/staff", nil)
	testutil.SetAuthContext(c, 30, authorization.RoleAdmin)

	h.ListStaff(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(decode(t, w).Data), "Ana Cruz")
}

func TestHandler_ListUsers(t *testing.T) {
	uc := &mockUsersUC{result: &ticketdto.UserListDTO{
		Users:    []*ticketdto.UserSummaryDTO{{ID: 20, FullName: "Ana Cruz", Role: "incharge"}},
		Total:    1,
		Page:     2,
		PageSize: 5,
	}}
	h, _ := newTestHandler(UseCases{Users: uc})

	c, w := testutil.NewTestContext(http.MethodGet, "/api/users?role=incharge&search=ana&page=2&page_size=5", nil)
	testutil.SetAuthContext(c, 30, authorization.RoleAdmin)

	h.ListUsers(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "incharge", uc.query.Role)
	assert.Equal(t, "ana", uc.query.Search)
	assert.Equal(t, 2, uc.query.Page)
	assert.Equal(t, 5, uc.query.PageSize)
	assert.Equal(t, uint(30), uc.query.Actor.ID)
	data := string(decode(t, w).Data)
	assert.Contains(t, data, "Ana Cruz")
	assert.Contains(t, data, `"total":1`)
}

func TestHandler_ListUsers_Forbidden(t *testing.T) {
	h, _ := newTestHandler(UseCases{Users: &mockUsersUC{err: errors.NewAccessDeniedError("access denied")}})

	c, w := testutil.NewTestContext(http.MethodGet, "/api/users", nil)
	testutil.SetAuthContext(c, 20, authorization.RoleIncharge)

	h.ListUsers(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHandler_ListRoles(t *testing.T) {
	h, _ := newTestHandler(UseCases{Roles: &mockRolesUC{result: []*ticketdto.RoleDTO{{Name: "admin", DisplayName: "Admin", Staff: true}}}})

	c, w := testutil.NewTestContext(http.MethodGet, "/api/roles", nil)
	testutil.SetAuthContext(c, 30, authorization.RoleAdmin)

	h.ListRoles(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(decode(t, w).Data), `"display_name":"Admin"`)
}
