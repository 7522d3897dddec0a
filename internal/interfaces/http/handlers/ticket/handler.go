// Package ticket provides HTTP handlers for the ticket lifecycle.
package ticket

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/helpdesk-inc/helpdesk/internal/application/broadcast"
	"github.com/helpdesk-inc/helpdesk/internal/application/ticket/usecases"
	"github.com/helpdesk-inc/helpdesk/internal/interfaces/http/handlers/common"
	"github.com/helpdesk-inc/helpdesk/internal/shared/authorization"
	"github.com/helpdesk-inc/helpdesk/internal/shared/logger"
	"github.com/helpdesk-inc/helpdesk/internal/shared/utils"
)

// UseCases groups the ticket executors the handler dispatches to.
type UseCases struct {
	Create usecases.CreateTicketExecutor
	Update usecases.UpdateTicketExecutor
	Assign usecases.AssignTicketExecutor
	Delete usecases.DeleteTicketExecutor
	Get    usecases.GetTicketExecutor
	List   usecases.ListTicketsExecutor
	Stats  usecases.GetTicketStatsExecutor
	Staff  usecases.ListStaffExecutor
	Users  usecases.ListUsersExecutor
	Roles  usecases.ListRolesExecutor
}

type Handler struct {
	uc        UseCases
	publisher broadcast.EventPublisher
	logger    logger.Interface
}

func NewHandler(uc UseCases, publisher broadcast.EventPublisher, logger logger.Interface) *Handler {
	return &Handler{
		uc:        uc,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateTicket opens a ticket for the caller
// @Summary Create ticket
// @Tags Tickets
// @Accept json
// @Produce json
// @Security Bearer
// @Param X-Socket-ID header string false "Realtime socket to exclude from the echo"
// @Param request body CreateTicketRequest true "Ticket"
// @Success 201 {object} utils.APIResponse{data=dto.TicketDTO}
// @Failure 400 {object} utils.APIResponse
// @Router /tickets [post]
func (h *Handler) CreateTicket(c *gin.Context) {
	actor, err := common.Principal(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for create ticket", "error", err)
		utils.ErrorResponseWithError(c, utils.ValidationError(err))
		return
	}

	result, err := h.uc.Create.Execute(c.Request.Context(), req.ToCommand(actor, common.SocketID(c)))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	h.publisher.Publish(c.Request.Context(), result.Events...)

	utils.CreatedResponse(c, result.Ticket, "Ticket created successfully")
}

// ListTickets lists the tickets visible to the caller
// @Summary List tickets
// @Tags Tickets
// @Produce json
// @Security Bearer
// @Param status query string false "Status filter"
// @Param priority query string false "Priority filter"
// @Param category query string false "Category filter"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Param sort_by query string false "created_at, updated_at, priority or status"
// @Param sort_order query string false "asc or desc"
// @Success 200 {object} utils.APIResponse{data=utils.ListResponse}
// @Router /tickets [get]
func (h *Handler) ListTickets(c *gin.Context) {
	actor, err := common.Principal(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	page := utils.ParsePagination(c)
	sort := utils.ParseSort(c)
	result, err := h.uc.List.Execute(c.Request.Context(), usecases.ListTicketsQuery{
		Status:    c.Query("status"),
		Priority:  c.Query("priority"),
		Category:  c.Query("category"),
		Page:      page.Page,
		PageSize:  page.PageSize,
		SortBy:    sort.By,
		SortOrder: sort.Order,
		Actor:     actor,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.ListSuccessResponse(c, result.Tickets, result.Total, result.Page, result.PageSize)
}

// GetTicketStats returns per-status counts for the caller's scope
// @Summary Ticket statistics
// @Tags Tickets
// @Produce json
// @Security Bearer
// @Success 200 {object} utils.APIResponse{data=dto.TicketStatsDTO}
// @Router /tickets/stats [get]
func (h *Handler) GetTicketStats(c *gin.Context) {
	actor, err := common.Principal(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.uc.Stats.Execute(c.Request.Context(), usecases.GetTicketStatsQuery{Actor: actor})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// GetTicket returns one ticket
// @Summary Get ticket
// @Tags Tickets
// @Produce json
// @Security Bearer
// @Param id path int true "Ticket ID"
// @Success 200 {object} utils.APIResponse{data=dto.TicketDTO}
// @Failure 403 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /tickets/{id} [get]
func (h *Handler) GetTicket(c *gin.Context) {
	actor, ticketID, ok := h.principalAndTicket(c)
	if !ok {
		return
	}

	result, err := h.uc.Get.Execute(c.Request.Context(), usecases.GetTicketQuery{TicketID: ticketID, Actor: actor})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// UpdateTicket applies a partial update
// @Summary Update ticket
// @Description Owners may edit title, description and category. Staff may also change priority, status and assignee.
// @Tags Tickets
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "Ticket ID"
// @Param X-Socket-ID header string false "Realtime socket to exclude from the echo"
// @Param request body UpdateTicketRequest true "Fields to change"
// @Success 200 {object} utils.APIResponse{data=dto.TicketDTO}
// @Failure 400 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Router /tickets/{id} [put]
func (h *Handler) UpdateTicket(c *gin.Context) {
	actor, ticketID, ok := h.principalAndTicket(c)
	if !ok {
		return
	}

	var req UpdateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for update ticket", "ticket_id", ticketID, "error", err)
		utils.ErrorResponseWithError(c, utils.ValidationError(err))
		return
	}

	result, err := h.uc.Update.Execute(c.Request.Context(), req.ToCommand(ticketID, actor, common.SocketID(c)))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	h.publisher.Publish(c.Request.Context(), result.Events...)

	message := "Ticket updated successfully"
	if !result.Changed {
		message = "No changes"
	}
	utils.SuccessResponse(c, http.StatusOK, message, result.Ticket)
}

// AssignTicket hands the ticket to a staff member
// @Summary Assign ticket
// @Tags Tickets
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "Ticket ID"
// @Param X-Socket-ID header string false "Realtime socket to exclude from the echo"
// @Param request body AssignTicketRequest true "Assignee"
// @Success 200 {object} utils.APIResponse{data=dto.TicketDTO}
// @Failure 403 {object} utils.APIResponse
// @Router /tickets/{id}/assign [post]
func (h *Handler) AssignTicket(c *gin.Context) {
	actor, ticketID, ok := h.principalAndTicket(c)
	if !ok {
		return
	}

	var req AssignTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, utils.ValidationError(err))
		return
	}

	result, err := h.uc.Assign.Execute(c.Request.Context(), usecases.AssignTicketCommand{
		TicketID:   ticketID,
		AssigneeID: req.AssignedTo,
		Actor:      actor,
		SocketID:   common.SocketID(c),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	h.publisher.Publish(c.Request.Context(), result.Events...)

	utils.SuccessResponse(c, http.StatusOK, "Ticket assigned successfully", result.Ticket)
}

// DeleteTicket removes a ticket with its conversation
// @Summary Delete ticket
// @Tags Tickets
// @Security Bearer
// @Param id path int true "Ticket ID"
// @Success 204
// @Failure 403 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /tickets/{id} [delete]
func (h *Handler) DeleteTicket(c *gin.Context) {
	actor, ticketID, ok := h.principalAndTicket(c)
	if !ok {
		return
	}

	if _, err := h.uc.Delete.Execute(c.Request.Context(), usecases.DeleteTicketCommand{TicketID: ticketID, Actor: actor}); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.NoContentResponse(c)
}

// ListStaff returns the users tickets can be assigned to
// @Summary List staff
// @Tags Tickets
// @Produce json
// @Security Bearer
// @Success 200 {object} utils.APIResponse{data=[]dto.UserSummaryDTO}
// @Router /staff [get]
func (h *Handler) ListStaff(c *gin.Context) {
	actor, err := common.Principal(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.uc.Staff.Execute(c.Request.Context(), usecases.ListStaffQuery{Actor: actor})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// ListUsers pages through the user directory
// @Summary List users
// @Tags Users
// @Produce json
// @Security Bearer
// @Param role query string false "admin, incharge or user"
// @Param search query string false "Matches first name, last name or email"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} utils.APIResponse{data=utils.ListResponse}
// @Failure 403 {object} utils.APIResponse
// @Router /users [get]
func (h *Handler) ListUsers(c *gin.Context) {
	actor, err := common.Principal(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	page := utils.ParsePagination(c)
	result, err := h.uc.Users.Execute(c.Request.Context(), usecases.ListUsersQuery{
		Role:     c.Query("role"),
		Search:   c.Query("search"),
		Page:     page.Page,
		PageSize: page.PageSize,
		Actor:    actor,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.ListSuccessResponse(c, result.Users, result.Total, result.Page, result.PageSize)
}

// ListRoles describes the available roles
// @Summary List roles
// @Tags Users
// @Produce json
// @Security Bearer
// @Success 200 {object} utils.APIResponse{data=[]dto.RoleDTO}
// @Router /roles [get]
func (h *Handler) ListRoles(c *gin.Context) {
	actor, err := common.Principal(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.uc.Roles.Execute(c.Request.Context(), usecases.ListRolesQuery{Actor: actor})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

func (h *Handler) principalAndTicket(c *gin.Context) (actor authorization.Principal, ticketID uint, ok bool) {
	actor, err := common.Principal(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return actor, 0, false
	}
	ticketID, err = common.ParseIDParam(c, "id", "ticket")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return actor, 0, false
	}
	return actor, ticketID, true
}
