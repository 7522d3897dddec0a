// Package message provides HTTP handlers for ticket conversations and attachments.
package message

import (
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/helpdesk-inc/helpdesk/internal/application/broadcast"
	"github.com/helpdesk-inc/helpdesk/internal/application/message/usecases"
	"github.com/helpdesk-inc/helpdesk/internal/interfaces/http/handlers/common"
	"github.com/helpdesk-inc/helpdesk/internal/shared/authorization"
	"github.com/helpdesk-inc/helpdesk/internal/shared/errors"
	"github.com/helpdesk-inc/helpdesk/internal/shared/logger"
	"github.com/helpdesk-inc/helpdesk/internal/shared/utils"
)

type UseCases struct {
	Send        usecases.SendMessageExecutor
	Edit        usecases.EditMessageExecutor
	Delete      usecases.DeleteMessageExecutor
	List        usecases.ListMessagesExecutor
	MarkRead    usecases.MarkReadExecutor
	UnreadCount usecases.UnreadCountExecutor
	Download    usecases.DownloadAttachmentExecutor
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

// ListMessages returns a ticket's conversation in posting order
// @Summary List messages
// @Tags Messages
// @Produce json
// @Security Bearer
// @Param id path int true "Ticket ID"
// @Success 200 {object} utils.APIResponse{data=[]dto.MessageDTO}
// @Failure 403 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /tickets/{id}/messages [get]
func (h *Handler) ListMessages(c *gin.Context) {
	actor, ticketID, ok := principalAndTicket(c)
	if !ok {
		return
	}

	result, err := h.uc.List.Execute(c.Request.Context(), usecases.ListMessagesQuery{TicketID: ticketID, Actor: actor})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// SendMessage posts a message with optional uploads and links
// @Summary Send message
// @Tags Messages
// @Accept json,mpfd
// @Produce json
// @Security Bearer
// @Param id path int true "Ticket ID"
// @Param X-Socket-ID header string false "Realtime socket to exclude from the echo"
// @Param content formData string false "Message text"
// @Param files formData file false "Attachment, repeatable"
// @Param urls formData string false "Link attachment, repeatable"
// @Success 201 {object} utils.APIResponse{data=dto.MessageDTO}
// @Failure 400 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Failure 429 {object} utils.APIResponse
// @Router /tickets/{id}/messages [post]
func (h *Handler) SendMessage(c *gin.Context) {
	actor, ticketID, ok := principalAndTicket(c)
	if !ok {
		return
	}

	in, err := parseSendRequest(c)
	if err != nil {
		h.logger.Warnw("invalid request body for send message", "ticket_id", ticketID, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	defer in.close()

	result, err := h.uc.Send.Execute(c.Request.Context(), usecases.SendMessageCommand{
		TicketID: ticketID,
		Content:  in.req.Content,
		Files:    in.files,
		URLs:     in.req.URLs,
		Actor:    actor,
		SocketID: common.SocketID(c),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	h.publisher.Publish(c.Request.Context(), result.Events...)

	utils.CreatedResponse(c, result.Message, "Message sent successfully")
}

// UpdateMessage replaces the text of the caller's own message
// @Summary Edit message
// @Tags Messages
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "Ticket ID"
// @Param messageId path int true "Message ID"
// @Param X-Socket-ID header string false "Realtime socket to exclude from the echo"
// @Param request body UpdateMessageRequest true "New content"
// @Success 200 {object} utils.APIResponse{data=dto.MessageDTO}
// @Failure 403 {object} utils.APIResponse
// @Router /tickets/{id}/messages/{messageId} [put]
func (h *Handler) UpdateMessage(c *gin.Context) {
	actor, ticketID, messageID, ok := principalTicketAndMessage(c)
	if !ok {
		return
	}

	var req UpdateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, utils.ValidationError(err))
		return
	}

	result, err := h.uc.Edit.Execute(c.Request.Context(), usecases.EditMessageCommand{
		TicketID:  ticketID,
		MessageID: messageID,
		Content:   req.Content,
		Actor:     actor,
		SocketID:  common.SocketID(c),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	h.publisher.Publish(c.Request.Context(), result.Events...)

	utils.SuccessResponse(c, http.StatusOK, "Message updated successfully", result.Message)
}

// DeleteMessage removes a message
// @Summary Delete message
// @Tags Messages
// @Security Bearer
// @Param id path int true "Ticket ID"
// @Param messageId path int true "Message ID"
// @Param X-Socket-ID header string false "Realtime socket to exclude from the echo"
// @Success 204
// @Failure 403 {object} utils.APIResponse
// @Router /tickets/{id}/messages/{messageId} [delete]
func (h *Handler) DeleteMessage(c *gin.Context) {
	actor, ticketID, messageID, ok := principalTicketAndMessage(c)
	if !ok {
		return
	}

	result, err := h.uc.Delete.Execute(c.Request.Context(), usecases.DeleteMessageCommand{
		TicketID:  ticketID,
		MessageID: messageID,
		Actor:     actor,
		SocketID:  common.SocketID(c),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	h.publisher.Publish(c.Request.Context(), result.Events...)

	utils.NoContentResponse(c)
}

// MarkRead marks the other side's messages on a ticket as read
// @Summary Mark messages read
// @Tags Messages
// @Produce json
// @Security Bearer
// @Param id path int true "Ticket ID"
// @Success 200 {object} utils.APIResponse{data=dto.MarkReadDTO}
// @Router /tickets/{id}/messages/read [post]
func (h *Handler) MarkRead(c *gin.Context) {
	actor, ticketID, ok := principalAndTicket(c)
	if !ok {
		return
	}

	result, err := h.uc.MarkRead.Execute(c.Request.Context(), usecases.MarkReadCommand{TicketID: ticketID, Actor: actor})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// UnreadCount counts unread messages across the caller's tickets
// @Summary Unread message count
// @Tags Messages
// @Produce json
// @Security Bearer
// @Success 200 {object} utils.APIResponse{data=dto.UnreadCountDTO}
// @Router /messages/unread-count [get]
func (h *Handler) UnreadCount(c *gin.Context) {
	actor, err := common.Principal(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.uc.UnreadCount.Execute(c.Request.Context(), usecases.UnreadCountQuery{Actor: actor})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// DownloadAttachment streams a stored attachment
// @Summary Download attachment
// @Tags Messages
// @Produce octet-stream
// @Security Bearer
// @Param path path string true "Attachment path"
// @Success 200 {file} file
// @Failure 403 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /attachments/{path} [get]
func (h *Handler) DownloadAttachment(c *gin.Context) {
	actor, err := common.Principal(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	blobPath := strings.TrimPrefix(c.Param("path"), "/")
	if blobPath == "" {
		utils.ErrorResponseWithError(c, errors.NewNotFoundError("attachment not found"))
		return
	}

	download, err := h.uc.Download.Execute(c.Request.Context(), usecases.DownloadAttachmentQuery{Path: blobPath, Actor: actor})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	defer download.Content.Close()

	contentType := download.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, download.Size, contentType, download.Content, map[string]string{
		"Content-Disposition": mime.FormatMediaType("attachment", map[string]string{"filename": download.Name}),
	})
}

func principalAndTicket(c *gin.Context) (actor authorization.Principal, ticketID uint, ok bool) {
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

func principalTicketAndMessage(c *gin.Context) (actor authorization.Principal, ticketID, messageID uint, ok bool) {
	actor, ticketID, ok = principalAndTicket(c)
	if !ok {
		return actor, 0, 0, false
	}
	messageID, err := common.ParseIDParam(c, "messageId", "message")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return actor, 0, 0, false
	}
	return actor, ticketID, messageID, true
}
