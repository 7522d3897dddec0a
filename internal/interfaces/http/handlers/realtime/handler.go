// Package realtime provides the HTTP entry points of the realtime channel layer.
package realtime

import (
	"context"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/helpdesk-inc/helpdesk/internal/application/broadcast"
	"github.com/helpdesk-inc/helpdesk/internal/interfaces/http/handlers/common"
	"github.com/helpdesk-inc/helpdesk/internal/shared/authorization"
	"github.com/helpdesk-inc/helpdesk/internal/shared/errors"
	"github.com/helpdesk-inc/helpdesk/internal/shared/logger"
	"github.com/helpdesk-inc/helpdesk/internal/shared/utils"
)

// ChannelAuthorizer signs subscription acknowledgements.
type ChannelAuthorizer interface {
	Authorize(ctx context.Context, p authorization.Principal, channelName, socketID string) (*broadcast.AuthResponse, error)
}

// SocketServer runs one upgraded connection until it closes.
type SocketServer interface {
	Serve(ctx context.Context, conn *websocket.Conn, p authorization.Principal)
}

type ChannelAuthRequest struct {
	ChannelName string `json:"channel_name" form:"channel_name" binding:"required"`
	SocketID    string `json:"socket_id" form:"socket_id" binding:"required"`
}

type Handler struct {
	authorizer ChannelAuthorizer
	server     SocketServer
	upgrader   websocket.Upgrader
	logger     logger.Interface
}

// NewHandler builds the handler. An empty allowedOrigins list accepts same-origin upgrades only.
func NewHandler(authorizer ChannelAuthorizer, server SocketServer, allowedOrigins []string, logger logger.Interface) *Handler {
	h := &Handler{
		authorizer: authorizer,
		server:     server,
		logger:     logger,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	if len(allowedOrigins) > 0 {
		h.upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, origin)
		}
	}
	return h
}

// AuthorizeChannel signs a private or presence channel subscription
// @Summary Authorize channel subscription
// @Tags Realtime
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Security Bearer
// @Param channel_name formData string true "Channel name"
// @Param socket_id formData string true "Socket ID"
// @Success 200 {object} broadcast.AuthResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /broadcasting/auth [post]
func (h *Handler) AuthorizeChannel(c *gin.Context) {
	actor, err := common.Principal(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req ChannelAuthRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.ErrorResponseWithError(c, utils.ValidationError(err))
		return
	}

	resp, err := h.authorizer.Authorize(c.Request.Context(), actor, req.ChannelName, req.SocketID)
	if err != nil {
		if appErr := errors.GetAppError(err); appErr == nil || appErr.Code >= http.StatusInternalServerError {
			h.logger.Errorw("channel authorization failed", "channel", req.ChannelName, "user_id", actor.ID, "error", err)
		} else {
			h.logger.Debugw("channel authorization denied", "channel", req.ChannelName, "user_id", actor.ID, "error", err)
		}
		utils.ErrorResponseWithError(c, err)
		return
	}

	// The realtime client library expects the bare acknowledgement, not the API envelope.
	c.JSON(http.StatusOK, resp)
}

// Connect upgrades to the realtime socket
// @Summary Realtime socket
// @Tags Realtime
// @Security Bearer
// @Param token query string false "Bearer token for clients that cannot set headers"
// @Success 101
// @Router /ws [get]
func (h *Handler) Connect(c *gin.Context) {
	actor, err := common.Principal(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.logger.Warnw("websocket upgrade failed", "user_id", actor.ID, "error", err)
		return
	}

	h.logger.Debugw("websocket connected", "user_id", actor.ID, "remote_addr", c.ClientIP())
	h.server.Serve(c.Request.Context(), conn, actor)
}
