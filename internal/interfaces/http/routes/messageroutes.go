package routes

import (
	"github.com/gin-gonic/gin"

	messagehandlers "github.com/helpdesk-inc/helpdesk/internal/interfaces/http/handlers/message"
	"github.com/helpdesk-inc/helpdesk/internal/interfaces/http/middleware"
)

type MessageRouteConfig struct {
	MessageHandler       *messagehandlers.Handler
	AuthMiddleware       *middleware.AuthMiddleware
	PermissionMiddleware *middleware.PermissionMiddleware
	SendRateLimiter      *middleware.RateLimiter
}

func SetupMessageRoutes(api *gin.RouterGroup, config *MessageRouteConfig) {
	perm := config.PermissionMiddleware.RequirePermission
	h := config.MessageHandler

	messages := api.Group("/tickets/:id/messages")
	messages.Use(config.AuthMiddleware.RequireAuth())
	{
		messages.GET("", perm("message", "read"), h.ListMessages)
		messages.POST("", perm("message", "create"), config.SendRateLimiter.Limit(), h.SendMessage)
		messages.POST("/read", perm("message", "read"), h.MarkRead)
		messages.PUT("/:messageId", perm("message", "update"), h.UpdateMessage)
		messages.DELETE("/:messageId", perm("message", "delete"), h.DeleteMessage)
	}

	authed := api.Group("")
	authed.Use(config.AuthMiddleware.RequireAuth())
	{
		authed.GET("/messages/unread-count", perm("message", "read"), h.UnreadCount)
		authed.GET("/attachments/*path", perm("attachment", "read"), h.DownloadAttachment)
	}
}
