package routes

import (
	"github.com/gin-gonic/gin"

	tickethandlers "github.com/helpdesk-inc/helpdesk/internal/interfaces/http/handlers/ticket"
	"github.com/helpdesk-inc/helpdesk/internal/interfaces/http/middleware"
)

type TicketRouteConfig struct {
	TicketHandler        *tickethandlers.Handler
	AuthMiddleware       *middleware.AuthMiddleware
	PermissionMiddleware *middleware.PermissionMiddleware
}

func SetupTicketRoutes(api *gin.RouterGroup, config *TicketRouteConfig) {
	perm := config.PermissionMiddleware.RequirePermission

	tickets := api.Group("/tickets")
	tickets.Use(config.AuthMiddleware.RequireAuth())
	{
		// IMPORTANT: Register specific paths BEFORE parameterized paths to avoid route conflicts

		// Collection operations (no ID parameter)
		tickets.POST("",
			perm("ticket", "create"),
			config.TicketHandler.CreateTicket)
		tickets.GET("",
			perm("ticket", "read"),
			config.TicketHandler.ListTickets)
		tickets.GET("/stats",
			perm("ticket_stats", "read"),
			config.TicketHandler.GetTicketStats)

		// Specific action endpoints (must come BEFORE /:id to avoid conflicts)
		tickets.POST("/:id/assign",
			perm("ticket", "assign"),
			config.TicketHandler.AssignTicket)

		// Generic parameterized routes (must come LAST)
		tickets.GET("/:id",
			perm("ticket", "read"),
			config.TicketHandler.GetTicket)
		tickets.PUT("/:id",
			perm("ticket", "update"),
			config.TicketHandler.UpdateTicket)
		tickets.DELETE("/:id",
			perm("ticket", "delete"),
			config.TicketHandler.DeleteTicket)
	}

	api.GET("/staff",
		config.AuthMiddleware.RequireAuth(),
		perm("staff", "read"),
		config.TicketHandler.ListStaff)

	// Read-only directory for admin tooling
	api.GET("/users",
		config.AuthMiddleware.RequireAuth(),
		perm("user", "read"),
		config.TicketHandler.ListUsers)
	api.GET("/roles",
		config.AuthMiddleware.RequireAuth(),
		perm("role", "read"),
		config.TicketHandler.ListRoles)
}
