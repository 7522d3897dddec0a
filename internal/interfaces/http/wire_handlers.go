package http

import (
	"context"

	"github.com/helpdesk-inc/helpdesk/internal/infrastructure/database"
	healthHandlers "github.com/helpdesk-inc/helpdesk/internal/interfaces/http/handlers/health"
	messageHandlers "github.com/helpdesk-inc/helpdesk/internal/interfaces/http/handlers/message"
	realtimeHandlers "github.com/helpdesk-inc/helpdesk/internal/interfaces/http/handlers/realtime"
	ticketHandlers "github.com/helpdesk-inc/helpdesk/internal/interfaces/http/handlers/ticket"
)

// allHandlers holds all HTTP handler instances used by the application.
type allHandlers struct {
	ticketHandler   *ticketHandlers.Handler
	messageHandler  *messageHandlers.Handler
	realtimeHandler *realtimeHandlers.Handler
	healthHandler   *healthHandlers.Handler
}

func (c *Container) initHandlers() {
	ucs := c.ucs
	log := c.log

	c.hdlrs = &allHandlers{
		ticketHandler: ticketHandlers.NewHandler(ticketHandlers.UseCases{
			Create: ucs.createTicketUC,
			Update: ucs.updateTicketUC,
			Assign: ucs.assignTicketUC,
			Delete: ucs.deleteTicketUC,
			Get:    ucs.getTicketUC,
			List:   ucs.listTicketsUC,
			Stats:  ucs.ticketStatsUC,
			Staff:  ucs.listStaffUC,
			Users:  ucs.listUsersUC,
			Roles:  ucs.listRolesUC,
		}, c.publisher, log),
		messageHandler: messageHandlers.NewHandler(messageHandlers.UseCases{
			Send:        ucs.sendMessageUC,
			Edit:        ucs.editMessageUC,
			Delete:      ucs.deleteMessageUC,
			List:        ucs.listMessagesUC,
			MarkRead:    ucs.markReadUC,
			UnreadCount: ucs.unreadCountUC,
			Download:    ucs.downloadUC,
		}, c.publisher, log),
		realtimeHandler: realtimeHandlers.NewHandler(c.authorizer, c.hub, c.cfg.Server.AllowedOrigins, log),
		healthHandler: healthHandlers.NewHandler(map[string]healthHandlers.Check{
			"database": database.Ping,
			"redis": func(ctx context.Context) error {
				return c.redis.Ping(ctx).Err()
			},
		}, log),
	}
}
