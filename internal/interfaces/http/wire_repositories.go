package http

import (
	"github.com/helpdesk-inc/helpdesk/internal/domain/message"
	"github.com/helpdesk-inc/helpdesk/internal/domain/ticket"
	"github.com/helpdesk-inc/helpdesk/internal/domain/user"
	"github.com/helpdesk-inc/helpdesk/internal/infrastructure/repository"
	"github.com/helpdesk-inc/helpdesk/internal/shared/db"
)

// repositories holds all repository instances used by the application.
type repositories struct {
	ticketRepo  ticket.TicketRepository
	messageRepo message.Repository
	userRepo    user.Repository
	txMgr       *db.TransactionManager
}

func (c *Container) initRepositories() {
	c.repos = &repositories{
		ticketRepo:  repository.NewTicketRepository(c.db),
		messageRepo: repository.NewMessageRepository(c.db),
		userRepo:    repository.NewUserRepository(c.db),
		txMgr:       db.NewTransactionManager(c.db),
	}
}
