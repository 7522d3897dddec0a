package http

import (
	messageUsecases "github.com/helpdesk-inc/helpdesk/internal/application/message/usecases"
	ticketUsecases "github.com/helpdesk-inc/helpdesk/internal/application/ticket/usecases"
	"github.com/helpdesk-inc/helpdesk/internal/domain/message"
	"github.com/helpdesk-inc/helpdesk/internal/domain/ticket"
)

// allUseCases holds all use case instances used by the application.
type allUseCases struct {
	// Ticket
	createTicketUC *ticketUsecases.CreateTicketUseCase
	updateTicketUC *ticketUsecases.UpdateTicketUseCase
	assignTicketUC *ticketUsecases.AssignTicketUseCase
	deleteTicketUC *ticketUsecases.DeleteTicketUseCase
	getTicketUC    *ticketUsecases.GetTicketUseCase
	listTicketsUC  *ticketUsecases.ListTicketsUseCase
	ticketStatsUC  *ticketUsecases.GetTicketStatsUseCase
	listStaffUC    *ticketUsecases.ListStaffUseCase
	listUsersUC    *ticketUsecases.ListUsersUseCase
	listRolesUC    *ticketUsecases.ListRolesUseCase

	// Message
	sendMessageUC   *messageUsecases.SendMessageUseCase
	editMessageUC   *messageUsecases.EditMessageUseCase
	deleteMessageUC *messageUsecases.DeleteMessageUseCase
	listMessagesUC  *messageUsecases.ListMessagesUseCase
	markReadUC      *messageUsecases.MarkReadUseCase
	unreadCountUC   *messageUsecases.UnreadCountUseCase
	downloadUC      *messageUsecases.DownloadAttachmentUseCase
}

func (c *Container) initUseCases() {
	repos := c.repos
	log := c.log
	numbers := ticket.NewRandomNumberGenerator(repos.ticketRepo.ExistsByNumber)
	limits := attachmentLimits(c.cfg.Attachments.MaxFiles, c.cfg.Attachments.MaxURLs, c.cfg.Attachments.MaxFileSizeBytes())

	c.ucs = &allUseCases{
		createTicketUC: ticketUsecases.NewCreateTicketUseCase(repos.ticketRepo, repos.messageRepo, repos.userRepo, numbers, repos.txMgr, log),
		updateTicketUC: ticketUsecases.NewUpdateTicketUseCase(repos.ticketRepo, repos.messageRepo, repos.userRepo, repos.txMgr, log),
		assignTicketUC: ticketUsecases.NewAssignTicketUseCase(repos.ticketRepo, repos.messageRepo, repos.userRepo, repos.txMgr, log),
		deleteTicketUC: ticketUsecases.NewDeleteTicketUseCase(repos.ticketRepo, repos.messageRepo, c.blobStore, repos.txMgr, log),
		getTicketUC:    ticketUsecases.NewGetTicketUseCase(repos.ticketRepo, repos.userRepo, log),
		listTicketsUC:  ticketUsecases.NewListTicketsUseCase(repos.ticketRepo, repos.userRepo, log),
		ticketStatsUC:  ticketUsecases.NewGetTicketStatsUseCase(repos.ticketRepo, log),
		listStaffUC:    ticketUsecases.NewListStaffUseCase(repos.userRepo, log),
		listUsersUC:    ticketUsecases.NewListUsersUseCase(repos.userRepo, log),
		listRolesUC:    ticketUsecases.NewListRolesUseCase(),

		sendMessageUC:   messageUsecases.NewSendMessageUseCase(repos.ticketRepo, repos.messageRepo, repos.userRepo, c.blobStore, repos.txMgr, c.renderer, limits, log),
		editMessageUC:   messageUsecases.NewEditMessageUseCase(repos.ticketRepo, repos.messageRepo, repos.userRepo, repos.txMgr, c.renderer, log),
		deleteMessageUC: messageUsecases.NewDeleteMessageUseCase(repos.ticketRepo, repos.messageRepo, c.blobStore, repos.txMgr, log),
		listMessagesUC:  messageUsecases.NewListMessagesUseCase(repos.ticketRepo, repos.messageRepo, repos.userRepo, c.renderer, log),
		markReadUC:      messageUsecases.NewMarkReadUseCase(repos.ticketRepo, repos.messageRepo, log),
		unreadCountUC:   messageUsecases.NewUnreadCountUseCase(repos.messageRepo, log),
		downloadUC:      messageUsecases.NewDownloadAttachmentUseCase(repos.ticketRepo, c.blobStore, log),
	}
}

// attachmentLimits applies configured overrides on top of the defaults. Zero keeps a default.
func attachmentLimits(maxFiles, maxURLs int, maxFileSize int64) message.Limits {
	limits := message.DefaultLimits()
	if maxFiles > 0 {
		limits.MaxFiles = maxFiles
	}
	if maxURLs > 0 {
		limits.MaxURLs = maxURLs
	}
	if maxFileSize > 0 {
		limits.MaxFileSize = maxFileSize
	}
	return limits
}
