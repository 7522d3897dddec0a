package usecases

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/helpdesk-inc/helpdesk/internal/application/broadcast"
	"github.com/helpdesk-inc/helpdesk/internal/application/ticket/dto"
	"github.com/helpdesk-inc/helpdesk/internal/domain/message"
	"github.com/helpdesk-inc/helpdesk/internal/domain/ticket"
	vo "github.com/helpdesk-inc/helpdesk/internal/domain/ticket/valueobjects"
	"github.com/helpdesk-inc/helpdesk/internal/domain/user"
	"github.com/helpdesk-inc/helpdesk/internal/shared/authorization"
	"github.com/helpdesk-inc/helpdesk/internal/shared/db"
	"github.com/helpdesk-inc/helpdesk/internal/shared/errors"
	"github.com/helpdesk-inc/helpdesk/internal/shared/logger"
)

type CreateTicketCommand struct {
	Title       string
	Description string
	Category    string
	Priority    string
	Actor       authorization.Principal
	SocketID    string
}

type CreateTicketResult struct {
	Ticket *dto.TicketDTO
	Events []broadcast.Event
}

type CreateTicketUseCase struct {
	ticketRepo  ticket.TicketRepository
	messageRepo message.Repository
	userRepo    user.Repository
	numbers     ticket.NumberGenerator
	txMgr       db.Transactor
	logger      logger.Interface
}

func NewCreateTicketUseCase(
	ticketRepo ticket.TicketRepository,
	messageRepo message.Repository,
	userRepo user.Repository,
	numbers ticket.NumberGenerator,
	txMgr db.Transactor,
	logger logger.Interface,
) *CreateTicketUseCase {
	return &CreateTicketUseCase{
		ticketRepo:  ticketRepo,
		messageRepo: messageRepo,
		userRepo:    userRepo,
		numbers:     numbers,
		txMgr:       txMgr,
		logger:      logger,
	}
}

func (uc *CreateTicketUseCase) Execute(ctx context.Context, cmd CreateTicketCommand) (*CreateTicketResult, error) {
	uc.logger.Infow("executing create ticket use case", "title", cmd.Title, "owner_id", cmd.Actor.ID)

	if d := authorization.Guard(cmd.Actor); !d.Allowed {
		return nil, accessDenied(d)
	}
	if err := uc.validateCommand(cmd); err != nil {
		uc.logger.Warnw("invalid create ticket command", "error", err)
		return nil, err
	}

	newTicket, err := ticket.NewTicket(
		strings.TrimSpace(cmd.Title),
		cmd.Description,
		vo.Category(cmd.Category),
		vo.Priority(cmd.Priority),
		cmd.Actor.ID,
	)
	if err != nil {
		uc.logger.Errorw("failed to create ticket entity", "error", err)
		return nil, errors.NewValidationError(err.Error())
	}

	err = uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.saveWithNumber(txCtx, newTicket); err != nil {
			return err
		}
		return appendSystemNote(txCtx, uc.messageRepo, newTicket, ticket.CreatedText)
	})
	if err != nil {
		uc.logger.Errorw("failed to create ticket", "owner_id", cmd.Actor.ID, "error", err)
		if errors.IsAppError(err) {
			return nil, err
		}
		return nil, errors.NewInternalError("failed to create ticket")
	}

	uc.logger.Infow("ticket created successfully", "ticket_id", newTicket.ID(), "number", newTicket.Number())

	ticketDTO := dto.ToTicketDTO(newTicket, resolveUsers(ctx, uc.userRepo, uc.logger, newTicket))
	return &CreateTicketResult{
		Ticket: ticketDTO,
		Events: []broadcast.Event{
			broadcast.TicketUpdated{Ticket: ticketDTO, SocketID: cmd.SocketID},
		},
	}, nil
}

// saveWithNumber draws a ticket number and inserts the ticket, drawing again when the unique
// index reports a collision that slipped past the generator's own check.
func (uc *CreateTicketUseCase) saveWithNumber(ctx context.Context, t *ticket.Ticket) error {
	for attempt := 1; ; attempt++ {
		number, err := uc.numbers.Generate(ctx)
		if err != nil {
			return fmt.Errorf("failed to generate ticket number: %w", err)
		}
		if err := t.SetNumber(number); err != nil {
			return err
		}

		err = uc.ticketRepo.Save(ctx, t)
		if err == nil {
			return nil
		}
		if !errors.IsDuplicateError(err) || attempt >= ticket.MaxNumberAttempts {
			return fmt.Errorf("failed to save ticket: %w", err)
		}
		uc.logger.Warnw("ticket number collision, retrying", "number", number, "attempt", attempt)
		t.ResetNumber()
	}
}

func (uc *CreateTicketUseCase) validateCommand(cmd CreateTicketCommand) error {
	fields := make(map[string]string)

	title := strings.TrimSpace(cmd.Title)
	switch {
	case title == "":
		fields["title"] = "is required"
	case utf8.RuneCountInString(title) > ticket.MaxTitleLength:
		fields["title"] = fmt.Sprintf("must be at most %d characters", ticket.MaxTitleLength)
	}
	if strings.TrimSpace(cmd.Description) == "" {
		fields["description"] = "is required"
	}
	if !vo.Category(cmd.Category).IsValid() {
		fields["category"] = "must be one of software, hardware, network, account, other"
	}
	if cmd.Priority != "" && !vo.Priority(cmd.Priority).IsValid() {
		fields["priority"] = "must be one of low, medium, high, critical"
	}

	if len(fields) > 0 {
		return errors.NewFieldValidationError("invalid ticket", fields)
	}
	return nil
}
