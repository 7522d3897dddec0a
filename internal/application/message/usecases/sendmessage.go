package usecases

import (
	"context"
	"fmt"
	"io"

	"github.com/helpdesk-inc/helpdesk/internal/application/broadcast"
	"github.com/helpdesk-inc/helpdesk/internal/application/message/dto"
	ticketdto "github.com/helpdesk-inc/helpdesk/internal/application/ticket/dto"
	"github.com/helpdesk-inc/helpdesk/internal/domain/message"
	"github.com/helpdesk-inc/helpdesk/internal/domain/ticket"
	"github.com/helpdesk-inc/helpdesk/internal/domain/user"
	"github.com/helpdesk-inc/helpdesk/internal/shared/authorization"
	"github.com/helpdesk-inc/helpdesk/internal/shared/db"
	"github.com/helpdesk-inc/helpdesk/internal/shared/errors"
	"github.com/helpdesk-inc/helpdesk/internal/shared/logger"
)

// UploadedFile is an incoming attachment. The caller owns Content and closes it after Execute.
type UploadedFile struct {
	Name        string
	Size        int64
	ContentType string
	Content     io.Reader
}

type SendMessageCommand struct {
	TicketID uint
	Content  string
	Files    []UploadedFile
	URLs     []string
	Actor    authorization.Principal
	SocketID string
}

type SendMessageResult struct {
	Message *dto.MessageDTO
	// Ticket is set when the message moved the ticket to a new status.
	Ticket *ticketdto.TicketDTO
	Events []broadcast.Event
}

// SendMessageUseCase posts a message on a ticket and applies the status auto-transitions.
// Blobs are written before the transaction and released again if it fails.
type SendMessageUseCase struct {
	ticketRepo  ticket.TicketRepository
	messageRepo message.Repository
	userRepo    user.Repository
	blobs       message.BlobStore
	txMgr       db.Transactor
	renderer    dto.ContentRenderer
	limits      message.Limits
	logger      logger.Interface
}

func NewSendMessageUseCase(
	ticketRepo ticket.TicketRepository,
	messageRepo message.Repository,
	userRepo user.Repository,
	blobs message.BlobStore,
	txMgr db.Transactor,
	renderer dto.ContentRenderer,
	limits message.Limits,
	logger logger.Interface,
) *SendMessageUseCase {
	return &SendMessageUseCase{
		ticketRepo:  ticketRepo,
		messageRepo: messageRepo,
		userRepo:    userRepo,
		blobs:       blobs,
		txMgr:       txMgr,
		renderer:    renderer,
		limits:      limits,
		logger:      logger,
	}
}

func (uc *SendMessageUseCase) Execute(ctx context.Context, cmd SendMessageCommand) (*SendMessageResult, error) {
	uc.logger.Infow("executing send message use case",
		"ticket_id", cmd.TicketID,
		"author_id", cmd.Actor.ID,
		"files", len(cmd.Files),
		"urls", len(cmd.URLs),
	)

	if err := uc.validateCommand(cmd); err != nil {
		uc.logger.Warnw("invalid send message command", "ticket_id", cmd.TicketID, "error", err)
		return nil, err
	}

	// Cheap rejection before any blob is written; the decision is repeated under lock.
	t, err := loadAccessibleTicket(ctx, uc.ticketRepo.GetByID, cmd.Actor, cmd.TicketID)
	if err != nil {
		return nil, err
	}
	if err := t.CheckMessageAllowed(cmd.Actor); err != nil {
		uc.logger.Warnw("message rejected by ticket status", "ticket_id", cmd.TicketID, "status", t.Status())
		return nil, domainError(err)
	}

	attachments, stored, err := uc.storeFiles(ctx, cmd)
	if err != nil {
		return nil, err
	}
	for _, link := range cmd.URLs {
		attachments = append(attachments, message.NewURLAttachment(link))
	}

	msg, err := message.NewMessage(cmd.TicketID, cmd.Actor.ID, cmd.Content, attachments)
	if err != nil {
		releaseBlobs(ctx, uc.blobs, uc.logger, stored)
		return nil, domainError(err)
	}

	var activity ticket.MessageActivity
	err = uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		locked, err := loadAccessibleTicket(txCtx, uc.ticketRepo.GetByIDForUpdate, cmd.Actor, cmd.TicketID)
		if err != nil {
			return err
		}
		t = locked

		activity, err = t.AcceptMessageFrom(cmd.Actor)
		if err != nil {
			return domainError(err)
		}
		if err := uc.messageRepo.Save(txCtx, msg); err != nil {
			return fmt.Errorf("failed to save message: %w", err)
		}
		if !activity.Changed() {
			return nil
		}
		if err := uc.ticketRepo.Update(txCtx, t); err != nil {
			return fmt.Errorf("failed to update ticket status: %w", err)
		}
		if activity.ReopenedByOwner {
			note, err := message.NewSystemMessage(t.ID(), t.OwnerID(), ticket.ReopenedByOwnerText)
			if err != nil {
				return err
			}
			if err := uc.messageRepo.Save(txCtx, note); err != nil {
				return fmt.Errorf("failed to save system message: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		uc.logger.Errorw("failed to send message", "ticket_id", cmd.TicketID, "error", err)
		releaseBlobs(ctx, uc.blobs, uc.logger, stored)
		if errors.IsAppError(err) {
			return nil, err
		}
		return nil, errors.NewInternalError("failed to send message")
	}

	uc.logger.Infow("message sent successfully",
		"ticket_id", cmd.TicketID,
		"message_id", msg.ID(),
		"status_from", activity.From,
		"status_to", activity.To,
	)

	return uc.buildResult(ctx, cmd, t, msg, activity), nil
}

func (uc *SendMessageUseCase) buildResult(
	ctx context.Context,
	cmd SendMessageCommand,
	t *ticket.Ticket,
	msg *message.Message,
	activity ticket.MessageActivity,
) *SendMessageResult {
	users := resolveUsers(ctx, uc.userRepo, uc.logger, append(ticketdto.ParticipantIDs(t), cmd.Actor.ID))
	sender := users[cmd.Actor.ID]

	result := &SendMessageResult{Message: dto.ToMessageDTO(msg, sender, uc.renderer)}
	result.Events = append(result.Events, broadcast.MessageSent{Message: result.Message, SocketID: cmd.SocketID})

	var senderName string
	if sender != nil {
		senderName = sender.FullName()
	}
	if n := broadcast.NewNotification(t, msg, cmd.Actor, senderName); n != nil {
		result.Events = append(result.Events, *n)
	}

	if activity.Changed() {
		result.Ticket = ticketdto.ToTicketDTO(t, users)
		result.Events = append(result.Events, broadcast.TicketUpdated{Ticket: result.Ticket, SocketID: cmd.SocketID})
	}
	return result
}

// storeFiles writes every upload to the blob store. On failure the blobs written so far are
// released and an internal error is returned.
func (uc *SendMessageUseCase) storeFiles(ctx context.Context, cmd SendMessageCommand) ([]message.Attachment, []string, error) {
	attachments := make([]message.Attachment, 0, len(cmd.Files)+len(cmd.URLs))
	stored := make([]string, 0, len(cmd.Files))

	for _, f := range cmd.Files {
		blob, err := uc.blobs.Store(ctx, cmd.TicketID, f.Content, f.Size, f.Name, f.ContentType)
		if err != nil {
			uc.logger.Errorw("failed to store attachment", "ticket_id", cmd.TicketID, "name", f.Name, "error", err)
			releaseBlobs(ctx, uc.blobs, uc.logger, stored)
			return nil, nil, errors.NewInternalError("failed to store attachment", f.Name)
		}
		stored = append(stored, blob.Path)
		attachments = append(attachments, message.Attachment{
			Type: message.ClassifyContentType(f.ContentType),
			Path: blob.Path,
			URL:  blob.URL,
			Name: f.Name,
			Size: f.Size,
			Mime: f.ContentType,
		})
	}
	return attachments, stored, nil
}

func (uc *SendMessageUseCase) validateCommand(cmd SendMessageCommand) error {
	draft := message.Draft{Content: cmd.Content, URLs: cmd.URLs}
	for _, f := range cmd.Files {
		if f.Content == nil {
			return errors.NewFieldValidationError("invalid attachment", map[string]string{
				"attachments": "file " + f.Name + " has no content",
			})
		}
		draft.Files = append(draft.Files, message.FileMeta{Name: f.Name, Size: f.Size, ContentType: f.ContentType})
	}

	if problems := draft.Validate(uc.limits); problems != nil {
		return errors.NewFieldValidationError("invalid message", problems)
	}
	return nil
}
