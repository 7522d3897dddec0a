package dto

import (
	"time"

	ticketdto "github.com/helpdesk-inc/helpdesk/internal/application/ticket/dto"
	"github.com/helpdesk-inc/helpdesk/internal/domain/message"
	"github.com/helpdesk-inc/helpdesk/internal/domain/user"
	"github.com/helpdesk-inc/helpdesk/internal/shared/mapper"
)

type AttachmentDTO struct {
	Type string `json:"type"`
	Path string `json:"path,omitempty"`
	URL  string `json:"url"`
	Name string `json:"name"`
	Size int64  `json:"size,omitempty"`
	Mime string `json:"mime,omitempty"`
}

type EditEntryDTO struct {
	Content  string    `json:"content"`
	EditedAt time.Time `json:"edited_at"`
}

type MessageDTO struct {
	ID              uint                      `json:"id"`
	TicketID        uint                      `json:"ticket_id"`
	UserID          uint                      `json:"user_id"`
	Content         string                    `json:"content"`
	ContentHTML     string                    `json:"content_html"`
	Attachments     []AttachmentDTO           `json:"attachments"`
	IsSystemMessage bool                      `json:"is_system_message"`
	EditHistory     []EditEntryDTO            `json:"edit_history"`
	EditedAt        *time.Time                `json:"edited_at"`
	ReadAt          *time.Time                `json:"read_at"`
	CreatedAt       time.Time                 `json:"created_at"`
	UpdatedAt       time.Time                 `json:"updated_at"`
	User            *ticketdto.UserSummaryDTO `json:"user,omitempty"`
}

type UnreadCountDTO struct {
	UnreadCount int64 `json:"unread_count"`
}

type MarkReadDTO struct {
	Marked int64 `json:"marked"`
}

// ContentRenderer produces the HTML form of a message body.
type ContentRenderer interface {
	Render(content string) (string, error)
}

// ToMessageDTO maps a message with its author. A renderer failure leaves content_html empty.
func ToMessageDTO(m *message.Message, author *user.User, renderer ContentRenderer) *MessageDTO {
	if m == nil {
		return nil
	}

	out := &MessageDTO{
		ID:              m.ID(),
		TicketID:        m.TicketID(),
		UserID:          m.AuthorID(),
		Content:         m.Content(),
		Attachments:     mapper.MapSlice(m.Attachments(), toAttachmentDTO),
		IsSystemMessage: m.IsSystem(),
		EditHistory:     mapper.MapSlice(m.EditHistory(), toEditEntryDTO),
		EditedAt:        m.EditedAt(),
		ReadAt:          m.ReadAt(),
		CreatedAt:       m.CreatedAt(),
		UpdatedAt:       m.UpdatedAt(),
		User:            ticketdto.ToUserSummaryDTO(author),
	}
	if renderer != nil {
		if html, err := renderer.Render(m.Content()); err == nil {
			out.ContentHTML = html
		}
	}
	return out
}

func ToMessageDTOList(messages []*message.Message, authors map[uint]*user.User, renderer ContentRenderer) []*MessageDTO {
	out := make([]*MessageDTO, 0, len(messages))
	for _, m := range messages {
		out = append(out, ToMessageDTO(m, authors[m.AuthorID()], renderer))
	}
	return out
}

func toAttachmentDTO(a message.Attachment) AttachmentDTO {
	return AttachmentDTO{
		Type: a.Type.String(),
		Path: a.Path,
		URL:  a.URL,
		Name: a.Name,
		Size: a.Size,
		Mime: a.Mime,
	}
}

func toEditEntryDTO(e message.EditEntry) EditEntryDTO {
	return EditEntryDTO{Content: e.Content, EditedAt: e.EditedAt}
}
