package mappers

import (
	"github.com/helpdesk-inc/helpdesk/internal/domain/message"
	"github.com/helpdesk-inc/helpdesk/internal/infrastructure/persistence/models"
	"github.com/helpdesk-inc/helpdesk/internal/shared/biztime"
)

// MessageMapper converts messages and their JSON columns.
type MessageMapper interface {
	ToModel(m *message.Message) *models.MessageModel
	ToDomain(model *models.MessageModel) (*message.Message, error)
}

type MessageMapperImpl struct{}

func NewMessageMapper() MessageMapper {
	return &MessageMapperImpl{}
}

func (mm *MessageMapperImpl) ToModel(m *message.Message) *models.MessageModel {
	model := &models.MessageModel{
		ID:              m.ID(),
		TicketID:        m.TicketID(),
		AuthorID:        m.AuthorID(),
		Content:         m.Content(),
		IsSystemMessage: m.IsSystem(),
		EditedAt:        biztime.ToUnixMilliPtr(m.EditedAt()),
		ReadAt:          biztime.ToUnixMilliPtr(m.ReadAt()),
		DeletedAt:       biztime.ToUnixMilliPtr(m.DeletedAt()),
		CreatedAt:       m.CreatedAt().UnixMilli(),
		UpdatedAt:       m.UpdatedAt().UnixMilli(),
	}

	for _, a := range m.Attachments() {
		model.Attachments = append(model.Attachments, models.AttachmentRecord{
			Type: a.Type.String(),
			Path: a.Path,
			URL:  a.URL,
			Name: a.Name,
			Size: a.Size,
			Mime: a.Mime,
		})
	}
	for _, e := range m.EditHistory() {
		model.EditHistory = append(model.EditHistory, models.EditRecord{
			Content:  e.Content,
			EditedAt: e.EditedAt.UnixMilli(),
		})
	}

	return model
}

func (mm *MessageMapperImpl) ToDomain(model *models.MessageModel) (*message.Message, error) {
	var attachments []message.Attachment
	for _, a := range model.Attachments {
		attachments = append(attachments, message.Attachment{
			Type: message.AttachmentType(a.Type),
			Path: a.Path,
			URL:  a.URL,
			Name: a.Name,
			Size: a.Size,
			Mime: a.Mime,
		})
	}

	var history []message.EditEntry
	for _, e := range model.EditHistory {
		history = append(history, message.EditEntry{
			Content:  e.Content,
			EditedAt: biztime.FromUnixMilli(e.EditedAt),
		})
	}

	return message.ReconstructMessage(
		model.ID,
		model.TicketID,
		model.AuthorID,
		model.Content,
		attachments,
		model.IsSystemMessage,
		history,
		biztime.FromUnixMilliPtr(model.EditedAt),
		biztime.FromUnixMilliPtr(model.ReadAt),
		biztime.FromUnixMilliPtr(model.DeletedAt),
		biztime.FromUnixMilli(model.CreatedAt),
		biztime.FromUnixMilli(model.UpdatedAt),
	)
}
