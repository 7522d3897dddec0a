package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/helpdesk-inc/helpdesk/internal/domain/message"
	"github.com/helpdesk-inc/helpdesk/internal/infrastructure/persistence/mappers"
	"github.com/helpdesk-inc/helpdesk/internal/infrastructure/persistence/models"
	"github.com/helpdesk-inc/helpdesk/internal/shared/biztime"
	"github.com/helpdesk-inc/helpdesk/internal/shared/db"
	"github.com/helpdesk-inc/helpdesk/internal/shared/errors"
)

type MessageRepository struct {
	db     *gorm.DB
	mapper mappers.MessageMapper
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{
		db:     db,
		mapper: mappers.NewMessageMapper(),
	}
}

var _ message.Repository = (*MessageRepository)(nil)

func (r *MessageRepository) Save(ctx context.Context, m *message.Message) error {
	model := r.mapper.ToModel(m)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}
	return m.SetID(model.ID)
}

func (r *MessageRepository) Update(ctx context.Context, m *message.Message) error {
	model := r.mapper.ToModel(m)
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.MessageModel{ID: model.ID}).
		Select("*").
		Omit("id", "ticket_id", "author_id", "is_system_message", "created_at").
		Updates(model)
	if result.Error != nil {
		return fmt.Errorf("failed to update message: %w", result.Error)
	}
	return nil
}

func (r *MessageRepository) GetByID(ctx context.Context, id uint) (*message.Message, error) {
	var model models.MessageModel
	err := db.GetTxFromContext(ctx, r.db).Scopes(db.NotDeleted()).First(&model, id).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFoundError("message not found", fmt.Sprintf("%d", id))
		}
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return r.mapper.ToDomain(&model)
}

func (r *MessageRepository) ListByTicket(ctx context.Context, ticketID uint) ([]*message.Message, error) {
	var messageModels []models.MessageModel
	err := db.GetTxFromContext(ctx, r.db).
		Scopes(db.NotDeleted()).
		Where("ticket_id = ?", ticketID).
		Order("created_at ASC, id ASC").
		Find(&messageModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	messages := make([]*message.Message, 0, len(messageModels))
	for i := range messageModels {
		m, err := r.mapper.ToDomain(&messageModels[i])
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, nil
}

func (r *MessageRepository) MarkRead(ctx context.Context, ticketID, readerID uint) (int64, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	var snapshot sql.NullInt64
	if err := tx.Model(&models.MessageModel{}).
		Where("ticket_id = ?", ticketID).
		Select("MAX(id)").
		Row().Scan(&snapshot); err != nil {
		return 0, fmt.Errorf("failed to snapshot messages: %w", err)
	}
	if !snapshot.Valid {
		return 0, nil
	}

	result := tx.Model(&models.MessageModel{}).
		Scopes(db.NotDeleted()).
		Where("ticket_id = ? AND id <= ? AND author_id <> ? AND read_at IS NULL", ticketID, snapshot.Int64, readerID).
		UpdateColumn("read_at", biztime.NowUTC().UnixMilli())
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark messages read: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *MessageRepository) CountUnread(ctx context.Context, readerID uint, scope message.UnreadScope) (int64, error) {
	if scope.OwnerID == nil && scope.AssigneeID == nil {
		return 0, nil
	}

	query := db.GetTxFromContext(ctx, r.db).
		Table("messages AS m").
		Joins("JOIN tickets AS t ON t.id = m.ticket_id").
		Where("m.author_id <> ? AND m.read_at IS NULL AND m.deleted_at IS NULL", readerID)
	if scope.OwnerID != nil {
		query = query.Where("t.owner_id = ?", *scope.OwnerID)
	}
	if scope.AssigneeID != nil {
		query = query.Where("t.assignee_id = ?", *scope.AssigneeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return count, nil
}

func (r *MessageRepository) StoredPathsByTicket(ctx context.Context, ticketID uint) ([]string, error) {
	var messageModels []models.MessageModel
	err := db.GetTxFromContext(ctx, r.db).
		Select("id", "attachments").
		Where("ticket_id = ? AND attachments IS NOT NULL", ticketID).
		Find(&messageModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load attachments: %w", err)
	}

	var paths []string
	for _, model := range messageModels {
		for _, a := range model.Attachments {
			if message.AttachmentType(a.Type) != message.AttachmentURL && a.Path != "" {
				paths = append(paths, a.Path)
			}
		}
	}
	return paths, nil
}

func (r *MessageRepository) DeleteByTicket(ctx context.Context, ticketID uint) error {
	err := db.GetTxFromContext(ctx, r.db).
		Where("ticket_id = ?", ticketID).
		Delete(&models.MessageModel{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}
	return nil
}
