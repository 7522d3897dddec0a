package models

import (
	"gorm.io/datatypes"

	"github.com/helpdesk-inc/helpdesk/internal/shared/constants"
)

// AttachmentRecord is the JSON shape of one attachment entry.
type AttachmentRecord struct {
	Type string `json:"type"`
	Path string `json:"path,omitempty"`
	URL  string `json:"url"`
	Name string `json:"name"`
	Size int64  `json:"size,omitempty"`
	Mime string `json:"mime,omitempty"`
}

// EditRecord is the JSON shape of one edit history entry.
type EditRecord struct {
	Content  string `json:"content"`
	EditedAt int64  `json:"edited_at"`
}

type MessageModel struct {
	ID              uint                                  `gorm:"primaryKey"`
	TicketID        uint                                  `gorm:"not null;index:idx_messages_ticket_created,priority:1"`
	AuthorID        uint                                  `gorm:"not null;index"`
	Content         string                                `gorm:"type:text;not null"`
	Attachments     datatypes.JSONSlice[AttachmentRecord] `gorm:"type:json"`
	IsSystemMessage bool                                  `gorm:"not null;default:false"`
	EditHistory     datatypes.JSONSlice[EditRecord]       `gorm:"type:json"`
	EditedAt        *int64
	ReadAt          *int64 `gorm:"index"`
	DeletedAt       *int64 `gorm:"index"`
	CreatedAt       int64  `gorm:"autoCreateTime:milli;not null;index:idx_messages_ticket_created,priority:2"`
	UpdatedAt       int64  `gorm:"autoUpdateTime:milli;not null"`
}

func (MessageModel) TableName() string {
	return constants.TableMessages
}
