package models

import "github.com/helpdesk-inc/helpdesk/internal/shared/constants"

type TicketModel struct {
	ID          uint   `gorm:"primaryKey"`
	Number      string `gorm:"column:ticket_number;uniqueIndex:uk_tickets_ticket_number;size:32;not null"`
	Title       string `gorm:"size:255;not null"`
	Description string `gorm:"type:text;not null"`
	Category    string `gorm:"size:20;not null;index"`
	Priority    string `gorm:"size:20;not null;index"`
	Status      string `gorm:"size:20;not null;index"`
	OwnerID     uint   `gorm:"not null;index"`
	AssigneeID  *uint  `gorm:"index"`
	ResolvedAt  *int64
	ClosedAt    *int64
	Version     int   `gorm:"not null;default:1"`
	CreatedAt   int64 `gorm:"autoCreateTime:milli;not null;index"`
	UpdatedAt   int64 `gorm:"autoUpdateTime:milli;not null"`

	// Note: No foreign key constraints or associations.
	// Messages are removed by the application when a ticket is deleted.
}

func (TicketModel) TableName() string {
	return constants.TableTickets
}
