package migration

import (
	"github.com/helpdesk-inc/helpdesk/internal/infrastructure/persistence/models"
)

// AutoMigrateModels lists the models the GORM strategy keeps in sync.
func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.UserModel{},
		&models.TicketModel{},
		&models.MessageModel{},
	}
}
