package seeds

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/helpdesk-inc/helpdesk/internal/infrastructure/persistence/models"
	"github.com/helpdesk-inc/helpdesk/internal/shared/authorization"
)

// DevelopmentUsers are the directory rows a fresh development database starts with, one per role.
func DevelopmentUsers() []models.UserModel {
	return []models.UserModel{
		{
			FirstName: "Admin",
			LastName:  "User",
			Email:     "admin@email.com",
			Role:      authorization.RoleAdmin.String(),
		},
		{
			FirstName: "John",
			LastName:  "Support",
			Email:     "incharge@email.com",
			Role:      authorization.RoleIncharge.String(),
		},
		{
			FirstName: "Test",
			LastName:  "User",
			Email:     "user@email.com",
			Role:      authorization.RoleUser.String(),
		},
	}
}

// SeedUsers inserts users keyed by email. Existing rows are left untouched, so reruns are harmless.
// It returns how many rows were created.
func SeedUsers(db *gorm.DB, users []models.UserModel) (int64, error) {
	if len(users) == 0 {
		return 0, nil
	}

	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoNothing: true,
	}).Create(&users)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to seed users: %w", result.Error)
	}
	return result.RowsAffected, nil
}
