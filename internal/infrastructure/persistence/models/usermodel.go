package models

import "github.com/helpdesk-inc/helpdesk/internal/shared/constants"

// UserModel mirrors the directory rows maintained by the identity provider.
type UserModel struct {
	ID             uint    `gorm:"primaryKey"`
	FirstName      string  `gorm:"size:100;not null"`
	MiddleName     string  `gorm:"size:100"`
	LastName       string  `gorm:"size:100;not null"`
	Email          string  `gorm:"uniqueIndex;size:255;not null"`
	Role           string  `gorm:"size:20;not null;default:user;index"`
	ProfilePicture *string `gorm:"size:512"`
	CreatedAt      int64   `gorm:"autoCreateTime:milli;not null"`
	UpdatedAt      int64   `gorm:"autoUpdateTime:milli;not null"`
}

func (UserModel) TableName() string {
	return constants.TableUsers
}
