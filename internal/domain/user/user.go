// Package user is a read model of the identity directory. Accounts are owned by the
// identity provider; this service only resolves display fields and roles.
package user

import (
	"fmt"
	"strings"

	"github.com/helpdesk-inc/helpdesk/internal/shared/authorization"
)

type User struct {
	id             uint
	firstName      string
	middleName     string
	lastName       string
	email          string
	role           authorization.UserRole
	profilePicture *string
}

// ReconstructUser reconstructs a user from persistence
func ReconstructUser(id uint, firstName, middleName, lastName, email string, role authorization.UserRole, profilePicture *string) (*User, error) {
	if id == 0 {
		return nil, fmt.Errorf("user ID cannot be zero")
	}
	if !role.IsValid() {
		return nil, fmt.Errorf("invalid role: %s", role)
	}
	return &User{
		id:             id,
		firstName:      firstName,
		middleName:     middleName,
		lastName:       lastName,
		email:          email,
		role:           role,
		profilePicture: profilePicture,
	}, nil
}

func (u *User) ID() uint {
	return u.id
}

func (u *User) FirstName() string {
	return u.firstName
}

func (u *User) MiddleName() string {
	return u.middleName
}

func (u *User) LastName() string {
	return u.lastName
}

func (u *User) Email() string {
	return u.email
}

func (u *User) Role() authorization.UserRole {
	return u.role
}

func (u *User) ProfilePicture() *string {
	return u.profilePicture
}

func (u *User) IsStaff() bool {
	return u.role.IsStaff()
}

// FullName joins the non-empty name parts with single spaces.
func (u *User) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{u.firstName, u.middleName, u.lastName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// Principal returns the user as an authorization principal.
func (u *User) Principal() authorization.Principal {
	return authorization.Principal{ID: u.id, Role: u.role}
}
