package user

import (
	"context"

	"github.com/helpdesk-inc/helpdesk/internal/shared/authorization"
)

// Filter narrows a directory listing. Zero values match everything.
type Filter struct {
	Role     authorization.UserRole
	Search   string
	Page     int
	PageSize int
}

// Repository defines read access to the user directory
type Repository interface {
	// GetByID retrieves a user by internal ID
	GetByID(ctx context.Context, id uint) (*User, error)

	// GetByIDs retrieves multiple users by internal IDs; unknown IDs are skipped
	GetByIDs(ctx context.Context, ids []uint) ([]*User, error)

	// ListStaff returns every admin and incharge ordered by first name
	ListStaff(ctx context.Context) ([]*User, error)

	// List returns one page of the directory ordered by ID, with the total match count
	List(ctx context.Context, filter Filter) ([]*User, int64, error)
}
