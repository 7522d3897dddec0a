package dto

import (
	"time"

	"github.com/helpdesk-inc/helpdesk/internal/domain/ticket"
	"github.com/helpdesk-inc/helpdesk/internal/domain/user"
	"github.com/helpdesk-inc/helpdesk/internal/shared/mapper"
)

// UserSummaryDTO carries the display fields of a ticket participant or message author.
type UserSummaryDTO struct {
	ID             uint    `json:"id"`
	FirstName      string  `json:"first_name"`
	MiddleName     string  `json:"middle_name,omitempty"`
	LastName       string  `json:"last_name"`
	FullName       string  `json:"full_name"`
	Email          string  `json:"email"`
	Role           string  `json:"role"`
	ProfilePicture *string `json:"profile_picture"`
}

// UserListDTO is one page of the user directory.
type UserListDTO struct {
	Users      []*UserSummaryDTO `json:"users"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

type RoleDTO struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Staff       bool   `json:"staff"`
}

type TicketDTO struct {
	ID           uint            `json:"id"`
	TicketNumber string          `json:"ticket_number"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	Priority     string          `json:"priority"`
	Status       string          `json:"status"`
	UserID       uint            `json:"user_id"`
	AssignedTo   *uint           `json:"assigned_to"`
	User         *UserSummaryDTO `json:"user,omitempty"`
	Assignee     *UserSummaryDTO `json:"assignee,omitempty"`
	ResolvedAt   *time.Time      `json:"resolved_at"`
	ClosedAt     *time.Time      `json:"closed_at"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type TicketListDTO struct {
	Tickets    []*TicketDTO `json:"tickets"`
	Total      int64        `json:"total"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	TotalPages int          `json:"total_pages"`
}

// TicketStatsDTO holds per-status counts for the caller's ticket scope. Unassigned and
// Critical are only reported to admins.
type TicketStatsDTO struct {
	Total      int64  `json:"total"`
	Open       int64  `json:"open"`
	InProgress int64  `json:"in_progress"`
	Pending    int64  `json:"pending"`
	Resolved   int64  `json:"resolved"`
	Closed     int64  `json:"closed"`
	Unassigned *int64 `json:"unassigned,omitempty"`
	Critical   *int64 `json:"critical,omitempty"`
}

func ToUserSummaryDTO(u *user.User) *UserSummaryDTO {
	if u == nil {
		return nil
	}
	return &UserSummaryDTO{
		ID:             u.ID(),
		FirstName:      u.FirstName(),
		MiddleName:     u.MiddleName(),
		LastName:       u.LastName(),
		FullName:       u.FullName(),
		Email:          u.Email(),
		Role:           u.Role().String(),
		ProfilePicture: u.ProfilePicture(),
	}
}

// ToTicketDTO maps a ticket, resolving owner and assignee from users when present.
func ToTicketDTO(t *ticket.Ticket, users map[uint]*user.User) *TicketDTO {
	if t == nil {
		return nil
	}

	out := &TicketDTO{
		ID:           t.ID(),
		TicketNumber: t.Number(),
		Title:        t.Title(),
		Description:  t.Description(),
		Category:     t.Category().String(),
		Priority:     t.Priority().String(),
		Status:       t.Status().String(),
		UserID:       t.OwnerID(),
		AssignedTo:   t.AssigneeID(),
		User:         ToUserSummaryDTO(users[t.OwnerID()]),
		ResolvedAt:   t.ResolvedAt(),
		ClosedAt:     t.ClosedAt(),
		CreatedAt:    t.CreatedAt(),
		UpdatedAt:    t.UpdatedAt(),
	}
	if id := t.AssigneeID(); id != nil {
		out.Assignee = ToUserSummaryDTO(users[*id])
	}
	return out
}

func ToTicketDTOList(tickets []*ticket.Ticket, users map[uint]*user.User) []*TicketDTO {
	return mapper.MapSlice(tickets, func(t *ticket.Ticket) *TicketDTO {
		return ToTicketDTO(t, users)
	})
}

// ParticipantIDs lists the owner and assignee ids of the given tickets without duplicates.
func ParticipantIDs(tickets ...*ticket.Ticket) []uint {
	seen := make(map[uint]struct{}, len(tickets)*2)
	ids := make([]uint, 0, len(tickets)*2)
	add := func(id uint) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for _, t := range tickets {
		add(t.OwnerID())
		if a := t.AssigneeID(); a != nil {
			add(*a)
		}
	}
	return ids
}

// UsersByID indexes a user slice by id.
func UsersByID(users []*user.User) map[uint]*user.User {
	out := make(map[uint]*user.User, len(users))
	for _, u := range users {
		out[u.ID()] = u
	}
	return out
}
