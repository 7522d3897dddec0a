package ticket

import (
	"fmt"
	"time"
	"unicode/utf8"

	vo "github.com/helpdesk-inc/helpdesk/internal/domain/ticket/valueobjects"
	"github.com/helpdesk-inc/helpdesk/internal/shared/authorization"
	"github.com/helpdesk-inc/helpdesk/internal/shared/biztime"
)

const (
	MaxTitleLength = 255

	// ReopenedByOwnerText is the system note appended when an owner reply reopens a ticket.
	ReopenedByOwnerText = "Ticket reopened by user response"
	// CreatedText is the system note appended to every new ticket.
	CreatedText = "Ticket created"
	// UnassignedText is the system note appended when the assignee is cleared.
	UnassignedText = "Unassigned"
)

type Ticket struct {
	id          uint
	number      string
	title       string
	description string
	category    vo.Category
	priority    vo.Priority
	status      vo.TicketStatus
	ownerID     uint
	assigneeID  *uint
	resolvedAt  *time.Time
	closedAt    *time.Time
	version     int
	createdAt   time.Time
	updatedAt   time.Time
}

// NewTicket files a ticket on behalf of ownerID. Status always starts open and an empty
// priority falls back to medium.
func NewTicket(title, description string, category vo.Category, priority vo.Priority, ownerID uint) (*Ticket, error) {
	if priority == "" {
		priority = vo.DefaultPriority
	}
	if err := validateDetails(title, description, category); err != nil {
		return nil, err
	}
	if !priority.IsValid() {
		return nil, fmt.Errorf("invalid priority: %s", priority)
	}
	if ownerID == 0 {
		return nil, fmt.Errorf("owner ID is required")
	}

	now := biztime.NowUTC()
	return &Ticket{
		title:       title,
		description: description,
		category:    category,
		priority:    priority,
		status:      vo.StatusOpen,
		ownerID:     ownerID,
		version:     1,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

func ReconstructTicket(
	id uint,
	number string,
	title string,
	description string,
	category vo.Category,
	priority vo.Priority,
	status vo.TicketStatus,
	ownerID uint,
	assigneeID *uint,
	resolvedAt *time.Time,
	closedAt *time.Time,
	version int,
	createdAt, updatedAt time.Time,
) (*Ticket, error) {
	if id == 0 {
		return nil, fmt.Errorf("ticket ID cannot be zero")
	}
	if number == "" {
		return nil, fmt.Errorf("ticket number is required")
	}
	if !category.IsValid() {
		return nil, fmt.Errorf("invalid category: %s", category)
	}
	if !priority.IsValid() {
		return nil, fmt.Errorf("invalid priority: %s", priority)
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid status: %s", status)
	}

	return &Ticket{
		id:          id,
		number:      number,
		title:       title,
		description: description,
		category:    category,
		priority:    priority,
		status:      status,
		ownerID:     ownerID,
		assigneeID:  assigneeID,
		resolvedAt:  resolvedAt,
		closedAt:    closedAt,
		version:     version,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}, nil
}

func validateDetails(title, description string, category vo.Category) error {
	if title == "" {
		return fmt.Errorf("title is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return fmt.Errorf("title exceeds maximum length of %d characters", MaxTitleLength)
	}
	if description == "" {
		return fmt.Errorf("description is required")
	}
	if !category.IsValid() {
		return fmt.Errorf("invalid category: %s", category)
	}
	return nil
}

func (t *Ticket) ID() uint {
	return t.id
}

func (t *Ticket) Number() string {
	return t.number
}

func (t *Ticket) Title() string {
	return t.title
}

func (t *Ticket) Description() string {
	return t.description
}

func (t *Ticket) Category() vo.Category {
	return t.category
}

func (t *Ticket) Priority() vo.Priority {
	return t.priority
}

func (t *Ticket) Status() vo.TicketStatus {
	return t.status
}

func (t *Ticket) OwnerID() uint {
	return t.ownerID
}

func (t *Ticket) AssigneeID() *uint {
	return t.assigneeID
}

func (t *Ticket) ResolvedAt() *time.Time {
	return t.resolvedAt
}

func (t *Ticket) ClosedAt() *time.Time {
	return t.closedAt
}

func (t *Ticket) Version() int {
	return t.version
}

func (t *Ticket) CreatedAt() time.Time {
	return t.createdAt
}

func (t *Ticket) UpdatedAt() time.Time {
	return t.updatedAt
}

func (t *Ticket) IsOwnedBy(userID uint) bool {
	return t.ownerID == userID
}

func (t *Ticket) IsAssignedTo(userID uint) bool {
	return t.assigneeID != nil && *t.assigneeID == userID
}

func (t *Ticket) SetID(id uint) error {
	if t.id != 0 {
		return fmt.Errorf("ticket ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("ticket ID cannot be zero")
	}
	t.id = id
	return nil
}

func (t *Ticket) SetNumber(number string) error {
	if t.number != "" {
		return fmt.Errorf("ticket number is already set")
	}
	if number == "" {
		return fmt.Errorf("ticket number cannot be empty")
	}
	t.number = number
	return nil
}

// ResetNumber clears an unsaved ticket's number so a fresh one can be drawn after a collision.
func (t *Ticket) ResetNumber() {
	if t.id == 0 {
		t.number = ""
	}
}

// StatusChange records a status transition applied to a ticket.
type StatusChange struct {
	From vo.TicketStatus
	To   vo.TicketStatus
}

func (c StatusChange) Changed() bool {
	return c.From != c.To
}

// Note is the system message text for an explicit status change.
func (c StatusChange) Note() string {
	return fmt.Sprintf("Status changed from %s to %s", c.From, c.To)
}

// ChangeStatus sets any valid status. Entering resolved or closed stamps the matching
// timestamp on every entry; timestamps are never cleared.
func (t *Ticket) ChangeStatus(newStatus vo.TicketStatus) (StatusChange, error) {
	change := StatusChange{From: t.status, To: newStatus}
	if !newStatus.IsValid() {
		return change, fmt.Errorf("invalid status: %s", newStatus)
	}
	if !change.Changed() {
		return change, nil
	}

	now := biztime.NowUTC()
	t.status = newStatus
	switch newStatus {
	case vo.StatusResolved:
		t.resolvedAt = &now
	case vo.StatusClosed:
		t.closedAt = &now
	}
	t.touch(now)
	return change, nil
}

func (t *Ticket) ChangePriority(newPriority vo.Priority) (bool, error) {
	if !newPriority.IsValid() {
		return false, fmt.Errorf("invalid priority: %s", newPriority)
	}
	if t.priority == newPriority {
		return false, nil
	}
	t.priority = newPriority
	t.touch(biztime.NowUTC())
	return true, nil
}

// AssignTo replaces the assignee; nil unassigns. Reports whether anything changed.
// The caller is responsible for checking that the assignee is staff.
func (t *Ticket) AssignTo(assigneeID *uint) bool {
	if sameAssignee(t.assigneeID, assigneeID) {
		return false
	}
	if assigneeID == nil {
		t.assigneeID = nil
	} else {
		id := *assigneeID
		t.assigneeID = &id
	}
	t.touch(biztime.NowUTC())
	return true
}

func sameAssignee(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// AssignmentNote is the system message text for an assignee change.
func AssignmentNote(assigneeName string) string {
	if assigneeName == "" {
		return UnassignedText
	}
	return "Ticket assigned to " + assigneeName
}

// UpdateDetails edits title, description and category. Nil arguments are left unchanged.
// Owners lose the right to edit once the ticket is closed; staff keep it.
func (t *Ticket) UpdateDetails(editor authorization.Principal, title, description *string, category *vo.Category) (bool, error) {
	if t.status.IsClosed() && !editor.IsStaff() {
		return false, ErrTicketClosed
	}

	newTitle, newDescription, newCategory := t.title, t.description, t.category
	if title != nil {
		newTitle = *title
	}
	if description != nil {
		newDescription = *description
	}
	if category != nil {
		newCategory = *category
	}
	if err := validateDetails(newTitle, newDescription, newCategory); err != nil {
		return false, err
	}
	if newTitle == t.title && newDescription == t.description && newCategory == t.category {
		return false, nil
	}

	t.title, t.description, t.category = newTitle, newDescription, newCategory
	t.touch(biztime.NowUTC())
	return true, nil
}

// MessageActivity is the effect a new message has on its ticket.
type MessageActivity struct {
	StatusChange
	// ReopenedByOwner is set when the owner's reply moved the ticket out of resolved or pending.
	ReopenedByOwner bool
}

// CheckMessageAllowed reports whether author may post on the ticket in its current status
// without changing anything.
func (t *Ticket) CheckMessageAllowed(author authorization.Principal) error {
	switch {
	case t.status.IsClosed():
		return ErrTicketClosed
	case t.status.IsResolved() && !t.isOwnerReply(author):
		return ErrTicketResolved
	}
	return nil
}

// AcceptMessageFrom checks that author may post and applies the resulting auto-transition.
// It must run against a locked snapshot so concurrent senders observe each other's transition.
func (t *Ticket) AcceptMessageFrom(author authorization.Principal) (MessageActivity, error) {
	activity := MessageActivity{StatusChange: StatusChange{From: t.status, To: t.status}}
	if err := t.CheckMessageAllowed(author); err != nil {
		return activity, err
	}

	switch {
	case t.status.ReopensOnOwnerReply() && t.isOwnerReply(author):
		change, err := t.ChangeStatus(vo.StatusInProgress)
		if err != nil {
			return activity, err
		}
		activity.StatusChange = change
		activity.ReopenedByOwner = true
	case t.status.IsOpen() && author.IsStaff():
		change, err := t.ChangeStatus(vo.StatusInProgress)
		if err != nil {
			return activity, err
		}
		activity.StatusChange = change
	}
	return activity, nil
}

func (t *Ticket) isOwnerReply(author authorization.Principal) bool {
	return author.Role == authorization.RoleUser && t.IsOwnedBy(author.ID)
}

func (t *Ticket) touch(now time.Time) {
	t.updatedAt = now
	t.version++
}
