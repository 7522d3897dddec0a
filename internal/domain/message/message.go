package message

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/helpdesk-inc/helpdesk/internal/shared/authorization"
	"github.com/helpdesk-inc/helpdesk/internal/shared/biztime"
)

const (
	MaxContentLength = 5000
	// PreviewLength is the number of characters carried by new-message notifications.
	PreviewLength = 100
)

// EditEntry is one prior version of a message's content.
type EditEntry struct {
	Content  string
	EditedAt time.Time
}

type Message struct {
	id          uint
	ticketID    uint
	authorID    uint
	content     string
	attachments []Attachment
	isSystem    bool
	editHistory []EditEntry
	editedAt    *time.Time
	readAt      *time.Time
	deletedAt   *time.Time
	createdAt   time.Time
	updatedAt   time.Time
}

// NewMessage creates a user-authored message. Content may be empty only when attachments exist.
func NewMessage(ticketID, authorID uint, content string, attachments []Attachment) (*Message, error) {
	if ticketID == 0 {
		return nil, fmt.Errorf("ticket ID is required")
	}
	if authorID == 0 {
		return nil, fmt.Errorf("author ID is required")
	}
	if err := validateContent(content, len(attachments) > 0); err != nil {
		return nil, err
	}

	now := biztime.NowUTC()
	return &Message{
		ticketID:    ticketID,
		authorID:    authorID,
		content:     content,
		attachments: copyAttachments(attachments),
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// NewSystemMessage creates an immutable note attributed to the ticket owner.
func NewSystemMessage(ticketID, ownerID uint, content string) (*Message, error) {
	m, err := NewMessage(ticketID, ownerID, content, nil)
	if err != nil {
		return nil, err
	}
	m.isSystem = true
	return m, nil
}

func ReconstructMessage(
	id uint,
	ticketID uint,
	authorID uint,
	content string,
	attachments []Attachment,
	isSystem bool,
	editHistory []EditEntry,
	editedAt, readAt, deletedAt *time.Time,
	createdAt, updatedAt time.Time,
) (*Message, error) {
	if id == 0 {
		return nil, fmt.Errorf("message ID cannot be zero")
	}
	if ticketID == 0 {
		return nil, fmt.Errorf("ticket ID is required")
	}
	return &Message{
		id:          id,
		ticketID:    ticketID,
		authorID:    authorID,
		content:     content,
		attachments: attachments,
		isSystem:    isSystem,
		editHistory: editHistory,
		editedAt:    editedAt,
		readAt:      readAt,
		deletedAt:   deletedAt,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}, nil
}

func validateContent(content string, hasAttachments bool) error {
	if strings.TrimSpace(content) == "" && !hasAttachments {
		return ErrEmptyMessage
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return ErrContentTooLong
	}
	return nil
}

func copyAttachments(in []Attachment) []Attachment {
	if len(in) == 0 {
		return nil
	}
	out := make([]Attachment, len(in))
	copy(out, in)
	return out
}

func (m *Message) ID() uint {
	return m.id
}

func (m *Message) TicketID() uint {
	return m.ticketID
}

func (m *Message) AuthorID() uint {
	return m.authorID
}

func (m *Message) Content() string {
	return m.content
}

func (m *Message) IsSystem() bool {
	return m.isSystem
}

func (m *Message) EditedAt() *time.Time {
	return m.editedAt
}

func (m *Message) ReadAt() *time.Time {
	return m.readAt
}

func (m *Message) DeletedAt() *time.Time {
	return m.deletedAt
}

func (m *Message) CreatedAt() time.Time {
	return m.createdAt
}

func (m *Message) UpdatedAt() time.Time {
	return m.updatedAt
}

func (m *Message) IsDeleted() bool {
	return m.deletedAt != nil
}

func (m *Message) Attachments() []Attachment {
	return copyAttachments(m.attachments)
}

func (m *Message) EditHistory() []EditEntry {
	out := make([]EditEntry, len(m.editHistory))
	copy(out, m.editHistory)
	return out
}

func (m *Message) SetID(id uint) error {
	if m.id != 0 {
		return fmt.Errorf("message ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("message ID cannot be zero")
	}
	m.id = id
	return nil
}

// Edit replaces the content, pushing the previous version onto the append-only history.
func (m *Message) Edit(editorID uint, newContent string) error {
	if m.isSystem {
		return ErrSystemMessage
	}
	if m.deletedAt != nil {
		return ErrDeleted
	}
	if editorID != m.authorID {
		return ErrNotAuthor
	}
	if strings.TrimSpace(newContent) == "" {
		return ErrEmptyMessage
	}
	if utf8.RuneCountInString(newContent) > MaxContentLength {
		return ErrContentTooLong
	}

	now := biztime.NowUTC()
	m.editHistory = append(m.editHistory, EditEntry{Content: m.content, EditedAt: now})
	m.content = newContent
	m.editedAt = &now
	m.updatedAt = now
	return nil
}

// CheckDeletableBy allows the author or an admin to delete non-system messages.
func (m *Message) CheckDeletableBy(p authorization.Principal) error {
	if m.isSystem {
		return ErrSystemMessage
	}
	if m.deletedAt != nil {
		return ErrDeleted
	}
	if p.ID != m.authorID && !p.IsAdmin() {
		return ErrNotAuthor
	}
	return nil
}

// MarkDeleted tombstones the message.
func (m *Message) MarkDeleted() {
	if m.deletedAt != nil {
		return
	}
	now := biztime.NowUTC()
	m.deletedAt = &now
	m.updatedAt = now
}

// StoredPaths lists blob paths owned by the message.
func (m *Message) StoredPaths() []string {
	var paths []string
	for _, a := range m.attachments {
		if a.IsStored() {
			paths = append(paths, a.Path)
		}
	}
	return paths
}

// Preview returns at most PreviewLength characters of content.
func (m *Message) Preview() string {
	return Truncate(m.content, PreviewLength)
}

// Truncate cuts s to n runes.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
