package message

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpdesk-inc/helpdesk/internal/shared/authorization"
)

func persisted(t *testing.T, authorID uint, content string, system bool, attachments ...Attachment) *Message {
	t.Helper()
	now := time.Now().UTC()
	m, err := ReconstructMessage(5, 1, authorID, content, attachments, system, nil, nil, nil, nil, now, now)
	require.NoError(t, err)
	return m
}

func TestNewMessage_ContentOrAttachment(t *testing.T) {
	_, err := NewMessage(1, 2, "", nil)
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = NewMessage(1, 2, "   ", nil)
	assert.ErrorIs(t, err, ErrEmptyMessage)

	m, err := NewMessage(1, 2, "", []Attachment{NewURLAttachment("https://example.com/log")})
	require.NoError(t, err)
	assert.Empty(t, m.Content())
	assert.Len(t, m.Attachments(), 1)

	m, err = NewMessage(1, 2, "content only", nil)
	require.NoError(t, err)
	assert.Empty(t, m.Attachments())

	_, err = NewMessage(1, 2, strings.Repeat("a", MaxContentLength+1), nil)
	assert.ErrorIs(t, err, ErrContentTooLong)
}

func TestNewSystemMessage(t *testing.T) {
	m, err := NewSystemMessage(1, 10, "Ticket created")
	require.NoError(t, err)
	assert.True(t, m.IsSystem())
	assert.Equal(t, uint(10), m.AuthorID())
}

func TestEdit_AppendOnlyHistory(t *testing.T) {
	m := persisted(t, 2, "C1", false)

	require.NoError(t, m.Edit(2, "C2"))
	history := m.EditHistory()
	require.Len(t, history, 1)
	assert.Equal(t, "C1", history[0].Content)
	assert.Equal(t, "C2", m.Content())
	require.NotNil(t, m.EditedAt())
	firstEditedAt := history[0].EditedAt

	require.NoError(t, m.Edit(2, "C3"))
	history = m.EditHistory()
	require.Len(t, history, 2)
	assert.Equal(t, "C1", history[0].Content)
	assert.Equal(t, firstEditedAt, history[0].EditedAt)
	assert.Equal(t, "C2", history[1].Content)
	assert.Equal(t, "C3", m.Content())
}

func TestEdit_Rejections(t *testing.T) {
	m := persisted(t, 2, "C1", false)
	assert.ErrorIs(t, m.Edit(3, "C2"), ErrNotAuthor)
	assert.ErrorIs(t, m.Edit(2, ""), ErrEmptyMessage)

	system := persisted(t, 2, "Ticket created", true)
	assert.ErrorIs(t, system.Edit(2, "changed"), ErrSystemMessage)

	m.MarkDeleted()
	assert.ErrorIs(t, m.Edit(2, "C2"), ErrDeleted)
}

func TestCheckDeletableBy(t *testing.T) {
	author := authorization.Principal{ID: 2, Role: authorization.RoleUser}
	other := authorization.Principal{ID: 3, Role: authorization.RoleIncharge}
	admin := authorization.Principal{ID: 9, Role: authorization.RoleAdmin}

	m := persisted(t, 2, "hello", false)
	assert.NoError(t, m.CheckDeletableBy(author))
	assert.NoError(t, m.CheckDeletableBy(admin))
	assert.ErrorIs(t, m.CheckDeletableBy(other), ErrNotAuthor)

	system := persisted(t, 2, "Ticket created", true)
	for _, p := range []authorization.Principal{author, other, admin} {
		assert.ErrorIs(t, system.CheckDeletableBy(p), ErrSystemMessage)
	}
}

func TestMarkDeletedAndStoredPaths(t *testing.T) {
	m := persisted(t, 2, "", false,
		Attachment{Type: AttachmentImage, Path: "attachments/1/a.png"},
		NewURLAttachment("https://example.com"),
		Attachment{Type: AttachmentDocument, Path: "attachments/1/b.pdf"},
	)
	assert.Equal(t, []string{"attachments/1/a.png", "attachments/1/b.pdf"}, m.StoredPaths())

	m.MarkDeleted()
	assert.True(t, m.IsDeleted())
	first := *m.DeletedAt()
	m.MarkDeleted()
	assert.Equal(t, first, *m.DeletedAt())
}

func TestPreview(t *testing.T) {
	m := persisted(t, 2, strings.Repeat("é", 150), false)
	assert.Equal(t, 100, len([]rune(m.Preview())))
	assert.Equal(t, "short", Truncate("short", 100))
}

func TestClassifyContentType(t *testing.T) {
	assert.Equal(t, AttachmentImage, ClassifyContentType("image/png"))
	assert.Equal(t, AttachmentVideo, ClassifyContentType("Video/MP4"))
	assert.Equal(t, AttachmentDocument, ClassifyContentType("application/pdf"))
	assert.Equal(t, AttachmentDocument, ClassifyContentType(""))
}

func TestDraftValidate(t *testing.T) {
	limits := DefaultLimits()
	file := func(size int64) FileMeta { return FileMeta{Name: "f.bin", Size: size, ContentType: "application/octet-stream"} }

	tests := []struct {
		name      string
		draft     Draft
		wantField string
	}{
		{"empty", Draft{}, "content"},
		{"content only", Draft{Content: "hi"}, ""},
		{"file only", Draft{Files: []FileMeta{file(10)}}, ""},
		{"url only", Draft{URLs: []string{"https://example.com/a"}}, ""},
		{"too many files", Draft{Files: make([]FileMeta, 11)}, "attachments"},
		{"ten files ok", Draft{Files: make([]FileMeta, 10)}, ""},
		{"oversized file", Draft{Files: []FileMeta{file(limits.MaxFileSize + 1)}}, "attachments"},
		{"max size file ok", Draft{Files: []FileMeta{file(limits.MaxFileSize)}}, ""},
		{"too many urls", Draft{URLs: []string{"https://a.io", "https://b.io", "https://c.io", "https://d.io", "https://e.io", "https://f.io"}}, "urls"},
		{"bad url", Draft{URLs: []string{"not a url"}}, "urls"},
		{"ftp url", Draft{URLs: []string{"ftp://files.example.com"}}, "urls"},
		{"long url", Draft{URLs: []string{"https://example.com/" + strings.Repeat("a", 2000)}}, "urls"},
		{"long content", Draft{Content: strings.Repeat("a", 5001)}, "content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problems := tt.draft.Validate(limits)
			if tt.wantField == "" {
				assert.Nil(t, problems)
				return
			}
			assert.Contains(t, problems, tt.wantField)
		})
	}
}
