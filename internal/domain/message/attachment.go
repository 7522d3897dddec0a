package message

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

type AttachmentType string

const (
	AttachmentImage    AttachmentType = "image"
	AttachmentVideo    AttachmentType = "video"
	AttachmentDocument AttachmentType = "document"
	AttachmentURL      AttachmentType = "url"
)

func (t AttachmentType) String() string {
	return string(t)
}

func (t AttachmentType) IsValid() bool {
	switch t {
	case AttachmentImage, AttachmentVideo, AttachmentDocument, AttachmentURL:
		return true
	}
	return false
}

// ClassifyContentType maps a declared MIME type to an attachment type.
func ClassifyContentType(contentType string) AttachmentType {
	mime := strings.ToLower(strings.TrimSpace(contentType))
	switch {
	case strings.HasPrefix(mime, "image/"):
		return AttachmentImage
	case strings.HasPrefix(mime, "video/"):
		return AttachmentVideo
	default:
		return AttachmentDocument
	}
}

// Attachment is one entry of a message's ordered attachment list. Path is set only for
// blobs held by the blob store; URL entries carry just the link.
type Attachment struct {
	Type AttachmentType
	Path string
	URL  string
	Name string
	Size int64
	Mime string
}

// IsStored reports whether the attachment owns a blob that must be released on delete.
func (a Attachment) IsStored() bool {
	return a.Type != AttachmentURL && a.Path != ""
}

// NewURLAttachment builds a link attachment; the URL doubles as its display name.
func NewURLAttachment(link string) Attachment {
	return Attachment{Type: AttachmentURL, URL: link, Name: link}
}

// Limits are the ceilings enforced on a single send.
type Limits struct {
	MaxFiles         int
	MaxURLs          int
	MaxFileSize      int64
	MaxURLLength     int
	MaxContentLength int
}

// DefaultLimits are 10 files of at most 20 MiB each, 5 URLs of at most 2000 characters
// and 5000 characters of content.
func DefaultLimits() Limits {
	return Limits{
		MaxFiles:         10,
		MaxURLs:          5,
		MaxFileSize:      20 * 1024 * 1024,
		MaxURLLength:     2000,
		MaxContentLength: MaxContentLength,
	}
}

// FileMeta describes an uploaded file before it is stored.
type FileMeta struct {
	Name        string
	Size        int64
	ContentType string
}

// Draft is an unsent message as received from a client.
type Draft struct {
	Content string
	Files   []FileMeta
	URLs    []string
}

// Validate checks a draft against limits and returns field-level problems keyed by
// input name. A nil map means the draft is acceptable.
func (d Draft) Validate(limits Limits) map[string]string {
	problems := make(map[string]string)

	if utf8.RuneCountInString(d.Content) > limits.MaxContentLength {
		problems["content"] = "must not exceed 5000 characters"
	}
	if len(d.Files) > limits.MaxFiles {
		problems["attachments"] = "too many files"
	}
	for _, f := range d.Files {
		if f.Size > limits.MaxFileSize {
			problems["attachments"] = "file " + f.Name + " exceeds the size limit"
			break
		}
	}
	if len(d.URLs) > limits.MaxURLs {
		problems["urls"] = "too many urls"
	}
	for _, raw := range d.URLs {
		if !isValidLink(raw, limits.MaxURLLength) {
			problems["urls"] = "invalid url: " + raw
			break
		}
	}
	if strings.TrimSpace(d.Content) == "" && len(d.Files) == 0 && len(d.URLs) == 0 {
		problems["content"] = "message content or attachment required"
	}

	if len(problems) == 0 {
		return nil
	}
	return problems
}

func isValidLink(raw string, maxLen int) bool {
	if raw == "" || len(raw) > maxLen {
		return false
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
