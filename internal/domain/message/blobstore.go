package message

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// StoredBlob locates a blob after it was written.
type StoredBlob struct {
	Path string
	URL  string
}

// BlobInfo describes a blob being read back.
type BlobInfo struct {
	Size        int64
	ContentType string
}

// BlobStore holds attachment bytes. Delete of a missing path is not an error.
type BlobStore interface {
	Store(ctx context.Context, ticketID uint, r io.Reader, size int64, name, contentType string) (StoredBlob, error)
	Delete(ctx context.Context, path string) error
	Open(ctx context.Context, path string) (io.ReadCloser, BlobInfo, error)
}

// BlobKeyPrefix is the root every stored attachment lives under.
const BlobKeyPrefix = "attachments"

// BlobKey builds the storage path for an attachment of ticketID. digest is the hex content
// hash and ext includes the leading dot.
func BlobKey(ticketID uint, digest, ext string) string {
	return fmt.Sprintf("%s/%d/%s%s", BlobKeyPrefix, ticketID, digest, strings.ToLower(ext))
}

// TicketIDFromBlobKey extracts the owning ticket from a path built by BlobKey.
func TicketIDFromBlobKey(path string) (uint, bool) {
	parts := strings.Split(path, "/")
	if len(parts) != 3 || parts[0] != BlobKeyPrefix || parts[2] == "" || strings.Contains(parts[2], "..") {
		return 0, false
	}
	id, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
