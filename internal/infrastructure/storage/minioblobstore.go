// Package storage keeps message attachments in an S3-compatible bucket.
package storage

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"golang.org/x/crypto/blake2b"

	"github.com/helpdesk-inc/helpdesk/internal/domain/message"
	"github.com/helpdesk-inc/helpdesk/internal/shared/config"
	"github.com/helpdesk-inc/helpdesk/internal/shared/errors"
	"github.com/helpdesk-inc/helpdesk/internal/shared/logger"
)

const (
	// DownloadRoutePrefix serves attachments through the API when no public base URL is set.
	DownloadRoutePrefix = "/api/attachments/"

	defaultContentType = "application/octet-stream"
)

// MinioBlobStore implements message.BlobStore on MinIO.
type MinioBlobStore struct {
	client        *minio.Client
	bucket        string
	publicBaseURL string
	logger        logger.Interface
}

// NewMinioClient connects to the configured endpoint.
func NewMinioClient(cfg config.StorageConfig) (*minio.Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return client, nil
}

func NewMinioBlobStore(client *minio.Client, cfg config.StorageConfig, logger logger.Interface) *MinioBlobStore {
	return &MinioBlobStore{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		logger:        logger,
	}
}

// EnsureBucket creates the attachment bucket when it does not exist yet.
func (s *MinioBlobStore) EnsureBucket(ctx context.Context, region string) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		s.logger.Debugw("attachment bucket already exists", "bucket", s.bucket)
		return nil
	}

	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	s.logger.Infow("attachment bucket created", "bucket", s.bucket)
	return nil
}

// Store uploads the content under attachments/<ticket>/<digest><ext>. The digest mixes a
// random salt into the content hash so two uploads never share a key.
func (s *MinioBlobStore) Store(ctx context.Context, ticketID uint, r io.Reader, size int64, name, contentType string) (message.StoredBlob, error) {
	data, err := io.ReadAll(io.LimitReader(r, size+1))
	if err != nil {
		return message.StoredBlob{}, fmt.Errorf("failed to read attachment %s: %w", name, err)
	}
	if int64(len(data)) != size {
		return message.StoredBlob{}, fmt.Errorf("attachment %s: expected %d bytes, read %d", name, size, len(data))
	}

	key := message.BlobKey(ticketID, digest(data), path.Ext(name))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), size, minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			"original-name": name,
		},
	})
	if err != nil {
		return message.StoredBlob{}, fmt.Errorf("failed to upload attachment %s: %w", key, err)
	}

	s.logger.Debugw("attachment stored",
		"ticket_id", ticketID,
		"path", key,
		"size", size,
	)
	return message.StoredBlob{Path: key, URL: s.publicURL(key)}, nil
}

// Delete removes the blob. Missing objects are not an error.
func (s *MinioBlobStore) Delete(ctx context.Context, key string) error {
	err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	if err != nil && !isNoSuchKey(err) {
		return fmt.Errorf("failed to delete attachment %s: %w", key, err)
	}
	return nil
}

// Open streams a blob back. A missing object yields a not-found AppError.
func (s *MinioBlobStore) Open(ctx context.Context, key string) (io.ReadCloser, message.BlobInfo, error) {
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, message.BlobInfo{}, errors.NewNotFoundError("attachment not found")
		}
		return nil, message.BlobInfo{}, fmt.Errorf("failed to stat attachment %s: %w", key, err)
	}

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, message.BlobInfo{}, fmt.Errorf("failed to open attachment %s: %w", key, err)
	}

	contentType := info.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}
	return obj, message.BlobInfo{Size: info.Size, ContentType: contentType}, nil
}

func (s *MinioBlobStore) publicURL(key string) string {
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + key
	}
	return DownloadRoutePrefix + key
}

func digest(data []byte) string {
	h, _ := blake2b.New256(nil)
	h.Write([]byte(uuid.NewString()))
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

func isNoSuchKey(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
}
