// Package storage provides object storage for raw video and thumbnail files.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"ummahtube/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key         string
	Size        int64
	ContentType string
}

// ObjectStore abstracts the media object storage so services stay testable.
type ObjectStore interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Stat(ctx context.Context, key string) (*ObjectInfo, error)
	Remove(ctx context.Context, key string) error
}

// minioStore implements ObjectStore on a MinIO (S3-compatible) endpoint.
type minioStore struct {
	client *minio.Client
	cfg    *config.Config
}

// NewMinioStore connects to the configured MinIO endpoint.
func NewMinioStore(cfg *config.Config) (ObjectStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return &minioStore{client: client, cfg: cfg}, nil
}

func (s *minioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.cfg.MinioBucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.cfg.MinioBucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.cfg.MinioBucket, err)
	}
	return nil
}

// Put streams the object into the bucket and returns its public URL.
func (s *minioStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.cfg.MinioBucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return s.cfg.MediaURL(key), nil
}

func (s *minioStore) Stat(ctx context.Context, key string) (*ObjectInfo, error) {
	info, err := s.client.StatObject(ctx, s.cfg.MinioBucket, key, minio.StatObjectOptions{})
	if err != nil {
		if strings.Contains(err.Error(), "NoSuchKey") {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("stat object %s: %w", key, err)
	}
	return &ObjectInfo{
		Key:         info.Key,
		Size:        info.Size,
		ContentType: info.ContentType,
	}, nil
}

func (s *minioStore) Remove(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.cfg.MinioBucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s: %w", key, err)
	}
	return nil
}

// ErrObjectNotFound is returned by Stat when the key does not exist.
var ErrObjectNotFound = fmt.Errorf("object not found")

// VideoObjectKey builds the canonical object key for a user's raw video file.
func VideoObjectKey(userID, videoID uint, ext string) string {
	return fmt.Sprintf("users/%d/videos/%d/source/original%s", userID, videoID, ext)
}

// ThumbnailObjectKey builds the canonical object key for a video thumbnail.
func ThumbnailObjectKey(userID, videoID uint, ext string) string {
	return fmt.Sprintf("users/%d/videos/%d/thumbnails/cover%s", userID, videoID, ext)
}
