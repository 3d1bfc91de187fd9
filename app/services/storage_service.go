package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/usbest/usbest-backend/config"
	"go.uber.org/zap"
)

// StorageService signs direct uploads to object storage
type StorageService interface {
	PresignUpload(ctx context.Context, objectPath string) (uploadURL string, expiresAt time.Time, err error)
	PublicURL(objectPath string) string
	EnsureBucket(ctx context.Context) error
}

// MinioStorageService implements StorageService on an S3 compatible bucket
type MinioStorageService struct {
	client *minio.Client
	cfg    config.StorageConfig
	logger *zap.Logger
}

// NewMinioStorageService creates a MinIO client for the configured bucket
func NewMinioStorageService(cfg config.StorageConfig, logger *zap.Logger) (*MinioStorageService, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &MinioStorageService{client: client, cfg: cfg, logger: logger}, nil
}

// EnsureBucket creates the upload bucket when it does not exist
func (s *MinioStorageService) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", s.cfg.Bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.cfg.Bucket, minio.MakeBucketOptions{Region: s.cfg.Region}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.cfg.Bucket, err)
	}
	s.logger.Info("storage bucket created", zap.String("bucket", s.cfg.Bucket))
	return nil
}

// PresignUpload returns a PUT URL valid for the configured TTL
func (s *MinioStorageService) PresignUpload(ctx context.Context, objectPath string) (string, time.Time, error) {
	ttl := s.cfg.UploadURLTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	u, err := s.client.PresignedPutObject(ctx, s.cfg.Bucket, objectPath, ttl)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to presign upload for %s: %w", objectPath, err)
	}
	return u.String(), time.Now().UTC().Add(ttl), nil
}

// PublicURL is where the object is served from once uploaded
func (s *MinioStorageService) PublicURL(objectPath string) string {
	return PublicObjectURL(s.cfg, objectPath)
}

// PublicObjectURL joins the public base URL (or the endpoint and bucket) with the object path
func PublicObjectURL(cfg config.StorageConfig, objectPath string) string {
	base := strings.TrimRight(cfg.PublicBaseURL, "/")
	if base == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		base = (&url.URL{Scheme: scheme, Host: cfg.Endpoint, Path: "/" + cfg.Bucket}).String()
	}
	return base + "/" + strings.TrimLeft(objectPath, "/")
}
