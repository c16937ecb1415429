package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/arzan03/ProfileSeller/internal/config"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

// ObjectStore keeps listing attachments in a MinIO bucket.
type ObjectStore struct {
	client *minio.Client
	bucket string
	log    zerolog.Logger
}

// NewObjectStore connects to MinIO and creates the bucket when it does not
// exist yet.
func NewObjectStore(ctx context.Context, cfg config.MinioConfig, log zerolog.Logger) (*ObjectStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	log = log.With().Str("component", "storage").Str("bucket", cfg.Bucket).Logger()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
		log.Info().Msg("created bucket")
	}

	log.Info().Str("endpoint", cfg.Endpoint).Msg("connected to MinIO")
	return &ObjectStore{client: client, bucket: cfg.Bucket, log: log}, nil
}

// ObjectKey builds the bucket key for a file attached to a listing.
func ObjectKey(profileID, filename string) string {
	return fmt.Sprintf("profiles/%s/%s_%s", profileID, uuid.NewString(), cleanName(filename))
}

// cleanName drops any directory part and spaces from an uploaded file name.
func cleanName(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "file"
	}
	return strings.ReplaceAll(name, " ", "_")
}

func (s *ObjectStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	s.log.Debug().Str("key", key).Int64("size", size).Msg("object stored")
	return nil
}

// PresignedURL returns a temporary download link for key.
func (s *ObjectStore) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return u.String(), nil
}

func (s *ObjectStore) Remove(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}
