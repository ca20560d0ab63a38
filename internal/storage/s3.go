package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/givehub/mediakit/internal/config"
	"github.com/givehub/mediakit/internal/media"
)

// S3 stores artifacts in a MinIO/S3 bucket using the same
// "<attachmentID>/<name>" keys as the local tree.
type S3 struct {
	client *minio.Client
	bucket string
	region string
	ttl    time.Duration
}

// NewS3 creates a MinIO-backed storage from the Config.
func NewS3(cfg *config.Config) (*S3, error) {
	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3UseSSL,
		Region: cfg.S3Region,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: init minio: %v", media.ErrStorage, err)
	}
	return &S3{
		client: client,
		bucket: cfg.S3Bucket,
		region: cfg.S3Region,
		ttl:    cfg.SignedURLTTL,
	}, nil
}

// EnsureBucket makes sure the media bucket exists before use.
func (s *S3) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("%w: check bucket %s: %v", media.ErrStorage, s.bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
			return fmt.Errorf("%w: make bucket %s: %v", media.ErrStorage, s.bucket, err)
		}
	}
	return nil
}

// Put uploads one artifact under the attachment's key prefix.
func (s *S3) Put(ctx context.Context, attachmentID, name string, data []byte, contentType string) (string, error) {
	key := attachmentID + "/" + name
	opts := minio.PutObjectOptions{ContentType: contentType}
	if _, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), opts); err != nil {
		return "", fmt.Errorf("%w: put object %s: %v", media.ErrStorage, key, err)
	}
	return key, nil
}

// Open streams a stored artifact.
func (s *S3) Open(ctx context.Context, attachmentID, name string) (io.ReadCloser, error) {
	key := attachmentID + "/" + name
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: get object %s: %v", media.ErrStorage, key, err)
	}
	return obj, nil
}

// Remove deletes every object under the attachment's prefix.
func (s *S3) Remove(ctx context.Context, attachmentID string) error {
	prefix := attachmentID + "/"
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return fmt.Errorf("%w: list objects %s: %v", media.ErrStorage, prefix, obj.Err)
		}
		if err := s.client.RemoveObject(ctx, s.bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("%w: remove object %s: %v", media.ErrStorage, obj.Key, err)
		}
	}
	return nil
}

// ResolveURL presigns a GET URL for the stored key. Presign failures yield
// an empty URL rather than failing the read; the artifact is still
// reachable once the backend recovers.
func (s *S3) ResolveURL(_ string, storedPath string) string {
	u, err := s.client.PresignedGetObject(context.Background(), s.bucket, storedPath, s.ttl, url.Values{})
	if err != nil {
		return ""
	}
	return u.String()
}
