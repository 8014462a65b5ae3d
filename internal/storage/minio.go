package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"backendconf/internal/config"
)

// minioStorage implements the Storage interface using an S3-compatible
// backend (MinIO, AWS S3, etc.) with two buckets: a PDF/document archive and
// a general file store. It is safe for concurrent use by multiple goroutines.
type minioStorage struct {
	client        *minio.Client
	archiveBucket string
	fileBucket    string
}

// NewMinIO creates a new S3-compatible storage client backed by MinIO.
// It validates connectivity and ensures both buckets exist (creates them if
// missing).
func NewMinIO(cfg config.MinIOConfig) (Storage, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio credentials are required")
	}
	if cfg.ArchiveBucket == "" || cfg.FileBucket == "" {
		return nil, fmt.Errorf("minio buckets are required")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ms := &minioStorage{
		client:        cli,
		archiveBucket: cfg.ArchiveBucket,
		fileBucket:    cfg.FileBucket,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, bucket := range []string{cfg.ArchiveBucket, cfg.FileBucket} {
		exists, err := cli.BucketExists(ctx, bucket)
		if err != nil {
			return nil, fmt.Errorf("check bucket %s: %w", bucket, err)
		}
		if !exists {
			if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
				return nil, fmt.Errorf("create bucket %s: %w", bucket, err)
			}
		}
	}

	return ms, nil
}

// Upload writes the blob to the archive bucket, tagged with its digest.
func (m *minioStorage) Upload(ctx context.Context, r io.Reader, digest, filename string, size int64) (ObjectInfo, error) {
	opts := minio.PutObjectOptions{
		UserMetadata: map[string]string{"content-digest": digest},
	}
	info, err := m.client.PutObject(ctx, m.archiveBucket, filename, r, size, opts)
	if err != nil {
		return ObjectInfo{}, err
	}
	return ObjectInfo{
		Key:          filename,
		Size:         info.Size,
		ETag:         info.ETag,
		LastModified: time.Now(),
		Metadata:     opts.UserMetadata,
	}, nil
}

// PutToStorage writes the blob to the general file bucket.
func (m *minioStorage) PutToStorage(ctx context.Context, r io.Reader, filename string, size int64) (ObjectInfo, error) {
	info, err := m.client.PutObject(ctx, m.fileBucket, filename, r, size, minio.PutObjectOptions{})
	if err != nil {
		return ObjectInfo{}, err
	}
	return ObjectInfo{
		Key:          filename,
		Size:         info.Size,
		ETag:         info.ETag,
		LastModified: time.Now(),
	}, nil
}

// Get downloads an object from the file bucket as a ReadCloser along with
// basic info.
func (m *minioStorage) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	obj, err := m.client.GetObject(ctx, m.fileBucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	// Fetch stat to populate info; avoid reading content into memory.
	st, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, ObjectInfo{}, err
	}
	info := ObjectInfo{
		Key:          key,
		Size:         st.Size,
		ETag:         st.ETag,
		ContentType:  st.ContentType,
		LastModified: st.LastModified,
		Metadata:     st.UserMetadata,
	}
	return obj, info, nil
}

// Delete removes an object from the file bucket by key.
func (m *minioStorage) Delete(ctx context.Context, key string) error {
	return m.client.RemoveObject(ctx, m.fileBucket, key, minio.RemoveObjectOptions{})
}

// PresignGet generates a pre-signed URL for GET with the specified expiry.
func (m *minioStorage) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, m.fileBucket, key, expiry, url.Values{})
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
