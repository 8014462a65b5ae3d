package storage

import (
	"context"
	"io"
	"time"
)

// Package storage contains the object storage abstraction for uploaded
// document blobs. Blobs are content-addressed: keys are derived from the
// content digest, so writing the same bytes twice lands on the same key.
// Implementations must rely on streaming I/O only.

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage persists document blobs to two backends: a PDF/document archive and
// a general object store. Both writes are keyed by the content-derived
// filename and are overwrite-safe.
type Storage interface {
	// Upload persists the blob to the archive store under filename, tagging
	// it with its content digest.
	Upload(ctx context.Context, r io.Reader, digest, filename string, size int64) (ObjectInfo, error)
	// PutToStorage persists the blob to the general object store under filename.
	PutToStorage(ctx context.Context, r io.Reader, filename string, size int64) (ObjectInfo, error)
	// Get retrieves an object's content from the general store as a streaming
	// reader alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes an object from the general store by key.
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited URL that can be used to download the
	// object from the general store without credentials.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}
