// Package memory provides an in-memory storage backend. It backs tests and
// lets the service run without object-storage credentials.
package memory

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/pdfdrop/service/internal/storage"
)

// ErrPresignUnsupported is returned by PresignDownload; the in-memory
// backend has no URL to hand out.
var ErrPresignUnsupported = errors.New("presigned URLs not supported by memory backend")

// Object is a stored payload with its content type and metadata.
type Object struct {
	Data        []byte
	ContentType string
	Metadata    map[string]string
}

// Backend is an in-memory implementation of the storage.Backend interface.
type Backend struct {
	mu      sync.RWMutex
	objects map[string]Object
}

// New creates an empty in-memory backend.
func New() *Backend {
	return &Backend{objects: make(map[string]Object)}
}

// Upload reads the payload fully and stores it under objectKey.
func (b *Backend) Upload(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string, metadata map[string]string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return &storage.Error{Op: "upload", Key: objectKey, Err: err}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[objectKey] = Object{Data: data, ContentType: contentType, Metadata: metadata}
	return nil
}

// PresignDownload always fails; callers degrade to a result without a URL.
func (b *Backend) PresignDownload(ctx context.Context, objectKey string, ttl time.Duration) (string, error) {
	return "", &storage.Error{Op: "presign", Key: objectKey, Err: ErrPresignUnsupported}
}

// Get returns the stored object, if any. Used by tests to inspect writes.
func (b *Backend) Get(objectKey string) (Object, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, ok := b.objects[objectKey]
	return obj, ok
}

// Len reports the number of stored objects.
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.objects)
}
