// Package storage defines the interface for object-storage backends.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Backend is the narrow surface the upload pipeline needs from object
// storage: write an object, and optionally issue a time-limited download
// link for it.
type Backend interface {
	// Upload writes the object exactly once. size must be the exact byte
	// count. metadata is attached to the stored object.
	Upload(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string, metadata map[string]string) error

	// PresignDownload returns a credential-free GET URL valid for ttl.
	// Backends that cannot issue URLs return an error; callers treat that
	// as a degraded result, not a failure.
	PresignDownload(ctx context.Context, objectKey string, ttl time.Duration) (string, error)
}

// Error wraps a backend failure with the operation and object key involved.
type Error struct {
	Op  string
	Key string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage %s failed for key %s: %v", e.Op, e.Key, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
