// Package upload implements the PDF admission pipeline and the request
// coordinator that validates one upload, stores it, and assembles the
// response.
package upload

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"
)

// Request is one upload as received at the HTTP boundary. It lives for the
// duration of a single request.
type Request struct {
	// Filename is the client-declared name, untrusted.
	Filename string
	// ContentType is the client-declared MIME type, untrusted.
	ContentType string
	// Size is the payload length in bytes.
	Size int64
	// Content is the payload. The pipeline reads only the signature window
	// and rewinds; the full body is streamed to storage afterwards.
	Content io.ReadSeeker
}

// Result describes a completed upload.
type Result struct {
	// Filename is the sanitized display name.
	Filename string
	// Key is the storage key the object was written under.
	Key string
	// PresignedURL is nil when the backend could not issue one.
	PresignedURL *string
	// Size is the stored byte count.
	Size int64
}

// Storer is the slice of the storage backend the coordinator uses.
type Storer interface {
	Upload(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string, metadata map[string]string) error
	PresignDownload(ctx context.Context, objectKey string, ttl time.Duration) (string, error)
}

// Options tune the coordinator. Zero values select the defaults.
type Options struct {
	MaxUploadBytes int64         // default 50 MiB
	PresignTTL     time.Duration // default 1 hour
	StoreTimeout   time.Duration // default 2 minutes
	Logger         *slog.Logger  // default slog.Default()
}

const (
	defaultMaxUploadBytes = 50 * 1024 * 1024
	defaultPresignTTL     = time.Hour
	defaultStoreTimeout   = 2 * time.Minute
)

// Service coordinates one upload transaction: admission, key generation,
// exactly one store attempt, and a best-effort presign.
type Service struct {
	pipeline     *Pipeline
	keys         KeyGenerator
	backend      Storer
	presignTTL   time.Duration
	storeTimeout time.Duration
	logger       *slog.Logger
}

// NewService wires a coordinator around the given backend.
func NewService(backend Storer, opts Options) *Service {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUploadBytes
	}
	if opts.PresignTTL <= 0 {
		opts.PresignTTL = defaultPresignTTL
	}
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = defaultStoreTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Service{
		pipeline:     NewPDFPipeline(opts.MaxUploadBytes),
		keys:         NewKeyGenerator(),
		backend:      backend,
		presignTTL:   opts.PresignTTL,
		storeTimeout: opts.StoreTimeout,
		logger:       opts.Logger,
	}
}

// MaxUploadBytes returns the admission size ceiling.
func (s *Service) MaxUploadBytes() int64 {
	return s.pipeline.MaxBytes()
}

// Upload runs the full transaction. Rejections surface as *ValidationError
// (no store attempted); backend write failures as *storage.Error. A presign
// failure degrades the result (nil URL) but never undoes a successful store.
func (s *Service) Upload(ctx context.Context, req *Request) (*Result, error) {
	verdict, err := s.pipeline.Admit(req)
	if err != nil {
		return nil, fmt.Errorf("admission: %w", err)
	}
	if !verdict.Admitted {
		s.logger.Info("upload rejected",
			"filename", req.Filename,
			"reason", string(verdict.Reason))
		return nil, &ValidationError{Reason: verdict.Reason, Message: verdict.Detail}
	}

	displayName := SanitizeFilename(req.Filename)
	key := s.keys.Generate(req.Filename)

	metadata := map[string]string{
		"original_filename": displayName,
		"file_size":         strconv.FormatInt(req.Size, 10),
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	if err := s.backend.Upload(storeCtx, key, req.Content, req.Size, s.pipeline.ContentType(), metadata); err != nil {
		return nil, err
	}

	result := &Result{
		Filename: displayName,
		Key:      key,
		Size:     req.Size,
	}

	// Best effort: a missing link is acceptable, a lost upload is not.
	url, err := s.backend.PresignDownload(ctx, key, s.presignTTL)
	if err != nil {
		s.logger.Warn("could not generate presigned URL", "key", key, "error", err)
	} else {
		result.PresignedURL = &url
	}

	s.logger.Info("upload stored", "key", key, "size", req.Size)
	return result, nil
}
