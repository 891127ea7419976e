package upload_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdfdrop/service/internal/storage"
	"github.com/pdfdrop/service/internal/storage/memory"
	"github.com/pdfdrop/service/internal/upload"
)

// recordingBackend counts store attempts and captures keys so tests can
// assert the exactly-once contract.
type recordingBackend struct {
	uploads    int
	keys       []string
	stored     []byte
	uploadErr  error
	presignErr error
	presignURL string
}

func (b *recordingBackend) Upload(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string, metadata map[string]string) error {
	b.uploads++
	b.keys = append(b.keys, objectKey)
	if b.uploadErr != nil {
		return &storage.Error{Op: "upload", Key: objectKey, Err: b.uploadErr}
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	b.stored = data
	return nil
}

func (b *recordingBackend) PresignDownload(ctx context.Context, objectKey string, ttl time.Duration) (string, error) {
	if b.presignErr != nil {
		return "", &storage.Error{Op: "presign", Key: objectKey, Err: b.presignErr}
	}
	return b.presignURL, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newService(backend upload.Storer) *upload.Service {
	return upload.NewService(backend, upload.Options{Logger: discardLogger()})
}

func TestUploadAdmittedAndStored(t *testing.T) {
	backend := &recordingBackend{presignURL: "https://example.com/signed"}
	svc := newService(backend)

	content := pdfPayload(10)
	result, err := svc.Upload(context.Background(), newRequest("a.pdf", "application/pdf", content))
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, 1, backend.uploads, "store called exactly once")
	assert.Equal(t, int64(10), result.Size)
	assert.Equal(t, "a.pdf", result.Filename)
	assert.Equal(t, content, backend.stored, "entire payload reaches the backend")
	require.NotNil(t, result.PresignedURL)
	assert.Equal(t, "https://example.com/signed", *result.PresignedURL)
}

func TestUploadRejectedNeverStores(t *testing.T) {
	tests := []struct {
		name       string
		req        *upload.Request
		wantReason upload.Reason
	}{
		{"bad extension", newRequest("a.txt", "application/pdf", pdfPayload(10)), upload.ReasonInvalidExtension},
		{"bad content type", newRequest("a.pdf", "text/html", pdfPayload(10)), upload.ReasonInvalidContentType},
		{"bad signature", newRequest("a.pdf", "application/pdf", make([]byte, 10)), upload.ReasonInvalidSignature},
		{"empty", newRequest("a.pdf", "application/pdf", nil), upload.ReasonEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &recordingBackend{}
			svc := newService(backend)

			result, err := svc.Upload(context.Background(), tt.req)
			require.Error(t, err)
			assert.Nil(t, result)

			var validationErr *upload.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.wantReason, validationErr.Reason)

			assert.Zero(t, backend.uploads, "rejected upload must never reach the backend")
		})
	}
}

func TestUploadStorageFailure(t *testing.T) {
	backend := &recordingBackend{uploadErr: errors.New("connection refused")}
	svc := newService(backend)

	result, err := svc.Upload(context.Background(), newRequest("a.pdf", "application/pdf", pdfPayload(10)))
	require.Error(t, err)
	assert.Nil(t, result, "no result is fabricated on a failed store")

	var storageErr *storage.Error
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "upload", storageErr.Op)
	assert.Equal(t, 1, backend.uploads)
}

func TestUploadPresignFailureDegradesResult(t *testing.T) {
	// The memory backend stores fine but cannot presign.
	backend := memory.New()
	svc := newService(backend)

	result, err := svc.Upload(context.Background(), newRequest("a.pdf", "application/pdf", pdfPayload(10)))
	require.NoError(t, err, "presign failure must not fail a stored upload")
	require.NotNil(t, result)

	assert.Nil(t, result.PresignedURL)
	obj, ok := backend.Get(result.Key)
	require.True(t, ok, "object stored despite missing URL")
	assert.Equal(t, "application/pdf", obj.ContentType)
}

func TestUploadIdenticalNamesGetDistinctKeys(t *testing.T) {
	backend := &recordingBackend{}
	svc := newService(backend)

	for i := 0; i < 2; i++ {
		_, err := svc.Upload(context.Background(), newRequest("same.pdf", "application/pdf", pdfPayload(10)))
		require.NoError(t, err)
	}

	require.Len(t, backend.keys, 2)
	assert.NotEqual(t, backend.keys[0], backend.keys[1])
}

func TestUploadAttachesObjectMetadata(t *testing.T) {
	backend := memory.New()
	svc := newService(backend)

	result, err := svc.Upload(context.Background(), newRequest("my report.pdf", "application/pdf", pdfPayload(24)))
	require.NoError(t, err)

	obj, ok := backend.Get(result.Key)
	require.True(t, ok)
	assert.Equal(t, "my_report.pdf", obj.Metadata["original_filename"])
	assert.Equal(t, "24", obj.Metadata["file_size"])
}
