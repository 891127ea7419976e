// Package api exposes the upload service over HTTP.
package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/pdfdrop/service/internal/config"
	"github.com/pdfdrop/service/internal/storage"
	"github.com/pdfdrop/service/internal/upload"
)

// maxMultipartOverhead is slack on top of the upload ceiling for multipart
// framing and headers when bounding the request body.
const maxMultipartOverhead = 1 << 20

// Handler holds the HTTP handlers for the upload API.
type Handler struct {
	svc    *upload.Service
	s3     config.S3Settings
	logger *slog.Logger
}

// NewHandler creates an API handler around the upload service.
func NewHandler(svc *upload.Service, s3 config.S3Settings, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, s3: s3, logger: logger}
}

// Routes returns the router for the /api endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/health", h.Health)
	r.Get("/config", h.Config)
	r.Post("/upload", h.Upload)
	return r
}

// UploadResponse is the success body for POST /api/upload.
type UploadResponse struct {
	Message      string  `json:"message"`
	Filename     string  `json:"filename"`
	S3Key        string  `json:"s3_key"`
	PresignedURL *string `json:"presigned_url"`
	FileSize     int64   `json:"file_size"`
}

// HealthResponse is the body for GET /api/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Health reports service liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, HealthResponse{Status: "healthy", Message: "upload service is running"})
}

// Config reports which storage settings are present, without echoing
// credential values.
func (h *Handler) Config(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.s3.Status())
}

// Upload accepts one multipart file field named "file", validates it, and
// stores it. Validation failures are 4xx, backend failures 5xx.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.svc.MaxUploadBytes()+maxMultipartOverhead)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "File size exceeds limit")
			return
		}
		writeError(w, r, http.StatusBadRequest, "No file provided")
		return
	}
	defer func() { _ = file.Close() }()

	if header.Filename == "" {
		writeError(w, r, http.StatusBadRequest, "No file selected")
		return
	}

	req := &upload.Request{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Content:     file,
	}

	result, err := h.svc.Upload(r.Context(), req)
	if err != nil {
		h.writeUploadError(w, r, err)
		return
	}

	render.JSON(w, r, UploadResponse{
		Message:      "File uploaded successfully",
		Filename:     result.Filename,
		S3Key:        result.Key,
		PresignedURL: result.PresignedURL,
		FileSize:     result.Size,
	})
}

func (h *Handler) writeUploadError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *upload.ValidationError
	var storageErr *storage.Error

	switch {
	case errors.As(err, &validationErr):
		status := http.StatusBadRequest
		if validationErr.Reason == upload.ReasonTooLarge {
			status = http.StatusRequestEntityTooLarge
		}
		writeError(w, r, status, validationErr.Message)
	case errors.As(err, &storageErr):
		h.logger.Error("storage backend failure",
			"op", storageErr.Op,
			"key", storageErr.Key,
			"error", storageErr.Err)
		writeError(w, r, http.StatusBadGateway, storageErr.Err.Error())
	default:
		h.logger.Error("upload failed", "error", err)
		writeError(w, r, http.StatusInternalServerError, "Server error")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: msg})
}
