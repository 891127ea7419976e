package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/pdfdrop/service/internal/api"
	"github.com/pdfdrop/service/internal/config"
	"github.com/pdfdrop/service/internal/storage"
	"github.com/pdfdrop/service/internal/storage/memory"
	s3backend "github.com/pdfdrop/service/internal/storage/s3"
	"github.com/pdfdrop/service/internal/upload"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading from environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	backend := selectBackend(cfg, logger)

	svc := upload.NewService(backend, upload.Options{
		MaxUploadBytes: cfg.Upload.MaxBytes,
		PresignTTL:     cfg.S3.PresignTTL(),
		StoreTimeout:   cfg.Upload.StoreTimeout(),
		Logger:         logger,
	})

	handler := api.NewHandler(svc, cfg.S3, logger)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins(cfg.Server),
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Mount("/api", handler.Routes())

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server listening",
			"port", cfg.Server.Port,
			"env", cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-quit
	logger.Info("shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}

	logger.Info("server stopped")
}

// selectBackend returns the S3 backend when a bucket is configured, falling
// back to the in-memory backend so a partially configured service still
// starts and reports its state through /api/config.
func selectBackend(cfg *config.Config, logger *slog.Logger) storage.Backend {
	if cfg.S3.Bucket == "" {
		logger.Warn("AWS_S3_BUCKET not set, uploads will be held in memory only",
			"missing", missingS3Vars(cfg.S3))
		return memory.New()
	}

	backend, err := s3backend.New(s3backend.Config{
		Region:          cfg.S3.NormalizedRegion(),
		Bucket:          cfg.S3.Bucket,
		AccessKeyID:     cfg.S3.AccessKeyID,
		SecretAccessKey: cfg.S3.SecretAccessKey,
		Endpoint:        cfg.S3.Endpoint,
		UsePathStyle:    cfg.S3.UsePathStyle,
	})
	if err != nil {
		log.Fatalf("object storage init failed: %v", err)
	}
	return backend
}

func missingS3Vars(s3 config.S3Settings) []string {
	var missing []string
	if s3.AccessKeyID == "" {
		missing = append(missing, "AWS_ACCESS_KEY_ID")
	}
	if s3.SecretAccessKey == "" {
		missing = append(missing, "AWS_SECRET_ACCESS_KEY")
	}
	if s3.Bucket == "" {
		missing = append(missing, "AWS_S3_BUCKET")
	}
	return missing
}

// allowedOrigins mirrors the frontend origin policy: the configured frontend
// URL always, localhost dev servers in development, everything only when
// nothing else is configured in development.
func allowedOrigins(server config.ServerSettings) []string {
	var origins []string
	if server.FrontendURL != "" {
		origins = append(origins, server.FrontendURL)
	}
	if server.Environment == "development" {
		origins = append(origins, "http://localhost:3000", "http://localhost:5000")
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return origins
}
