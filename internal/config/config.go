// Package config loads service configuration from environment variables
// and reports object-storage readiness for the /api/config endpoint.
package config

import (
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all runtime configuration for the service. It is read once
// at startup and passed around as an immutable value.
type Config struct {
	Server ServerSettings
	S3     S3Settings
	Upload UploadSettings
}

// ServerSettings controls the HTTP listener.
type ServerSettings struct {
	Port        string `env:"PORT" env-default:"8000"`
	Environment string `env:"ENVIRONMENT" env-default:"development"`

	// FrontendURL is added to the allowed CORS origins when set.
	FrontendURL string `env:"FRONTEND_URL"`
}

// S3Settings holds object-storage credentials and bucket location.
// All fields are optional: a partially configured service still starts
// and reports its state through Status.
type S3Settings struct {
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	Bucket          string `env:"AWS_S3_BUCKET"`
	Region          string `env:"AWS_REGION" env-default:"us-east-1"`

	// Endpoint overrides the AWS endpoint for S3-compatible services
	// (MinIO, LocalStack). Empty means real AWS.
	Endpoint     string `env:"AWS_S3_ENDPOINT"`
	UsePathStyle bool   `env:"AWS_S3_USE_PATH_STYLE" env-default:"false"`

	PresignTTLSeconds int `env:"PRESIGN_TTL_SECONDS" env-default:"3600"`
}

// UploadSettings bounds a single upload request.
type UploadSettings struct {
	MaxBytes int64 `env:"UPLOAD_MAX_BYTES" env-default:"52428800"` // 50 MiB

	StoreTimeoutSeconds int `env:"STORE_TIMEOUT_SECONDS" env-default:"120"`
}

// Load reads configuration from the process environment.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// PresignTTL returns the presigned URL validity window as a duration.
func (s S3Settings) PresignTTL() time.Duration {
	return time.Duration(s.PresignTTLSeconds) * time.Second
}

// StoreTimeout returns the per-request storage write deadline.
func (u UploadSettings) StoreTimeout() time.Duration {
	return time.Duration(u.StoreTimeoutSeconds) * time.Second
}

// Status reports which storage settings are present. It is a pure function
// of the settings value: no I/O, never fails, safe on every status request.
type Status struct {
	Configured bool          `json:"configured"`
	Details    StatusDetails `json:"details"`
}

// StatusDetails flags each required setting individually so the client can
// tell which one is missing. Credentials are reported as presence booleans,
// never echoed back.
type StatusDetails struct {
	AccessKey bool   `json:"aws_access_key"`
	SecretKey bool   `json:"aws_secret_key"`
	Bucket    bool   `json:"aws_bucket"`
	Region    string `json:"aws_region"`
}

// Status evaluates backend readiness from the settings snapshot.
func (s S3Settings) Status() Status {
	d := StatusDetails{
		AccessKey: s.AccessKeyID != "",
		SecretKey: s.SecretAccessKey != "",
		Bucket:    s.Bucket != "",
		Region:    s.NormalizedRegion(),
	}
	return Status{
		Configured: d.AccessKey && d.SecretKey && d.Bucket && d.Region != "",
		Details:    d,
	}
}

// NormalizedRegion returns the bare region code. Values copied from the AWS
// console can look like "US East (Ohio) us-east-2"; the code is the last
// whitespace-separated field in that case.
func (s S3Settings) NormalizedRegion() string {
	region := strings.TrimSpace(s.Region)
	if strings.Contains(region, "(") && strings.Contains(region, ")") {
		fields := strings.Fields(region)
		if len(fields) > 0 {
			region = fields[len(fields)-1]
		}
	}
	return region
}
