package storage

import (
	"context"
	"fmt"
	"io"
)

// Provider stores payload bytes addressed by an opaque object id. It knows
// nothing about policy: creation and deletion ordering is owned by the
// lifecycle layer.
type Provider interface {
	// Put streams a payload into storage under key and reports its size.
	Put(ctx context.Context, key string, r io.Reader) (int64, error)

	// Open returns a reader over the payload bytes.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Exists checks whether payload bytes are present for key.
	Exists(ctx context.Context, key string) (bool, error)

	// Delete removes the payload. Deleting an absent key is not an error;
	// racing destroys must both treat the other's removal as success.
	Delete(ctx context.Context, key string) error

	// List enumerates every payload key, used to reconcile orphans.
	List(ctx context.Context) ([]string, error)

	// Close cleans up any resources.
	Close() error
}

// Config holds configuration for payload providers.
type Config struct {
	// Provider type ("local", "gcs" or "s3")
	Provider string `json:"provider"`

	// Local storage config
	LocalPath string `json:"local_path,omitempty"`

	// GCS config
	ProjectID  string `json:"project_id,omitempty"`
	BucketName string `json:"bucket_name,omitempty"`

	// S3-compatible config
	S3Endpoint  string `json:"s3_endpoint,omitempty"`
	S3AccessKey string `json:"s3_access_key,omitempty"`
	S3SecretKey string `json:"s3_secret_key,omitempty"`
	S3Bucket    string `json:"s3_bucket,omitempty"`
	S3UseSSL    bool   `json:"s3_use_ssl,omitempty"`
}

// NewProvider creates a payload provider based on configuration.
func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "local":
		return NewLocalProvider(cfg.LocalPath)
	case "gcs":
		return NewGCSProvider(cfg.ProjectID, cfg.BucketName)
	case "s3":
		return NewS3Provider(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", cfg.Provider)
	}
}
