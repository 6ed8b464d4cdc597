package config

import (
	"os"
	"reflect"
	"testing"
	"time"

	"vanish-go/internal/storage"
)

var configEnvKeys = []string{
	"PORT", "APP_ENV", "BASE_URL", "UPLOAD_MAX_SIZE", "SWEEP_INTERVAL",
	"METADATA_BACKEND", "DATA_DIR", "STORAGE_PROVIDER", "PAYLOAD_DIR",
	"GCS_PROJECT_ID", "GCS_BUCKET_NAME",
	"S3_ENDPOINT", "S3_ACCESS_KEY", "S3_SECRET_KEY", "S3_BUCKET", "S3_USE_SSL",
}

func TestNewConfig(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		want    *Config
		wantErr bool
	}{
		{
			name: "Valid configuration with defaults",
			envVars: map[string]string{
				"PORT": "8080",
			},
			want: &Config{
				Port:            8080,
				Env:             "production",
				BaseURL:         "http://localhost",
				UploadMaxSize:   25 * 1024 * 1024,
				SweepInterval:   time.Minute,
				MetadataBackend: "fs",
				DataDir:         "data",
				Storage: storage.Config{
					Provider:  "local",
					LocalPath: "data/blobs",
				},
			},
			wantErr: false,
		},
		{
			name: "Fully specified configuration",
			envVars: map[string]string{
				"PORT":             "9090",
				"APP_ENV":          "development",
				"BASE_URL":         "https://vanish.example.com",
				"UPLOAD_MAX_SIZE":  "1GB",
				"SWEEP_INTERVAL":   "30s",
				"METADATA_BACKEND": "postgres",
				"DATA_DIR":         "/var/lib/vanish",
				"STORAGE_PROVIDER": "local",
				"PAYLOAD_DIR":      "/var/lib/vanish/payloads",
			},
			want: &Config{
				Port:            9090,
				Env:             "development",
				BaseURL:         "https://vanish.example.com",
				UploadMaxSize:   1024 * 1024 * 1024,
				SweepInterval:   30 * time.Second,
				MetadataBackend: "postgres",
				DataDir:         "/var/lib/vanish",
				Storage: storage.Config{
					Provider:  "local",
					LocalPath: "/var/lib/vanish/payloads",
				},
			},
			wantErr: false,
		},
		{
			name:    "Missing PORT",
			envVars: map[string]string{},
			want:    nil,
			wantErr: true,
		},
		{
			name: "Negative PORT",
			envVars: map[string]string{
				"PORT": "-8080",
			},
			want:    nil,
			wantErr: true,
		},
		{
			name: "Invalid UPLOAD_MAX_SIZE",
			envVars: map[string]string{
				"PORT":            "8080",
				"UPLOAD_MAX_SIZE": "invalid",
			},
			want:    nil,
			wantErr: true,
		},
		{
			name: "Invalid SWEEP_INTERVAL",
			envVars: map[string]string{
				"PORT":           "8080",
				"SWEEP_INTERVAL": "never",
			},
			want:    nil,
			wantErr: true,
		},
		{
			name: "Unsupported metadata backend",
			envVars: map[string]string{
				"PORT":             "8080",
				"METADATA_BACKEND": "redis",
			},
			want:    nil,
			wantErr: true,
		},
		{
			name: "GCS without project",
			envVars: map[string]string{
				"PORT":             "8080",
				"STORAGE_PROVIDER": "gcs",
				"GCS_BUCKET_NAME":  "bucket",
			},
			want:    nil,
			wantErr: true,
		},
		{
			name: "S3 without credentials",
			envVars: map[string]string{
				"PORT":             "8080",
				"STORAGE_PROVIDER": "s3",
				"S3_ENDPOINT":      "minio:9000",
				"S3_BUCKET":        "vanish",
			},
			want:    nil,
			wantErr: true,
		},
		{
			name: "Valid S3 configuration",
			envVars: map[string]string{
				"PORT":             "8080",
				"STORAGE_PROVIDER": "s3",
				"S3_ENDPOINT":      "minio:9000",
				"S3_BUCKET":        "vanish",
				"S3_ACCESS_KEY":    "access",
				"S3_SECRET_KEY":    "secret",
				"S3_USE_SSL":       "true",
			},
			want: &Config{
				Port:            8080,
				Env:             "production",
				BaseURL:         "http://localhost",
				UploadMaxSize:   25 * 1024 * 1024,
				SweepInterval:   time.Minute,
				MetadataBackend: "fs",
				DataDir:         "data",
				Storage: storage.Config{
					Provider:    "s3",
					LocalPath:   "data/blobs",
					S3Endpoint:  "minio:9000",
					S3AccessKey: "access",
					S3SecretKey: "secret",
					S3Bucket:    "vanish",
					S3UseSSL:    true,
				},
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range configEnvKeys {
				if err := os.Unsetenv(k); err != nil {
					return
				}
			}
			for k, v := range tt.envVars {
				if err := os.Setenv(k, v); err != nil {
					return
				}
			}
			got, err := NewConfig()
			if (err != nil) != tt.wantErr {
				t.Errorf("NewConfig() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NewConfig() got = %v, want %v", got, tt.want)
			}
			for k := range tt.envVars {
				if err := os.Unsetenv(k); err != nil {
					return
				}
			}
		})
	}
}

func Test_parseUploadMaxSize(t *testing.T) {
	tests := []struct {
		name    string
		size    string
		want    int64
		wantErr bool
	}{
		{
			name:    "Valid MB size",
			size:    "25MB",
			want:    25 * 1024 * 1024,
			wantErr: false,
		},
		{
			name:    "Valid GB size",
			size:    "1GB",
			want:    1 * 1024 * 1024 * 1024,
			wantErr: false,
		},
		{
			name:    "Invalid size",
			size:    "invalid",
			want:    0,
			wantErr: true,
		},
		{
			name:    "No suffix size",
			size:    "25",
			want:    25 * 1024 * 1024,
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseUploadMaxSize(tt.size)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseUploadMaxSize() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("parseUploadMaxSize() got = %v, want %v", got, tt.want)
			}
		})
	}
}
