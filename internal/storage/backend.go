package storage

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/capstone-itrack/backend-go/internal/config"
	"github.com/chartmuseum/storage"
)

// backendMirror adapts a chartmuseum storage backend to ObjectStorage, for
// mirror targets the minio client doesn't cover: a mounted volume, or an
// AWS-style endpoint that wants region signing.
type backendMirror struct {
	backend storage.Backend
}

func (m *backendMirror) Upload(_ context.Context, name string, data []byte) error {
	if err := m.backend.PutObject(name, data); err != nil {
		return fmt.Errorf("storage upload of %s failed: %w", name, err)
	}
	return nil
}

func (m *backendMirror) Download(_ context.Context, name string) ([]byte, error) {
	obj, err := m.backend.GetObject(name)
	if err != nil {
		return nil, fmt.Errorf("storage download of %s failed: %w", name, err)
	}
	return obj.Content, nil
}

var _ ObjectStorage = (*backendMirror)(nil)

// NewLocalMirror mirrors snapshots into a directory, typically a mounted
// persistent volume on platforms where the app filesystem is ephemeral.
func NewLocalMirror(dir string) (ObjectStorage, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage local dir must be provided")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create mirror dir: %w", err)
	}
	return &backendMirror{backend: storage.NewLocalFilesystemBackend(dir)}, nil
}

// NewS3Mirror mirrors snapshots to an AWS-style bucket with region signing.
// An empty endpoint means AWS proper; anything else is sent path-style.
func NewS3Mirror(cfg config.StorageConfig) (ObjectStorage, error) {
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("storage credentials must be provided")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage bucket must be provided")
	}

	endpoint := cfg.Endpoint
	if endpoint != "" && !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		scheme := "https"
		if !cfg.UseSSL {
			scheme = "http"
		}
		endpoint = fmt.Sprintf("%s://%s", scheme, endpoint)
	}

	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	// The chartmuseum backend reads credentials from the environment.
	os.Setenv("AWS_ACCESS_KEY_ID", cfg.AccessKey)
	os.Setenv("AWS_SECRET_ACCESS_KEY", cfg.SecretKey)
	os.Setenv("AWS_REGION", region)
	os.Setenv("AWS_DEFAULT_REGION", region)

	forcePathStyle := true
	backend := storage.NewAmazonS3BackendWithOptions(
		cfg.Bucket,
		strings.Trim(cfg.Prefix, "/"),
		region,
		endpoint,
		"",
		&storage.AmazonS3Options{S3ForcePathStyle: &forcePathStyle},
	)

	return &backendMirror{backend: backend}, nil
}

// NewMirror picks the snapshot mirror implementation from config.
func NewMirror(cfg config.StorageConfig) (ObjectStorage, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "minio":
		client, err := NewMinioClient(cfg)
		if err != nil {
			return nil, err
		}
		return client, nil
	case "s3":
		return NewS3Mirror(cfg)
	case "local":
		return NewLocalMirror(cfg.LocalDir)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
