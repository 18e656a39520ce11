package storage

import "context"

// ObjectStorage captures the minimal S3-compatible operations the model
// snapshot mirror needs: push the latest snapshot, pull it on a cold start.
type ObjectStorage interface {
	Upload(ctx context.Context, name string, data []byte) error
	Download(ctx context.Context, name string) ([]byte, error)
}
