package ports

import (
	"context"
	"time"
)

// BlobStore issues short-lived direct-access URLs for blobs and removes them.
type BlobStore interface {
	UploadURL(ctx context.Context, container, blobName string, ttl time.Duration) (string, time.Time, error)
	DownloadURL(ctx context.Context, container, blobName string, ttl time.Duration) (string, time.Time, error)
	BlobURL(container, blobName string) string
	Delete(ctx context.Context, container, blobName string) error
}
