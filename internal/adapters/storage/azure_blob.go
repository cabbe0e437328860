package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/AchilleasB/paws-rescue/rescue-api/internal/config"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/domain"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/ports"
)

// clockSkew backdates SAS start times so a client with a slightly fast
// clock can use the URL immediately.
const clockSkew = 5 * time.Minute

// AzureBlobStore implements ports.BlobStore with shared-key SAS URLs.
type AzureBlobStore struct {
	client *azblob.Client
	cb     *gobreaker.CircuitBreaker
	logger *zap.Logger
	now    func() time.Time
}

var _ ports.BlobStore = (*AzureBlobStore)(nil)

// NewAzureBlobStore needs a connection string that carries an account key;
// SAS signing happens locally.
func NewAzureBlobStore(connectionString string, logger *zap.Logger) (*AzureBlobStore, error) {
	if connectionString == "" {
		return nil, errors.New("blob storage connection string is empty")
	}
	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("azure blob client: %w", err)
	}
	return &AzureBlobStore{
		client: client,
		cb:     config.NewCircuitBreaker("Blob-Storage", logger),
		logger: logger,
		now:    time.Now,
	}, nil
}

func (s *AzureBlobStore) blobClient(container, blobName string) *blob.Client {
	return s.client.ServiceClient().NewContainerClient(container).NewBlobClient(blobName)
}

func (s *AzureBlobStore) signedURL(container, blobName string, perms sas.BlobPermissions, ttl time.Duration) (string, time.Time, error) {
	now := s.now().UTC()
	start := now.Add(-clockSkew)
	expires := now.Add(ttl)
	url, err := s.blobClient(container, blobName).GetSASURL(perms, expires, &blob.GetSASURLOptions{StartTime: &start})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s/%s: %w", container, blobName, err)
	}
	return url, expires, nil
}

// UploadURL grants create and write on a single blob.
func (s *AzureBlobStore) UploadURL(ctx context.Context, container, blobName string, ttl time.Duration) (string, time.Time, error) {
	return s.signedURL(container, blobName, sas.BlobPermissions{Create: true, Write: true}, ttl)
}

// DownloadURL grants read on a single blob.
func (s *AzureBlobStore) DownloadURL(ctx context.Context, container, blobName string, ttl time.Duration) (string, time.Time, error) {
	return s.signedURL(container, blobName, sas.BlobPermissions{Read: true}, ttl)
}

// BlobURL is the unsigned address stored with image records.
func (s *AzureBlobStore) BlobURL(container, blobName string) string {
	return s.blobClient(container, blobName).URL()
}

// Delete removes a blob. A blob that is already gone is not an error.
func (s *AzureBlobStore) Delete(ctx context.Context, container, blobName string) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		_, err := s.client.DeleteBlob(ctx, container, blobName, nil)
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return nil, nil
		}
		return nil, err
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return domain.Unavailable("blob storage is unavailable", err)
	}
	return err
}
