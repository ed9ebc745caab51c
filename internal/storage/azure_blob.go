package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"go.uber.org/zap"
)

// AzureBlobStorage implements Storage on an Azure Blob Storage container
type AzureBlobStorage struct {
	client        *azblob.Client
	containerName string
	logger        *zap.Logger
}

// NewAzureBlobStorage connects to the account and makes sure the container exists
func NewAzureBlobStorage(ctx context.Context, connectionString, containerName string, logger *zap.Logger) (*AzureBlobStorage, error) {
	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}

	_, err = client.CreateContainer(ctx, containerName, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return nil, fmt.Errorf("failed to create container: %w", err)
	}

	logger.Info("Azure Blob Storage initialized",
		zap.String("container", containerName),
	)

	return &AzureBlobStorage{
		client:        client,
		containerName: containerName,
		logger:        logger,
	}, nil
}

// Put uploads an object under key, replacing any previous blob
func (s *AzureBlobStorage) Put(ctx context.Context, key string, contentType string, data io.Reader) (int64, error) {
	blobName, err := cleanKey(key)
	if err != nil {
		return 0, err
	}

	uploadOptions := &azblob.UploadStreamOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType: &contentType,
		},
	}

	reader := &countingReader{r: data}

	if _, err := s.client.UploadStream(ctx, s.containerName, blobName, reader, uploadOptions); err != nil {
		return 0, fmt.Errorf("failed to upload blob: %w", err)
	}

	s.logger.Info("Object uploaded to Azure Blob Storage",
		zap.String("blob_name", blobName),
		zap.String("container", s.containerName),
		zap.String("content_type", contentType),
		zap.Int64("size", reader.count),
	)

	return reader.count, nil
}

// countingReader wraps an io.Reader and counts the number of bytes read
type countingReader struct {
	r     io.Reader
	count int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.count += int64(n)
	return n, err
}

// Get downloads an object
func (s *AzureBlobStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	blobName, err := cleanKey(key)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.DownloadStream(ctx, s.containerName, blobName, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to download blob: %w", err)
	}

	return resp.Body, nil
}

// Delete removes an object. Deleting a missing blob is not an error.
func (s *AzureBlobStorage) Delete(ctx context.Context, key string) error {
	blobName, err := cleanKey(key)
	if err != nil {
		return err
	}

	if _, err := s.client.DeleteBlob(ctx, s.containerName, blobName, nil); err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			s.logger.Debug("Blob already deleted or not found",
				zap.String("blob_name", blobName),
				zap.String("container", s.containerName),
			)
			return nil
		}
		return fmt.Errorf("failed to delete blob: %w", err)
	}

	s.logger.Info("Object deleted from Azure Blob Storage",
		zap.String("blob_name", blobName),
		zap.String("container", s.containerName),
	)

	return nil
}
