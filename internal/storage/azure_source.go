package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	apperrors "go-tree-inspector/internal/errors"
)

type blobOpener func(ctx context.Context, container, blob string) (io.ReadCloser, error)

// AzureBlobStore reads field photos that a mobile uploader dropped into Blob Storage
type AzureBlobStore struct {
	open    blobOpener
	maxSize int64
}

// NewAzureBlobStore authenticates with a shared key against the account's blob endpoint
func NewAzureBlobStore(accountName, accountKey string, maxSize int64) (*AzureBlobStore, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid Azure storage credentials", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net/", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, apperrors.NewInternalError("cannot create Azure blob client", err)
	}

	return &AzureBlobStore{
		open: func(ctx context.Context, container, blob string) (io.ReadCloser, error) {
			resp, err := client.DownloadStream(ctx, container, blob, nil)
			if err != nil {
				return nil, err
			}
			return resp.Body, nil
		},
		maxSize: maxSize,
	}, nil
}

// Get downloads one blob
func (s *AzureBlobStore) Get(ctx context.Context, container, blob string) ([]byte, error) {
	body, err := s.open(ctx, container, blob)
	if err != nil {
		return nil, apperrors.NewNetworkError(fmt.Sprintf("download of %s/%s failed", container, blob), err)
	}
	defer body.Close()

	return readLimited(body, s.maxSize)
}

// ParseBlobRef splits "container/path/to/blob.jpg"
func ParseBlobRef(ref string) (container, blob string, err error) {
	ref = strings.TrimPrefix(strings.TrimSpace(ref), "/")
	container, blob, ok := strings.Cut(ref, "/")
	if !ok || container == "" || blob == "" {
		return "", "", apperrors.NewValidationError(
			fmt.Sprintf("blob reference %q must look like container/blob", ref), nil)
	}
	return container, blob, nil
}

// BlobSource acquires a photo from Azure Blob Storage
type BlobSource struct {
	store     *AzureBlobStore
	container string
	blob      string
}

// NewBlobSource creates a blob-backed source from a container/blob reference
func NewBlobSource(store *AzureBlobStore, ref string) (ImageSource, error) {
	container, blob, err := ParseBlobRef(ref)
	if err != nil {
		return nil, err
	}
	return &BlobSource{store: store, container: container, blob: blob}, nil
}

func (s *BlobSource) Acquire(ctx context.Context) ([]byte, error) {
	return s.store.Get(ctx, s.container, s.blob)
}

func (s *BlobSource) Describe() string {
	return "azure:" + s.container + "/" + s.blob
}
