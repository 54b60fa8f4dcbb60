package backup

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/service"
)

// azureBlobHostSuffix is the domain suffix for Azure Blob storage accounts.
const azureBlobHostSuffix = ".blob.core.windows.net"

// AzureBlobStore uploads archives to an Azure Blob Storage container. It
// authenticates with the ambient default credential chain (managed identity,
// workload identity, environment), never a caller-supplied access key.
type AzureBlobStore struct {
	client    *service.Client
	container string
	log       *slog.Logger
}

// NewAzureBlobStore creates a blob store for the given storage account and
// container.
func NewAzureBlobStore(log *slog.Logger, accountName, container string) (*AzureBlobStore, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("creating default Azure credential: %w", err)
	}

	url := fmt.Sprintf("https://%s%s/", accountName, azureBlobHostSuffix)
	client, err := service.NewClient(url, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("creating Azure Blob storage client: %w", err)
	}

	return &AzureBlobStore{
		client:    client,
		container: container,
		log:       log,
	}, nil
}

// Upload stores the file as a block blob named after its local path.
func (s *AzureBlobStore) Upload(ctx context.Context, filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", filePath, err)
	}
	defer f.Close() //nolint:errcheck // File open for read only.

	s.log.Debug("uploading to Azure Blob Storage",
		"container", s.container, "blob", filePath)

	bbc := s.client.NewContainerClient(s.container).NewBlockBlobClient(filePath)
	if _, err := bbc.UploadFile(ctx, f, nil); err != nil {
		return fmt.Errorf("uploading blob %s: %w", filePath, err)
	}
	return nil
}
