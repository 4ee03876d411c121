package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

type azureReportStore struct {
	client    *azblob.Client
	account   string
	container string
}

// NewAzureReportStore creates a report store backed by an Azure blob
// container using shared key auth.
func NewAzureReportStore(accountName, accountKey, container string) (ReportStore, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("invalid azure credentials: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create azure client: %w", err)
	}

	return &azureReportStore{client: client, account: accountName, container: container}, nil
}

func (s *azureReportStore) Save(ctx context.Context, name string, report image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, report); err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	if _, err := s.client.UploadStream(ctx, s.container, name, &buf, nil); err != nil {
		return "", fmt.Errorf("failed to upload report: %w", err)
	}

	return fmt.Sprintf("https://%s.blob.core.windows.net/%s/%s", s.account, s.container, name), nil
}
