package cloudinary

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type CloudinaryClient struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryClient(cloudName string, apiKey string, apiSecret string) (*CloudinaryClient, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, errors.New("cloudinary credentials are not configured")
	}

	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudinary client: %w", err)
	}
	cld.Config.URL.Secure = true

	return &CloudinaryClient{cld: cld}, nil
}

// Upload envia o conteúdo para a pasta e devolve a URL https e o public id.
func (c *CloudinaryClient) Upload(ctx context.Context, data []byte, folder string) (string, string, error) {
	resp, err := c.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:       folder,
		ResourceType: "auto",
	})
	if err != nil {
		return "", "", fmt.Errorf("CloudinaryClient.Upload - %w", err)
	}
	if resp.Error.Message != "" {
		return "", "", fmt.Errorf("CloudinaryClient.Upload - %s", resp.Error.Message)
	}

	return resp.SecureURL, resp.PublicID, nil
}

func (c *CloudinaryClient) Destroy(ctx context.Context, publicID string) error {
	resp, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("CloudinaryClient.Destroy - %s: %w", publicID, err)
	}
	if resp.Error.Message != "" {
		return fmt.Errorf("CloudinaryClient.Destroy - %s: %s", publicID, resp.Error.Message)
	}

	// "not found" significa que já foi removido
	if resp.Result != "ok" && resp.Result != "not found" {
		return fmt.Errorf("CloudinaryClient.Destroy - %s: unexpected result %q", publicID, resp.Result)
	}
	return nil
}
