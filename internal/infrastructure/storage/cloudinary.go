package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryUploader implementa Uploader usando o Cloudinary
type CloudinaryUploader struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryUploader cria um novo uploader a partir da variável de
// ambiente CLOUDINARY_URL
func NewCloudinaryUploader() (*CloudinaryUploader, error) {
	cld, err := cloudinary.New()
	if err != nil {
		return nil, fmt.Errorf("erro ao configurar o Cloudinary: %w", err)
	}

	return &CloudinaryUploader{cld: cld}, nil
}

// Upload implementa Uploader.Upload
func (u *CloudinaryUploader) Upload(ctx context.Context, file io.Reader, filename string) (string, error) {
	result, err := u.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		ResourceType: "auto",
	})
	if err != nil {
		return "", fmt.Errorf("erro ao enviar arquivo para o Cloudinary: %w", err)
	}

	if result.Error.Message != "" {
		return "", fmt.Errorf("erro ao enviar arquivo para o Cloudinary: %s", result.Error.Message)
	}

	return result.SecureURL, nil
}
