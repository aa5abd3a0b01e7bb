package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type UploadResult struct {
	SecureURL string
	PublicID  string
}

// ImageStore is the external asset host product images live on.
type ImageStore interface {
	Upload(ctx context.Context, r io.Reader, filename string) (*UploadResult, error)
	Delete(ctx context.Context, publicID string) error
}

type CloudinaryConfig struct {
	URL       string
	CloudName string
	APIKey    string
	APISecret string
	Folder    string

	// UploadPrefix overrides the upload API host, e.g. a regional endpoint.
	UploadPrefix string
}

type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinary(cfg CloudinaryConfig) (*Cloudinary, error) {
	var (
		cld *cloudinary.Cloudinary
		err error
	)
	switch {
	case cfg.URL != "":
		cld, err = cloudinary.NewFromURL(cfg.URL)
	case cfg.CloudName != "":
		cld, err = cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	default:
		return nil, errors.New("cloudinary credentials are not configured")
	}
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	if cfg.UploadPrefix != "" {
		// the uploader keeps its own copy of the configuration
		cld.Upload.Config.API.UploadPrefix = cfg.UploadPrefix
	}

	return &Cloudinary{cld: cld, folder: cfg.Folder}, nil
}

func (c *Cloudinary) Upload(ctx context.Context, r io.Reader, filename string) (*UploadResult, error) {
	res, err := c.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:           c.folder,
		UseFilename:      api.Bool(true),
		FilenameOverride: filename,
	})
	if err != nil {
		return nil, fmt.Errorf("cloudinary upload: %w", err)
	}
	if res.Error.Message != "" {
		return nil, fmt.Errorf("cloudinary upload: %s", res.Error.Message)
	}
	if res.PublicID == "" {
		return nil, errors.New("cloudinary upload: empty public id")
	}
	return &UploadResult{SecureURL: res.SecureURL, PublicID: res.PublicID}, nil
}

// Delete destroys the asset. A missing asset is not an error.
func (c *Cloudinary) Delete(ctx context.Context, publicID string) error {
	res, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("cloudinary destroy: %s", res.Error.Message)
	}
	return nil
}
