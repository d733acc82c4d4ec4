package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const (
	cloudinaryResourceType = api.File
	cloudinaryDelivery     = "private"
)

// cloudinaryUploader is the part of the Cloudinary upload API we use.
type cloudinaryUploader interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
	PrivateDownloadURL(params uploader.PrivateDownloadURLParams) (string, error)
}

// CloudinaryStore stores documents as private raw assets. Downloads go
// through Cloudinary's signed, expiring private download endpoint.
type CloudinaryStore struct {
	api    cloudinaryUploader
	folder string
	now    func() time.Time
}

func NewCloudinaryStore(cloudName, apiKey, apiSecret, folder string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	return &CloudinaryStore{
		api:    &cld.Upload,
		folder: strings.Trim(folder, "/"),
		now:    time.Now,
	}, nil
}

func (s *CloudinaryStore) publicID(key string) (string, error) {
	clean, err := CleanKey(key)
	if err != nil {
		return "", err
	}
	if s.folder == "" {
		return clean, nil
	}
	return s.folder + "/" + clean, nil
}

func (s *CloudinaryStore) Put(ctx context.Context, key string, r io.Reader, _ int64, _ string) error {
	id, err := s.publicID(key)
	if err != nil {
		return err
	}
	overwrite := false
	res, err := s.api.Upload(ctx, r, uploader.UploadParams{
		PublicID:     id,
		ResourceType: cloudinaryResourceType,
		Type:         cloudinaryDelivery,
		Overwrite:    &overwrite,
	})
	if err != nil {
		return fmt.Errorf("cloudinary upload: %w", err)
	}
	if res != nil && res.Error.Message != "" {
		return errors.New("cloudinary upload: " + res.Error.Message)
	}
	return nil
}

func (s *CloudinaryStore) Delete(ctx context.Context, key string) error {
	id, err := s.publicID(key)
	if err != nil {
		return err
	}
	res, err := s.api.Destroy(ctx, uploader.DestroyParams{
		PublicID:     id,
		ResourceType: cloudinaryResourceType,
		Type:         cloudinaryDelivery,
	})
	if err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	if res == nil {
		return nil
	}
	if res.Error.Message != "" {
		return errors.New("cloudinary destroy: " + res.Error.Message)
	}
	if res.Result != "ok" && res.Result != "not found" {
		return fmt.Errorf("cloudinary destroy: unexpected result %q", res.Result)
	}
	return nil
}

func (s *CloudinaryStore) SignedURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	id, err := s.publicID(key)
	if err != nil {
		return "", err
	}
	exp := s.now().Add(ttl).UTC()
	u, err := s.api.PrivateDownloadURL(uploader.PrivateDownloadURLParams{
		PublicID:     id,
		DeliveryType: cloudinaryDelivery,
		Attachment:   "true",
		ExpiresAt:    &exp,
		ResourceType: cloudinaryResourceType,
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary download url: %w", err)
	}
	return u, nil
}
