package cloudinary

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

var ErrInvalidSourceURL = errors.New("avatar source must be an absolute http(s) URL")

// Service copies remote profile pictures into Cloudinary
type Service struct {
	cld          *cloudinary.Cloudinary
	uploadFolder string
}

// NewService creates a new Cloudinary service instance
func NewService(cloudName, apiKey, apiSecret, uploadFolder string) (*Service, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, errors.New("cloudinary credentials are required")
	}

	cloudinaryURL := fmt.Sprintf("cloudinary://%s:%s@%s", apiKey, apiSecret, cloudName)

	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary client: %w", err)
	}

	if uploadFolder == "" {
		uploadFolder = "promptshare"
	}

	return &Service{
		cld:          cld,
		uploadFolder: uploadFolder,
	}, nil
}

// CloudName returns the configured cloud name
func (s *Service) CloudName() string {
	return s.cld.Config.Cloud.CloudName
}

// MirrorAvatar fetches sourceURL into the avatars folder under publicID and
// returns the secure delivery URL
func (s *Service) MirrorAvatar(ctx context.Context, sourceURL, publicID string) (string, error) {
	if err := validateSourceURL(sourceURL); err != nil {
		return "", err
	}

	result, err := s.cld.Upload.Upload(ctx, sourceURL, uploader.UploadParams{
		Folder:       s.uploadFolder + "/avatars",
		PublicID:     publicID,
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("failed to mirror avatar: %w", err)
	}
	if result.SecureURL == "" {
		return "", errors.New("failed to mirror avatar: empty delivery url")
	}

	return result.SecureURL, nil
}

func validateSourceURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrInvalidSourceURL
	}
	return nil
}
