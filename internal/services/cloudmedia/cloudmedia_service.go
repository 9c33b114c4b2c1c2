package cloudmedia

import (
	"context"
	"errors"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Upload gambar produk ke Cloudinary. Satu service dipakai ulang untuk
// upload file, paste, dan tarik dari URL eksternal — uploader Cloudinary
// terima io.Reader maupun remote URL.

type CloudMediaService struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// New builds the service from a CLOUDINARY_URL style DSN.
func New(cloudURL, folder string) (*CloudMediaService, error) {
	if cloudURL == "" {
		return nil, errors.New("cloudmedia: missing cloudinary url")
	}
	cld, err := cloudinary.NewFromURL(cloudURL)
	if err != nil {
		return nil, err
	}
	return &CloudMediaService{cld: cld, folder: folder}, nil
}

// UploadResult is what the media endpoint returns per file.
type UploadResult struct {
	URL      string
	PublicID string
}

// UploadFile uploads raw image bytes.
func (s *CloudMediaService) UploadFile(ctx context.Context, r io.Reader) (*UploadResult, error) {
	res, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{Folder: s.folder})
	if err != nil {
		return nil, err
	}
	return &UploadResult{URL: res.SecureURL, PublicID: res.PublicID}, nil
}

// UploadURL lets Cloudinary fetch a remote image itself.
func (s *CloudMediaService) UploadURL(ctx context.Context, imageURL string) (*UploadResult, error) {
	res, err := s.cld.Upload.Upload(ctx, imageURL, uploader.UploadParams{Folder: s.folder})
	if err != nil {
		return nil, err
	}
	return &UploadResult{URL: res.SecureURL, PublicID: res.PublicID}, nil
}
