package cloudinary

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// Service handles Cloudinary upload operations
type Service struct {
	cld          *cloudinary.Cloudinary
	uploadFolder string
}

// File is an in-memory upload payload captured from a multipart request.
type File struct {
	Data     []byte
	MimeType string
	Filename string
}

// IsValid reports whether the file carries a byte payload and a MIME type.
// Validation happens before any network calls are made.
func (f File) IsValid() bool {
	return len(f.Data) > 0 && f.MimeType != ""
}

// UploadResult contains the result of a successful upload
type UploadResult struct {
	URL      string
	PublicID string
	FileSize int64
	Format   string
}

var (
	// MaxImageSize caps evidence photo uploads at 10MB
	MaxImageSize = int64(10 * 1024 * 1024)
	// MaxDocumentSize caps contract document uploads at 25MB
	MaxDocumentSize = int64(25 * 1024 * 1024)
)

// ErrNotConfigured is returned when uploads are attempted without cloudinary
// credentials. A nil *Service wired behind an interface still reaches these
// methods, so the check must live here rather than at construction time.
var ErrNotConfigured = errors.New("cloudinary service is not configured")

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
		uploadFolder = "civiclens"
	}

	return &Service{
		cld:          cld,
		uploadFolder: uploadFolder,
	}, nil
}

// UploadEvidenceImages uploads citizen evidence photos and returns their
// secure URLs in input order. All files must already be validated.
func (s *Service) UploadEvidenceImages(ctx context.Context, files []File) ([]string, error) {
	if s == nil || s.cld == nil {
		return nil, ErrNotConfigured
	}

	urls := make([]string, 0, len(files))

	for _, f := range files {
		if !f.IsValid() {
			return nil, errors.New("invalid image file provided")
		}
		if int64(len(f.Data)) > MaxImageSize {
			return nil, fmt.Errorf("image exceeds maximum allowed size of %d MB", MaxImageSize/(1024*1024))
		}
		if !strings.HasPrefix(f.MimeType, "image/") {
			return nil, fmt.Errorf("invalid image mime type: %s", f.MimeType)
		}

		result, err := s.cld.Upload.Upload(ctx, bytes.NewReader(f.Data), uploader.UploadParams{
			Folder:       s.uploadFolder + "/evidence",
			PublicID:     uuid.NewString(),
			ResourceType: "image",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to upload image: %w", err)
		}

		urls = append(urls, result.SecureURL)
	}

	return urls, nil
}

// UploadContractDocument uploads an analyzed contract file to the vault folder.
func (s *Service) UploadContractDocument(ctx context.Context, f File) (*UploadResult, error) {
	if s == nil || s.cld == nil {
		return nil, ErrNotConfigured
	}
	if !f.IsValid() {
		return nil, errors.New("invalid document file provided")
	}
	if int64(len(f.Data)) > MaxDocumentSize {
		return nil, fmt.Errorf("document exceeds maximum allowed size of %d MB", MaxDocumentSize/(1024*1024))
	}

	result, err := s.cld.Upload.Upload(ctx, bytes.NewReader(f.Data), uploader.UploadParams{
		Folder:       s.uploadFolder + "/contracts",
		PublicID:     uuid.NewString(),
		ResourceType: "raw",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload document: %w", err)
	}

	return &UploadResult{
		URL:      result.SecureURL,
		PublicID: result.PublicID,
		FileSize: int64(result.Bytes),
		Format:   result.Format,
	}, nil
}
