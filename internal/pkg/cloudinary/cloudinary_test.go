package cloudinary

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewService_RequiresCredentials(t *testing.T) {
	_, err := NewService("", "key", "secret", "civiclens")
	assert.Error(t, err)

	_, err = NewService("cloud", "", "", "civiclens")
	assert.Error(t, err)
}

func TestUploadEvidenceImages_UnconfiguredService(t *testing.T) {
	var svc *Service

	urls, err := svc.UploadEvidenceImages(context.Background(), []File{
		{Data: []byte("jpeg bytes"), MimeType: "image/jpeg", Filename: "pothole.jpg"},
	})

	require.ErrorIs(t, err, ErrNotConfigured)
	assert.Nil(t, urls)
}

func TestUploadContractDocument_UnconfiguredService(t *testing.T) {
	var svc *Service

	result, err := svc.UploadContractDocument(context.Background(), File{
		Data:     []byte("%PDF-1.4"),
		MimeType: "application/pdf",
		Filename: "contract.pdf",
	})

	require.ErrorIs(t, err, ErrNotConfigured)
	assert.Nil(t, result)
}

func TestFile_IsValid(t *testing.T) {
	assert.True(t, File{Data: []byte("x"), MimeType: "image/png"}.IsValid())
	assert.False(t, File{MimeType: "image/png"}.IsValid())
	assert.False(t, File{Data: []byte("x")}.IsValid())
}
