package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(baseURL string) *S3Storage {
	return NewS3Storage(context.Background(), "us-east-1", "amaretto-media", "AKIATEST", "secret", baseURL)
}

func TestNormalizeImageURL(t *testing.T) {
	s := newTestStorage("https://cdn.amaretto.mx/")

	tests := []struct {
		name string
		ref  string
		want string
	}{
		{"absolute https kept", "https://example.com/a.jpg", "https://example.com/a.jpg"},
		{"absolute http kept", "HTTP://example.com/a.jpg", "HTTP://example.com/a.jpg"},
		{"bare key rewritten", "amaretto/productos/abc.jpg", "https://cdn.amaretto.mx/amaretto/productos/abc.jpg"},
		{"leading slash trimmed", "/abc.jpg", "https://cdn.amaretto.mx/abc.jpg"},
		{"blank dropped", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.NormalizeImageURL(tt.ref))
		})
	}
}

func TestBaseURLNormalizer(t *testing.T) {
	n := BaseURLNormalizer("https://img.example.com/")

	assert.Equal(t, "https://img.example.com/x/y.png", n.NormalizeImageURL("/x/y.png"))
	assert.Equal(t, "https://other.com/z.png", n.NormalizeImageURL("https://other.com/z.png"))
}

func TestURL_WithoutBaseURLUsesBucketHost(t *testing.T) {
	s := newTestStorage("")

	assert.Equal(t, "https://amaretto-media.s3.us-east-1.amazonaws.com/k.png", s.URL("k.png"))
}

func TestGeneratePresignedURLWithFolder(t *testing.T) {
	s := newTestStorage("https://cdn.amaretto.mx")

	resp, err := s.GeneratePresignedURLWithFolder(context.Background(), "Foto.JPG", "image/jpeg", ProductFolder)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(resp.Key, "amaretto/productos/"))
	assert.True(t, strings.HasSuffix(resp.Key, ".jpg"))
	assert.Equal(t, "https://cdn.amaretto.mx/"+resp.Key, resp.FileURL)
	assert.Contains(t, resp.UploadURL, "X-Amz-Signature")
}

func TestValidators(t *testing.T) {
	assert.NoError(t, ValidateFileSize(1024, MaxImageSize))
	assert.Error(t, ValidateFileSize(MaxImageSize+1, MaxImageSize))
	assert.Error(t, ValidateFileSize(0, MaxImageSize))

	assert.NoError(t, ValidateContentType("image/PNG", AllowedImageTypes))
	assert.Error(t, ValidateContentType("application/pdf", AllowedImageTypes))
}
