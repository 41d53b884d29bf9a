package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const (
	// ProductFolder is where product photos are uploaded
	ProductFolder = "amaretto/productos"

	// MaxImageSize is the per-image ceiling
	MaxImageSize int64 = 20 * 1024 * 1024

	// MaxImagesPerUpload mirrors the per-product image limit
	MaxImagesPerUpload = 5

	DefaultListLimit = 100
)

// AllowedImageTypes are the content types accepted for presigned uploads
var AllowedImageTypes = []string{
	"image/jpeg",
	"image/jpg",
	"image/png",
	"image/gif",
	"image/webp",
	"image/avif",
}

// ImageURLNormalizer turns a stored image reference into an absolute URL
type ImageURLNormalizer interface {
	NormalizeImageURL(ref string) string
}

// ImageHost is the image collaborator the upload handlers depend on
type ImageHost interface {
	ImageURLNormalizer
	GeneratePresignedURLWithFolder(ctx context.Context, filename, contentType, folder string) (*PresignedURLResponse, error)
	ListImages(ctx context.Context, folder string, maxResults int) ([]ImageObject, error)
}

type S3Storage struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

type PresignedURLResponse struct {
	UploadURL string `json:"upload_url"`
	FileURL   string `json:"file_url"`
	Key       string `json:"key"`
}

type ImageObject struct {
	Key          string    `json:"key"`
	URL          string    `json:"url"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

func NewS3Storage(ctx context.Context, region, bucket, accessKeyID, secretAccessKey, baseURL string) *S3Storage {
	var cfg aws.Config
	var err error

	// If credentials are provided, use them. Otherwise, use default credential chain
	if accessKeyID != "" && secretAccessKey != "" {
		cfg = aws.Config{
			Region: region,
			Credentials: credentials.NewStaticCredentialsProvider(
				accessKeyID,
				secretAccessKey,
				"",
			),
		}
	} else {
		cfg, err = config.LoadDefaultConfig(ctx, config.WithRegion(region))
		if err != nil {
			cfg = aws.Config{Region: region}
		}
	}

	return &S3Storage{
		client:  s3.NewFromConfig(cfg),
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// URL returns the public URL of key
func (s *S3Storage) URL(key string) string {
	key = strings.TrimLeft(key, "/")
	if s.baseURL != "" {
		return fmt.Sprintf("%s/%s", s.baseURL, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.client.Options().Region, key)
}

// NormalizeImageURL keeps absolute http(s) URLs and treats anything else as a
// bare object key. Blank references normalize to "".
func (s *S3Storage) NormalizeImageURL(ref string) string {
	return normalizeImageURL(ref, s.URL)
}

// BaseURLNormalizer normalizes against a fixed base URL without an S3 client
type BaseURLNormalizer string

func (b BaseURLNormalizer) NormalizeImageURL(ref string) string {
	base := strings.TrimRight(string(b), "/")
	return normalizeImageURL(ref, func(key string) string {
		return base + "/" + strings.TrimLeft(key, "/")
	})
}

func normalizeImageURL(ref string, urlFor func(string) string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	lower := strings.ToLower(ref)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return ref
	}
	return urlFor(ref)
}

// GeneratePresignedURLWithFolder generates a pre-signed PUT URL for a new object in folder
func (s *S3Storage) GeneratePresignedURLWithFolder(ctx context.Context, filename, contentType, folder string) (*PresignedURLResponse, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	key := fmt.Sprintf("%s/%s%s", strings.Trim(folder, "/"), uuid.New().String(), ext)

	presignClient := s3.NewPresignClient(s.client)
	presignedReq, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return nil, fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return &PresignedURLResponse{
		UploadURL: presignedReq.URL,
		FileURL:   s.URL(key),
		Key:       key,
	}, nil
}

// ListImages returns up to maxResults objects under folder
func (s *S3Storage) ListImages(ctx context.Context, folder string, maxResults int) ([]ImageObject, error) {
	if maxResults <= 0 {
		maxResults = DefaultListLimit
	}
	prefix := strings.Trim(folder, "/")
	if prefix != "" {
		prefix += "/"
	}

	out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(int32(maxResults)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}

	images := make([]ImageObject, 0, len(out.Contents))
	for _, obj := range out.Contents {
		key := aws.ToString(obj.Key)
		images = append(images, ImageObject{
			Key:          key,
			URL:          s.URL(key),
			Size:         aws.ToInt64(obj.Size),
			LastModified: aws.ToTime(obj.LastModified),
		})
	}
	return images, nil
}

// ValidateFileSize validates the file size
func ValidateFileSize(size int64, maxSize int64) error {
	if size <= 0 {
		return fmt.Errorf("file size must be positive")
	}
	if size > maxSize {
		return fmt.Errorf("file size exceeds maximum allowed size of %d bytes", maxSize)
	}
	return nil
}

// ValidateContentType validates the content type
func ValidateContentType(contentType string, allowedTypes []string) error {
	for _, allowed := range allowedTypes {
		if strings.EqualFold(contentType, allowed) {
			return nil
		}
	}
	return fmt.Errorf("content type %s is not allowed", contentType)
}
