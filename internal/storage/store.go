package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"portalimg/internal/core/domain"
)

var ErrNotFound = errors.New("image not found")

// ImageMetadata is the JSON sidecar stored next to every image.
type ImageMetadata struct {
	ID          string                `json:"id"`
	FileName    string                `json:"file_name"`
	ContentType string                `json:"content_type"`
	Size        int64                 `json:"size"`
	Category    domain.Category       `json:"category"`
	ObjectKey   string                `json:"object_key"`
	CreatedAt   time.Time             `json:"created_at"`
	Upload      domain.UploadMetadata `json:"upload"`
}

// Store defines the interface for image storage operations
type Store interface {
	StoreImage(ctx context.Context, data io.Reader, metadata ImageMetadata) (ImageMetadata, error)
	GetImage(ctx context.Context, id string) ([]byte, ImageMetadata, error)
	GetMetadata(ctx context.Context, id string) (ImageMetadata, error)
	DeleteImage(ctx context.Context, id string) error
	ListImages(ctx context.Context, category domain.Category) ([]ImageMetadata, error)
	EnsureBucket(ctx context.Context) error
}

// Config holds configuration for storage services
type Config struct {
	BucketName      string          `mapstructure:"bucket"`
	Region          string          `mapstructure:"region"`
	ImagePrefix     string          `mapstructure:"image_prefix"`
	MetadataPrefix  string          `mapstructure:"metadata_prefix"`
	DefaultCategory domain.Category `mapstructure:"-"`
}
