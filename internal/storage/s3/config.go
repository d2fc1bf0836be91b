package s3

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"portalimg/internal/core/domain"
	"portalimg/internal/storage"
)

// DefaultConfig provides default configuration values
var DefaultConfig = storage.Config{
	BucketName:      "portal-media",
	Region:          "us-east-1",
	ImagePrefix:     "images/",
	MetadataPrefix:  "metadata/",
	DefaultCategory: domain.CategoryGeneral,
}

// NewClient creates a store on a fresh S3 client. The bucket is not checked;
// call EnsureBucket for that.
func NewClient(cfg aws.Config, bucket string, opts ...func(*storage.Config)) *Store {
	config := DefaultConfig
	config.BucketName = bucket
	config.Region = cfg.Region
	for _, opt := range opts {
		opt(&config)
	}

	return New(s3.NewFromConfig(cfg), config)
}

// Verify checks the bucket exists and is accessible.
func (s *Store) Verify(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.config.BucketName),
	})
	if err != nil {
		return fmt.Errorf("failed to access bucket %s: %w", s.config.BucketName, err)
	}
	return nil
}

// WithPrefixes sets custom prefixes for images and metadata sidecars
func WithPrefixes(image, metadata string) func(*storage.Config) {
	return func(c *storage.Config) {
		if image != "" {
			c.ImagePrefix = image
		}
		if metadata != "" {
			c.MetadataPrefix = metadata
		}
	}
}

// WithCategory sets the category used when metadata carries none
func WithCategory(category domain.Category) func(*storage.Config) {
	return func(c *storage.Config) {
		if category.IsValid() {
			c.DefaultCategory = category
		}
	}
}
