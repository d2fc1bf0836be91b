package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"portalimg/internal/core/domain"
	"portalimg/internal/storage"
)

// Client is the subset of *s3.Client the store uses.
type Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

var _ storage.Store = (*Store)(nil)

type Store struct {
	client Client
	config storage.Config
}

func New(client Client, config storage.Config) *Store {
	return &Store{
		client: client,
		config: config,
	}
}

func (s *Store) StoreImage(ctx context.Context, data io.Reader, metadata storage.ImageMetadata) (storage.ImageMetadata, error) {
	if metadata.ID == "" {
		metadata.ID = uuid.New().String()
	}
	if !metadata.Category.IsValid() {
		metadata.Category = s.config.DefaultCategory
	}
	if metadata.CreatedAt.IsZero() {
		metadata.CreatedAt = time.Now().UTC()
	}

	body, err := io.ReadAll(data)
	if err != nil {
		return metadata, fmt.Errorf("failed to read image data: %w", err)
	}
	metadata.Size = int64(len(body))
	metadata.ObjectKey = s.imageKey(metadata)

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.BucketName),
		Key:         aws.String(metadata.ObjectKey),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(metadata.ContentType),
	})
	if err != nil {
		return metadata, fmt.Errorf("failed to store image: %w", err)
	}

	metadataBytes, err := json.Marshal(metadata)
	if err != nil {
		return metadata, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.BucketName),
		Key:         aws.String(s.metadataKey(metadata.ID)),
		Body:        bytes.NewReader(metadataBytes),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		// Without its sidecar the image cannot be listed or fetched.
		_, _ = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.config.BucketName),
			Key:    aws.String(metadata.ObjectKey),
		})
		return metadata, fmt.Errorf("failed to store metadata: %w", err)
	}

	return metadata, nil
}

func (s *Store) GetImage(ctx context.Context, id string) ([]byte, storage.ImageMetadata, error) {
	metadata, err := s.GetMetadata(ctx, id)
	if err != nil {
		return nil, metadata, err
	}

	imageData, err := s.getObject(ctx, metadata.ObjectKey)
	if err != nil {
		return nil, metadata, fmt.Errorf("failed to get image: %w", err)
	}

	return imageData, metadata, nil
}

func (s *Store) GetMetadata(ctx context.Context, id string) (storage.ImageMetadata, error) {
	var metadata storage.ImageMetadata

	metadataBytes, err := s.getObject(ctx, s.metadataKey(id))
	if err != nil {
		return metadata, fmt.Errorf("failed to get metadata: %w", err)
	}

	if err := json.Unmarshal(metadataBytes, &metadata); err != nil {
		return metadata, fmt.Errorf("failed to parse metadata: %w", err)
	}

	return metadata, nil
}

func (s *Store) DeleteImage(ctx context.Context, id string) error {
	metadata, err := s.GetMetadata(ctx, id)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.config.BucketName),
		Key:    aws.String(metadata.ObjectKey),
	})
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.config.BucketName),
		Key:    aws.String(s.metadataKey(id)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete metadata: %w", err)
	}

	return nil
}

// ListImages returns the sidecars of every image in category, newest first.
// An empty category lists everything.
func (s *Store) ListImages(ctx context.Context, category domain.Category) ([]storage.ImageMetadata, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.config.BucketName),
		Prefix: aws.String(s.config.MetadataPrefix),
	})

	var images []storage.ImageMetadata
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list metadata: %w", err)
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !strings.HasSuffix(key, ".json") {
				continue
			}
			id := strings.TrimSuffix(path.Base(key), ".json")

			metadata, err := s.GetMetadata(ctx, id)
			if err != nil {
				return nil, err
			}
			if category != "" && metadata.Category != category {
				continue
			}
			images = append(images, metadata)
		}
	}

	sort.Slice(images, func(i, j int) bool {
		return images[i].CreatedAt.After(images[j].CreatedAt)
	})
	return images, nil
}

// EnsureBucket creates the bucket and its folder markers when missing.
func (s *Store) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.config.BucketName),
	})
	if err != nil {
		input := &s3.CreateBucketInput{
			Bucket: aws.String(s.config.BucketName),
		}

		// Only add location constraint if not in us-east-1
		if s.config.Region != "" && s.config.Region != "us-east-1" {
			input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
				LocationConstraint: types.BucketLocationConstraint(s.config.Region),
			}
		}

		if _, err := s.client.CreateBucket(ctx, input); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", s.config.BucketName, err)
		}
	}

	for _, folder := range s.Folders() {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(s.config.BucketName),
			Key:    aws.String(folder),
		})
		if err != nil {
			return fmt.Errorf("failed to create folder %s: %w", folder, err)
		}
	}

	return nil
}

// Folders lists the folder markers EnsureBucket creates.
func (s *Store) Folders() []string {
	folders := []string{s.config.MetadataPrefix}
	for _, c := range domain.Categories {
		folders = append(folders, s.config.ImagePrefix+string(c)+"/")
	}
	return folders
}

func (s *Store) getObject(ctx context.Context, key string) ([]byte, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, key)
		}
		return nil, err
	}
	defer result.Body.Close()

	return io.ReadAll(result.Body)
}

func (s *Store) imageKey(metadata storage.ImageMetadata) string {
	ext := path.Ext(metadata.FileName)
	if sub := strings.TrimPrefix(metadata.ContentType, "image/"); sub != metadata.ContentType && sub != "" {
		ext = "." + sub
	}
	return s.config.ImagePrefix + string(metadata.Category) + "/" + metadata.ID + ext
}

func (s *Store) metadataKey(id string) string {
	return path.Join(s.config.MetadataPrefix, id+".json")
}
