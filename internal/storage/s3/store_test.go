package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portalimg/internal/core/domain"
	"portalimg/internal/storage"
)

type fakeClient struct {
	mu           sync.Mutex
	objects      map[string][]byte
	contentTypes map[string]string
	bucketExists bool
	created      *s3.CreateBucketInput
	putErr       error
	// putErrPrefix limits putErr to keys with this prefix.
	putErrPrefix string
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		objects:      make(map[string][]byte),
		contentTypes: make(map[string]string),
		bucketExists: true,
	}
}

func (f *fakeClient) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil && strings.HasPrefix(aws.ToString(params.Key), f.putErrPrefix) {
		return nil, f.putErr
	}
	var data []byte
	if params.Body != nil {
		var err error
		data, err = io.ReadAll(params.Body)
		if err != nil {
			return nil, err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := aws.ToString(params.Key)
	f.objects[key] = data
	f.contentTypes[key] = aws.ToString(params.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeClient) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeClient) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(params.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeClient) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, aws.ToString(params.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := &s3.ListObjectsV2Output{}
	for _, k := range keys {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func (f *fakeClient) HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if !f.bucketExists {
		return nil, &types.NotFound{}
	}
	return &s3.HeadBucketOutput{}, nil
}

func (f *fakeClient) CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.created = params
	f.bucketExists = true
	return &s3.CreateBucketOutput{}, nil
}

func newTestStore(client *fakeClient) *Store {
	return New(client, DefaultConfig)
}

func TestStore_StoreAndGetImage(t *testing.T) {
	client := newFakeClient()
	store := newTestStore(client)
	ctx := context.Background()

	meta, err := store.StoreImage(ctx, strings.NewReader("webp-bytes"), storage.ImageMetadata{
		FileName:    "burger.webp",
		ContentType: "image/webp",
		Category:    domain.CategoryMenu,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, meta.ID)
	assert.Equal(t, int64(len("webp-bytes")), meta.Size)
	assert.Equal(t, "images/menu/"+meta.ID+".webp", meta.ObjectKey)
	assert.False(t, meta.CreatedAt.IsZero())
	assert.Equal(t, "image/webp", client.contentTypes[meta.ObjectKey])
	assert.Contains(t, client.objects, "metadata/"+meta.ID+".json")

	data, got, err := store.GetImage(ctx, meta.ID)
	require.NoError(t, err)
	assert.Equal(t, "webp-bytes", string(data))
	assert.Equal(t, meta.FileName, got.FileName)
	assert.Equal(t, domain.CategoryMenu, got.Category)

	sidecar, err := store.GetMetadata(ctx, meta.ID)
	require.NoError(t, err)
	assert.Equal(t, meta.ObjectKey, sidecar.ObjectKey)

	_, err = store.GetMetadata(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_StoreImage_DefaultCategory(t *testing.T) {
	client := newFakeClient()
	store := New(client, DefaultConfig)
	WithCategory(domain.CategoryPromotions)(&store.config)

	meta, err := store.StoreImage(context.Background(), strings.NewReader("x"), storage.ImageMetadata{
		ID:          "fixed-id",
		FileName:    "promo.jpeg",
		ContentType: "image/jpeg",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryPromotions, meta.Category)
	assert.Equal(t, "images/promotions/fixed-id.jpeg", meta.ObjectKey)
}

func TestStore_StoreImage_PutFails(t *testing.T) {
	client := newFakeClient()
	client.putErr = errors.New("access denied")
	store := newTestStore(client)

	_, err := store.StoreImage(context.Background(), strings.NewReader("x"), storage.ImageMetadata{ContentType: "image/png"})
	assert.ErrorContains(t, err, "failed to store image")
}

func TestStore_StoreImage_SidecarFailsRemovesImage(t *testing.T) {
	client := newFakeClient()
	client.putErr = errors.New("slow down")
	client.putErrPrefix = DefaultConfig.MetadataPrefix
	store := newTestStore(client)

	meta, err := store.StoreImage(context.Background(), strings.NewReader("webp-bytes"), storage.ImageMetadata{
		FileName:    "burger.webp",
		ContentType: "image/webp",
		Category:    domain.CategoryMenu,
	})
	assert.ErrorContains(t, err, "failed to store metadata")
	assert.NotContains(t, client.objects, meta.ObjectKey)
	assert.Empty(t, client.objects)
}

func TestStore_GetImage_NotFound(t *testing.T) {
	store := newTestStore(newFakeClient())

	_, _, err := store.GetImage(context.Background(), "nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_DeleteImage(t *testing.T) {
	client := newFakeClient()
	store := newTestStore(client)
	ctx := context.Background()

	meta, err := store.StoreImage(ctx, strings.NewReader("x"), storage.ImageMetadata{ContentType: "image/png"})
	require.NoError(t, err)

	require.NoError(t, store.DeleteImage(ctx, meta.ID))
	assert.Empty(t, client.objects)

	assert.ErrorIs(t, store.DeleteImage(ctx, meta.ID), storage.ErrNotFound)
}

func TestStore_ListImages(t *testing.T) {
	client := newFakeClient()
	store := newTestStore(client)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	inputs := []struct {
		id       string
		category domain.Category
		at       time.Time
	}{
		{"a", domain.CategoryMenu, base},
		{"b", domain.CategoryMenu, base.Add(time.Hour)},
		{"c", domain.CategoryWarnings, base.Add(2 * time.Hour)},
	}
	for _, in := range inputs {
		_, err := store.StoreImage(ctx, strings.NewReader(in.id), storage.ImageMetadata{
			ID:          in.id,
			ContentType: "image/webp",
			Category:    in.category,
			CreatedAt:   in.at,
		})
		require.NoError(t, err)
	}
	require.NoError(t, store.EnsureBucket(ctx))

	all, err := store.ListImages(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].ID)

	menu, err := store.ListImages(ctx, domain.CategoryMenu)
	require.NoError(t, err)
	require.Len(t, menu, 2)
	assert.Equal(t, "b", menu[0].ID)
	assert.Equal(t, "a", menu[1].ID)
}

func TestStore_EnsureBucket(t *testing.T) {
	tests := []struct {
		name           string
		exists         bool
		region         string
		wantCreate     bool
		wantConstraint bool
	}{
		{"Existing bucket", true, "eu-west-1", false, false},
		{"Missing bucket in us-east-1", false, "us-east-1", true, false},
		{"Missing bucket elsewhere", false, "ap-northeast-1", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newFakeClient()
			client.bucketExists = tt.exists
			cfg := DefaultConfig
			cfg.Region = tt.region
			store := New(client, cfg)

			require.NoError(t, store.EnsureBucket(context.Background()))

			if !tt.wantCreate {
				assert.Nil(t, client.created)
			} else {
				require.NotNil(t, client.created)
				assert.Equal(t, tt.wantConstraint, client.created.CreateBucketConfiguration != nil)
			}
			for _, folder := range store.Folders() {
				assert.Contains(t, client.objects, folder)
			}
			assert.Contains(t, client.objects, "images/menu/")
		})
	}
}

func TestWithPrefixes(t *testing.T) {
	cfg := DefaultConfig
	WithPrefixes("portal/img/", "")(&cfg)

	assert.Equal(t, "portal/img/", cfg.ImagePrefix)
	assert.Equal(t, DefaultConfig.MetadataPrefix, cfg.MetadataPrefix)
}

func TestStore_Verify(t *testing.T) {
	client := newFakeClient()
	store := newTestStore(client)
	require.NoError(t, store.Verify(context.Background()))

	client.bucketExists = false
	err := store.Verify(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), DefaultConfig.BucketName)
}

func TestNewClient(t *testing.T) {
	store := NewClient(aws.Config{Region: "eu-west-1"}, "menu-photos",
		WithPrefixes("portal/", "portal-meta/"),
		WithCategory(domain.CategoryMenu),
		WithCategory("payroll"),
	)

	assert.Equal(t, "menu-photos", store.config.BucketName)
	assert.Equal(t, "eu-west-1", store.config.Region)
	assert.Equal(t, "portal/", store.config.ImagePrefix)
	assert.Equal(t, "portal-meta/", store.config.MetadataPrefix)
	assert.Equal(t, domain.CategoryMenu, store.config.DefaultCategory)
	assert.NotNil(t, store.client)
}
