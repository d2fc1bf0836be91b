package mocks

import (
	"context"
	"fmt"
	"io"
	"sync"

	"portalimg/internal/core/domain"
	"portalimg/internal/storage"
)

var _ storage.Store = (*MockStore)(nil)

// MockStore keeps images in memory. Set a func field to override one call.
type MockStore struct {
	StoreImageFunc func(ctx context.Context, data io.Reader, metadata storage.ImageMetadata) (storage.ImageMetadata, error)

	mu     sync.Mutex
	nextID int
	Images map[string][]byte
	Meta   map[string]storage.ImageMetadata
}

func NewMockStore() *MockStore {
	return &MockStore{
		Images: make(map[string][]byte),
		Meta:   make(map[string]storage.ImageMetadata),
	}
}

func (m *MockStore) StoreImage(ctx context.Context, data io.Reader, metadata storage.ImageMetadata) (storage.ImageMetadata, error) {
	if m.StoreImageFunc != nil {
		return m.StoreImageFunc(ctx, data, metadata)
	}

	body, err := io.ReadAll(data)
	if err != nil {
		return metadata, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if metadata.ID == "" {
		m.nextID++
		metadata.ID = fmt.Sprintf("img-%d", m.nextID)
	}
	metadata.Size = int64(len(body))
	metadata.ObjectKey = string(metadata.Category) + "/" + metadata.FileName
	m.Images[metadata.ID] = body
	m.Meta[metadata.ID] = metadata
	return metadata, nil
}

func (m *MockStore) GetImage(ctx context.Context, id string) ([]byte, storage.ImageMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	body, ok := m.Images[id]
	if !ok {
		return nil, storage.ImageMetadata{}, storage.ErrNotFound
	}
	return body, m.Meta[id], nil
}

func (m *MockStore) GetMetadata(ctx context.Context, id string) (storage.ImageMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	meta, ok := m.Meta[id]
	if !ok {
		return storage.ImageMetadata{}, storage.ErrNotFound
	}
	return meta, nil
}

func (m *MockStore) DeleteImage(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Images[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.Images, id)
	delete(m.Meta, id)
	return nil
}

func (m *MockStore) ListImages(ctx context.Context, category domain.Category) ([]storage.ImageMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []storage.ImageMetadata
	for _, meta := range m.Meta {
		if category == "" || meta.Category == category {
			out = append(out, meta)
		}
	}
	return out, nil
}

func (m *MockStore) EnsureBucket(ctx context.Context) error {
	return nil
}

func (m *MockStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Images)
}
