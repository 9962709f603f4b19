package storage

import (
	"context"
	"io"
	"sync"
)

// Mock is an in-memory FileUploader for tests.
type Mock struct {
	BaseURL    string
	UploadFunc func(ctx context.Context, key, contentType string, reader io.Reader) (*UploadResult, error)

	mu          sync.Mutex
	Objects     map[string][]byte
	DeleteCalls []string
}

func NewMock(baseURL string) *Mock {
	return &Mock{BaseURL: baseURL, Objects: make(map[string][]byte)}
}

func (m *Mock) Upload(ctx context.Context, key, contentType string, reader io.Reader) (*UploadResult, error) {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, key, contentType, reader)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.Objects[key] = data
	m.mu.Unlock()
	return &UploadResult{Key: key, Location: m.GetPublicURL(key)}, nil
}

func (m *Mock) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Objects, key)
	m.DeleteCalls = append(m.DeleteCalls, key)
	return nil
}

func (m *Mock) GetPublicURL(key string) string {
	return publicURL(m.BaseURL, key)
}
