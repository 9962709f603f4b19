package docstore

import (
	"context"
	"sync"
)

// Mock is a Store for tests. Each call is recorded; when the matching XxxFunc
// is set it handles the call, otherwise the call goes to Fallback.
type Mock struct {
	Fallback Store

	GetFunc    func(ctx context.Context, collection, id string) (Record, error)
	PutFunc    func(ctx context.Context, collection, id string, rec Record) error
	UpdateFunc func(ctx context.Context, collection, id string, partial Record) error
	DeleteFunc func(ctx context.Context, collection, id string) error
	QueryFunc  func(ctx context.Context, collection string, q Query) ([]Record, error)

	mu    sync.Mutex
	Calls []MockCall
}

// MockCall records one call made to a Mock.
type MockCall struct {
	Method     string
	Collection string
	ID         string
}

var _ Store = (*Mock)(nil)

// NewMock returns a Mock delegating to fallback.
func NewMock(fallback Store) *Mock {
	return &Mock{Fallback: fallback}
}

func (m *Mock) record(method, collection, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Method: method, Collection: collection, ID: id})
}

// CallCount returns how many times method was called.
func (m *Mock) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

func (m *Mock) Get(ctx context.Context, collection, id string) (Record, error) {
	m.record("Get", collection, id)
	if m.GetFunc != nil {
		return m.GetFunc(ctx, collection, id)
	}
	return m.Fallback.Get(ctx, collection, id)
}

func (m *Mock) Put(ctx context.Context, collection, id string, rec Record) error {
	m.record("Put", collection, id)
	if m.PutFunc != nil {
		return m.PutFunc(ctx, collection, id, rec)
	}
	return m.Fallback.Put(ctx, collection, id, rec)
}

func (m *Mock) Update(ctx context.Context, collection, id string, partial Record) error {
	m.record("Update", collection, id)
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, collection, id, partial)
	}
	return m.Fallback.Update(ctx, collection, id, partial)
}

func (m *Mock) Delete(ctx context.Context, collection, id string) error {
	m.record("Delete", collection, id)
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, collection, id)
	}
	return m.Fallback.Delete(ctx, collection, id)
}

func (m *Mock) Query(ctx context.Context, collection string, q Query) ([]Record, error) {
	m.record("Query", collection, "")
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, collection, q)
	}
	return m.Fallback.Query(ctx, collection, q)
}
