package roster

import (
	"context"
	"sync"
)

// MockStore wraps a Store, recording rating writes and letting tests replace
// individual operations.
type MockStore struct {
	Store

	GetPlayerFunc    func(ctx context.Context, id string) (*Player, error)
	UpdateRatingFunc func(ctx context.Context, id string, ovr int, record EvaluationRecord) error

	mu                sync.Mutex
	UpdateRatingCalls []UpdateRatingCall
}

type UpdateRatingCall struct {
	PlayerID string
	OVR      int
	Record   EvaluationRecord
}

var _ Store = (*MockStore)(nil)

func NewMockStore(inner Store) *MockStore {
	return &MockStore{Store: inner}
}

func (m *MockStore) GetPlayer(ctx context.Context, id string) (*Player, error) {
	if m.GetPlayerFunc != nil {
		return m.GetPlayerFunc(ctx, id)
	}
	return m.Store.GetPlayer(ctx, id)
}

func (m *MockStore) UpdateRating(ctx context.Context, id string, ovr int, record EvaluationRecord) error {
	m.mu.Lock()
	m.UpdateRatingCalls = append(m.UpdateRatingCalls, UpdateRatingCall{PlayerID: id, OVR: ovr, Record: record})
	m.mu.Unlock()
	if m.UpdateRatingFunc != nil {
		return m.UpdateRatingFunc(ctx, id, ovr, record)
	}
	return m.Store.UpdateRating(ctx, id, ovr, record)
}

// RatingWrites returns a copy of the recorded UpdateRating calls.
func (m *MockStore) RatingWrites() []UpdateRatingCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]UpdateRatingCall(nil), m.UpdateRatingCalls...)
}
