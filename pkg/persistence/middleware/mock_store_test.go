package middleware_test

import (
	"context"

	"github.com/aretw0/cancelflow/pkg/domain"
)

// MockStore is a simple map-based store for testing middleware.
type MockStore struct {
	data map[string][]byte
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string][]byte),
	}
}

func (s *MockStore) Save(ctx context.Context, key string, record []byte) error {
	s.data[key] = record
	return nil
}

func (s *MockStore) Load(ctx context.Context, key string) ([]byte, error) {
	record, ok := s.data[key]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return record, nil
}

func (s *MockStore) Delete(ctx context.Context, key string) error {
	delete(s.data, key)
	return nil
}

func (s *MockStore) List(ctx context.Context) ([]string, error) {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys, nil
}
