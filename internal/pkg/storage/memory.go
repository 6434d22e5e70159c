package storage

import (
	"context"
	"sync"
)

// MemoryBlobStore keeps blobs in process memory. Used for development and tests.
type MemoryBlobStore struct {
	mu   sync.RWMutex
	data map[string]string
	sets int
}

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{
		data: make(map[string]string),
	}
}

func (s *MemoryBlobStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.data[key]
	return value, ok, nil
}

func (s *MemoryBlobStore) Set(ctx context.Context, key string, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	s.sets++
	return nil
}

func (s *MemoryBlobStore) Modify(ctx context.Context, key string, fn ModifyFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, found := s.data[key]
	next, err := fn(current, found)
	if err != nil {
		return err
	}
	s.data[key] = next
	s.sets++
	return nil
}

// SetCount returns how many writes the store has accepted
func (s *MemoryBlobStore) SetCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sets
}
