package storage

import (
	"context"
	"sync"
)

// MemStore is an in memory only implementation of the storage.Interface.
// This is intend to be used for testing use cases only.
type MemStore struct {
	mu    sync.Mutex
	Name  string
	store map[string]Record
}

func NewMemStore(name string) *MemStore {
	return &MemStore{
		Name:  name,
		store: make(map[string]Record),
	}
}

func (s *MemStore) Get(_ context.Context, id string) (*Record, error) {
	s.mu.Lock()
	r, ok := s.store[id]
	s.mu.Unlock()
	if !ok {
		return nil, ErrNoRecordExists
	}
	return &r, nil
}

func (s *MemStore) Put(_ context.Context, r *Record) error {
	s.mu.Lock()
	s.store[r.ID] = *r
	s.mu.Unlock()
	return nil
}

func (s *MemStore) Increment(_ context.Context, id string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.store[id]
	r.ID = id
	r.Count += delta
	s.store[id] = r
	return r.Count, nil
}
