// Package storagetest provides a recording counter table for tests.
package storagetest

import (
	"context"
	"sync"

	"github.com/nesq/resumecount/services/storage"
)

// Call records a single operation made against a Store.
type Call struct {
	Op    string
	ID    string
	Delta int64
	Put   *storage.Record
}

// Store is an in memory storage.Interface that records every call and can be
// told to fail or to report a specific increment result.
type Store struct {
	mu      sync.Mutex
	records map[string]storage.Record
	calls   []Call

	GetErr       error
	PutErr       error
	IncrementErr error
	// When set, Increment reports this value instead of the computed count.
	IncrementResult *int64
}

func New(records ...storage.Record) *Store {
	s := &Store{
		records: make(map[string]storage.Record, len(records)),
	}
	for _, r := range records {
		s.records[r.ID] = r
	}
	return s
}

func (s *Store) Get(_ context.Context, id string) (*storage.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Op: "get", ID: id})
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	r, ok := s.records[id]
	if !ok {
		return nil, storage.ErrNoRecordExists
	}
	return &r, nil
}

func (s *Store) Put(_ context.Context, r *storage.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.calls = append(s.calls, Call{Op: "put", ID: r.ID, Put: &cp})
	if s.PutErr != nil {
		return s.PutErr
	}
	s.records[r.ID] = cp
	return nil
}

func (s *Store) Increment(_ context.Context, id string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Op: "increment", ID: id, Delta: delta})
	if s.IncrementErr != nil {
		return 0, s.IncrementErr
	}
	r := s.records[id]
	r.ID = id
	r.Count += delta
	s.records[id] = r
	if s.IncrementResult != nil {
		return *s.IncrementResult, nil
	}
	return r.Count, nil
}

// Calls returns a copy of the recorded calls.
func (s *Store) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	calls := make([]Call, len(s.calls))
	copy(calls, s.calls)
	return calls
}

// Ops returns the names of the recorded operations in order.
func (s *Store) Ops() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ops := make([]string, len(s.calls))
	for i, c := range s.calls {
		ops[i] = c.Op
	}
	return ops
}

// Record returns the stored record and whether it exists.
func (s *Store) Record(id string) (storage.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[id]
	return r, ok
}
