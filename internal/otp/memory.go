package otp

import (
	"context"
	"sync"
)

// MemoryStore holds codes in a process-wide map. Suitable only for
// single-process deployments: entries are lost on restart and concurrent
// requests for one email race with last-writer-wins semantics.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]Entry
}

// NewMemoryStore constructs a MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

// Put stores the entry, overwriting any prior one for the email.
func (s *MemoryStore) Put(_ context.Context, email string, entry Entry) error {
	s.mu.Lock()
	s.entries[email] = entry
	s.mu.Unlock()
	return nil
}

// Get returns the entry for the email, if present.
func (s *MemoryStore) Get(_ context.Context, email string) (Entry, bool, error) {
	s.mu.Lock()
	entry, ok := s.entries[email]
	s.mu.Unlock()
	return entry, ok, nil
}

// Delete removes the entry for the email.
func (s *MemoryStore) Delete(_ context.Context, email string) error {
	s.mu.Lock()
	delete(s.entries, email)
	s.mu.Unlock()
	return nil
}
