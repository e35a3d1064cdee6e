package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/ironsheep/image-loader-mcp/internal/descriptor"
)

// MemoryStore keeps entries in process memory.
//
// MemoryStore is safe for concurrent use by multiple goroutines. Entries are
// shared, not copied: callers must not modify an Entry after Put or one
// returned by Get.
//
// Entries remain in memory until removed via Delete or Clear.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*Entry),
	}
}

// Get returns the entry stored under key.
func (s *MemoryStore) Get(_ context.Context, key string) (*Entry, bool, error) {
	if err := checkKey(key); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	return e, ok, nil
}

// Put stores e under key, replacing any previous entry.
func (s *MemoryStore) Put(_ context.Context, key string, e *Entry) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if e == nil {
		return ErrNilEntry
	}
	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()
	return nil
}

// Delete removes the entry under key. Missing keys are not an error.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Clear removes every entry.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	s.entries = make(map[string]*Entry)
	s.mu.Unlock()
}

// Close drops all entries.
func (s *MemoryStore) Close() error {
	s.Clear()
	return nil
}

func checkKey(key string) error {
	if !descriptor.IsKey(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

var _ Store = (*MemoryStore)(nil)
