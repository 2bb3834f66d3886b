package mudb

import (
	"fmt"
	"sync"

	"github.com/ssrmu/mujson/internal/account"
)

// MemoryStore holds the collection in memory. It is used in tests.
type MemoryStore struct {
	mu         sync.Mutex
	collection *account.Collection
	held       bool

	// Saves counts successful Save calls that wrote data.
	Saves int
	// LoadErr, if set, is returned by Load.
	LoadErr error
}

// NewMemoryStore returns a store holding a copy of records.
func NewMemoryStore(records ...account.Record) *MemoryStore {
	c := &account.Collection{Records: append([]account.Record{}, records...)}
	return &MemoryStore{collection: c.Clone()}
}

// Load returns a copy of the stored collection.
func (s *MemoryStore) Load() (*account.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LoadErr != nil {
		return nil, &account.DecodeError{Err: s.LoadErr}
	}
	return s.collection.Clone(), nil
}

// Save replaces the stored collection with a copy of c.
func (s *MemoryStore) Save(c *account.Collection) error {
	if c == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collection = c.Clone()
	s.Saves++
	return nil
}

// Lock marks the store held. Nested locking is an error.
func (s *MemoryStore) Lock() (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.held {
		return nil, fmt.Errorf("memory store already locked")
	}
	s.held = true
	return func() {
		s.mu.Lock()
		s.held = false
		s.mu.Unlock()
	}, nil
}

// Held reports whether the lock is currently taken.
func (s *MemoryStore) Held() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.held
}

// Records returns a copy of the stored records.
func (s *MemoryStore) Records() []account.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collection.Clone().Records
}
