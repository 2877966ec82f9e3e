package refs

import (
	"fmt"
	"strings"
	"sync"

	"github.com/grovevcs/grove/pkg/object"
)

// MemStore is an in-memory ref store, safe for concurrent use.
type MemStore struct {
	mu   sync.Mutex
	refs map[string]object.Hash
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{refs: make(map[string]object.Hash)}
}

// Resolve returns the hash the named ref points at.
func (s *MemStore) Resolve(name string) (object.Hash, error) {
	if err := ValidateName(name); err != nil {
		return "", fmt.Errorf("resolve ref: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.refs[name]
	if !ok {
		return "", fmt.Errorf("resolve ref %q: %w", name, ErrNotFound)
	}
	return h, nil
}

// CompareAndSwap moves the ref to newHash only if its current value equals
// expectedOld. The mutex makes the read-compare-write sequence atomic.
func (s *MemStore) CompareAndSwap(name string, expectedOld, newHash object.Hash) error {
	if err := ValidateName(name); err != nil {
		return fmt.Errorf("update ref: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.refs[name]
	if current != expectedOld {
		return fmt.Errorf(
			"update ref %q: %w (expected %q, found %q)",
			name, ErrStale, expectedOld, current,
		)
	}
	s.refs[name] = newHash
	return nil
}

// Delete removes the named ref.
func (s *MemStore) Delete(name string) error {
	if err := ValidateName(name); err != nil {
		return fmt.Errorf("delete ref: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.refs[name]; !ok {
		return fmt.Errorf("delete ref %q: %w", name, ErrNotFound)
	}
	delete(s.refs, name)
	return nil
}

// List returns refs under the given prefix.
func (s *MemStore) List(prefix string) (map[string]object.Hash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]object.Hash)
	for name, h := range s.refs {
		if prefix == "" || name == prefix || strings.HasPrefix(name, prefix+"/") {
			out[name] = h
		}
	}
	return out, nil
}
