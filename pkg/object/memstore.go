package object

import (
	"fmt"
	"sync"
)

type memObject struct {
	objType ObjectType
	data    []byte
}

// MemStore is an in-memory Store, safe for concurrent use. It serves tests
// and embedded callers that do not want persistence.
type MemStore struct {
	mu      sync.RWMutex
	objects map[Hash]memObject
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{objects: make(map[Hash]memObject)}
}

// Has reports whether the store contains an object with the given hash.
func (s *MemStore) Has(h Hash) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[h]
	return ok
}

// Write stores an object and returns its content hash.
func (s *MemStore) Write(objType ObjectType, data []byte) (Hash, error) {
	h := HashObject(objType, data)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[h]; ok {
		return h, nil
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	s.objects[h] = memObject{objType: objType, data: stored}
	return h, nil
}

// Read retrieves an object by hash, returning its type and raw content.
func (s *MemStore) Read(h Hash) (ObjectType, []byte, error) {
	s.mu.RLock()
	obj, ok := s.objects[h]
	s.mu.RUnlock()
	if !ok {
		return "", nil, fmt.Errorf("object read %s: %w", h, ErrNotFound)
	}
	out := make([]byte, len(obj.data))
	copy(out, obj.data)
	return obj.objType, out, nil
}

// Len returns the number of stored objects.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// Objects lists the hashes of all stored objects.
func (s *MemStore) Objects() ([]Hash, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Hash, 0, len(s.objects))
	for h := range s.objects {
		out = append(out, h)
	}
	return out, nil
}

// Delete removes an object.
func (s *MemStore) Delete(h Hash) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, h)
	return nil
}
