package object

import (
	"errors"
	"fmt"
)

// ErrNotFound reports a hash with no object behind it.
var ErrNotFound = errors.New("object not found")

// Store is a content-addressed object store. Write is idempotent: storing
// identical content twice yields the same hash and no duplicate storage
// effect. Objects are never mutated or deleted through this interface;
// reclamation is the collector's business.
type Store interface {
	// Has reports whether the store contains an object with the given hash.
	Has(h Hash) bool
	// Write stores an object and returns its content hash.
	Write(objType ObjectType, data []byte) (Hash, error)
	// Read retrieves an object by hash, returning its type and raw content.
	// A missing object yields an error wrapping ErrNotFound.
	Read(h Hash) (ObjectType, []byte, error)
}

// ---------------------------------------------------------------------------
// Typed helpers over a Store
// ---------------------------------------------------------------------------

// WriteBlob serializes and stores a Blob.
func WriteBlob(s Store, b *Blob) (Hash, error) {
	return s.Write(TypeBlob, MarshalBlob(b))
}

// ReadBlob reads and deserializes a Blob.
func ReadBlob(s Store, h Hash) (*Blob, error) {
	data, err := readTyped(s, h, TypeBlob)
	if err != nil {
		return nil, err
	}
	return UnmarshalBlob(data)
}

// WriteTree serializes and stores a TreeObj.
func WriteTree(s Store, tr *TreeObj) (Hash, error) {
	return s.Write(TypeTree, MarshalTree(tr))
}

// ReadTree reads and deserializes a TreeObj.
func ReadTree(s Store, h Hash) (*TreeObj, error) {
	data, err := readTyped(s, h, TypeTree)
	if err != nil {
		return nil, err
	}
	return UnmarshalTree(data)
}

// WriteCommit serializes and stores a CommitObj.
func WriteCommit(s Store, c *CommitObj) (Hash, error) {
	return s.Write(TypeCommit, MarshalCommit(c))
}

// ReadCommit reads and deserializes a CommitObj.
func ReadCommit(s Store, h Hash) (*CommitObj, error) {
	data, err := readTyped(s, h, TypeCommit)
	if err != nil {
		return nil, err
	}
	return UnmarshalCommit(data)
}

// WriteTag serializes and stores a TagObj.
func WriteTag(s Store, t *TagObj) (Hash, error) {
	return s.Write(TypeTag, MarshalTag(t))
}

// ReadTag reads and deserializes a TagObj.
func ReadTag(s Store, h Hash) (*TagObj, error) {
	data, err := readTyped(s, h, TypeTag)
	if err != nil {
		return nil, err
	}
	return UnmarshalTag(data)
}

func readTyped(s Store, h Hash, want ObjectType) ([]byte, error) {
	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if objType != want {
		return nil, fmt.Errorf("object %s: type mismatch: got %q, want %q", h, objType, want)
	}
	return data, nil
}
