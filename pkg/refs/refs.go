// Package refs defines the mutable ref namespace: named pointers to commit
// hashes, updated only through atomic compare-and-swap.
package refs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/grovevcs/grove/pkg/object"
)

// ErrNotFound reports a ref name with no value behind it.
var ErrNotFound = errors.New("ref not found")

// ErrStale reports a compare-and-swap that lost the race: the ref's current
// value did not match the expected old hash. The caller owns retry policy;
// nothing in this package retries on its own.
var ErrStale = errors.New("ref compare-and-swap mismatch")

// Store is a mutable mapping from ref name to object hash. Implementations
// must make CompareAndSwap a single atomic primitive, not a read composed
// with a blind write.
type Store interface {
	// Resolve returns the hash a ref points at, or an error wrapping
	// ErrNotFound.
	Resolve(name string) (object.Hash, error)
	// CompareAndSwap moves the ref to newHash only if its current value
	// equals expectedOld. An empty expectedOld means the ref must not yet
	// exist (branch creation). On mismatch it fails with an error wrapping
	// ErrStale and writes nothing.
	CompareAndSwap(name string, expectedOld, newHash object.Hash) error
	// Delete removes the ref. A missing ref yields ErrNotFound.
	Delete(name string) error
	// List returns all refs whose name starts with prefix, keyed by full
	// ref name.
	List(prefix string) (map[string]object.Hash, error)
}

// ValidateName rejects ref names that would escape the ref namespace.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("empty ref name")
	}
	if strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/") {
		return fmt.Errorf("ref name %q: leading or trailing slash", name)
	}
	for _, seg := range strings.Split(name, "/") {
		if seg == "" {
			return fmt.Errorf("ref name %q: empty segment", name)
		}
		if seg == "." || seg == ".." {
			return fmt.Errorf("ref name %q: dot segment", name)
		}
	}
	if strings.ContainsAny(name, " \t\n\\") {
		return fmt.Errorf("ref name %q: illegal character", name)
	}
	return nil
}
