package refs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/grovevcs/grove/pkg/object"
)

const (
	refLockRetryDelay = 5 * time.Millisecond
	refLockWaitLimit  = 2 * time.Second
)

// FileStore keeps each ref as a file under root, e.g. root/heads/main.
// Compare-and-swap is implemented with an exclusive-create lockfile: the
// lock serializes the read-compare-write sequence, and the final rename
// makes the new value visible atomically.
type FileStore struct {
	root string
}

// NewFileStore creates a FileStore rooted at the given directory.
func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

func (s *FileStore) refPath(name string) string {
	return filepath.Join(s.root, filepath.FromSlash(name))
}

// Resolve returns the hash the named ref points at.
func (s *FileStore) Resolve(name string) (object.Hash, error) {
	if err := ValidateName(name); err != nil {
		return "", fmt.Errorf("resolve ref: %w", err)
	}
	data, err := os.ReadFile(s.refPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("resolve ref %q: %w", name, ErrNotFound)
		}
		return "", fmt.Errorf("resolve ref %q: %w", name, err)
	}
	return object.Hash(strings.TrimSpace(string(data))), nil
}

// CompareAndSwap moves the ref to newHash only if its current value equals
// expectedOld, using lockfile + rename semantics.
func (s *FileStore) CompareAndSwap(name string, expectedOld, newHash object.Hash) error {
	if err := ValidateName(name); err != nil {
		return fmt.Errorf("update ref: %w", err)
	}

	refPath := s.refPath(name)
	if err := os.MkdirAll(filepath.Dir(refPath), 0o755); err != nil {
		return fmt.Errorf("update ref %q: mkdir: %w", name, err)
	}

	lockPath := refPath + ".lock"
	lockFile, err := acquireRefLock(lockPath)
	if err != nil {
		return fmt.Errorf("update ref %q: lock: %w", name, err)
	}
	cleanupLock := true
	defer func() {
		if lockFile != nil {
			_ = lockFile.Close()
		}
		if cleanupLock {
			_ = os.Remove(lockPath)
		}
	}()

	oldHash, err := readRefHash(refPath)
	if err != nil {
		return fmt.Errorf("update ref %q: read old hash: %w", name, err)
	}
	if oldHash != expectedOld {
		return fmt.Errorf(
			"update ref %q: %w (expected %q, found %q)",
			name, ErrStale, expectedOld, oldHash,
		)
	}

	if _, err := lockFile.WriteString(string(newHash) + "\n"); err != nil {
		return fmt.Errorf("update ref %q: write: %w", name, err)
	}
	if err := lockFile.Sync(); err != nil {
		return fmt.Errorf("update ref %q: sync: %w", name, err)
	}
	if err := lockFile.Close(); err != nil {
		lockFile = nil
		return fmt.Errorf("update ref %q: close: %w", name, err)
	}
	lockFile = nil

	if err := os.Rename(lockPath, refPath); err != nil {
		return fmt.Errorf("update ref %q: rename: %w", name, err)
	}
	cleanupLock = false
	return nil
}

// Delete removes the named ref.
func (s *FileStore) Delete(name string) error {
	if err := ValidateName(name); err != nil {
		return fmt.Errorf("delete ref: %w", err)
	}
	if err := os.Remove(s.refPath(name)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("delete ref %q: %w", name, ErrNotFound)
		}
		return fmt.Errorf("delete ref %q: %w", name, err)
	}
	return nil
}

// List returns refs under the given prefix, keyed by full slash-separated
// name relative to the ref root, e.g. "heads/main", "tags/v1".
func (s *FileStore) List(prefix string) (map[string]object.Hash, error) {
	dir := s.root
	if strings.TrimSpace(prefix) != "" {
		dir = filepath.Join(s.root, filepath.FromSlash(prefix))
	}

	out := make(map[string]object.Hash)
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || strings.HasSuffix(path, ".lock") {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		out[filepath.ToSlash(rel)] = object.Hash(strings.TrimSpace(string(data)))
		return nil
	})
	if os.IsNotExist(err) {
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list refs: %w", err)
	}
	return out, nil
}

func acquireRefLock(lockPath string) (*os.File, error) {
	deadline := time.Now().Add(refLockWaitLimit)
	for {
		f, err := os.OpenFile(lockPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, nil
		}
		if os.IsExist(err) {
			if time.Now().After(deadline) {
				return nil, fmt.Errorf("timeout waiting for lock %q", lockPath)
			}
			time.Sleep(refLockRetryDelay)
			continue
		}
		return nil, err
	}
}

func readRefHash(refPath string) (object.Hash, error) {
	data, err := os.ReadFile(refPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return object.Hash(strings.TrimSpace(string(data))), nil
}
