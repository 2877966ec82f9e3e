package tree

import (
	"fmt"
	"sort"

	"github.com/grovevcs/grove/pkg/object"
)

// Lookup descends the tree rooted at root and returns the entry at the
// given path. It fails with ErrNotFound when a segment is absent and
// ErrTypeMismatch when a non-terminal segment names a blob.
func Lookup(s object.Store, root object.Hash, segments []string) (object.TreeEntry, error) {
	if err := validateSegments(segments); err != nil {
		return object.TreeEntry{}, fmt.Errorf("lookup: %w", err)
	}

	current := root
	for i, name := range segments {
		path := joinSegments(segments[:i+1])
		if current == "" {
			return object.TreeEntry{}, fmt.Errorf("lookup %q: %w", path, ErrNotFound)
		}
		t, err := object.ReadTree(s, current)
		if err != nil {
			return object.TreeEntry{}, err
		}
		entry, ok := t.Entry(name)
		if !ok {
			return object.TreeEntry{}, fmt.Errorf("lookup %q: %w", path, ErrNotFound)
		}
		if i == len(segments)-1 {
			return entry, nil
		}
		if !entry.IsDir {
			return object.TreeEntry{}, fmt.Errorf("lookup %q: %w", path, ErrTypeMismatch)
		}
		current = entry.SubtreeHash
	}
	// Unreachable: validateSegments guarantees at least one segment.
	return object.TreeEntry{}, fmt.Errorf("lookup: empty path")
}

// ReadFile returns the blob content at the given path. A directory at the
// path yields ErrIsDirectory.
func ReadFile(s object.Store, root object.Hash, segments []string) ([]byte, error) {
	entry, err := Lookup(s, root, segments)
	if err != nil {
		return nil, err
	}
	if entry.IsDir {
		return nil, fmt.Errorf("read %q: %w", joinSegments(segments), ErrIsDirectory)
	}
	blob, err := object.ReadBlob(s, entry.BlobHash)
	if err != nil {
		return nil, err
	}
	return blob.Data, nil
}

// List returns the entries of the directory at the given path; nil segments
// list the root. A blob at the path yields ErrTypeMismatch.
func List(s object.Store, root object.Hash, segments []string) ([]object.TreeEntry, error) {
	current := root
	if len(segments) > 0 {
		entry, err := Lookup(s, root, segments)
		if err != nil {
			return nil, err
		}
		if !entry.IsDir {
			return nil, fmt.Errorf("list %q: %w", joinSegments(segments), ErrTypeMismatch)
		}
		current = entry.SubtreeHash
	}
	if current == "" {
		return nil, nil
	}
	t, err := object.ReadTree(s, current)
	if err != nil {
		return nil, err
	}
	return t.Entries, nil
}

// FileEntry is a single file in a flattened tree.
type FileEntry struct {
	Path     string
	Mode     string
	BlobHash object.Hash
}

// Flatten walks a tree recursively, returning all file entries with their
// full slash-separated paths, sorted by path.
func Flatten(s object.Store, root object.Hash) ([]FileEntry, error) {
	var out []FileEntry
	if root == "" {
		return out, nil
	}
	if err := flatten(s, root, "", &out); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func flatten(s object.Store, h object.Hash, prefix string, out *[]FileEntry) error {
	t, err := object.ReadTree(s, h)
	if err != nil {
		return fmt.Errorf("flatten: read %s: %w", h, err)
	}
	for _, entry := range t.Entries {
		full := joinPath(prefix, entry.Name)
		if entry.IsDir {
			if err := flatten(s, entry.SubtreeHash, full, out); err != nil {
				return err
			}
			continue
		}
		*out = append(*out, FileEntry{Path: full, Mode: entry.Mode, BlobHash: entry.BlobHash})
	}
	return nil
}

func joinSegments(segments []string) string {
	path := ""
	for _, seg := range segments {
		path = joinPath(path, seg)
	}
	return path
}
