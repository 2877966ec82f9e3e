package tree

import (
	"fmt"
	"sort"

	"github.com/grovevcs/grove/pkg/object"
)

// Upsert inserts or replaces the blob at the given path inside the tree
// rooted at root, returning the new root tree hash. An empty root means an
// absent tree (the very first write into an empty repository). An existing
// entry of either kind at any segment is silently replaced, so a file can
// become a directory and vice versa. Only the trees on the path from root to
// the changed leaf are rewritten; sibling entries are carried over by hash.
func Upsert(s object.Store, root object.Hash, segments []string, blobHash object.Hash, mode string) (object.Hash, error) {
	if err := validateSegments(segments); err != nil {
		return "", fmt.Errorf("upsert: %w", err)
	}
	if mode == "" {
		mode = object.TreeModeFile
	}
	return upsert(s, root, segments, blobHash, mode)
}

func upsert(s object.Store, root object.Hash, segments []string, blobHash object.Hash, mode string) (object.Hash, error) {
	entries, err := readEntries(s, root)
	if err != nil {
		return "", err
	}

	name := segments[0]
	existing, rest := takeEntry(entries, name)

	var entry object.TreeEntry
	if len(segments) == 1 {
		entry = object.TreeEntry{Name: name, Mode: mode, BlobHash: blobHash}
	} else {
		// Recurse into the existing subtree, or into an absent one when the
		// name is new or currently a blob.
		var childRoot object.Hash
		if existing != nil && existing.IsDir {
			childRoot = existing.SubtreeHash
		}
		subHash, err := upsert(s, childRoot, segments[1:], blobHash, mode)
		if err != nil {
			return "", err
		}
		entry = object.TreeEntry{Name: name, IsDir: true, Mode: object.TreeModeDir, SubtreeHash: subHash}
	}

	return writeEntries(s, append(rest, entry))
}

// Remove deletes the blob or subtree entry at the given path, returning the
// new root tree hash. Directories left empty by the removal are pruned from
// their parents transitively; if pruning reaches the root, the canonical
// empty tree is materialized so the result is never a dangling absence.
// Any failure mid-recursion produces no new state a caller could observe.
func Remove(s object.Store, root object.Hash, segments []string) (object.Hash, error) {
	if err := validateSegments(segments); err != nil {
		return "", fmt.Errorf("remove: %w", err)
	}
	h, pruned, err := remove(s, root, segments, "")
	if err != nil {
		return "", err
	}
	if pruned {
		return object.WriteTree(s, &object.TreeObj{})
	}
	return h, nil
}

// remove reports pruned=true instead of writing an empty tree; the caller
// frame then drops its own entry for this child rather than updating it.
func remove(s object.Store, root object.Hash, segments []string, prefix string) (object.Hash, bool, error) {
	if root == "" {
		return "", false, fmt.Errorf("remove %q: %w", joinPath(prefix, segments[0]), ErrNotFound)
	}
	t, err := object.ReadTree(s, root)
	if err != nil {
		return "", false, err
	}

	name := segments[0]
	path := joinPath(prefix, name)
	existing, rest := takeEntry(t.Entries, name)
	if existing == nil {
		return "", false, fmt.Errorf("remove %q: %w", path, ErrNotFound)
	}

	if len(segments) == 1 {
		if len(rest) == 0 {
			return "", true, nil
		}
		h, err := writeEntries(s, rest)
		return h, false, err
	}

	if !existing.IsDir {
		return "", false, fmt.Errorf("remove %q: %w", path, ErrTypeMismatch)
	}

	subHash, pruned, err := remove(s, existing.SubtreeHash, segments[1:], path)
	if err != nil {
		return "", false, err
	}
	if pruned {
		if len(rest) == 0 {
			return "", true, nil
		}
		h, err := writeEntries(s, rest)
		return h, false, err
	}

	updated := *existing
	updated.SubtreeHash = subHash
	h, err := writeEntries(s, append(rest, updated))
	return h, false, err
}

func validateSegments(segments []string) error {
	if len(segments) == 0 {
		return fmt.Errorf("empty path")
	}
	for _, seg := range segments {
		if seg == "" {
			return fmt.Errorf("empty path segment")
		}
	}
	return nil
}

// readEntries loads a tree's entries, treating an empty hash as an absent
// (zero-entry) tree.
func readEntries(s object.Store, h object.Hash) ([]object.TreeEntry, error) {
	if h == "" {
		return nil, nil
	}
	t, err := object.ReadTree(s, h)
	if err != nil {
		return nil, err
	}
	return t.Entries, nil
}

// takeEntry splits entries into the entry named name (nil if absent) and
// the remaining entries.
func takeEntry(entries []object.TreeEntry, name string) (*object.TreeEntry, []object.TreeEntry) {
	rest := make([]object.TreeEntry, 0, len(entries))
	var found *object.TreeEntry
	for i := range entries {
		if entries[i].Name == name {
			e := entries[i]
			found = &e
			continue
		}
		rest = append(rest, entries[i])
	}
	return found, rest
}

func writeEntries(s object.Store, entries []object.TreeEntry) (object.Hash, error) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return object.WriteTree(s, &object.TreeObj{Entries: entries})
}
