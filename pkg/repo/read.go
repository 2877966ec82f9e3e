package repo

import (
	"fmt"

	"github.com/grovevcs/grove/pkg/object"
	"github.com/grovevcs/grove/pkg/tree"
)

// ReadFile returns the content of the file at path on the commit spec
// resolves to. A directory at path yields tree.ErrIsDirectory, a missing
// entry tree.ErrNotFound.
func (r *Repo) ReadFile(spec, path string) ([]byte, error) {
	segments, err := tree.SplitPath(path)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}
	root, err := r.treeOf(spec)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}
	data, err := tree.ReadFile(r.Store, root, segments)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}
	return data, nil
}

// ListDirectory lists the entries of the directory at path on the commit
// spec resolves to. An empty path lists the root.
func (r *Repo) ListDirectory(spec, path string) ([]object.TreeEntry, error) {
	var segments []string
	if path != "" {
		var err error
		segments, err = tree.SplitPath(path)
		if err != nil {
			return nil, fmt.Errorf("list %q: %w", path, err)
		}
	}
	root, err := r.treeOf(spec)
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", path, err)
	}
	entries, err := tree.List(r.Store, root, segments)
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", path, err)
	}
	return entries, nil
}

// ListFiles flattens the full tree of the commit spec resolves to into
// sorted path/hash pairs.
func (r *Repo) ListFiles(spec string) ([]tree.FileEntry, error) {
	root, err := r.treeOf(spec)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	files, err := tree.Flatten(r.Store, root)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return files, nil
}
