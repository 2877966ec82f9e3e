package tree

import (
	"errors"
	"fmt"
)

// ErrNotFound reports a path segment with no entry behind it.
var ErrNotFound = errors.New("path not found")

// ErrTypeMismatch reports traversal through a non-directory entry.
var ErrTypeMismatch = errors.New("path component is not a directory")

// ErrIsDirectory reports a file read against a directory entry.
var ErrIsDirectory = errors.New("path names a directory")

// ConflictError reports a three-way merge conflict with no supplied
// resolution. The merge fails as a whole: no partial tree is ever written
// into a result.
type ConflictError struct {
	Path string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("merge conflict at %q", e.Path)
}
