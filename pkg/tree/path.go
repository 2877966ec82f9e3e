package tree

import (
	"fmt"
	"strings"
)

// SplitPath splits a slash-separated path into segments, rejecting empty
// paths and empty segments. Leading and trailing slashes are not tolerated;
// callers normalize before they get here.
func SplitPath(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("empty path")
	}
	segments := strings.Split(path, "/")
	for _, seg := range segments {
		if seg == "" {
			return nil, fmt.Errorf("path %q: empty segment", path)
		}
	}
	return segments, nil
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
