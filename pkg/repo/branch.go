package repo

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/grovevcs/grove/pkg/refs"
)

// CreateBranch creates a new branch pointing at the commit fromRef resolves
// to. The creation is a compare-and-swap with an absent expected-old, so a
// racing creation of the same name loses cleanly with ErrAlreadyExists.
func (r *Repo) CreateBranch(name, fromRef string) error {
	target, err := r.ResolveRef(fromRef)
	if err != nil {
		return fmt.Errorf("create branch %q: %w", name, err)
	}
	if err := r.Refs.CompareAndSwap(headsRef(name), "", target); err != nil {
		if errors.Is(err, refs.ErrStale) {
			return fmt.Errorf("create branch: branch %q: %w", name, ErrAlreadyExists)
		}
		return fmt.Errorf("create branch %q: %w", name, err)
	}
	return nil
}

// DeleteBranch removes the branch ref. The commits it pointed at stay in
// the store until the collector proves them unreachable.
func (r *Repo) DeleteBranch(name string) error {
	if err := r.Refs.Delete(headsRef(name)); err != nil {
		return fmt.Errorf("delete branch %q: %w", name, err)
	}
	return nil
}

// ListBranches returns all branch names sorted alphabetically.
func (r *Repo) ListBranches() ([]string, error) {
	all, err := r.Refs.List("heads")
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	names := make([]string, 0, len(all))
	for ref := range all {
		names = append(names, strings.TrimPrefix(ref, "heads/"))
	}
	sort.Strings(names)
	return names, nil
}
