package repo

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/grovevcs/grove/pkg/object"
	"github.com/grovevcs/grove/pkg/refs"
)

// CreateTag tags the commit fromRef resolves to. With a message an
// annotated tag object is written and the ref points at it; without one
// the ref points at the commit directly. Creation is CAS-on-absent, so a
// duplicate name fails with ErrAlreadyExists.
func (r *Repo) CreateTag(name, fromRef, message string) error {
	commitHash, err := r.ResolveRef(fromRef)
	if err != nil {
		return fmt.Errorf("create tag %q: %w", name, err)
	}

	target := commitHash
	if message != "" {
		tagHash, err := object.WriteTag(r.Store, &object.TagObj{
			TargetHash: commitHash,
			Name:       name,
			Tagger:     r.identity(),
			Timestamp:  time.Now().Unix(),
			Message:    message,
		})
		if err != nil {
			return fmt.Errorf("create tag %q: %w", name, err)
		}
		target = tagHash
	}

	if err := r.Refs.CompareAndSwap(tagsRef(name), "", target); err != nil {
		if errors.Is(err, refs.ErrStale) {
			return fmt.Errorf("create tag: tag %q: %w", name, ErrAlreadyExists)
		}
		return fmt.Errorf("create tag %q: %w", name, err)
	}
	return nil
}

// DeleteTag removes the tag ref. Any annotated tag object stays in the
// store until collected.
func (r *Repo) DeleteTag(name string) error {
	if err := r.Refs.Delete(tagsRef(name)); err != nil {
		return fmt.Errorf("delete tag %q: %w", name, err)
	}
	return nil
}

// ListTags returns all tag names sorted alphabetically.
func (r *Repo) ListTags() ([]string, error) {
	all, err := r.Refs.List("tags")
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	names := make([]string, 0, len(all))
	for ref := range all {
		names = append(names, strings.TrimPrefix(ref, "tags/"))
	}
	sort.Strings(names)
	return names, nil
}
