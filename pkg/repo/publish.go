package repo

import (
	"errors"
	"fmt"

	"github.com/grovevcs/grove/pkg/object"
	"github.com/grovevcs/grove/pkg/refs"
	"github.com/grovevcs/grove/pkg/tree"
)

// parentState is the READ_PARENT stage of the publish pipeline: the
// observed head of a branch, which later becomes both the commit's parent
// list and the CAS expected-old.
type parentState struct {
	head     object.Hash   // expected-old for the CAS; empty for a new branch
	parents  []object.Hash // parent list for the new commit
	treeHash object.Hash   // root tree to mutate; empty for a new branch
}

// readParent observes the current head of a branch. An absent branch is a
// legal starting point: the first commit of a new branch (or an empty
// repository) has no parent and publishes with an absent expected-old.
func (r *Repo) readParent(branch string) (parentState, error) {
	head, err := r.Refs.Resolve(headsRef(branch))
	if err != nil {
		if errors.Is(err, refs.ErrNotFound) {
			return parentState{}, nil
		}
		return parentState{}, err
	}
	commit, err := object.ReadCommit(r.Store, head)
	if err != nil {
		return parentState{}, err
	}
	return parentState{
		head:     head,
		parents:  []object.Hash{head},
		treeHash: commit.TreeHash,
	}, nil
}

// PutFile writes content at path on the named branch and publishes the
// resulting commit, returning its hash. Missing intermediate directories
// appear as needed; an existing entry of either kind at any segment is
// replaced. A concurrent writer that publishes first makes this call fail
// with refs.ErrStale; the caller re-reads and re-derives, nothing is
// retried here.
func (r *Repo) PutFile(branch, path string, content []byte) (object.Hash, error) {
	segments, err := tree.SplitPath(path)
	if err != nil {
		return "", fmt.Errorf("put %q: %w", path, err)
	}

	parent, err := r.readParent(branch)
	if err != nil {
		return "", fmt.Errorf("put %q: %w", path, err)
	}

	blobHash, err := object.WriteBlob(r.Store, &object.Blob{Data: content})
	if err != nil {
		return "", fmt.Errorf("put %q: %w", path, err)
	}
	newTree, err := tree.Upsert(r.Store, parent.treeHash, segments, blobHash, "")
	if err != nil {
		return "", fmt.Errorf("put %q: %w", path, err)
	}

	commitHash, err := r.writeCommit(newTree, parent.parents, fmt.Sprintf("Put %s", path))
	if err != nil {
		return "", fmt.Errorf("put %q: %w", path, err)
	}

	if err := r.Refs.CompareAndSwap(headsRef(branch), parent.head, commitHash); err != nil {
		return "", fmt.Errorf("put %q: %w", path, err)
	}
	return commitHash, nil
}

// RemoveFile deletes the entry at path on the named branch and publishes
// the resulting commit. Directories emptied by the removal are pruned;
// removing the last file leaves the canonical empty tree at the root.
func (r *Repo) RemoveFile(branch, path string) (object.Hash, error) {
	segments, err := tree.SplitPath(path)
	if err != nil {
		return "", fmt.Errorf("remove %q: %w", path, err)
	}

	parent, err := r.readParent(branch)
	if err != nil {
		return "", fmt.Errorf("remove %q: %w", path, err)
	}
	if parent.head == "" {
		return "", fmt.Errorf("remove %q: branch %q: %w", path, branch, refs.ErrNotFound)
	}

	newTree, err := tree.Remove(r.Store, parent.treeHash, segments)
	if err != nil {
		return "", fmt.Errorf("remove %q: %w", path, err)
	}

	commitHash, err := r.writeCommit(newTree, parent.parents, fmt.Sprintf("Remove %s", path))
	if err != nil {
		return "", fmt.Errorf("remove %q: %w", path, err)
	}

	if err := r.Refs.CompareAndSwap(headsRef(branch), parent.head, commitHash); err != nil {
		return "", fmt.Errorf("remove %q: %w", path, err)
	}
	return commitHash, nil
}
