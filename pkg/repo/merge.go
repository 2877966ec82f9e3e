package repo

import (
	"fmt"

	"github.com/grovevcs/grove/pkg/object"
	"github.com/grovevcs/grove/pkg/tree"
)

// maxMergeBaseSteps bounds ancestry traversal so a corrupted or adversarial
// parent graph cannot spin the merge forever.
const maxMergeBaseSteps = 1_000_000

// FindMergeBase finds a common ancestor of two commits: the full ancestor
// set of a is collected, then b's ancestry is scanned breadth-first and the
// first commit already in a's set wins. Parents are visited in commit
// order, so the result depends only on the two histories. An empty hash
// means no common ancestor (disjoint histories).
func (r *Repo) FindMergeBase(a, b object.Hash) (object.Hash, error) {
	if a == "" || b == "" {
		return "", nil
	}
	if a == b {
		return a, nil
	}

	ancestors, err := r.ancestorSet(a)
	if err != nil {
		return "", err
	}

	visited := map[object.Hash]struct{}{b: {}}
	queue := []object.Hash{b}
	steps := 0
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		steps++
		if steps > maxMergeBaseSteps {
			return "", fmt.Errorf("find merge base: traversal exceeded maximum steps (%d)", maxMergeBaseSteps)
		}

		if _, ok := ancestors[cur]; ok {
			return cur, nil
		}

		commit, err := object.ReadCommit(r.Store, cur)
		if err != nil {
			return "", fmt.Errorf("find merge base: read %s: %w", cur, err)
		}
		for _, p := range commit.Parents {
			if p == "" {
				continue
			}
			if _, seen := visited[p]; seen {
				continue
			}
			visited[p] = struct{}{}
			queue = append(queue, p)
		}
	}
	return "", nil
}

// ancestorSet returns start and all of its ancestors.
func (r *Repo) ancestorSet(start object.Hash) (map[object.Hash]struct{}, error) {
	set := make(map[object.Hash]struct{})
	stack := []object.Hash{start}
	steps := 0
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := set[cur]; ok {
			continue
		}

		steps++
		if steps > maxMergeBaseSteps {
			return nil, fmt.Errorf("find merge base: traversal exceeded maximum steps (%d)", maxMergeBaseSteps)
		}
		set[cur] = struct{}{}

		commit, err := object.ReadCommit(r.Store, cur)
		if err != nil {
			return nil, fmt.Errorf("find merge base: read %s: %w", cur, err)
		}
		for _, p := range commit.Parents {
			if p != "" {
				stack = append(stack, p)
			}
		}
	}
	return set, nil
}

// MergeBranches merges the source branch into the dest branch and returns
// the commit dest ends up at.
//
// When dest's head already contains source, nothing changes. When source
// strictly extends dest, the ref fast-forwards by CAS without a new commit.
// Otherwise the two trees merge against their common base: a clean (or
// fully resolved) merge publishes a two-parent commit, dest's head first;
// an unresolved conflict fails the whole operation with tree.ConflictError
// and no ref moves.
func (r *Repo) MergeBranches(source, dest string, resolutions tree.Resolutions) (object.Hash, error) {
	sourceHash, err := r.ResolveRef(headsRef(source))
	if err != nil {
		return "", fmt.Errorf("merge: resolve branch %q: %w", source, err)
	}
	destHash, err := r.ResolveRef(headsRef(dest))
	if err != nil {
		return "", fmt.Errorf("merge: resolve branch %q: %w", dest, err)
	}

	base, err := r.FindMergeBase(destHash, sourceHash)
	if err != nil {
		return "", fmt.Errorf("merge: %w", err)
	}

	// Source already merged: nothing to publish.
	if base == sourceHash {
		return destHash, nil
	}
	// Dest is an ancestor of source: fast-forward the ref.
	if base == destHash {
		if err := r.Refs.CompareAndSwap(headsRef(dest), destHash, sourceHash); err != nil {
			return "", fmt.Errorf("merge: fast-forward %q: %w", dest, err)
		}
		return sourceHash, nil
	}

	var baseTree object.Hash
	if base != "" {
		baseCommit, err := object.ReadCommit(r.Store, base)
		if err != nil {
			return "", fmt.Errorf("merge: read base commit: %w", err)
		}
		baseTree = baseCommit.TreeHash
	}
	destCommit, err := object.ReadCommit(r.Store, destHash)
	if err != nil {
		return "", fmt.Errorf("merge: read dest commit: %w", err)
	}
	sourceCommit, err := object.ReadCommit(r.Store, sourceHash)
	if err != nil {
		return "", fmt.Errorf("merge: read source commit: %w", err)
	}

	mergedTree, err := tree.Merge(r.Store, baseTree, destCommit.TreeHash, sourceCommit.TreeHash, resolutions)
	if err != nil {
		return "", fmt.Errorf("merge %q into %q: %w", source, dest, err)
	}
	if mergedTree == "" {
		// Both sides emptied the tree; a commit still needs a root.
		mergedTree, err = object.WriteTree(r.Store, &object.TreeObj{})
		if err != nil {
			return "", fmt.Errorf("merge: %w", err)
		}
	}

	commitHash, err := r.writeCommit(
		mergedTree,
		[]object.Hash{destHash, sourceHash},
		fmt.Sprintf("Merge branch '%s' into '%s'", source, dest),
	)
	if err != nil {
		return "", fmt.Errorf("merge: %w", err)
	}

	if err := r.Refs.CompareAndSwap(headsRef(dest), destHash, commitHash); err != nil {
		return "", fmt.Errorf("merge: publish %q: %w", dest, err)
	}
	return commitHash, nil
}
