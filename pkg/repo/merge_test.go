package repo

import (
	"errors"
	"testing"

	"github.com/grovevcs/grove/pkg/object"
	"github.com/grovevcs/grove/pkg/tree"
)

func TestMergeBranchesAlreadyUpToDate(t *testing.T) {
	r := newTestRepo(t)
	mustPut(t, r, "main", "a.txt", "1")
	if err := r.CreateBranch("feature", "main"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	c2 := mustPut(t, r, "main", "b.txt", "2")

	// feature is an ancestor of main: nothing to do.
	got, err := r.MergeBranches("feature", "main", nil)
	if err != nil {
		t.Fatalf("MergeBranches: %v", err)
	}
	if got != c2 {
		t.Fatalf("merge result = %s, want unchanged head %s", got, c2)
	}
}

func TestMergeBranchesFastForward(t *testing.T) {
	r := newTestRepo(t)
	mustPut(t, r, "main", "a.txt", "1")
	if err := r.CreateBranch("feature", "main"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	c2 := mustPut(t, r, "feature", "b.txt", "2")

	got, err := r.MergeBranches("feature", "main", nil)
	if err != nil {
		t.Fatalf("MergeBranches: %v", err)
	}
	if got != c2 {
		t.Fatalf("fast-forward result = %s, want %s", got, c2)
	}
	head, err := r.ResolveRef("main")
	if err != nil {
		t.Fatalf("ResolveRef: %v", err)
	}
	if head != c2 {
		t.Fatalf("main = %s, want fast-forwarded to %s", head, c2)
	}
	// No merge commit was created.
	commit, err := object.ReadCommit(r.Store, head)
	if err != nil {
		t.Fatalf("ReadCommit: %v", err)
	}
	if len(commit.Parents) != 1 {
		t.Fatalf("fast-forward created a merge commit with %d parents", len(commit.Parents))
	}
}

func TestMergeBranchesCleanThreeWay(t *testing.T) {
	r := newTestRepo(t)
	mustPut(t, r, "main", "shared.txt", "base")
	if err := r.CreateBranch("feature", "main"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	mainHead := mustPut(t, r, "main", "main-only.txt", "m")
	featureHead := mustPut(t, r, "feature", "feature-only.txt", "f")

	merged, err := r.MergeBranches("feature", "main", nil)
	if err != nil {
		t.Fatalf("MergeBranches: %v", err)
	}

	commit, err := object.ReadCommit(r.Store, merged)
	if err != nil {
		t.Fatalf("ReadCommit: %v", err)
	}
	// Dest head first, then source head.
	if len(commit.Parents) != 2 || commit.Parents[0] != mainHead || commit.Parents[1] != featureHead {
		t.Fatalf("parents = %v, want [%s %s]", commit.Parents, mainHead, featureHead)
	}

	for path, want := range map[string]string{
		"shared.txt":       "base",
		"main-only.txt":    "m",
		"feature-only.txt": "f",
	} {
		if got := mustRead(t, r, "main", path); got != want {
			t.Fatalf("%s = %q, want %q", path, got, want)
		}
	}
	// Source branch itself does not move.
	srcHead, err := r.ResolveRef("feature")
	if err != nil {
		t.Fatalf("ResolveRef: %v", err)
	}
	if srcHead != featureHead {
		t.Fatalf("feature moved during merge: %s", srcHead)
	}
}

func TestMergeBranchesConflictFailsWholeMerge(t *testing.T) {
	r := newTestRepo(t)
	mustPut(t, r, "main", "shared.txt", "base")
	if err := r.CreateBranch("feature", "main"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	mainHead := mustPut(t, r, "main", "shared.txt", "ours")
	mustPut(t, r, "feature", "shared.txt", "theirs")

	_, err := r.MergeBranches("feature", "main", nil)
	var conflict *tree.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("err = %v, want ConflictError", err)
	}
	if conflict.Path != "shared.txt" {
		t.Fatalf("conflict path = %q, want shared.txt", conflict.Path)
	}
	// Nothing published.
	head, err := r.ResolveRef("main")
	if err != nil {
		t.Fatalf("ResolveRef: %v", err)
	}
	if head != mainHead {
		t.Fatalf("main moved despite conflict: %s", head)
	}
}

func TestMergeBranchesWithResolution(t *testing.T) {
	r := newTestRepo(t)
	mustPut(t, r, "main", "shared.txt", "base")
	if err := r.CreateBranch("feature", "main"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	mustPut(t, r, "main", "shared.txt", "ours")
	mustPut(t, r, "feature", "shared.txt", "theirs")

	merged, err := r.MergeBranches("feature", "main", tree.Resolutions{
		"shared.txt": []byte("settled"),
	})
	if err != nil {
		t.Fatalf("MergeBranches: %v", err)
	}
	if got := mustRead(t, r, "main", "shared.txt"); got != "settled" {
		t.Fatalf("shared.txt = %q, want %q", got, "settled")
	}
	commit, err := object.ReadCommit(r.Store, merged)
	if err != nil {
		t.Fatalf("ReadCommit: %v", err)
	}
	if len(commit.Parents) != 2 {
		t.Fatalf("resolved merge has %d parents, want 2", len(commit.Parents))
	}
}

func TestFindMergeBase(t *testing.T) {
	r := newTestRepo(t)
	c1 := mustPut(t, r, "main", "a.txt", "1")
	if err := r.CreateBranch("feature", "main"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	c2 := mustPut(t, r, "main", "b.txt", "2")
	c3 := mustPut(t, r, "feature", "c.txt", "3")

	base, err := r.FindMergeBase(c2, c3)
	if err != nil {
		t.Fatalf("FindMergeBase: %v", err)
	}
	if base != c1 {
		t.Fatalf("merge base = %s, want %s", base, c1)
	}

	// Same commit is its own base.
	base, err = r.FindMergeBase(c2, c2)
	if err != nil {
		t.Fatalf("FindMergeBase: %v", err)
	}
	if base != c2 {
		t.Fatalf("self base = %s, want %s", base, c2)
	}
}

func TestFindMergeBaseDisjointHistories(t *testing.T) {
	r := newTestRepo(t)
	c1 := mustPut(t, r, "main", "a.txt", "1")
	c2 := mustPut(t, r, "other", "b.txt", "2")

	base, err := r.FindMergeBase(c1, c2)
	if err != nil {
		t.Fatalf("FindMergeBase: %v", err)
	}
	if base != "" {
		t.Fatalf("disjoint histories base = %s, want empty", base)
	}
}

func TestMergeDisjointHistoriesUsesEmptyBase(t *testing.T) {
	// Two independent roots merge like both sides added everything.
	r := newTestRepo(t)
	mustPut(t, r, "main", "a.txt", "1")
	mustPut(t, r, "other", "b.txt", "2")

	merged, err := r.MergeBranches("other", "main", nil)
	if err != nil {
		t.Fatalf("MergeBranches: %v", err)
	}
	commit, err := object.ReadCommit(r.Store, merged)
	if err != nil {
		t.Fatalf("ReadCommit: %v", err)
	}
	if len(commit.Parents) != 2 {
		t.Fatalf("parents = %v, want 2 parents", commit.Parents)
	}
	if got := mustRead(t, r, "main", "a.txt"); got != "1" {
		t.Fatalf("a.txt = %q", got)
	}
	if got := mustRead(t, r, "main", "b.txt"); got != "2" {
		t.Fatalf("b.txt = %q", got)
	}
}
