package object

import "testing"

func TestReachableSet_FollowsCommitTreeBlob(t *testing.T) {
	s := NewMemStore()

	blobHash, err := WriteBlob(s, &Blob{Data: []byte("content")})
	if err != nil {
		t.Fatalf("WriteBlob: %v", err)
	}
	treeHash, err := WriteTree(s, &TreeObj{Entries: []TreeEntry{
		{Name: "file.txt", BlobHash: blobHash},
	}})
	if err != nil {
		t.Fatalf("WriteTree: %v", err)
	}
	commitHash, err := WriteCommit(s, &CommitObj{
		TreeHash: treeHash, Author: "a", Timestamp: 1, Message: "c1",
	})
	if err != nil {
		t.Fatalf("WriteCommit: %v", err)
	}

	// An unreferenced blob should stay out of the set.
	orphan, err := WriteBlob(s, &Blob{Data: []byte("orphan")})
	if err != nil {
		t.Fatalf("WriteBlob orphan: %v", err)
	}

	set, err := ReachableSet(s, []Hash{commitHash})
	if err != nil {
		t.Fatalf("ReachableSet: %v", err)
	}

	for _, h := range []Hash{commitHash, treeHash, blobHash} {
		if _, ok := set[h]; !ok {
			t.Errorf("hash %s missing from reachable set", h)
		}
	}
	if _, ok := set[orphan]; ok {
		t.Errorf("orphan blob reported reachable")
	}
	if len(set) != 3 {
		t.Errorf("reachable set size = %d, want 3", len(set))
	}
}

func TestReachableSet_FollowsParentsAndTags(t *testing.T) {
	s := NewMemStore()

	tree1, _ := WriteTree(s, &TreeObj{})
	c1, err := WriteCommit(s, &CommitObj{TreeHash: tree1, Author: "a", Message: "1"})
	if err != nil {
		t.Fatalf("WriteCommit: %v", err)
	}
	c2, err := WriteCommit(s, &CommitObj{TreeHash: tree1, Parents: []Hash{c1}, Author: "a", Message: "2"})
	if err != nil {
		t.Fatalf("WriteCommit: %v", err)
	}
	tag, err := WriteTag(s, &TagObj{TargetHash: c2, Name: "v1", Tagger: "a", Timestamp: 1, Message: "m"})
	if err != nil {
		t.Fatalf("WriteTag: %v", err)
	}

	set, err := ReachableSet(s, []Hash{tag})
	if err != nil {
		t.Fatalf("ReachableSet: %v", err)
	}
	for _, h := range []Hash{tag, c2, c1, tree1} {
		if _, ok := set[h]; !ok {
			t.Errorf("hash %s missing from reachable set", h)
		}
	}
}

func TestReachableSet_MissingRootIgnored(t *testing.T) {
	s := NewMemStore()
	set, err := ReachableSet(s, []Hash{"ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff", ""})
	if err != nil {
		t.Fatalf("ReachableSet: %v", err)
	}
	if len(set) != 0 {
		t.Errorf("set = %v, want empty", set)
	}
}
